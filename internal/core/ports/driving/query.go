package driving

import (
	"context"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

// QueryService answers natural-language questions against the stored
// corpus using retrieval-augmented generation.
type QueryService interface {
	// Answer refines, embeds and retrieves for the query, then
	// synthesises an answer with ordered citations. An empty retrieval
	// set yields an answer stating no supporting context was found.
	Answer(ctx context.Context, query string, opts domain.QueryOptions) (*domain.QueryResult, error)
}

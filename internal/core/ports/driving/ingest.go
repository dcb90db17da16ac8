// Package driving provides interfaces for primary (inbound) ports.
package driving

import (
	"context"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

// IngestService processes submitted documents through the full pipeline:
// OCR, validation, normalisation, chunking, embedding and indexing.
type IngestService interface {
	// Ingest runs one document through the pipeline. A "reject" or
	// "review" verdict is reported in the receipt, not as an error.
	Ingest(ctx context.Context, doc *domain.SourceDocument) (*domain.IngestReceipt, error)

	// IngestAll ingests documents concurrently up to the worker limit.
	// Per-document failures are collected; one failure does not stop
	// the batch.
	IngestAll(ctx context.Context, docs []*domain.SourceDocument) ([]*domain.IngestReceipt, error)

	// Delete removes a document's chunks from the index and store.
	Delete(ctx context.Context, documentID string) (int, error)

	// Stats reports corpus totals.
	Stats(ctx context.Context) (domain.IndexStats, error)
}

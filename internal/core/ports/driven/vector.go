package driven

import (
	"context"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

// VectorIndex stores unit vectors with chunk payloads and serves
// nearest-neighbour search. Similarity-threshold filtering is the
// caller's responsibility, not the index's.
type VectorIndex interface {
	// Add inserts a vector and its chunk payload, keyed by chunk ID.
	// The vector's dimension must match the index configuration.
	Add(ctx context.Context, chunk domain.Chunk, embedding []float32) error

	// Search returns the k nearest chunks by descending cosine
	// similarity.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// DeleteDocument removes every chunk belonging to the document.
	// Returns the number of chunks removed.
	DeleteDocument(ctx context.Context, documentID string) (int, error)

	// Stats reports corpus totals.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Save persists the index to disk.
	Save() error

	// Close persists and releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// Chunk is the matched chunk payload.
	Chunk domain.Chunk

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}

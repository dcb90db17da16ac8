package driven

import (
	"context"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

// ChunkStore persists chunk metadata keyed by chunk id, alongside the
// binary vector index, so restarts never re-embed existing documents.
type ChunkStore interface {
	// SaveChunks stores chunks, replacing any existing rows with the
	// same ids.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a chunk by id.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// ListByDocument returns a document's chunks ordered by ordinal.
	ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteByDocument removes all chunks of a document. Returns the
	// number of rows removed.
	DeleteByDocument(ctx context.Context, documentID string) (int, error)

	// CountDocuments returns the number of distinct documents stored.
	CountDocuments(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

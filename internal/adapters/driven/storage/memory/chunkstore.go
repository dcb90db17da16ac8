// Package memory provides in-memory storage adapters, used as test
// fixtures and for ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory chunk store.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
}

// NewChunkStore creates an empty in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string]domain.Chunk),
	}
}

// SaveChunks stores chunks, replacing entries with the same ids.
func (s *ChunkStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// GetChunk retrieves a chunk by id.
func (s *ChunkStore) GetChunk(_ context.Context, chunkID string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunk, ok := s.chunks[chunkID]
	if !ok {
		return nil, fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
	}
	return &chunk, nil
}

// ListByDocument returns a document's chunks ordered by ordinal.
func (s *ChunkStore) ListByDocument(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, chunk := range s.chunks {
		if chunk.DocumentID == documentID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Ordinal < chunks[j].Ordinal
	})
	return chunks, nil
}

// DeleteByDocument removes all chunks of a document.
func (s *ChunkStore) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, chunk := range s.chunks {
		if chunk.DocumentID == documentID {
			delete(s.chunks, id)
			removed++
		}
	}
	return removed, nil
}

// CountDocuments returns the number of distinct documents stored.
func (s *ChunkStore) CountDocuments(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string]struct{})
	for _, chunk := range s.chunks {
		docs[chunk.DocumentID] = struct{}{}
	}
	return len(docs), nil
}

// Close releases resources.
func (s *ChunkStore) Close() error {
	return nil
}

package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

func newTestStore(t *testing.T) *ChunkStore {
	t.Helper()
	s, err := NewChunkStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testChunks(doc string, n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s:%d", doc, i),
			DocumentID: doc,
			Ordinal:    i,
			Text:       "chunk body",
			WordCount:  2,
			Metadata:   map[string]any{"filename": "a.pdf"},
		}
	}
	return chunks
}

func TestSaveChunks_GetChunkRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	chunks := testChunks("doc-1", 2)

	require.NoError(t, s.SaveChunks(ctx, chunks))

	got, err := s.GetChunk(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, chunks[0].DocumentID, got.DocumentID)
	assert.Equal(t, chunks[0].Text, got.Text)
	assert.Equal(t, "a.pdf", got.Metadata["filename"])
}

func TestGetChunk_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetChunk(context.Background(), "missing:0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveChunks_ReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	chunks := testChunks("doc-1", 1)
	require.NoError(t, s.SaveChunks(ctx, chunks))

	chunks[0].Text = "updated body"
	require.NoError(t, s.SaveChunks(ctx, chunks))

	got, err := s.GetChunk(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "updated body", got.Text)
}

func TestListByDocument_OrderedByOrdinal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	chunks := testChunks("doc-1", 3)

	// Insert out of order.
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{chunks[2], chunks[0], chunks[1]}))

	got, err := s.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, i, c.Ordinal)
	}
}

func TestDeleteByDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveChunks(ctx, testChunks("keep", 1)))
	require.NoError(t, s.SaveChunks(ctx, testChunks("gone", 3)))

	removed, err := s.DeleteByDocument(ctx, "gone")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	left, err := s.ListByDocument(ctx, "gone")
	require.NoError(t, err)
	assert.Empty(t, left)

	count, err := s.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCountDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, s.SaveChunks(ctx, testChunks("a", 2)))
	require.NoError(t, s.SaveChunks(ctx, testChunks("b", 1)))

	count, err = s.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

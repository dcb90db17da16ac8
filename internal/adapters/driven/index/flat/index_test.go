package flat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

func newIndex(t *testing.T, dims int) *Index {
	t.Helper()
	x, err := NewIndex(Config{
		Path:       filepath.Join(t.TempDir(), DefaultFilename),
		Dimensions: dims,
	})
	require.NoError(t, err)
	return x
}

func chunk(doc string, ordinal int) domain.Chunk {
	return domain.Chunk{
		ID:         doc + ":" + string(rune('0'+ordinal)),
		DocumentID: doc,
		Ordinal:    ordinal,
		Text:       "chunk text",
	}
}

func TestNewIndex_Validation(t *testing.T) {
	_, err := NewIndex(Config{Dimensions: 4})
	assert.Error(t, err)

	_, err = NewIndex(Config{Path: "x.bin"})
	assert.Error(t, err)
}

func TestAdd_DimensionMismatch(t *testing.T) {
	x := newIndex(t, 4)

	err := x.Add(context.Background(), chunk("doc", 0), []float32{1, 0})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearch_SelfSimilarityNearOne(t *testing.T) {
	x := newIndex(t, 3)
	ctx := context.Background()

	vec := []float32{1, 0, 0}
	require.NoError(t, x.Add(ctx, chunk("doc", 0), vec))

	hits, err := x.Search(ctx, vec, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "doc", hits[0].Chunk.DocumentID)
}

func TestSearch_OrderedByDescendingSimilarity(t *testing.T) {
	x := newIndex(t, 2)
	ctx := context.Background()

	require.NoError(t, x.Add(ctx, chunk("a", 0), []float32{1, 0}))
	require.NoError(t, x.Add(ctx, chunk("b", 0), []float32{0, 1}))
	require.NoError(t, x.Add(ctx, chunk("c", 0), []float32{0.707, 0.707}))

	hits, err := x.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "a", hits[0].Chunk.DocumentID)
	assert.Equal(t, "c", hits[1].Chunk.DocumentID)
	assert.Equal(t, "b", hits[2].Chunk.DocumentID)
}

func TestSearch_KSmallerThanCorpus(t *testing.T) {
	x := newIndex(t, 2)
	ctx := context.Background()
	require.NoError(t, x.Add(ctx, chunk("a", 0), []float32{1, 0}))
	require.NoError(t, x.Add(ctx, chunk("b", 0), []float32{0, 1}))

	hits, err := x.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_NoThresholdApplied(t *testing.T) {
	x := newIndex(t, 2)
	ctx := context.Background()
	require.NoError(t, x.Add(ctx, chunk("a", 0), []float32{1, 0}))

	// Orthogonal query still returns the hit; filtering is the
	// caller's job.
	hits, err := x.Search(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 0.0, hits[0].Similarity, 1e-6)
}

func TestAdd_ReplacesExistingChunk(t *testing.T) {
	x := newIndex(t, 2)
	ctx := context.Background()
	c := chunk("doc", 0)

	require.NoError(t, x.Add(ctx, c, []float32{1, 0}))
	require.NoError(t, x.Add(ctx, c, []float32{0, 1}))

	stats, err := x.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Chunks)

	hits, err := x.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestDeleteDocument_Cascades(t *testing.T) {
	x := newIndex(t, 2)
	ctx := context.Background()
	require.NoError(t, x.Add(ctx, chunk("keep", 0), []float32{1, 0}))
	require.NoError(t, x.Add(ctx, chunk("gone", 0), []float32{0, 1}))
	require.NoError(t, x.Add(ctx, chunk("gone", 1), []float32{0, 1}))

	removed, err := x.DeleteDocument(ctx, "gone")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	stats, err := x.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Chunks)
	assert.Equal(t, 1, stats.Documents)
}

func TestDeleteDocument_Unknown(t *testing.T) {
	x := newIndex(t, 2)

	removed, err := x.DeleteDocument(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	ctx := context.Background()

	x1, err := NewIndex(Config{Path: path, Dimensions: 3})
	require.NoError(t, err)
	require.NoError(t, x1.Add(ctx, chunk("doc", 0), []float32{1, 0, 0}))
	require.NoError(t, x1.Add(ctx, chunk("doc", 1), []float32{0, 1, 0}))
	require.NoError(t, x1.Save())

	x2, err := NewIndex(Config{Path: path, Dimensions: 3})
	require.NoError(t, err)
	require.NoError(t, x2.Load(ctx))

	stats, err := x2.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Chunks)

	hits, err := x2.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	x := newIndex(t, 2)
	require.NoError(t, x.Load(context.Background()))

	stats, err := x.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte("not an index"), 0o600))

	x, err := NewIndex(Config{Path: path, Dimensions: 2})
	require.NoError(t, err)

	err = x.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestLoad_DimensionMismatchIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	ctx := context.Background()

	x1, err := NewIndex(Config{Path: path, Dimensions: 3})
	require.NoError(t, err)
	require.NoError(t, x1.Add(ctx, chunk("doc", 0), []float32{1, 0, 0}))
	require.NoError(t, x1.Save())

	x2, err := NewIndex(Config{Path: path, Dimensions: 4})
	require.NoError(t, err)
	assert.ErrorIs(t, x2.Load(ctx), domain.ErrIndexCorrupt)
}

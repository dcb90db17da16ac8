package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_Deterministic(t *testing.T) {
	s := NewEmbeddingService(Config{})
	ctx := context.Background()

	a, err := s.Embed(ctx, "total expenditure for March 2024")
	require.NoError(t, err)
	b, err := s.Embed(ctx, "total expenditure for March 2024")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbed_UnitNorm(t *testing.T) {
	s := NewEmbeddingService(Config{Dimensions: 64})

	vec, err := s.Embed(context.Background(), "opening balance of the division account")
	require.NoError(t, err)
	require.Len(t, vec, 64)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestEmbed_DifferentTextsDiffer(t *testing.T) {
	s := NewEmbeddingService(Config{})
	ctx := context.Background()

	a, err := s.Embed(ctx, "grand total of receipts")
	require.NoError(t, err)
	b, err := s.Embed(ctx, "contractor remittance schedule")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	s := NewEmbeddingService(Config{Dimensions: 16})

	vec, err := s.Embed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vec, 16)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbedBatch_MatchesSingle(t *testing.T) {
	s := NewEmbeddingService(Config{})
	ctx := context.Background()
	texts := []string{"first chunk text", "second chunk text"}

	batch, err := s.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	for i, text := range texts {
		single, err := s.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

func TestEmbed_SimilarTextsCloserThanUnrelated(t *testing.T) {
	s := NewEmbeddingService(Config{})
	ctx := context.Background()

	base, err := s.Embed(ctx, "total expenditure on road works this month")
	require.NoError(t, err)
	near, err := s.Embed(ctx, "expenditure on road works for the month")
	require.NoError(t, err)
	far, err := s.Embed(ctx, "gst registration number of the contractor")
	require.NoError(t, err)

	assert.Greater(t, cosine(base, near), cosine(base, far))
}

func TestDefaults(t *testing.T) {
	s := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultDimensions, s.Dimensions())
	assert.Equal(t, "feature-hash", s.ModelName())
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

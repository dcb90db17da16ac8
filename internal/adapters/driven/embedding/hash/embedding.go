// Package hash provides a deterministic, fully offline embedding
// service based on feature hashing. It needs no model download or
// network access, which makes it the default backend and the test
// backbone. Vectors are stable across processes and platforms for a
// fixed dimension.
package hash

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/docuflow-labs/docuflow/internal/adapters/driven/embedding"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the default vector size.
const DefaultDimensions = 384

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Dimensions is the embedding vector size (default: 384).
	Dimensions int
}

// EmbeddingService maps text to unit vectors by hashing word unigrams
// and bigrams into a fixed number of signed buckets.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: cfg.Dimensions}
}

// Embed generates a unit-normalised embedding for the given text.
// Identical text always yields an identical vector.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)

	tokens := tokenize(text)
	for i, tok := range tokens {
		addFeature(vec, tok)
		if i+1 < len(tokens) {
			addFeature(vec, tok+" "+tokens[i+1])
		}
	}
	return embedding.Normalize(vec), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// addFeature hashes the token into a bucket. The lowest hash bit picks
// the sign so colliding features partially cancel instead of
// accumulating bias.
func addFeature(vec []float32, token string) {
	h := fnv.New64a()
	h.Write([]byte(token))
	sum := h.Sum64()

	bucket := int((sum >> 1) % uint64(len(vec)))
	if sum&1 == 0 {
		vec[bucket]++
	} else {
		vec[bucket]--
	}
}

// tokenize lowercases and splits on non-alphanumeric runs, keeping
// digits so amounts and codes stay searchable.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model identifier.
func (s *EmbeddingService) ModelName() string {
	return "feature-hash"
}

// Ping always succeeds; there is no backend to reach.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

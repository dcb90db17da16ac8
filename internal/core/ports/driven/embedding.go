package driven

import "context"

// EmbeddingService maps text to fixed-dimension, L2-normalised vectors.
// One instance is shared by ingestion writes and query-time reads so the
// vector space stays consistent and model load cost is paid exactly once.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small)
//   - Local deterministic feature hashing (offline default)
type EmbeddingService interface {
	// Embed generates a unit-normalised vector for the given text.
	// Deterministic for a fixed model version.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size. This is fixed per
	// deployment and must match the vector index configuration.
	Dimensions() int

	// ModelName returns the embedding model identifier.
	ModelName() string

	// Ping validates the backend is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

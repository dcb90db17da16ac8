package driven

import "context"

// LLMService provides generative language model operations for query
// refinement and answer synthesis. This is an optional service; when nil,
// query refinement is skipped and answers degrade to chunk passthrough.
type LLMService interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// RefineQuery rewrites a raw question into a more specific retrieval
	// query. Implementations return the input unchanged on empty output.
	RefineQuery(ctx context.Context, query string) (string, error)

	// ModelName returns the model identifier.
	ModelName() string

	// Ping validates the backend is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

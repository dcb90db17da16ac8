package domain

// Engine and provider identifiers used in configuration.
const (
	OCREngineTesseract = "tesseract"
	OCREngineRemote    = "remote"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"
)

// OCRSettings selects and configures the OCR backend. The engine is
// chosen once at startup; changing it never changes the extraction
// contract.
type OCRSettings struct {
	// Engine is the backend identifier ("tesseract", "remote").
	Engine string

	// Binary is the tesseract executable (tesseract engine only).
	Binary string

	// Language is the OCR language code.
	Language string

	// BaseURL and APIKey configure the remote engine.
	BaseURL string
	APIKey  string

	// RateLimit is the remote engine's requests-per-second budget.
	RateLimit int
}

// EmbeddingSettings configures the embedding backend.
type EmbeddingSettings struct {
	// Provider is "ollama", "openai" or "hash".
	Provider string

	// BaseURL is the API base URL (provider-dependent default).
	BaseURL string

	// APIKey authenticates hosted providers.
	APIKey string

	// Model is the embedding model identifier.
	Model string

	// Dimensions overrides the model's default vector size when set.
	Dimensions int
}

// LLMSettings configures the generation backend. An empty provider
// disables refinement and degrades answers to chunk passthrough.
type LLMSettings struct {
	// Provider is "ollama", "openai" or "" (disabled).
	Provider string

	// BaseURL is the API base URL.
	BaseURL string

	// APIKey authenticates hosted providers.
	APIKey string

	// Model is the generation model identifier.
	Model string
}

// IsConfigured reports whether a generation backend is selected.
func (s LLMSettings) IsConfigured() bool {
	return s.Provider != ""
}

// PipelineSettings configures the normalisation pipeline.
type PipelineSettings struct {
	// ChunkSize is the target chunk size in words.
	ChunkSize int

	// ChunkOverlap is the inter-chunk overlap in words, strictly below
	// ChunkSize.
	ChunkOverlap int

	// LowercaseProse lowercases sentence-initial words while keeping
	// acronyms intact.
	LowercaseProse bool

	// SpellCorrect enables dictionary-based spelling correction.
	SpellCorrect bool

	// Workers bounds batch-ingestion parallelism.
	Workers int
}

// QuerySettings configures retrieval and answer generation.
type QuerySettings struct {
	// TopK is the number of nearest chunks to retrieve.
	TopK int

	// MinSimilarity drops hits below this cosine similarity.
	MinSimilarity float64

	// ContextWords is the word budget for the generation context.
	ContextWords int
}

// Settings aggregates all configuration, loaded once at startup.
type Settings struct {
	// DataDir holds the vector index and chunk database
	// (default: ~/.docuflow).
	DataDir string

	OCR        OCRSettings
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Pipeline   PipelineSettings
	Query      QuerySettings
	Thresholds Thresholds
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		OCR: OCRSettings{
			Engine:   OCREngineTesseract,
			Language: "eng",
		},
		Embedding: EmbeddingSettings{
			Provider: ProviderHash,
		},
		Pipeline: PipelineSettings{
			ChunkSize:    400,
			ChunkOverlap: 50,
			SpellCorrect: true,
			Workers:      4,
		},
		Query: QuerySettings{
			TopK:          5,
			MinSimilarity: 0.3,
			ContextWords:  1800,
		},
		Thresholds: DefaultThresholds(),
	}
}

package domain

// QueryState tracks a request through the retrieval orchestrator.
type QueryState string

const (
	QueryStateReceived   QueryState = "received"
	QueryStateRefining   QueryState = "refining"
	QueryStateEmbedding  QueryState = "embedding"
	QueryStateRetrieving QueryState = "retrieving"
	QueryStateGenerating QueryState = "generating"
	QueryStateAnswered   QueryState = "answered"
	QueryStateFailed     QueryState = "failed"
)

// QueryOptions configures a retrieval request.
type QueryOptions struct {
	// TopK is the number of nearest chunks to retrieve (default 5).
	TopK int

	// MinSimilarity drops retrieved chunks whose cosine similarity is
	// below this threshold (default 0.3).
	MinSimilarity float64

	// IncludeSources controls whether citations are returned.
	IncludeSources bool

	// Refine enables the optional language-model query rewrite.
	Refine bool
}

// SourceCitation is one retrieved chunk backing an answer.
type SourceCitation struct {
	// ChunkID identifies the cited chunk.
	ChunkID string

	// DocumentID identifies the owning document.
	DocumentID string

	// Excerpt is a bounded extract of the chunk text.
	Excerpt string

	// Similarity is the cosine similarity to the query in [0,1].
	Similarity float64

	// Metadata carries the document metadata stored with the chunk.
	Metadata map[string]any
}

// QueryResult is the orchestrator's answer to a question.
type QueryResult struct {
	// Query is the raw question as submitted.
	Query string

	// RefinedQuery is the language-model rewrite used for retrieval.
	// Empty when refinement was disabled, unavailable or failed.
	RefinedQuery string

	// Answer is the generated answer text.
	Answer string

	// Sources lists citations in descending similarity order.
	Sources []SourceCitation

	// RetrievedCount is the number of chunks above the similarity
	// threshold. Zero is a valid outcome, not an error.
	RetrievedCount int

	// Degraded is set when an optional stage (query refinement) was
	// attempted and silently fell back.
	Degraded bool
}

// IngestReceipt summarises a completed ingestion for the caller.
type IngestReceipt struct {
	// DocumentID identifies the ingested document.
	DocumentID string

	// Extraction is the normalised OCR output.
	Extraction *ExtractionResult

	// Verdict is the validation gate's decision.
	Verdict *ValidationVerdict

	// ChunksStored is the number of chunks written to the index.
	// Zero when the verdict was not "store".
	ChunksStored int

	// EmbeddingsStored matches ChunksStored on success.
	EmbeddingsStored int

	// Warnings aggregates pipeline-stage degradation notes.
	Warnings []string
}

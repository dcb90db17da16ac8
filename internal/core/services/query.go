package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driving"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// excerptLimit bounds citation excerpts.
const excerptLimit = 300

// answerMaxTokens bounds answer generation.
const answerMaxTokens = 500

// noContextAnswer is returned when nothing in the corpus clears the
// similarity threshold. An empty retrieval is a valid outcome, never an
// error.
const noContextAnswer = "No supporting context was found in the indexed documents for this question."

// QueryService orchestrates retrieval-augmented answering: optional
// query refinement, embedding, nearest-neighbour retrieval, threshold
// filtering and answer synthesis with ordered citations.
//
// The language model is optional. Without one, refinement is skipped and
// the answer degrades to a passthrough of the retrieved passages.
type QueryService struct {
	embedding driven.EmbeddingService
	index     driven.VectorIndex
	llm       driven.LLMService
	defaults  domain.QuerySettings
}

// NewQueryService creates a query service. llm may be nil.
func NewQueryService(
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	llm driven.LLMService,
	defaults domain.QuerySettings,
) *QueryService {
	if defaults.TopK <= 0 {
		defaults.TopK = 5
	}
	if defaults.MinSimilarity <= 0 {
		defaults.MinSimilarity = 0.3
	}
	if defaults.ContextWords <= 0 {
		defaults.ContextWords = 1800
	}
	return &QueryService{
		embedding: embedding,
		index:     index,
		llm:       llm,
		defaults:  defaults,
	}
}

// Answer runs the retrieval state machine for one question.
func (s *QueryService) Answer(ctx context.Context, query string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is empty")
	}

	logger.Section("Query")
	logger.Info("State: %s, query=%q", domain.QueryStateReceived, query)

	if opts.TopK <= 0 {
		opts.TopK = s.defaults.TopK
	}
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = s.defaults.MinSimilarity
	}

	result := &domain.QueryResult{Query: query}

	retrievalQuery := s.refine(ctx, query, opts, result)

	logger.Info("State: %s", domain.QueryStateEmbedding)
	vector, err := s.embedding.Embed(ctx, retrievalQuery)
	if err != nil {
		return nil, s.failed("embed query", err)
	}

	logger.Info("State: %s, k=%d", domain.QueryStateRetrieving, opts.TopK)
	hits, err := s.index.Search(ctx, vector, opts.TopK)
	if err != nil {
		return nil, s.failed("search index", err)
	}

	kept := hits[:0]
	for _, hit := range hits {
		if hit.Similarity >= opts.MinSimilarity {
			kept = append(kept, hit)
		}
	}
	result.RetrievedCount = len(kept)
	logger.Info("Retrieved %d chunks above threshold %.2f (of %d hits)",
		len(kept), opts.MinSimilarity, len(hits))

	if opts.IncludeSources {
		result.Sources = citations(kept)
	}

	if len(kept) == 0 {
		result.Answer = noContextAnswer
		logger.Info("State: %s (no context)", domain.QueryStateAnswered)
		return result, nil
	}

	contextBlock := buildContext(kept, s.defaults.ContextWords)

	if s.llm == nil {
		result.Answer = passthroughAnswer(contextBlock)
		logger.Info("State: %s (passthrough)", domain.QueryStateAnswered)
		return result, nil
	}

	logger.Info("State: %s, model=%s", domain.QueryStateGenerating, s.llm.ModelName())
	answer, err := s.llm.Generate(ctx, answerPrompt(query, contextBlock), driven.GenerateOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, s.failed("generate answer", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = passthroughAnswer(contextBlock)
	}
	result.Answer = answer

	logger.Info("State: %s", domain.QueryStateAnswered)
	return result, nil
}

// refine applies the optional language-model rewrite. Failures fall back
// to the raw query silently, marking the result degraded.
func (s *QueryService) refine(ctx context.Context, query string, opts domain.QueryOptions, result *domain.QueryResult) string {
	if !opts.Refine {
		return query
	}
	if s.llm == nil {
		logger.Debug("Refinement requested but no language model configured")
		result.Degraded = true
		return query
	}

	logger.Info("State: %s", domain.QueryStateRefining)
	refined, err := s.llm.RefineQuery(ctx, query)
	if err != nil {
		logger.Warn("Query refinement failed, using raw query: %v", err)
		result.Degraded = true
		return query
	}
	refined = strings.TrimSpace(refined)
	if refined == "" || refined == query {
		return query
	}

	logger.Debug("Refined query: %q", refined)
	result.RefinedQuery = refined
	return refined
}

// failed maps infrastructure errors to domain errors and logs the
// terminal state.
func (s *QueryService) failed(op string, err error) error {
	logger.Warn("State: %s, %s: %v", domain.QueryStateFailed, op, err)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, domain.ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// buildContext formats retrieved chunks as numbered source blocks under
// a word budget. Chunks arrive in descending similarity order, so the
// budget truncates the least relevant material first.
func buildContext(hits []driven.VectorHit, wordBudget int) string {
	var b strings.Builder
	remaining := wordBudget
	for i, hit := range hits {
		if remaining <= 0 {
			break
		}
		text := hit.Chunk.Text
		words := strings.Fields(text)
		if len(words) > remaining {
			text = strings.Join(words[:remaining], " ")
			remaining = 0
		} else {
			remaining -= len(words)
		}
		fmt.Fprintf(&b, "[Source %d] %s\n\n", i+1, text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// answerPrompt instructs the model to answer strictly from the provided
// sources, citing them by number.
func answerPrompt(query, contextBlock string) string {
	var b strings.Builder
	b.WriteString("You are a document assistant. Answer the question using ONLY the numbered sources below. ")
	b.WriteString("Cite sources as [Source N]. If the sources do not contain the answer, say so.\n\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// passthroughAnswer presents the retrieved passages directly when no
// language model is available.
func passthroughAnswer(contextBlock string) string {
	return "Most relevant passages:\n\n" + contextBlock
}

// citations converts hits into bounded citation records, preserving the
// descending similarity order.
func citations(hits []driven.VectorHit) []domain.SourceCitation {
	if len(hits) == 0 {
		return nil
	}
	out := make([]domain.SourceCitation, len(hits))
	for i, hit := range hits {
		out[i] = domain.SourceCitation{
			ChunkID:    hit.Chunk.ID,
			DocumentID: hit.Chunk.DocumentID,
			Excerpt:    excerpt(hit.Chunk.Text),
			Similarity: hit.Similarity,
			Metadata:   hit.Chunk.Metadata,
		}
	}
	return out
}

// excerpt bounds a chunk text for display, cutting on a rune boundary.
func excerpt(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= excerptLimit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit]) + "..."
}

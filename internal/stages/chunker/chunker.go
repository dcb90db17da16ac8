// Package chunker provides the final pipeline stage: overlapping,
// sentence-aware chunking of normalised text.
package chunker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure Stage implements the interface.
var _ driven.Stage = (*Stage)(nil)

// DefaultChunkSize is the default target chunk size in words.
const DefaultChunkSize = 400

// DefaultOverlap is the default inter-chunk overlap in words.
const DefaultOverlap = 50

// Stage splits text into overlapping chunks. Chunk boundaries land on
// sentence ends; each chunk after the first begins with exactly the
// last overlap words of its predecessor, so stripping that prefix and
// concatenating reproduces the original word sequence.
type Stage struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker stage.
type Option func(*Stage)

// WithChunkSize sets the target chunk size in words.
func WithChunkSize(size int) Option {
	return func(s *Stage) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(s *Stage) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a chunker stage with the given options.
func New(opts ...Option) *Stage {
	s := &Stage{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Overlap must stay strictly below the chunk size.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return "chunker"
}

// sentencePattern captures runs of text up to and including terminal
// punctuation, plus a trailing unterminated run.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// Process splits the artifact text into chunks. Empty content produces
// no chunks.
func (s *Stage) Process(_ context.Context, art *driven.Artifact) error {
	if strings.TrimSpace(art.Text) == "" {
		art.Chunks = nil
		return nil
	}

	sentences := splitSentences(art.Text)
	wordChunks := s.assemble(sentences)

	chunks := make([]domain.Chunk, len(wordChunks))
	for i, words := range wordChunks {
		chunks[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s:%d", art.DocumentID, i),
			DocumentID: art.DocumentID,
			Ordinal:    i,
			Text:       strings.Join(words, " "),
			WordCount:  len(words),
			Metadata:   copyMetadata(art.Metadata),
		}
	}

	logger.Debug("Chunker: %d sentences -> %d chunks (size=%d, overlap=%d)",
		len(sentences), len(chunks), s.chunkSize, s.overlap)
	art.Chunks = chunks
	return nil
}

func splitSentences(text string) [][]string {
	var sentences [][]string
	for _, raw := range sentencePattern.FindAllString(text, -1) {
		words := strings.Fields(raw)
		if len(words) > 0 {
			sentences = append(sentences, words)
		}
	}
	return sentences
}

// assemble packs sentences into word chunks. Each chunk holds at most
// chunkSize words including the overlap prefix, and every chunk with a
// successor holds at least overlap words; a sentence larger than the
// remaining fresh capacity is hard-split.
func (s *Stage) assemble(sentences [][]string) [][]string {
	var (
		chunks [][]string
		fresh  []string
	)

	freshBudget := func() int {
		if len(chunks) == 0 {
			return s.chunkSize
		}
		return s.chunkSize - s.overlap
	}

	emit := func() {
		if len(fresh) == 0 {
			return
		}
		var words []string
		if len(chunks) > 0 {
			prev := chunks[len(chunks)-1]
			words = append(words, overlapTail(prev, s.overlap)...)
		}
		words = append(words, fresh...)
		chunks = append(chunks, words)
		fresh = nil
	}

	for _, sentence := range sentences {
		if len(fresh)+len(sentence) <= freshBudget() {
			fresh = append(fresh, sentence...)
			continue
		}
		// A chunk shorter than the overlap cannot supply its
		// successor's full overlap prefix, so never emit one with
		// input remaining: top it up through the hard-split path.
		if len(fresh) >= s.overlap {
			emit()
			if len(sentence) <= freshBudget() {
				fresh = append(fresh, sentence...)
				continue
			}
		}
		// Oversized sentence: forced mid-sentence split.
		for len(sentence) > 0 {
			take := freshBudget() - len(fresh)
			if take > len(sentence) {
				take = len(sentence)
			}
			fresh = append(fresh, sentence[:take]...)
			sentence = sentence[take:]
			if len(sentence) > 0 {
				emit()
			}
		}
	}
	emit()

	return chunks
}

// overlapTail returns the last n words of the previous chunk. A short
// predecessor yields its full word list.
func overlapTail(words []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(words) <= n {
		tail := make([]string, len(words))
		copy(tail, words)
		return tail
	}
	tail := make([]string, n)
	copy(tail, words[len(words)-n:])
	return tail
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

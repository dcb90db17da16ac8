package stages

import (
	"github.com/docuflow-labs/docuflow/internal/stages/chunker"
	"github.com/docuflow-labs/docuflow/internal/stages/cleaner"
	"github.com/docuflow-labs/docuflow/internal/stages/metadata"
	"github.com/docuflow-labs/docuflow/internal/stages/normaliser"
)

// Options parameterises the default pipeline.
type Options struct {
	// ChunkSize is the target chunk size in words.
	ChunkSize int

	// ChunkOverlap is the inter-chunk overlap in words, strictly less
	// than ChunkSize.
	ChunkOverlap int

	// LowercaseProse lowercases general prose during normalisation
	// while preserving acronyms and proper nouns.
	LowercaseProse bool

	// SpellCorrect enables dictionary-based spelling correction.
	SpellCorrect bool
}

// Default builds the standard four-stage pipeline:
// clean -> normalise -> extract metadata -> chunk.
func Default(opts Options) *Pipeline {
	return NewPipeline(
		cleaner.New(cleaner.WithSpellCorrection(opts.SpellCorrect)),
		normaliser.New(normaliser.WithLowercaseProse(opts.LowercaseProse)),
		metadata.New(),
		chunker.New(
			chunker.WithChunkSize(opts.ChunkSize),
			chunker.WithOverlap(opts.ChunkOverlap),
		),
	)
}

package driven

import (
	"context"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

// Artifact is the mutable unit of work flowing through the normalisation
// pipeline. Stages transform Text in place, enrich Fields, and append
// Warnings when they degrade rather than abort.
type Artifact struct {
	// DocumentID identifies the document being processed.
	DocumentID string

	// Text is the working text, rewritten by each stage.
	Text string

	// Fields accumulates structured values across stages.
	Fields *domain.StructuredFields

	// Metadata is document-level metadata attached to every chunk.
	Metadata map[string]any

	// Chunks is populated by the chunking stage.
	Chunks []domain.Chunk

	// Warnings records per-stage degradation notes.
	Warnings []string
}

// Degrade records a stage-level partial failure without halting the
// pipeline.
func (a *Artifact) Degrade(note string) {
	a.Warnings = append(a.Warnings, note)
}

// Stage is one step of the text normalisation pipeline. Stages degrade
// gracefully: partial failure appends a warning and returns nil.
type Stage interface {
	// Name returns the stage name for logging and configuration.
	Name() string

	// Process transforms the artifact in place.
	Process(ctx context.Context, art *Artifact) error
}

// StagePipeline chains stages in a fixed order.
type StagePipeline interface {
	// Run processes the artifact through every stage in order.
	Run(ctx context.Context, art *Artifact) error
}

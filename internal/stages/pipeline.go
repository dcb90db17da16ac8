// Package stages provides the text normalisation pipeline run between
// OCR extraction and embedding: cleaning, normalisation, metadata
// extraction and chunking.
package stages

import (
	"context"
	"errors"
	"fmt"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.StagePipeline = (*Pipeline)(nil)

// Pipeline chains stages and runs them in order. A stage returning
// domain.ErrStageDegraded has its note recorded and the pipeline
// continues; any other error halts the run.
type Pipeline struct {
	stages []driven.Stage
}

// NewPipeline creates a pipeline with the given stages, executed in the
// order provided.
func NewPipeline(stages ...driven.Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run processes the artifact through every stage in order.
func (p *Pipeline) Run(ctx context.Context, art *driven.Artifact) error {
	if art == nil {
		return errors.New("artifact is nil")
	}

	for _, stage := range p.stages {
		err := stage.Process(ctx, art)
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrStageDegraded) {
			logger.Warn("Stage %s degraded: %v", stage.Name(), err)
			art.Degrade(fmt.Sprintf("stage %s: %v", stage.Name(), err))
			continue
		}
		return fmt.Errorf("stage %s: %w", stage.Name(), err)
	}

	return nil
}

// Len returns the number of stages in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

package stages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
)

// recordingStage appends its name to a shared log when run.
type recordingStage struct {
	name string
	log  *[]string
	err  error
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Process(_ context.Context, _ *driven.Artifact) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func TestRun_StagesExecuteInOrder(t *testing.T) {
	var log []string
	p := NewPipeline(
		&recordingStage{name: "first", log: &log},
		&recordingStage{name: "second", log: &log},
		&recordingStage{name: "third", log: &log},
	)

	err := p.Run(context.Background(), &driven.Artifact{DocumentID: "doc-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, log)
}

func TestRun_DegradedStageRecordsWarningAndContinues(t *testing.T) {
	var log []string
	p := NewPipeline(
		&recordingStage{name: "flaky", log: &log,
			err: fmt.Errorf("dictionary missing: %w", domain.ErrStageDegraded)},
		&recordingStage{name: "after", log: &log},
	)
	art := &driven.Artifact{DocumentID: "doc-1"}

	err := p.Run(context.Background(), art)
	require.NoError(t, err)

	assert.Equal(t, []string{"flaky", "after"}, log)
	require.Len(t, art.Warnings, 1)
	assert.Contains(t, art.Warnings[0], "flaky")
}

func TestRun_HardFailureHalts(t *testing.T) {
	var log []string
	p := NewPipeline(
		&recordingStage{name: "broken", log: &log, err: errors.New("boom")},
		&recordingStage{name: "never", log: &log},
	)

	err := p.Run(context.Background(), &driven.Artifact{DocumentID: "doc-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"broken"}, log)
}

func TestRun_NilArtifact(t *testing.T) {
	err := NewPipeline().Run(context.Background(), nil)

	assert.Error(t, err)
}

func TestDefault_FourStages(t *testing.T) {
	p := Default(Options{ChunkSize: 400, ChunkOverlap: 50})

	assert.Equal(t, 4, p.Len())
}

func TestDefault_EndToEnd(t *testing.T) {
	p := Default(Options{ChunkSize: 40, ChunkOverlap: 8, SpellCorrect: false})

	text := "PUBLIC WORKS DEPARTMENT monthly account. " +
		"Grand total Rs. 1,82,68,500.00 verified by Shri Ram Kumar on 05/04/2024. " +
		strings.Repeat("Further entries continue in the register. ", 12)
	art := &driven.Artifact{DocumentID: "doc-1", Text: text}

	err := p.Run(context.Background(), art)
	require.NoError(t, err)

	// Normalisation rewrote currency and date formats.
	assert.Contains(t, art.Text, "INR 18268500.00")
	assert.Contains(t, art.Text, "2024-04-05")

	// Metadata extraction picked up the officer and the date.
	require.NotNil(t, art.Fields)
	assert.Contains(t, art.Fields.OfficersMentioned, "Ram Kumar")
	assert.Contains(t, art.Fields.DatesFound, "2024-04-05")

	// Chunking produced overlapping chunks under the size cap.
	require.Greater(t, len(art.Chunks), 1)
	for _, c := range art.Chunks {
		assert.LessOrEqual(t, c.WordCount, 40)
		assert.Equal(t, "doc-1", c.DocumentID)
	}
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow-labs/docuflow/internal/adapters/driven/storage/memory"
	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/stages"
)

// closeTracker wraps a handle's Close to record teardown order.
type closeTracker struct {
	driven.ChunkStore
	name  string
	order *[]string
}

func (c *closeTracker) Close() error {
	*c.order = append(*c.order, c.name)
	return c.ChunkStore.Close()
}

func testRuntimeConfig(counters map[string]int) RuntimeConfig {
	return RuntimeConfig{
		Settings: domain.DefaultSettings(),
		OCR: func() (driven.OCREngine, error) {
			counters["ocr"]++
			return &mockOCR{result: storedExtraction("Total: 50000", 0.92)}, nil
		},
		Embedding: func() (driven.EmbeddingService, error) {
			counters["embedding"]++
			return &mockEmbedding{dims: 8}, nil
		},
		LLM: func() (driven.LLMService, error) {
			counters["llm"]++
			return nil, nil
		},
		ChunkStore: func() (driven.ChunkStore, error) {
			counters["store"]++
			return memory.NewChunkStore(), nil
		},
		Index: func(dimensions int, _ driven.ChunkStore) (driven.VectorIndex, error) {
			counters["index"] += dimensions
			return &mockIndex{}, nil
		},
		Pipeline: func() driven.StagePipeline {
			return stages.Default(stages.Options{ChunkSize: 400, ChunkOverlap: 50})
		},
	}
}

func TestRuntime_ConstructsEachHandleOnce(t *testing.T) {
	counters := map[string]int{}
	rt, err := NewRuntime(testRuntimeConfig(counters))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := rt.Embedding()
		require.NoError(t, err)
	}
	_, err = rt.OCR()
	require.NoError(t, err)
	_, err = rt.OCR()
	require.NoError(t, err)

	assert.Equal(t, 1, counters["embedding"])
	assert.Equal(t, 1, counters["ocr"])
	assert.Zero(t, counters["store"], "store must stay unconstructed until needed")
}

func TestRuntime_IndexDimensionFollowsEmbedding(t *testing.T) {
	counters := map[string]int{}
	rt, err := NewRuntime(testRuntimeConfig(counters))
	require.NoError(t, err)

	_, err = rt.Index()
	require.NoError(t, err)

	assert.Equal(t, 8, counters["index"])
	assert.Equal(t, 1, counters["embedding"], "index construction resolves the embedding service")
	assert.Equal(t, 1, counters["store"])
}

func TestRuntime_ServicesShareHandles(t *testing.T) {
	counters := map[string]int{}
	rt, err := NewRuntime(testRuntimeConfig(counters))
	require.NoError(t, err)

	ingest, err := rt.IngestService()
	require.NoError(t, err)
	query, err := rt.QueryService()
	require.NoError(t, err)

	require.NotNil(t, ingest)
	require.NotNil(t, query)
	assert.Equal(t, 1, counters["embedding"])
	assert.Equal(t, 1, counters["store"])
}

func TestRuntime_NilLLMIsNotAnError(t *testing.T) {
	counters := map[string]int{}
	rt, err := NewRuntime(testRuntimeConfig(counters))
	require.NoError(t, err)

	llm, err := rt.LLM()
	require.NoError(t, err)
	assert.Nil(t, llm)

	svc, err := rt.QueryService()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestRuntime_MissingFactoryRejected(t *testing.T) {
	cfg := testRuntimeConfig(map[string]int{})
	cfg.Embedding = nil

	_, err := NewRuntime(cfg)
	assert.Error(t, err)
}

func TestRuntime_CloseTearsDownInReverseOrder(t *testing.T) {
	var order []string
	cfg := testRuntimeConfig(map[string]int{})
	cfg.ChunkStore = func() (driven.ChunkStore, error) {
		return &closeTracker{ChunkStore: memory.NewChunkStore(), name: "store", order: &order}, nil
	}
	rt, err := NewRuntime(cfg)
	require.NoError(t, err)

	// Construction order: embedding, store, index.
	_, err = rt.Index()
	require.NoError(t, err)

	require.NoError(t, rt.Close())
	require.Contains(t, order, "store")
}

func TestRuntime_CloseWithoutConstructionIsSafe(t *testing.T) {
	rt, err := NewRuntime(testRuntimeConfig(map[string]int{}))
	require.NoError(t, err)

	assert.NoError(t, rt.Close())
}

func TestRuntime_Diagnose(t *testing.T) {
	rt, err := NewRuntime(testRuntimeConfig(map[string]int{}))
	require.NoError(t, err)

	report := rt.Diagnose(context.Background())

	assert.NoError(t, report["ocr"])
	assert.NoError(t, report["embedding"])
	assert.Error(t, report["llm"], "unconfigured model reports its absence")
}

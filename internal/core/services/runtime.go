package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// RuntimeConfig supplies the factories the runtime uses to construct
// heavy handles on first use. The wiring layer binds these to concrete
// adapters; the core never imports them.
type RuntimeConfig struct {
	// Settings is the resolved configuration.
	Settings domain.Settings

	// OCR constructs the extraction engine.
	OCR func() (driven.OCREngine, error)

	// Embedding constructs the embedding service.
	Embedding func() (driven.EmbeddingService, error)

	// LLM constructs the optional language model. Returning (nil, nil)
	// means no model is configured.
	LLM func() (driven.LLMService, error)

	// ChunkStore constructs the chunk metadata store.
	ChunkStore func() (driven.ChunkStore, error)

	// Index constructs the vector index for the given dimension,
	// hydrating payloads from the store.
	Index func(dimensions int, store driven.ChunkStore) (driven.VectorIndex, error)

	// Pipeline constructs the normalisation pipeline.
	Pipeline func() driven.StagePipeline
}

// Runtime owns the process-wide heavy handles: OCR engine, embedding
// service, language model, chunk store and vector index. Each is
// constructed lazily exactly once; concurrent first callers wait for the
// single construction. Close tears handles down in reverse construction
// order.
type Runtime struct {
	cfg RuntimeConfig

	ocrOnce sync.Once
	ocr     driven.OCREngine
	ocrErr  error

	embOnce sync.Once
	emb     driven.EmbeddingService
	embErr  error

	llmOnce sync.Once
	llm     driven.LLMService
	llmErr  error

	storeOnce sync.Once
	store     driven.ChunkStore
	storeErr  error

	indexOnce sync.Once
	index     driven.VectorIndex
	indexErr  error

	mu     sync.Mutex
	opened []func() error // close funcs, construction order
}

// NewRuntime creates a runtime. Nothing is constructed until first use.
func NewRuntime(cfg RuntimeConfig) (*Runtime, error) {
	switch {
	case cfg.OCR == nil:
		return nil, errors.New("runtime: OCR factory is required")
	case cfg.Embedding == nil:
		return nil, errors.New("runtime: embedding factory is required")
	case cfg.ChunkStore == nil:
		return nil, errors.New("runtime: chunk store factory is required")
	case cfg.Index == nil:
		return nil, errors.New("runtime: index factory is required")
	case cfg.Pipeline == nil:
		return nil, errors.New("runtime: pipeline factory is required")
	}
	if cfg.LLM == nil {
		cfg.LLM = func() (driven.LLMService, error) { return nil, nil }
	}
	return &Runtime{cfg: cfg}, nil
}

// Settings returns the resolved configuration.
func (r *Runtime) Settings() domain.Settings {
	return r.cfg.Settings
}

// OCR returns the extraction engine, constructing it on first call.
func (r *Runtime) OCR() (driven.OCREngine, error) {
	r.ocrOnce.Do(func() {
		r.ocr, r.ocrErr = r.cfg.OCR()
		if r.ocrErr == nil {
			logger.Debug("OCR engine ready: %s", r.ocr.Name())
			r.track(r.ocr.Close)
		}
	})
	return r.ocr, r.ocrErr
}

// Embedding returns the shared embedding service, constructing it on
// first call. Ingestion and queries share one instance so the vector
// space stays consistent.
func (r *Runtime) Embedding() (driven.EmbeddingService, error) {
	r.embOnce.Do(func() {
		r.emb, r.embErr = r.cfg.Embedding()
		if r.embErr == nil {
			logger.Debug("Embedding service ready: %s (%d dimensions)",
				r.emb.ModelName(), r.emb.Dimensions())
			r.track(r.emb.Close)
		}
	})
	return r.emb, r.embErr
}

// LLM returns the optional language model. (nil, nil) means none is
// configured; callers degrade accordingly.
func (r *Runtime) LLM() (driven.LLMService, error) {
	r.llmOnce.Do(func() {
		r.llm, r.llmErr = r.cfg.LLM()
		if r.llmErr == nil && r.llm != nil {
			logger.Debug("Language model ready: %s", r.llm.ModelName())
			r.track(r.llm.Close)
		}
	})
	return r.llm, r.llmErr
}

// ChunkStore returns the chunk store, constructing it on first call.
func (r *Runtime) ChunkStore() (driven.ChunkStore, error) {
	r.storeOnce.Do(func() {
		r.store, r.storeErr = r.cfg.ChunkStore()
		if r.storeErr == nil {
			r.track(r.store.Close)
		}
	})
	return r.store, r.storeErr
}

// Index returns the vector index, constructing it on first call. The
// index dimension is taken from the embedding service so the two can
// never disagree.
func (r *Runtime) Index() (driven.VectorIndex, error) {
	r.indexOnce.Do(func() {
		emb, err := r.Embedding()
		if err != nil {
			r.indexErr = fmt.Errorf("index requires embedding service: %w", err)
			return
		}
		store, err := r.ChunkStore()
		if err != nil {
			r.indexErr = fmt.Errorf("index requires chunk store: %w", err)
			return
		}
		r.index, r.indexErr = r.cfg.Index(emb.Dimensions(), store)
		if r.indexErr == nil {
			r.track(r.index.Close)
		}
	})
	return r.index, r.indexErr
}

// IngestService wires an ingest service from the runtime's handles.
func (r *Runtime) IngestService() (*IngestService, error) {
	ocr, err := r.OCR()
	if err != nil {
		return nil, err
	}
	emb, err := r.Embedding()
	if err != nil {
		return nil, err
	}
	index, err := r.Index()
	if err != nil {
		return nil, err
	}
	store, err := r.ChunkStore()
	if err != nil {
		return nil, err
	}
	return NewIngestService(
		ocr,
		r.cfg.Pipeline(),
		emb,
		index,
		store,
		r.cfg.Settings.Thresholds,
		r.cfg.Settings.Pipeline.Workers,
	), nil
}

// QueryService wires a query service from the runtime's handles.
func (r *Runtime) QueryService() (*QueryService, error) {
	emb, err := r.Embedding()
	if err != nil {
		return nil, err
	}
	index, err := r.Index()
	if err != nil {
		return nil, err
	}
	llm, err := r.LLM()
	if err != nil {
		return nil, err
	}
	return NewQueryService(emb, index, llm, r.cfg.Settings.Query), nil
}

// Diagnose pings every constructed or constructible backend and reports
// per-component status. Used by the status command; failures here never
// gate operation.
func (r *Runtime) Diagnose(ctx context.Context) map[string]error {
	report := make(map[string]error, 3)

	if ocr, err := r.OCR(); err != nil {
		report["ocr"] = err
	} else {
		report["ocr"] = ocr.Available(ctx)
	}

	if emb, err := r.Embedding(); err != nil {
		report["embedding"] = err
	} else {
		report["embedding"] = emb.Ping(ctx)
	}

	llm, err := r.LLM()
	switch {
	case err != nil:
		report["llm"] = err
	case llm == nil:
		report["llm"] = errors.New("not configured")
	default:
		report["llm"] = llm.Ping(ctx)
	}

	return report
}

// Close tears down every constructed handle in reverse construction
// order. Safe to call when nothing was constructed.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.opened) - 1; i >= 0; i-- {
		if err := r.opened[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.opened = nil
	return errors.Join(errs...)
}

func (r *Runtime) track(closeFn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, closeFn)
}

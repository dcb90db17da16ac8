package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driving"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultWorkers bounds batch ingestion parallelism.
const DefaultWorkers = 4

// IngestService runs documents through the full pipeline: extraction,
// validation, normalisation, chunking, embedding and indexing. Stages
// within one document run sequentially; documents in a batch run in
// parallel up to the worker limit.
type IngestService struct {
	ocr        driven.OCREngine
	pipeline   driven.StagePipeline
	embedding  driven.EmbeddingService
	index      driven.VectorIndex
	store      driven.ChunkStore
	thresholds domain.Thresholds
	workers    int
}

// NewIngestService creates an ingest service. workers <= 0 selects
// DefaultWorkers.
func NewIngestService(
	ocr driven.OCREngine,
	pipeline driven.StagePipeline,
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	store driven.ChunkStore,
	thresholds domain.Thresholds,
	workers int,
) *IngestService {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &IngestService{
		ocr:        ocr,
		pipeline:   pipeline,
		embedding:  embedding,
		index:      index,
		store:      store,
		thresholds: thresholds,
		workers:    workers,
	}
}

// Ingest runs one document through the pipeline. A "reject" or "review"
// verdict is a legitimate outcome reported in the receipt, not an error;
// only infrastructure failures return one.
func (s *IngestService) Ingest(ctx context.Context, doc *domain.SourceDocument) (*domain.IngestReceipt, error) {
	if doc == nil {
		return nil, errors.New("ingest: document is nil")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	logger.Section("Ingest %s", doc.ID)
	logger.Info("Document: %q (%d pages)", doc.Filename, len(doc.Pages))

	extraction, err := s.ocr.Extract(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", doc.ID, err)
	}

	verdict := Validate(extraction, s.thresholds)
	receipt := &domain.IngestReceipt{
		DocumentID: doc.ID,
		Extraction: extraction,
		Verdict:    verdict,
		Warnings:   append([]string(nil), verdict.Warnings...),
	}

	if verdict.Recommendation != domain.RecommendStore {
		logger.Info("Document %s not stored: verdict=%s", doc.ID, verdict.Recommendation)
		return receipt, nil
	}

	// Reprocessing replaces derived artifacts wholesale; stale chunks
	// must not survive alongside the new set.
	if removed, err := s.removePrior(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", doc.ID, err)
	} else if removed > 0 {
		logger.Info("Replaced %d existing chunks for document %s", removed, doc.ID)
	}

	art := &driven.Artifact{
		DocumentID: doc.ID,
		Text:       extraction.Text,
		Fields:     &extraction.Fields,
		Metadata:   s.documentMetadata(doc, extraction),
	}
	if err := s.pipeline.Run(ctx, art); err != nil {
		return nil, fmt.Errorf("ingest %s: pipeline: %w", doc.ID, err)
	}
	receipt.Warnings = append(receipt.Warnings, art.Warnings...)

	if len(art.Chunks) == 0 {
		logger.Warn("Document %s produced no chunks", doc.ID)
		return receipt, nil
	}

	// Structured fields land on every chunk so retrieval can cite them
	// without a second lookup.
	fieldMeta := art.Fields.Map()
	texts := make([]string, len(art.Chunks))
	for i := range art.Chunks {
		texts[i] = art.Chunks[i].Text
		if art.Chunks[i].Metadata == nil {
			art.Chunks[i].Metadata = make(map[string]any, len(fieldMeta))
		}
		for k, v := range fieldMeta {
			art.Chunks[i].Metadata[k] = v
		}
	}

	embeddings, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: embed: %w", doc.ID, err)
	}
	if len(embeddings) != len(art.Chunks) {
		return nil, fmt.Errorf("ingest %s: embed returned %d vectors for %d chunks",
			doc.ID, len(embeddings), len(art.Chunks))
	}

	if err := s.store.SaveChunks(ctx, art.Chunks); err != nil {
		return nil, fmt.Errorf("ingest %s: store chunks: %w", doc.ID, err)
	}
	for i := range art.Chunks {
		if err := s.index.Add(ctx, art.Chunks[i], embeddings[i]); err != nil {
			return nil, fmt.Errorf("ingest %s: index chunk %s: %w", doc.ID, art.Chunks[i].ID, err)
		}
	}
	if err := s.index.Save(); err != nil {
		return nil, fmt.Errorf("ingest %s: persist index: %w", doc.ID, err)
	}

	receipt.ChunksStored = len(art.Chunks)
	receipt.EmbeddingsStored = len(embeddings)
	logger.Info("Document %s stored: %d chunks, %d embeddings",
		doc.ID, receipt.ChunksStored, receipt.EmbeddingsStored)
	return receipt, nil
}

// IngestAll ingests documents concurrently up to the worker limit.
// Receipts are positional: receipts[i] belongs to docs[i] and is nil
// when that document failed. Per-document failures are joined into the
// returned error; one failure never stops the batch.
func (s *IngestService) IngestAll(ctx context.Context, docs []*domain.SourceDocument) ([]*domain.IngestReceipt, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	logger.Section("Batch ingest: %d documents, %d workers", len(docs), s.workers)

	receipts := make([]*domain.IngestReceipt, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, doc := range docs {
		g.Go(func() error {
			receipt, err := s.Ingest(gctx, doc)
			if err != nil {
				logger.Warn("Batch document %d failed: %v", i, err)
				errs[i] = err
				return nil
			}
			receipts[i] = receipt
			return nil
		})
	}
	_ = g.Wait()

	return receipts, errors.Join(errs...)
}

// Delete removes a document's chunks from the index and store. Returns
// the number of indexed chunks removed.
func (s *IngestService) Delete(ctx context.Context, documentID string) (int, error) {
	removed, err := s.removePrior(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", documentID, err)
	}
	if removed > 0 {
		if err := s.index.Save(); err != nil {
			return removed, fmt.Errorf("delete %s: persist index: %w", documentID, err)
		}
	}
	logger.Info("Deleted document %s: %d chunks removed", documentID, removed)
	return removed, nil
}

// Stats reports corpus totals.
func (s *IngestService) Stats(ctx context.Context) (domain.IndexStats, error) {
	return s.index.Stats(ctx)
}

func (s *IngestService) removePrior(ctx context.Context, documentID string) (int, error) {
	removed, err := s.index.DeleteDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("remove from index: %w", err)
	}
	if _, err := s.store.DeleteByDocument(ctx, documentID); err != nil {
		return removed, fmt.Errorf("remove from store: %w", err)
	}
	return removed, nil
}

// documentMetadata merges caller-supplied metadata with provenance the
// pipeline attaches to every chunk.
func (s *IngestService) documentMetadata(doc *domain.SourceDocument, extraction *domain.ExtractionResult) map[string]any {
	meta := make(map[string]any, len(doc.Metadata)+4)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	if doc.Filename != "" {
		meta["filename"] = doc.Filename
	}
	meta["ocr_engine"] = extraction.Engine
	meta["ocr_confidence"] = extraction.Confidence
	meta["page_count"] = extraction.PageCount
	return meta
}

package domain

import "time"

// SourceDocument is a scanned document submitted for ingestion.
// It is immutable once ingested; reprocessing regenerates derived
// artifacts (chunks, embeddings) but never mutates the source.
type SourceDocument struct {
	// ID is the opaque document identifier assigned by the caller.
	ID string

	// Filename is the original filename, kept for display and metadata.
	Filename string

	// Pages holds the raw page images (or a single PDF) as byte slices.
	Pages [][]byte

	// Metadata contains caller-supplied key-value pairs.
	Metadata map[string]any

	// IngestedAt is when the document entered the pipeline.
	IngestedAt time.Time
}

// PageResult holds per-page OCR output.
type PageResult struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted text for this page.
	Text string

	// Confidence is the page-level OCR confidence in [0,1].
	Confidence float64

	// WordCount is the number of whitespace-separated tokens on the page.
	WordCount int
}

// ExtractionResult is the normalised output contract of every OCR engine.
// Confidence values are always rescaled to [0,1] regardless of the
// backend's native scale.
type ExtractionResult struct {
	// Engine identifies the backend that produced this result.
	Engine string

	// Text is the concatenated text of all pages.
	Text string

	// Confidence is the document-level confidence in [0,1].
	Confidence float64

	// Pages holds per-page results in order.
	Pages []PageResult

	// PageCount is the number of pages processed.
	PageCount int

	// WordCount is the token count of Text.
	WordCount int

	// Fields holds structured values extracted beyond the raw text.
	Fields StructuredFields
}

// Chunk is a contiguous span of normalised text, the unit of embedding
// and retrieval. Each chunk belongs to exactly one document at one ordinal.
type Chunk struct {
	// ID is the stable chunk identifier ("<documentID>:<ordinal>").
	ID string

	// DocumentID links to the owning document.
	DocumentID string

	// Ordinal is the 0-based position within the document.
	Ordinal int

	// Text is the chunk content.
	Text string

	// WordCount is the token count of Text.
	WordCount int

	// Metadata carries document-level metadata attached at chunking time.
	Metadata map[string]any
}

// IndexStats summarises the stored corpus.
type IndexStats struct {
	// Chunks is the total number of indexed chunks.
	Chunks int

	// Documents is the number of distinct documents in the index.
	Documents int

	// Dimensions is the configured embedding dimension.
	Dimensions int
}

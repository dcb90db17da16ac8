package domain

import "errors"

// Domain errors represent pipeline failures with a remediation choice.
// These are distinct from infrastructure errors.
var (
	// ErrEngineUnavailable indicates an OCR, embedding or generation
	// backend is missing or unreachable. It fails the current request
	// only, never the process.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrExtractionFailed indicates the OCR backend produced no usable
	// output for the document.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrValidationRejected indicates the validation gate rejected the
	// extraction. This is a legitimate terminal verdict, not a fault.
	ErrValidationRejected = errors.New("validation rejected")

	// ErrStageDegraded indicates a normalisation stage partially failed.
	// Text passes through with a recorded warning; the pipeline continues.
	ErrStageDegraded = errors.New("stage degraded")

	// ErrIndexCorrupt indicates the persisted vector index is unreadable.
	// Fatal for that index; it must be rebuilt from the chunk store.
	ErrIndexCorrupt = errors.New("vector index corrupt")

	// ErrTimeout indicates retrieval or generation exceeded its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDimensionMismatch indicates a vector's dimension disagrees with
	// the index's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

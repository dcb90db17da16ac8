// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

// OCREngine extracts text from scanned documents behind one normalised
// output contract. The backend is chosen once at startup by configuration;
// switching backend never changes the contract.
//
// Implementations must not fail at construction when the underlying engine
// or binary is missing; unavailability surfaces from Extract or Available.
type OCREngine interface {
	// Extract runs OCR over the document's pages and returns a
	// normalised result. Confidence is always rescaled to [0,1]
	// regardless of the backend's native scale.
	Extract(ctx context.Context, doc *domain.SourceDocument) (*domain.ExtractionResult, error)

	// Name returns the engine identifier ("tesseract", "remote").
	Name() string

	// Available reports whether the backend can currently serve
	// extractions. Used for startup diagnostics, not gating.
	Available(ctx context.Context) error

	// Close releases resources.
	Close() error
}

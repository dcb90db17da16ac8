// Package ocr provides factory functions for creating OCR engine
// adapters.
package ocr

import (
	"fmt"

	"github.com/docuflow-labs/docuflow/internal/adapters/driven/ocr/remote"
	"github.com/docuflow-labs/docuflow/internal/adapters/driven/ocr/tesseract"
	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
)

// CreateEngine creates the OCR engine selected by configuration. The
// backend is fixed for the process lifetime; a missing binary or key
// surfaces from Extract and Available, never from here.
func CreateEngine(settings domain.OCRSettings) (driven.OCREngine, error) {
	switch settings.Engine {
	case domain.OCREngineTesseract, "":
		return tesseract.NewEngine(tesseract.Config{
			Binary:   settings.Binary,
			Language: settings.Language,
		}), nil

	case domain.OCREngineRemote:
		return remote.NewEngine(remote.Config{
			BaseURL:   settings.BaseURL,
			APIKey:    settings.APIKey,
			RateLimit: settings.RateLimit,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", settings.Engine)
	}
}

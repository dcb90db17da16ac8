// Package tesseract provides an OCR engine adapter backed by the
// tesseract binary.
package tesseract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docuflow-labs/docuflow/internal/adapters/driven/ocr/fields"
	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Default configuration values.
const (
	DefaultBinary   = "tesseract"
	DefaultLanguage = "eng"
	DefaultPSM      = 6 // assume a single uniform block of text
)

// Word-level noise filter: short non-alphanumeric fragments below this
// native confidence are squiggles, not text.
const noiseConfidenceCutoff = 15

// Config holds configuration for the tesseract engine.
type Config struct {
	// Binary is the tesseract executable name or path (default: tesseract).
	Binary string

	// Language is the OCR language code (default: eng).
	Language string

	// PSM is the tesseract page segmentation mode (default: 6).
	PSM int
}

// Engine runs the tesseract binary over page images and aggregates
// word-level confidence from its TSV output. The binary is resolved at
// extraction time, never at construction, so a missing installation
// surfaces as an extraction error instead of a startup crash.
type Engine struct {
	binary   string
	language string
	psm      int
}

// NewEngine creates a tesseract engine.
func NewEngine(cfg Config) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.PSM == 0 {
		cfg.PSM = DefaultPSM
	}
	return &Engine{
		binary:   cfg.Binary,
		language: cfg.Language,
		psm:      cfg.PSM,
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "tesseract"
}

// Available checks that the tesseract binary is on PATH and responds.
func (e *Engine) Available(ctx context.Context) error {
	path, err := exec.LookPath(e.binary)
	if err != nil {
		return fmt.Errorf("%w: %s not found in PATH", domain.ErrEngineUnavailable, e.binary)
	}
	if err := exec.CommandContext(ctx, path, "--version").Run(); err != nil {
		return fmt.Errorf("%w: %s --version failed: %v", domain.ErrEngineUnavailable, e.binary, err)
	}
	return nil
}

// Extract runs OCR over every page and returns the aggregated result.
// Native word confidences (0-100) are rescaled to [0,1].
func (e *Engine) Extract(ctx context.Context, doc *domain.SourceDocument) (*domain.ExtractionResult, error) {
	if _, err := exec.LookPath(e.binary); err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", domain.ErrEngineUnavailable, e.binary)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: document %s has no pages", domain.ErrExtractionFailed, doc.ID)
	}

	tmpDir, err := os.MkdirTemp("", "docuflow-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var (
		texts      []string
		pages      []domain.PageResult
		confSum    float64
		totalWords int
	)
	for i, image := range doc.Pages {
		page, err := e.extractPage(ctx, tmpDir, i+1, image)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrExtractionFailed, i+1, err)
		}
		pages = append(pages, page)
		texts = append(texts, page.Text)
		confSum += page.Confidence * float64(page.WordCount)
		totalWords += page.WordCount

		logger.Debug("Tesseract: page %d/%d, %d words, confidence %.2f",
			i+1, len(doc.Pages), page.WordCount, page.Confidence)
	}

	confidence := 0.0
	if totalWords > 0 {
		confidence = confSum / float64(totalWords)
	}
	text := strings.Join(texts, "\n\n")

	return &domain.ExtractionResult{
		Engine:     e.Name(),
		Text:       text,
		Confidence: confidence,
		Pages:      pages,
		PageCount:  len(pages),
		WordCount:  totalWords,
		Fields:     fields.Extract(text),
	}, nil
}

// extractPage writes one page image to disk and runs tesseract in TSV
// mode for word-level confidence.
func (e *Engine) extractPage(ctx context.Context, tmpDir string, number int, image []byte) (domain.PageResult, error) {
	input := filepath.Join(tmpDir, fmt.Sprintf("page-%d%s", number, imageExt(image)))
	if err := os.WriteFile(input, image, 0o600); err != nil {
		return domain.PageResult{}, fmt.Errorf("write page image: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.binary, input, "stdout",
		"-l", e.language,
		"--psm", strconv.Itoa(e.psm),
		"tsv",
	)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return domain.PageResult{}, fmt.Errorf("tesseract: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return domain.PageResult{}, fmt.Errorf("tesseract: %w", err)
	}

	return parseTSV(number, string(out)), nil
}

// TSV column indices from tesseract's fixed 12-column output.
const (
	tsvColLineNum = 4
	tsvColConf    = 10
	tsvColText    = 11
	tsvColumns    = 12
)

// parseTSV aggregates tesseract TSV rows into a page result. Rows with
// confidence -1 are layout markers, not words.
func parseTSV(number int, tsv string) domain.PageResult {
	var (
		lines    []string
		line     []string
		lastLine = -1
		confSum  float64
		words    int
	)
	flushLine := func() {
		if len(line) > 0 {
			lines = append(lines, strings.Join(line, " "))
			line = nil
		}
	}

	rows := strings.Split(tsv, "\n")
	for i, row := range rows {
		if i == 0 { // header
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvColumns {
			continue
		}
		conf, err := strconv.ParseFloat(cols[tsvColConf], 64)
		if err != nil || conf < 0 {
			continue
		}
		word := strings.TrimSpace(cols[tsvColText])
		if word == "" {
			continue
		}
		if conf < noiseConfidenceCutoff && len(word) <= 2 && !hasAlnum(word) {
			continue
		}

		lineNum, _ := strconv.Atoi(cols[tsvColLineNum])
		if lineNum != lastLine {
			flushLine()
			lastLine = lineNum
		}
		line = append(line, word)
		confSum += conf
		words++
	}
	flushLine()

	confidence := 0.0
	if words > 0 {
		confidence = confSum / float64(words) / 100.0
	}
	return domain.PageResult{
		Number:     number,
		Text:       strings.Join(lines, "\n"),
		Confidence: confidence,
		WordCount:  words,
	}
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// imageExt sniffs the page image format so tesseract picks it up from
// the filename. PNG and TIFF magic bytes are recognised, everything
// else is treated as JPEG.
func imageExt(image []byte) string {
	switch {
	case len(image) >= 4 && string(image[:4]) == "\x89PNG":
		return ".png"
	case len(image) >= 2 && (string(image[:2]) == "II" || string(image[:2]) == "MM"):
		return ".tiff"
	default:
		return ".jpg"
	}
}

// Close releases resources.
func (e *Engine) Close() error {
	return nil
}

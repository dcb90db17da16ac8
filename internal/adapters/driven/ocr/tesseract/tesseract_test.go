package tesseract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tsvHeader = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"

func tsvRow(lineNum int, conf float64, text string) string {
	return fmt.Sprintf("5\t1\t1\t1\t%d\t1\t0\t0\t10\t10\t%.2f\t%s", lineNum, conf, text)
}

func TestParseTSV_AveragesWordConfidence(t *testing.T) {
	tsv := strings.Join([]string{
		tsvHeader,
		tsvRow(1, 90, "GRAND"),
		tsvRow(1, 80, "TOTAL"),
		tsvRow(2, 70, "45,00,000.00"),
	}, "\n")

	page := parseTSV(1, tsv)

	assert.Equal(t, 1, page.Number)
	assert.Equal(t, "GRAND TOTAL\n45,00,000.00", page.Text)
	assert.Equal(t, 3, page.WordCount)
	assert.InDelta(t, 0.80, page.Confidence, 1e-9)
}

func TestParseTSV_SkipsLayoutRows(t *testing.T) {
	tsv := strings.Join([]string{
		tsvHeader,
		"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t",
		tsvRow(1, 95, "Expenditure"),
	}, "\n")

	page := parseTSV(1, tsv)

	assert.Equal(t, "Expenditure", page.Text)
	assert.Equal(t, 1, page.WordCount)
	assert.InDelta(t, 0.95, page.Confidence, 1e-9)
}

func TestParseTSV_FiltersNoiseFragments(t *testing.T) {
	tsv := strings.Join([]string{
		tsvHeader,
		tsvRow(1, 5, "~^"),
		tsvRow(1, 5, "ab"), // low confidence but alphanumeric, kept
		tsvRow(1, 92, "Division"),
	}, "\n")

	page := parseTSV(1, tsv)

	assert.Equal(t, "ab Division", page.Text)
	assert.Equal(t, 2, page.WordCount)
}

func TestParseTSV_EmptyOutput(t *testing.T) {
	page := parseTSV(3, tsvHeader+"\n")

	assert.Equal(t, 3, page.Number)
	assert.Empty(t, page.Text)
	assert.Zero(t, page.WordCount)
	assert.Zero(t, page.Confidence)
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(Config{})

	assert.Equal(t, "tesseract", e.Name())
	assert.Equal(t, DefaultLanguage, e.language)
	assert.Equal(t, DefaultPSM, e.psm)
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, ".png", imageExt([]byte("\x89PNG\r\n")))
	assert.Equal(t, ".tiff", imageExt([]byte("II*\x00")))
	assert.Equal(t, ".jpg", imageExt([]byte{0xFF, 0xD8, 0xFF}))
}

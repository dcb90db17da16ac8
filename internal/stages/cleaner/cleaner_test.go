package cleaner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
)

func clean(t *testing.T, stage *Stage, text string) string {
	t.Helper()
	art := &driven.Artifact{DocumentID: "doc-1", Text: text}
	require.NoError(t, stage.Process(context.Background(), art))
	return art.Text
}

func TestProcess_EmptyTextUntouched(t *testing.T) {
	s := New(WithSpellCorrection(false))

	assert.Equal(t, "   ", clean(t, s, "   "))
}

func TestProcess_InvisibleCharsStripped(t *testing.T) {
	s := New(WithSpellCorrection(false))

	assert.Equal(t, "Total 500", clean(t, s, "\uFEFFTo​tal‍ 5‌00"))
}

func TestProcess_DigitConfusions(t *testing.T) {
	s := New(WithSpellCorrection(false))

	tests := []struct {
		input string
		want  string
	}{
		{"total 1O5 units", "total 105 units"},
		{"code 4l7 issued", "code 417 issued"},
		{"account O123456", "account 0123456"},
		{"amount 1 . 50 paid", "amount 1.50 paid"},
		{"sum 1 , 500 noted", "sum 1,500 noted"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clean(t, s, tt.input), "input %q", tt.input)
	}
}

func TestProcess_ValidWordsWithOAndLKept(t *testing.T) {
	s := New(WithSpellCorrection(false))

	// "O" and "l" outside digit context are legitimate letters.
	assert.Equal(t, "Only the lot", clean(t, s, "Only the lot"))
}

func TestProcess_HyphenWrapRejoined(t *testing.T) {
	s := New(WithSpellCorrection(false))

	assert.Equal(t, "the payment was made", clean(t, s, "the pay-\nment was made"))
}

func TestProcess_SoftWrapMerged(t *testing.T) {
	s := New(WithSpellCorrection(false))

	assert.Equal(t, "carried over the line", clean(t, s, "carried over\nthe line"))
}

func TestProcess_GarbageLinesDropped(t *testing.T) {
	s := New(WithSpellCorrection(false))

	got := clean(t, s, "Opening balance 500\n----- | ----- | -----\nClosing balance 700")

	assert.NotContains(t, got, "-----")
	assert.Contains(t, got, "Opening balance 500")
	assert.Contains(t, got, "Closing balance 700")
}

func TestProcess_DuplicateLinesDropped(t *testing.T) {
	s := New(WithSpellCorrection(false))

	got := clean(t, s, "PUBLIC WORKS DEPARTMENT\nTotal 500\nPUBLIC WORKS DEPARTMENT")

	assert.Equal(t, "PUBLIC WORKS DEPARTMENT\nTotal 500", got)
}

func TestProcess_WhitespaceCollapsed(t *testing.T) {
	s := New(WithSpellCorrection(false))

	assert.Equal(t, "spaced out words", clean(t, s, "  spaced   out\t\twords  "))
}

func TestProcess_SpellCorrection(t *testing.T) {
	s := New(WithVocabulary([]string{"payment", "account", "balance", "total"}))

	got := clean(t, s, "the paymnet and acount balance")

	assert.Contains(t, got, "payment")
	assert.Contains(t, got, "account")
}

func TestProcess_SpellCorrectionKeepsCase(t *testing.T) {
	s := New(WithVocabulary([]string{"payment", "department"}))

	got := clean(t, s, "Paymnet to the DEPRTMENT")

	assert.Contains(t, got, "Payment")
	assert.Contains(t, got, "DEPARTMENT")
}

func TestProcess_SpellCorrectionSkipsKnownAndNumericTokens(t *testing.T) {
	s := New(WithVocabulary([]string{"payment"}))

	got := clean(t, s, "payment 8002004003 PW/516")

	assert.Equal(t, "payment 8002004003 PW/516", got)
}

func TestProcess_SpellCorrectionDisabled(t *testing.T) {
	s := New(WithSpellCorrection(false), WithVocabulary([]string{"payment"}))

	assert.Equal(t, "paymnet due", clean(t, s, "paymnet due"))
}

func TestEmbeddedVocabulary_NotEmpty(t *testing.T) {
	words := embeddedVocabulary()

	assert.NotEmpty(t, words)
	assert.Contains(t, words, "account")
}

func TestName(t *testing.T) {
	assert.Equal(t, "cleaner", New().Name())
}

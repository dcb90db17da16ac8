// Package cleaner provides the first pipeline stage: OCR noise removal,
// line-wrap repair and dictionary-based spelling correction.
package cleaner

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"

	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure Stage implements the interface.
var _ driven.Stage = (*Stage)(nil)

// minSuggestionSimilarity is the similarity floor for accepting a
// dictionary suggestion for an out-of-vocabulary token.
const minSuggestionSimilarity = 0.7

// Stage removes OCR noise and repairs common recognition errors.
type Stage struct {
	spellCorrect bool
	vocab        []string
	vocabSet     map[string]struct{}
}

// Option configures the cleaner stage.
type Option func(*Stage)

// WithSpellCorrection enables or disables dictionary-based correction.
func WithSpellCorrection(enabled bool) Option {
	return func(s *Stage) {
		s.spellCorrect = enabled
	}
}

// WithVocabulary replaces the embedded dictionary. Useful for tests.
func WithVocabulary(words []string) Option {
	return func(s *Stage) {
		s.setVocab(words)
	}
}

// New creates a cleaner stage with the embedded dictionary.
func New(opts ...Option) *Stage {
	s := &Stage{spellCorrect: true}
	s.setVocab(embeddedVocabulary())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stage) setVocab(words []string) {
	s.vocab = words
	s.vocabSet = make(map[string]struct{}, len(words))
	for _, w := range words {
		s.vocabSet[strings.ToLower(w)] = struct{}{}
	}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return "cleaner"
}

// Process cleans the artifact text in place. Cleaning never aborts the
// pipeline; a correction pass that fails on a token leaves the token as
// it was.
func (s *Stage) Process(_ context.Context, art *driven.Artifact) error {
	text := art.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}

	original := len(text)

	text = stripInvisible(text)
	text = fixConfusions(text)
	text = repairLineWraps(text)
	text = dropGarbageLines(text)
	text = dedupeLines(text)
	if s.spellCorrect {
		text = s.correctSpelling(text)
	}
	text = normaliseWhitespace(text)

	logger.Debug("Cleaner: %d -> %d chars", original, len(text))
	art.Text = text
	return nil
}

var (
	invisibleChars = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}]`)
	noiseTokens    = regexp.MustCompile(`\s+[~^|\\]+\s+`)

	// Digit-context confusions only; "O" and "l" are valid letters
	// everywhere else.
	oBetweenDigits = regexp.MustCompile(`(\d)O(\d)`)
	lBetweenDigits = regexp.MustCompile(`(\d)l(\d)`)
	leadingO       = regexp.MustCompile(`\bO(\d{3,})\b`)

	spacedDecimal  = regexp.MustCompile(`(\d) \. (\d)`)
	spacedGrouping = regexp.MustCompile(`(\d) , (\d{3})`)

	hyphenWrap = regexp.MustCompile(`([a-z])-\n([a-z])`)
	softWrap   = regexp.MustCompile(`([a-z,])\n([a-z])`)

	multiSpace   = regexp.MustCompile(`[ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

func stripInvisible(text string) string {
	text = invisibleChars.ReplaceAllString(text, "")
	text = noiseTokens.ReplaceAllString(text, " ")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fixConfusions repairs character-level OCR confusions using context so
// legitimate words are never touched.
func fixConfusions(text string) string {
	text = oBetweenDigits.ReplaceAllString(text, "${1}0${2}")
	text = lBetweenDigits.ReplaceAllString(text, "${1}1${2}")
	text = leadingO.ReplaceAllString(text, "0$1")
	text = spacedDecimal.ReplaceAllString(text, "$1.$2")
	text = spacedGrouping.ReplaceAllString(text, "$1,$2")
	return text
}

// repairLineWraps rejoins words hyphenated across line breaks and merges
// soft-wrapped lowercase continuations.
func repairLineWraps(text string) string {
	text = hyphenWrap.ReplaceAllString(text, "$1$2")
	text = softWrap.ReplaceAllString(text, "$1 $2")
	return text
}

// dropGarbageLines removes lines with under 15% alphanumeric content,
// which in practice are table rules and scanner artefacts.
func dropGarbageLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kept = append(kept, line)
			continue
		}
		alnum := 0
		for _, r := range trimmed {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				alnum++
			}
		}
		if float64(alnum)/float64(len([]rune(trimmed))) >= 0.15 {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func dedupeLines(text string) string {
	lines := strings.Split(text, "\n")
	seen := make(map[string]struct{}, len(lines))
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kept = append(kept, line)
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// correctSpelling replaces out-of-vocabulary alphabetic tokens with the
// dictionary's best suggestion. The suggestion is accepted whenever it
// differs from the original token; no edit-distance bound is assumed
// from the backend beyond the similarity floor.
func (s *Stage) correctSpelling(text string) string {
	lines := strings.Split(text, "\n")
	changed := 0
	for li, line := range lines {
		fields := strings.Fields(line)
		lineChanged := false
		for i, tok := range fields {
			core := strings.Trim(tok, ".,;:!?()\"'")
			if core == "" || !isAlpha(core) {
				continue
			}
			lower := strings.ToLower(core)
			if _, known := s.vocabSet[lower]; known {
				continue
			}
			suggestion, err := edlib.FuzzySearchThreshold(lower, s.vocab, minSuggestionSimilarity, edlib.Levenshtein)
			if err != nil || suggestion == "" || suggestion == lower {
				continue
			}
			fields[i] = strings.Replace(tok, core, matchCase(core, suggestion), 1)
			lineChanged = true
			changed++
		}
		if lineChanged {
			lines[li] = strings.Join(fields, " ")
		}
	}
	if changed > 0 {
		logger.Debug("Cleaner: corrected %d tokens", changed)
		return strings.Join(lines, "\n")
	}
	return text
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// matchCase applies the original token's capitalisation to the
// suggestion.
func matchCase(original, suggestion string) string {
	if original == strings.ToUpper(original) && len(original) > 1 {
		return strings.ToUpper(suggestion)
	}
	r := []rune(original)
	if unicode.IsUpper(r[0]) {
		sr := []rune(suggestion)
		sr[0] = unicode.ToUpper(sr[0])
		return string(sr)
	}
	return suggestion
}

func normaliseWhitespace(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

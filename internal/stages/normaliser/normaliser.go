// Package normaliser provides the second pipeline stage: unicode,
// number, date and currency standardisation with a configurable casing
// policy.
package normaliser

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure Stage implements the interface.
var _ driven.Stage = (*Stage)(nil)

// currencyMap rewrites currency symbols and abbreviations to ISO 4217
// codes. Keys are matched longest-first so "Rs." wins over "Rs" and
// "US$" over "$".
var currencyMap = map[string]string{
	"US$": "USD", "$": "USD",
	"€": "EUR", "£": "GBP", "¥": "JPY",
	"₹": "INR", "Rs.": "INR", "Rs": "INR", "INR": "INR",
	"A$": "AUD", "C$": "CAD", "R$": "BRL",
}

// Stage standardises text into consistent formats across documents.
type Stage struct {
	lowercaseProse  bool
	currencyPattern *regexp.Regexp
}

// Option configures the normaliser stage.
type Option func(*Stage)

// WithLowercaseProse lowercases general prose while preserving
// acronyms and proper nouns.
func WithLowercaseProse(enabled bool) Option {
	return func(s *Stage) {
		s.lowercaseProse = enabled
	}
}

// New creates a normaliser stage.
func New(opts ...Option) *Stage {
	symbols := make([]string, 0, len(currencyMap))
	for sym := range currencyMap {
		symbols = append(symbols, sym)
	}
	// Longest first so compound symbols match before their prefixes.
	sort.Slice(symbols, func(i, j int) bool {
		if len(symbols[i]) != len(symbols[j]) {
			return len(symbols[i]) > len(symbols[j])
		}
		return symbols[i] < symbols[j]
	})
	escaped := make([]string, len(symbols))
	for i, sym := range symbols {
		escaped[i] = regexp.QuoteMeta(sym)
	}

	s := &Stage{
		currencyPattern: regexp.MustCompile(`(?P<symbol>` + strings.Join(escaped, "|") + `)\s*(?P<amount>\d)`),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return "normaliser"
}

// Process standardises the artifact text in place. Individual pattern
// failures degrade that rewrite only.
func (s *Stage) Process(_ context.Context, art *driven.Artifact) error {
	text := art.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = normaliseUnicode(text)
	text = stripGroupingCommas(text)
	text = s.standardiseDates(text)
	text = s.standardiseCurrency(text)
	if s.lowercaseProse {
		text = lowercaseProse(text)
	}

	art.Text = text
	return nil
}

var (
	smartQuotes = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", `'`, "’", `'`,
		"—", "-", "–", "-",
	)

	groupingComma = regexp.MustCompile(`(\d),(\d)`)

	// Named groups: validated for presence before use, never assumed
	// to be group 1.
	datePattern = regexp.MustCompile(`\b(?P<day>\d{1,2})[/\-.](?P<month>\d{1,2})[/\-.](?P<year>\d{2,4})\b`)
)

func normaliseUnicode(text string) string {
	return smartQuotes.Replace(norm.NFC.String(text))
}

// stripGroupingCommas removes commas strictly surrounded by digits so
// both Indian (1,82,68,500) and international (1,234,567) groupings
// collapse to plain numbers.
func stripGroupingCommas(text string) string {
	// Overlapping matches: "1,2,3" needs two passes.
	for {
		replaced := groupingComma.ReplaceAllString(text, "$1$2")
		if replaced == text {
			return replaced
		}
		text = replaced
	}
}

// standardiseDates rewrites day-first numeric dates to ISO YYYY-MM-DD.
// A date that fails validation (month 13, day 32) is left as written.
func (s *Stage) standardiseDates(text string) string {
	dayIdx := datePattern.SubexpIndex("day")
	monthIdx := datePattern.SubexpIndex("month")
	yearIdx := datePattern.SubexpIndex("year")

	return datePattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := datePattern.FindStringSubmatch(match)
		if groups == nil || dayIdx < 0 || monthIdx < 0 || yearIdx < 0 {
			return match
		}
		day, err1 := strconv.Atoi(groups[dayIdx])
		month, err2 := strconv.Atoi(groups[monthIdx])
		year, err3 := strconv.Atoi(groups[yearIdx])
		if err1 != nil || err2 != nil || err3 != nil {
			return match
		}
		if year < 100 {
			year += 2000
		}
		// Day-first: 05/04/2024 is the 5th of April. When the first
		// number cannot be a day, the positions are swapped.
		if day > 31 || month > 12 && day <= 12 {
			day, month = month, day
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return match
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	})
}

// standardiseCurrency rewrites currency symbols preceding amounts to
// ISO codes with a single space ("₹ 5000" -> "INR 5000").
func (s *Stage) standardiseCurrency(text string) string {
	symbolIdx := s.currencyPattern.SubexpIndex("symbol")
	amountIdx := s.currencyPattern.SubexpIndex("amount")
	if symbolIdx < 0 || amountIdx < 0 {
		return text
	}

	return s.currencyPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := s.currencyPattern.FindStringSubmatch(match)
		if groups == nil || groups[symbolIdx] == "" {
			return match
		}
		code, ok := currencyMap[groups[symbolIdx]]
		if !ok {
			logger.Warn("Normaliser: unmapped currency symbol %q", groups[symbolIdx])
			return match
		}
		return code + " " + groups[amountIdx]
	})
}

// lowercaseProse lowercases words that look like ordinary prose while
// preserving acronyms (all-caps, len > 1) and mid-sentence capitalised
// words, which are treated as proper nouns.
func lowercaseProse(text string) string {
	lines := strings.Split(text, "\n")
	for li, line := range lines {
		words := strings.Fields(line)
		for i, w := range words {
			r := []rune(w)
			if len(r) == 0 || !unicode.IsUpper(r[0]) {
				continue
			}
			if isAcronym(w) {
				continue
			}
			// Sentence-initial capitals are casing artefacts, not
			// proper nouns; capitals elsewhere are preserved.
			if i == 0 || endsSentence(words[i-1]) {
				r[0] = unicode.ToLower(r[0])
				words[i] = string(r)
			}
		}
		lines[li] = strings.Join(words, " ")
	}
	return strings.Join(lines, "\n")
}

func isAcronym(w string) bool {
	w = strings.Trim(w, ".,;:!?()")
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 1
}

func endsSentence(w string) bool {
	return strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?")
}

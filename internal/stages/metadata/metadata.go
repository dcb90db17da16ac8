// Package metadata provides the third pipeline stage: entity and
// structured-value extraction over normalised text.
package metadata

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure Stage implements the interface.
var _ driven.Stage = (*Stage)(nil)

// Stage extracts organisations, persons, dates, monetary amounts and a
// document classification from normalised text, merging them into the
// artifact's structured fields.
type Stage struct{}

// New creates a metadata extraction stage.
func New() *Stage {
	return &Stage{}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return "metadata"
}

var (
	isoDate = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

	// Amounts after currency normalisation: "INR 50000", "USD 100.50".
	isoAmount = regexp.MustCompile(`\b(?P<code>[A-Z]{3}) (?P<value>\d+(?:\.\d{1,2})?)\b`)

	// Organisations end in a recognisable suffix.
	orgPattern = regexp.MustCompile(`\b(?:[A-Z][A-Za-z&]+ ){0,4}[A-Z][A-Za-z&]+ (?:Ltd|Limited|Corp|Corporation|Division|Department|Authority|Board|Agency|Solutions|Services|Industries|Bank)\b\.?`)

	// Persons follow an honorific.
	personPattern = regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Dr|Shri|Smt|Er)\.? (?P<name>[A-Z][a-z]+(?: [A-Z][a-z]+){0,2})`)
)

// documentClasses maps a classification to its indicator keywords,
// scored by occurrence count.
var documentClasses = map[string][]string{
	"invoice":  {"invoice", "bill to", "due date", "subtotal", "remittance"},
	"receipt":  {"receipt", "paid", "transaction id", "cashier"},
	"contract": {"agreement", "contract", "signed", "terms and conditions"},
	"letter":   {"sincerely", "dear", "regards", "to whom it may concern"},
}

// Process enriches the artifact's structured fields. Extraction never
// clobbers values the OCR adapter already supplied, and a field that
// fails to parse is simply omitted.
func (s *Stage) Process(_ context.Context, art *driven.Artifact) error {
	text := art.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if art.Fields == nil {
		art.Fields = &domain.StructuredFields{}
	}
	f := art.Fields
	if f.Extra == nil {
		f.Extra = make(map[string]any)
	}

	if dates := distinct(isoDate.FindAllString(text, -1)); len(dates) > 0 {
		f.DatesFound = mergeDistinct(f.DatesFound, dates)
	}

	if orgs := distinct(orgPattern.FindAllString(text, -1)); len(orgs) > 0 {
		f.Extra["organizations"] = orgs
	}

	if persons := extractPersons(text); len(persons) > 0 {
		f.OfficersMentioned = mergeDistinct(f.OfficersMentioned, persons)
	}

	amounts, maxAmount := extractAmounts(text)
	if len(amounts) > 0 {
		f.Extra["amounts"] = amounts
		if f.GrandTotal == "" && maxAmount != "" {
			// The largest amount on a financial document is almost
			// always the total.
			f.GrandTotal = maxAmount
		}
	}

	if f.DocumentType == "" {
		f.DocumentType = classify(text)
	}

	logger.Debug("Metadata: %d dates, %d officers, %d amounts, type=%q",
		len(f.DatesFound), len(f.OfficersMentioned), len(amounts), f.DocumentType)
	return nil
}

func extractPersons(text string) []string {
	nameIdx := personPattern.SubexpIndex("name")
	if nameIdx < 0 {
		return nil
	}
	var names []string
	for _, m := range personPattern.FindAllStringSubmatch(text, -1) {
		if m[nameIdx] != "" {
			names = append(names, m[nameIdx])
		}
	}
	return distinct(names)
}

// extractAmounts returns every ISO-coded amount and the numerically
// largest one. Values that fail to parse are skipped, never fatal.
func extractAmounts(text string) (amounts []string, maxAmount string) {
	codeIdx := isoAmount.SubexpIndex("code")
	valueIdx := isoAmount.SubexpIndex("value")
	if codeIdx < 0 || valueIdx < 0 {
		return nil, ""
	}

	maxValue := 0.0
	for _, m := range isoAmount.FindAllStringSubmatch(text, -1) {
		amounts = append(amounts, m[0])
		v, err := domain.ParseAmount(m[valueIdx])
		if err != nil {
			continue
		}
		if v > maxValue {
			maxValue = v
			maxAmount = m[valueIdx]
		}
	}
	return distinct(amounts), maxAmount
}

// classify scores each document class by keyword occurrences and
// returns the winner, or empty when nothing matched.
func classify(text string) string {
	lower := strings.ToLower(text)

	best, bestScore := "", 0
	classes := make([]string, 0, len(documentClasses))
	for class := range documentClasses {
		classes = append(classes, class)
	}
	sort.Strings(classes) // deterministic tie-breaking

	for _, class := range classes {
		score := 0
		for _, kw := range documentClasses[class] {
			score += strings.Count(lower, kw)
		}
		if score > bestScore {
			best, bestScore = class, score
		}
	}
	return best
}

func distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func mergeDistinct(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, s := range incoming {
		if _, dup := seen[s]; !dup {
			existing = append(existing, s)
			seen[s] = struct{}{}
		}
	}
	return existing
}

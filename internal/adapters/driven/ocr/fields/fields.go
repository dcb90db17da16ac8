// Package fields extracts structured values from OCR text of Indian
// government financial documents (PWD bills, monthly accounts, schedules).
// Every OCR engine runs the same extractor so the structured output does
// not depend on the backend.
package fields

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

var (
	formNumberPattern = regexp.MustCompile(`(?i)FORM[- ]?(?P<number>\d{1,3})`)

	divisionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)OFFICE OF THE EXECUTIVE ENGINEER[,\s]+(?P<division>.*?DIVISION[,\s]+BHOPAL)`),
		regexp.MustCompile(`(?i)(?P<division>(?:P\.?W\.?D\.?|PWD).*?DIVISION[,\s]+BHOPAL)`),
		regexp.MustCompile(`(?i)DIVISION\s*[:\-]?\s*(?P<division>.*?BHOPAL)`),
	}

	ddoPattern = regexp.MustCompile(`(?i)DDO\s*CODE\s*(?:NO\.?)?\s*[:\-]?\s*(?P<code>\d{8,12})`)

	accountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)A/?C\s*(?:NO\.?)?\s*(?:PW/?)?\s*(?P<number>\d{3,6})`),
		regexp.MustCompile(`(?i)PW[-/]?(?P<number>\d{3,6})`),
	}

	monthYearPattern = regexp.MustCompile(`(?i)(?:MONTH[:\s]+|FOR THE MONTH OF\s+)` +
		`(?P<month>JANUARY|FEBRUARY|MARCH|APRIL|MAY|JUNE|JULY|AUGUST|SEPTEMBER|OCTOBER|NOVEMBER|DECEMBER)` +
		`[\s,]+(?P<year>\d{4})`)
	monthYearLoosePattern = regexp.MustCompile(`(?i)(?P<month>MARCH|APRIL|MAY|JUNE)\s+(?P<year>\d{4})`)

	grandTotalPattern = regexp.MustCompile(`(?i)GRAND\s*TOTAL[^₹\d]*(?P<amount>[\d,]{6,}\.?\d*)`)
	largeAmountScan   = regexp.MustCompile(`[\d,]{8,}\.?\d*`)

	openingBalancePattern = regexp.MustCompile(`(?i)OPENING\s*BALANCE\s*[=:\-]?\s*(?P<amount>[\d,]{4,}\.?\d*)`)
	closingBalancePattern = regexp.MustCompile(`(?i)CLOSING\s*BALANCE\s*[=:\-]?\s*(?P<amount>[\d,]{4,}\.?\d*)`)

	longHeadCodePattern  = regexp.MustCompile(`\b(?:24|67|80|00)[-/]\d{4}[-/][0-9A-Za-z]{1,2}[-/]\d{3}[-/][0-9A-Za-z\-/]{4,}`)
	shortHeadCodePattern = regexp.MustCompile(`\b(?:8[0-9]{3}|4[0-9]{3}|2[0-9]{3})\b`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2}\b`),
	}

	gstinPattern = regexp.MustCompile(`\b(\d{2}[A-Z]{5}\d{4}[A-Z]\d{1}Z[A-Z\d])\b`)

	officerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)executive engineer`),
		regexp.MustCompile(`(?i)divisional accounts officer`),
		regexp.MustCompile(`(?i)sr\.?\s*divisional`),
		regexp.MustCompile(`(?i)superintending engineer`),
		regexp.MustCompile(`(?i)chief engineer`),
		regexp.MustCompile(`(?i)accountant general`),
		regexp.MustCompile(`(?i)deputy accountant`),
		regexp.MustCompile(`(?i)assistant engineer`),
	}
)

// documentTypeRules map detection patterns to document classes, checked
// in order. First match wins.
var documentTypeRules = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`FORM[- ]?80|MONTHLY ACCOUNT`), "Monthly Account (Form-80)"},
	{regexp.MustCompile(`FORM[- ]?46|SCHEDULE OF REVENUE|SCHEDULE OF.*FOR THE MONTH`), "Schedule of Revenue/Receipts (Form-46)"},
	{regexp.MustCompile(`FORM[- ]?74|CLASSIFIED ABSTRACT`), "Classified Abstract of Expenditure (Form-74)"},
	{regexp.MustCompile(`FORM[- ]?64|SCHEDULE OF WORK`), "Schedule of Work Expenditure (Form-64)"},
	{regexp.MustCompile(`CASH BALANCE`), "Cash Balance Report (Form-5)"},
	{regexp.MustCompile(`LIST OF ACCOUNTS|CODE NO\.?\s*516`), "List of Accounts Submitted"},
}

const (
	maxHeadCodes = 20
	maxOfficers  = 5
)

// Extract runs every field extractor over the text and returns the
// populated field set. Empty text yields the zero value.
func Extract(text string) domain.StructuredFields {
	if strings.TrimSpace(text) == "" {
		return domain.StructuredFields{}
	}

	f := domain.StructuredFields{
		DocumentType:       detectDocumentType(text),
		FormNumber:         extractFormNumber(text),
		Division:           firstGroup(divisionPatterns, text, "division"),
		DDOCode:            namedGroup(ddoPattern, text, "code"),
		AccountNumber:      extractAccountNumber(text),
		MonthYear:          extractMonthYear(text),
		GrandTotal:         extractGrandTotal(text),
		OpeningBalance:     namedGroup(openingBalancePattern, text, "amount"),
		ClosingBalance:     namedGroup(closingBalancePattern, text, "amount"),
		HeadOfAccountCodes: extractHeadCodes(text),
		DatesFound:         extractDates(text),
		OfficersMentioned:  extractOfficers(text),
	}
	if m := gstinPattern.FindStringSubmatch(text); m != nil {
		f.GSTRegistrationNo = m[1]
	}
	f.BalanceValidation = validateBalances(f.OpeningBalance, f.ClosingBalance)
	return f
}

// namedGroup returns the named capture of the first match, or "".
// A missing group name is a programming error and panics at first use.
func namedGroup(re *regexp.Regexp, text, name string) string {
	idx := re.SubexpIndex(name)
	if idx < 0 {
		panic(fmt.Sprintf("fields: pattern %q has no group %q", re.String(), name))
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[idx])
}

func firstGroup(patterns []*regexp.Regexp, text, name string) string {
	for _, re := range patterns {
		if v := namedGroup(re, text, name); v != "" {
			return v
		}
	}
	return ""
}

func detectDocumentType(text string) string {
	upper := strings.ToUpper(text)
	for _, rule := range documentTypeRules {
		if rule.pattern.MatchString(upper) {
			return rule.label
		}
	}
	return "Government Financial Document"
}

func extractFormNumber(text string) string {
	n := namedGroup(formNumberPattern, text, "number")
	if n == "" {
		return ""
	}
	return "Form-" + n
}

func extractAccountNumber(text string) string {
	if n := firstGroup(accountPatterns, text, "number"); n != "" {
		return "PW/" + n
	}
	return ""
}

func extractMonthYear(text string) string {
	for _, re := range []*regexp.Regexp{monthYearPattern, monthYearLoosePattern} {
		month := namedGroup(re, text, "month")
		if month == "" {
			continue
		}
		year := namedGroup(re, text, "year")
		return capitalize(month) + " " + year
	}
	return ""
}

// extractGrandTotal prefers a labelled grand total row; without one it
// falls back to the largest parseable amount in the document.
func extractGrandTotal(text string) string {
	if v := namedGroup(grandTotalPattern, text, "amount"); v != "" {
		return v
	}
	var (
		best      string
		bestValue float64
	)
	for _, raw := range largeAmountScan.FindAllString(text, -1) {
		v, err := domain.ParseAmount(raw)
		if err != nil {
			continue
		}
		if best == "" || v > bestValue {
			best, bestValue = raw, v
		}
	}
	return best
}

// extractHeadCodes returns long-form codes followed by short major heads,
// deduplicated in first-seen order.
func extractHeadCodes(text string) []string {
	var codes []string
	seen := make(map[string]struct{})
	add := func(code string) {
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	for _, c := range longHeadCodePattern.FindAllString(text, -1) {
		add(c)
	}
	for _, c := range shortHeadCodePattern.FindAllString(text, -1) {
		add(c)
	}
	if len(codes) > maxHeadCodes {
		codes = codes[:maxHeadCodes]
	}
	return codes
}

func extractDates(text string) []string {
	seen := make(map[string]struct{})
	for _, re := range datePatterns {
		for _, d := range re.FindAllString(text, -1) {
			seen[d] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// extractOfficers collects lines mentioning officer designations, one
// entry per line, capped.
func extractOfficers(text string) []string {
	var found []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, re := range officerPatterns {
			if !re.MatchString(line) {
				continue
			}
			if _, dup := seen[line]; !dup {
				seen[line] = struct{}{}
				found = append(found, line)
			}
			break
		}
		if len(found) == maxOfficers {
			break
		}
	}
	return found
}

// validateBalances cross-checks opening against closing balance when both
// are present. Form-80 monthly accounts carry equal balances by rule.
func validateBalances(opening, closing string) *domain.BalanceValidation {
	if opening == "" || closing == "" {
		return nil
	}
	ob, errO := domain.ParseAmount(opening)
	cb, errC := domain.ParseAmount(closing)
	if errO != nil || errC != nil {
		return &domain.BalanceValidation{
			Valid:  false,
			Detail: "balance amounts could not be parsed",
		}
	}
	if ob != cb {
		return &domain.BalanceValidation{
			Valid:  false,
			Detail: fmt.Sprintf("opening balance %.2f does not match closing balance %.2f", ob, cb),
		}
	}
	return &domain.BalanceValidation{Valid: true}
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

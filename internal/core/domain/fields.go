package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// StructuredFields holds named, semantically typed values extracted from a
// document beyond its raw text. Canonical fields are typed; backend-specific
// extras go into Extra under their own keys.
type StructuredFields struct {
	// DocumentType is the classified document category
	// (e.g. "Monthly Account (Form-80)", "invoice").
	DocumentType string

	// FormNumber is the government form identifier (e.g. "Form-80").
	FormNumber string

	// Division is the issuing division or office line.
	Division string

	// DDOCode is the drawing and disbursing officer code.
	DDOCode string

	// AccountNumber is the account reference (e.g. "PW/516").
	AccountNumber string

	// MonthYear is the accounting period (e.g. "March 2024").
	MonthYear string

	// GrandTotal is the document's grand total as written, grouping
	// separators preserved (e.g. "1,82,68,500.00").
	GrandTotal string

	// OpeningBalance and ClosingBalance are balances as written.
	OpeningBalance string
	ClosingBalance string

	// HeadOfAccountCodes lists detected head-of-account codes in order.
	HeadOfAccountCodes []string

	// DatesFound lists the distinct date strings detected, sorted.
	DatesFound []string

	// OfficersMentioned lists officer names/designations detected.
	OfficersMentioned []string

	// GSTRegistrationNo is the detected GSTIN, if any.
	GSTRegistrationNo string

	// BalanceValidation reports opening/closing consistency.
	BalanceValidation *BalanceValidation

	// Extra holds backend-specific values that have no canonical slot.
	Extra map[string]any
}

// BalanceValidation is the result of cross-checking document balances.
type BalanceValidation struct {
	// Valid is false when opening + receipts - expenditure disagrees
	// with the closing balance beyond rounding.
	Valid bool

	// Detail describes the mismatch when Valid is false.
	Detail string
}

// IsEmpty reports whether no canonical field was extracted.
func (f *StructuredFields) IsEmpty() bool {
	return f.DocumentType == "" && f.FormNumber == "" && f.DDOCode == "" &&
		f.AccountNumber == "" && f.MonthYear == "" && f.GrandTotal == "" &&
		len(f.HeadOfAccountCodes) == 0 && len(f.DatesFound) == 0 &&
		len(f.OfficersMentioned) == 0 && f.GSTRegistrationNo == "" &&
		len(f.Extra) == 0
}

// Map flattens the canonical fields into the key set that crosses the
// external boundary. Empty fields are omitted.
func (f *StructuredFields) Map() map[string]any {
	m := make(map[string]any)
	put := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	put("document_type", f.DocumentType)
	put("form_number", f.FormNumber)
	put("division", f.Division)
	put("ddo_code", f.DDOCode)
	put("account_number", f.AccountNumber)
	put("month_year", f.MonthYear)
	put("grand_total", f.GrandTotal)
	put("opening_balance", f.OpeningBalance)
	put("closing_balance", f.ClosingBalance)
	put("gst_registration_no", f.GSTRegistrationNo)
	if len(f.HeadOfAccountCodes) > 0 {
		m["head_of_account_codes"] = f.HeadOfAccountCodes
	}
	if len(f.DatesFound) > 0 {
		m["dates_found"] = f.DatesFound
	}
	if len(f.OfficersMentioned) > 0 {
		m["officers_mentioned"] = f.OfficersMentioned
	}
	if f.BalanceValidation != nil {
		m["balance_validation"] = map[string]any{
			"is_valid": f.BalanceValidation.Valid,
			"detail":   f.BalanceValidation.Detail,
		}
	}
	for k, v := range f.Extra {
		if _, taken := m[k]; !taken {
			m[k] = v
		}
	}
	return m
}

var amountStrip = regexp.MustCompile(`[₹,\s]`)

// ParseAmount parses a locale-formatted amount string such as
// "1,82,68,500.00" (Indian grouping) or "1,234,567.89" by stripping
// grouping separators and currency marks before conversion.
func ParseAmount(s string) (float64, error) {
	cleaned := amountStrip.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(cleaned, 64)
}

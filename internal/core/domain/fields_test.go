package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1,82,68,500.00", 18268500.00}, // Indian grouping
		{"1,234,567.89", 1234567.89},    // Western grouping
		{"50000", 50000},
		{"₹ 12,50,000.00", 1250000.00},
		{"  500.50  ", 500.50},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "N/A", "12.34.56"} {
		_, err := ParseAmount(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestStructuredFields_IsEmpty(t *testing.T) {
	var f StructuredFields
	assert.True(t, f.IsEmpty())

	f.GrandTotal = "50000"
	assert.False(t, f.IsEmpty())
}

func TestStructuredFields_Map(t *testing.T) {
	f := StructuredFields{
		DocumentType:       "monthly_account",
		GrandTotal:         "1,82,68,500.00",
		HeadOfAccountCodes: []string{"8443"},
		BalanceValidation:  &BalanceValidation{Valid: false, Detail: "off by 100"},
		Extra:              map[string]any{"organizations": []string{"PWD Division"}},
	}

	m := f.Map()

	assert.Equal(t, "monthly_account", m["document_type"])
	assert.Equal(t, "1,82,68,500.00", m["grand_total"])
	assert.Equal(t, []string{"8443"}, m["head_of_account_codes"])
	assert.Equal(t, map[string]any{"is_valid": false, "detail": "off by 100"}, m["balance_validation"])
	assert.Equal(t, []string{"PWD Division"}, m["organizations"])

	// Empty fields are omitted entirely.
	assert.NotContains(t, m, "ddo_code")
	assert.NotContains(t, m, "form_number")
}

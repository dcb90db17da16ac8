package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monthlyAccountText = `OFFICE OF THE EXECUTIVE ENGINEER, PWD DIVISION, BHOPAL
MONTHLY ACCOUNT FORM-80
DDO CODE NO: 8002004003
A/C NO. PW/516
FOR THE MONTH OF MARCH, 2024
OPENING BALANCE = 1,82,68,500.00
CLOSING BALANCE = 1,82,68,500.00
24/5054/03/337/0101 contract payment 45,00,000.00
GRAND TOTAL 1,82,68,500.00
Dated 15/03/2024
23AAACP1234F1Z5
Executive Engineer, PWD Division Bhopal`

func TestExtract_EmptyText(t *testing.T) {
	f := Extract("   ")
	assert.True(t, f.IsEmpty())
}

func TestExtract_MonthlyAccount(t *testing.T) {
	f := Extract(monthlyAccountText)

	assert.Equal(t, "Monthly Account (Form-80)", f.DocumentType)
	assert.Equal(t, "Form-80", f.FormNumber)
	assert.Equal(t, "8002004003", f.DDOCode)
	assert.Equal(t, "PW/516", f.AccountNumber)
	assert.Equal(t, "March 2024", f.MonthYear)
	assert.Equal(t, "1,82,68,500.00", f.GrandTotal)
	assert.Equal(t, "1,82,68,500.00", f.OpeningBalance)
	assert.Equal(t, "1,82,68,500.00", f.ClosingBalance)
	assert.Equal(t, "23AAACP1234F1Z5", f.GSTRegistrationNo)
	assert.Contains(t, f.DatesFound, "15/03/2024")
	assert.Contains(t, f.HeadOfAccountCodes, "24/5054/03/337/0101")

	require.Len(t, f.OfficersMentioned, 2)
	assert.Contains(t, f.OfficersMentioned[0], "EXECUTIVE ENGINEER")
}

func TestExtract_BalancesMatch(t *testing.T) {
	f := Extract(monthlyAccountText)

	require.NotNil(t, f.BalanceValidation)
	assert.True(t, f.BalanceValidation.Valid)
}

func TestExtract_BalanceMismatch(t *testing.T) {
	f := Extract("OPENING BALANCE = 5,00,000.00\nCLOSING BALANCE = 4,00,000.00")

	require.NotNil(t, f.BalanceValidation)
	assert.False(t, f.BalanceValidation.Valid)
	assert.Contains(t, f.BalanceValidation.Detail, "does not match")
}

func TestExtract_BalanceMissingSkipsValidation(t *testing.T) {
	f := Extract("OPENING BALANCE = 5,00,000.00\nno closing line here")
	assert.Nil(t, f.BalanceValidation)
}

func TestExtract_GrandTotalFallsBackToLargestAmount(t *testing.T) {
	f := Extract("receipts 12,50,000.00 and expenditure 45,00,000.00 this month")
	assert.Equal(t, "45,00,000.00", f.GrandTotal)
}

func TestExtract_DocumentTypeRules(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"SCHEDULE OF REVENUE for the month", "Schedule of Revenue/Receipts (Form-46)"},
		{"CLASSIFIED ABSTRACT of expenditure", "Classified Abstract of Expenditure (Form-74)"},
		{"SCHEDULE OF WORK expenditure", "Schedule of Work Expenditure (Form-64)"},
		{"CASH BALANCE report", "Cash Balance Report (Form-5)"},
		{"some unclassified page", "Government Financial Document"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Extract(tt.text).DocumentType, tt.text)
	}
}

func TestExtract_HeadCodesDeduplicatedAndOrdered(t *testing.T) {
	f := Extract("8443 deposit, 8658 tax, 8443 again, 24/5054/03/337/0101 works")

	assert.Equal(t, []string{"24/5054/03/337/0101", "8443", "8658"}, f.HeadOfAccountCodes)
}

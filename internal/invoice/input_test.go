package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/model"
)

func TestParseLine(t *testing.T) {
	line, warnings := ParseLine(LineInput{
		Description:     " Consulting ",
		Quantity:        "2",
		UnitPrice:       "100",
		DiscountPercent: "10",
		TaxRate:         "18",
		AccountID:       4020,
	}, company())
	assert.Empty(t, warnings)
	assert.Equal(t, "Consulting", line.Description)
	assertDec(t, "212.40", line.Amount)
}

func TestParseLine_NonNumericBecomesZero(t *testing.T) {
	line, warnings := ParseLine(LineInput{Quantity: "two", UnitPrice: "1,000.00", TaxRate: "abc"}, company())
	require.Len(t, warnings, 2)
	assert.Equal(t, "quantity", warnings[0].Field)
	assert.Equal(t, "two", warnings[0].Value)
	assert.Equal(t, "tax_rate", warnings[1].Field)
	assertDec(t, "1000", line.UnitPrice)
	assert.True(t, line.Amount.IsZero())
}

func TestParseLine_BlankTaxRateUsesDefault(t *testing.T) {
	line, warnings := ParseLine(LineInput{Quantity: "1", UnitPrice: "100"}, company())
	assert.Empty(t, warnings)
	assertDec(t, "18", line.TaxRate)
	assertDec(t, "118.00", line.Amount)
}

func TestFromInput(t *testing.T) {
	inv, warnings, err := FromInput(Input{
		Number: "INV-2025-0009",
		Date:   "2025-05-02",
		Party:  model.Party{Name: "Globex"},
		Lines: []LineInput{
			{Quantity: "2", UnitPrice: "100", DiscountPercent: "10", TaxRate: "18", AccountID: 4020},
			{Quantity: "x", UnitPrice: "5", AccountID: 4010},
		},
	}, company())
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceSale, inv.Kind)
	assert.Equal(t, model.InvoiceDraft, inv.Status)
	assert.Equal(t, model.NewDate(2025, time.June, 1), inv.DueDate)
	assertDec(t, "212.40", inv.Total)

	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].LineIndex)
}

func TestFromInput_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"bad date", Input{Date: "May 2"}},
		{"bad kind", Input{Date: "2025-05-02", Kind: "refund"}},
		{"bad status", Input{Date: "2025-05-02", Status: "archived"}},
		{"bad due date", Input{Date: "2025-05-02", Due: "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FromInput(tt.in, company())
			assert.Error(t, err)
		})
	}
}

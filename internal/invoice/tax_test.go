package invoice

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/model"
)

func TestSummarizeTax(t *testing.T) {
	sale := saleInvoice()

	purchase := saleInvoice()
	purchase.Kind = model.InvoicePurchase
	purchase.Status = model.InvoicePaid
	purchase.Lines = purchase.Lines[1:2] // 50 at 18%

	draft := saleInvoice()
	draft.Status = model.InvoiceDraft

	voided := saleInvoice()
	voided.Status = model.InvoiceVoided

	outside := saleInvoice()
	outside.Date = model.NewDate(2025, time.July, 1)

	q := model.DateRange{Start: model.NewDate(2025, time.April, 1), End: model.NewDate(2025, time.June, 30)}
	sum := SummarizeTax([]model.Invoice{sale, purchase, draft, voided, outside}, q)

	assert.Equal(t, 2, sum.Invoices)
	require.Len(t, sum.Rates, 2)

	assertDec(t, "5", sum.Rates[0].Rate)
	assertDec(t, "30.00", sum.Rates[0].TaxableSales)
	assertDec(t, "1.50", sum.Rates[0].OutputTax)

	assertDec(t, "18", sum.Rates[1].Rate)
	assertDec(t, "230.00", sum.Rates[1].TaxableSales)
	assertDec(t, "41.40", sum.Rates[1].OutputTax)
	assertDec(t, "50.00", sum.Rates[1].TaxablePurchases)
	assertDec(t, "9.00", sum.Rates[1].InputTax)

	assertDec(t, "42.90", sum.OutputTax)
	assertDec(t, "9.00", sum.InputTax)
	assertDec(t, "33.90", sum.NetPayable)

	out, err := json.Marshal(sum)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"net_payable":"33.90"`)
	assert.Contains(t, string(out), `"output_tax":"1.50"`)
	assert.Contains(t, string(out), `"taxable_sales":"230.00"`)
	assert.Contains(t, string(out), `"rate":"18"`)
}

func TestSummarizeTax_Empty(t *testing.T) {
	q := model.DateRange{Start: model.NewDate(2025, time.April, 1), End: model.NewDate(2025, time.June, 30)}
	sum := SummarizeTax(nil, q)
	assert.Zero(t, sum.Invoices)
	assert.Empty(t, sum.Rates)
	assert.True(t, sum.NetPayable.IsZero())
}

// Package invoice derives the money amounts on invoice lines and invoices.
// Every derived value is recomputed from the inputs; nothing here reads or
// writes storage.
package invoice

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

var (
	// ErrLastLine is returned when removing a line would leave none.
	ErrLastLine = errors.New("invoice: cannot remove the last line")
	// ErrLineIndex is returned for a line index outside the invoice.
	ErrLineIndex = errors.New("invoice: line index out of range")
)

// Warning records an input that was replaced before computing. The
// computation still completes.
type Warning struct {
	LineIndex int    `json:"line_index"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Message   string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s %q: %s", w.LineIndex+1, w.Field, w.Value, w.Message)
}

// Totals are the invoice-level sums of already-rounded line values.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	GSTTotal decimal.Decimal `json:"gst_total"`
	Total    decimal.Decimal `json:"total"`
}

func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal money.Amount `json:"subtotal"`
		GSTTotal money.Amount `json:"gst_total"`
		Total    money.Amount `json:"total"`
	}{money.NewAmount(t.Subtotal), money.NewAmount(t.GSTTotal), money.NewAmount(t.Total)})
}

// ComputeLine recomputes PreTax, TaxAmount and Amount:
//
//	PreTax    = round2(quantity × unit price × (1 − discount/100))
//	TaxAmount = round2(PreTax × tax rate/100)
//	Amount    = PreTax + TaxAmount
//
// Negative inputs are replaced by zero and a discount above 100 is capped,
// each with a Warning.
func ComputeLine(line model.InvoiceLine) (model.InvoiceLine, []Warning) {
	return computeLine(0, line)
}

func computeLine(index int, line model.InvoiceLine) (model.InvoiceLine, []Warning) {
	var warnings []Warning
	nonNegative := func(field string, v decimal.Decimal) decimal.Decimal {
		if v.IsNegative() {
			warnings = append(warnings, Warning{LineIndex: index, Field: field, Value: v.String(), Message: "negative value replaced by 0"})
			return decimal.Zero
		}
		return v
	}

	line.Quantity = nonNegative("quantity", line.Quantity)
	line.UnitPrice = nonNegative("unit_price", line.UnitPrice)
	line.DiscountPercent = nonNegative("discount_percent", line.DiscountPercent)
	line.TaxRate = nonNegative("tax_rate", line.TaxRate)
	if line.DiscountPercent.GreaterThan(money.Hundred) {
		warnings = append(warnings, Warning{LineIndex: index, Field: "discount_percent", Value: line.DiscountPercent.String(), Message: "discount capped at 100"})
		line.DiscountPercent = money.Hundred
	}

	factor := decimal.NewFromInt(1).Sub(line.DiscountPercent.Div(money.Hundred))
	line.PreTax = money.Round(line.Quantity.Mul(line.UnitPrice).Mul(factor))
	line.TaxAmount = money.Round(line.PreTax.Mul(line.TaxRate).Div(money.Hundred))
	line.Amount = line.PreTax.Add(line.TaxAmount)
	return line, warnings
}

// ComputeTotals sums line values as they stand; lines are expected to come
// from ComputeLine.
func ComputeTotals(lines []model.InvoiceLine) Totals {
	preTax := make([]decimal.Decimal, len(lines))
	tax := make([]decimal.Decimal, len(lines))
	amounts := make([]decimal.Decimal, len(lines))
	for i, l := range lines {
		preTax[i], tax[i], amounts[i] = l.PreTax, l.TaxAmount, l.Amount
	}
	return Totals{
		Subtotal: money.Sum(preTax...),
		GSTTotal: money.Sum(tax...),
		Total:    money.Sum(amounts...),
	}
}

// Compute returns a copy of inv with every line and the totals recomputed.
func Compute(inv model.Invoice) (model.Invoice, []Warning) {
	var warnings []Warning
	lines := make([]model.InvoiceLine, len(inv.Lines))
	for i, l := range inv.Lines {
		var w []Warning
		lines[i], w = computeLine(i, l)
		warnings = append(warnings, w...)
	}
	inv.Lines = lines
	return withTotals(inv), warnings
}

func withTotals(inv model.Invoice) model.Invoice {
	t := ComputeTotals(inv.Lines)
	inv.Subtotal, inv.GSTTotal, inv.Total = t.Subtotal, t.GSTTotal, t.Total
	return inv
}

// AddLine appends a computed line and recomputes the totals.
func AddLine(inv model.Invoice, line model.InvoiceLine) (model.Invoice, []Warning) {
	computed, warnings := computeLine(len(inv.Lines), line)
	lines := make([]model.InvoiceLine, 0, len(inv.Lines)+1)
	lines = append(lines, inv.Lines...)
	inv.Lines = append(lines, computed)
	return withTotals(inv), warnings
}

// UpdateLine replaces line i and recomputes the totals.
func UpdateLine(inv model.Invoice, i int, line model.InvoiceLine) (model.Invoice, []Warning, error) {
	if i < 0 || i >= len(inv.Lines) {
		return inv, nil, fmt.Errorf("%w: %d", ErrLineIndex, i)
	}
	computed, warnings := computeLine(i, line)
	lines := append([]model.InvoiceLine(nil), inv.Lines...)
	lines[i] = computed
	inv.Lines = lines
	return withTotals(inv), warnings, nil
}

// RemoveLine drops line i and recomputes the totals over what remains. An
// invoice always keeps at least one line.
func RemoveLine(inv model.Invoice, i int) (model.Invoice, error) {
	if i < 0 || i >= len(inv.Lines) {
		return inv, fmt.Errorf("%w: %d", ErrLineIndex, i)
	}
	if len(inv.Lines) <= 1 {
		return inv, ErrLastLine
	}
	lines := make([]model.InvoiceLine, 0, len(inv.Lines)-1)
	lines = append(lines, inv.Lines[:i]...)
	inv.Lines = append(lines, inv.Lines[i+1:]...)
	return withTotals(inv), nil
}

// NewLine returns a computed line at the company's default tax rate.
func NewLine(company model.CompanyContext, description string, quantity, unitPrice decimal.Decimal, accountID int) (model.InvoiceLine, []Warning) {
	return ComputeLine(model.InvoiceLine{
		Description:     description,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: decimal.Zero,
		TaxRate:         company.DefaultTaxRate,
		AccountID:       accountID,
	})
}

// DueDate applies the company's payment terms to an invoice date.
func DueDate(date model.Date, company model.CompanyContext) model.Date {
	return date.AddDays(company.PaymentTermsDays)
}

package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// LineInput is an invoice line as typed into a form or a strings-only file.
type LineInput struct {
	Description     string `json:"description" yaml:"description"`
	Quantity        string `json:"quantity" yaml:"quantity"`
	UnitPrice       string `json:"unit_price" yaml:"unit_price"`
	DiscountPercent string `json:"discount_percent" yaml:"discount_percent"`
	TaxRate         string `json:"tax_rate" yaml:"tax_rate"`
	AccountID       int    `json:"account_id" yaml:"account_id"`
}

// ParseLine converts text input into a computed line. Text that is not a
// number becomes 0 with a Warning. A blank tax rate takes the company
// default.
func ParseLine(in LineInput, company model.CompanyContext) (model.InvoiceLine, []Warning) {
	var warnings []Warning
	num := func(field, s string) decimal.Decimal {
		d, err := money.Parse(s)
		if err != nil {
			warnings = append(warnings, Warning{Field: field, Value: s, Message: "not a number, using 0"})
			return decimal.Zero
		}
		return d
	}

	line := model.InvoiceLine{
		Description:     strings.TrimSpace(in.Description),
		Quantity:        num("quantity", in.Quantity),
		UnitPrice:       num("unit_price", in.UnitPrice),
		DiscountPercent: num("discount_percent", in.DiscountPercent),
		AccountID:       in.AccountID,
	}
	if strings.TrimSpace(in.TaxRate) == "" {
		line.TaxRate = company.DefaultTaxRate
	} else {
		line.TaxRate = num("tax_rate", in.TaxRate)
	}

	computed, w := ComputeLine(line)
	return computed, append(warnings, w...)
}

// Input is a whole invoice as read from a file, before computation.
type Input struct {
	Number string            `json:"number" yaml:"number"`
	Kind   model.InvoiceKind `json:"kind" yaml:"kind"`
	Status string            `json:"status" yaml:"status"`
	Date   string            `json:"date" yaml:"date"`
	Due    string            `json:"due_date" yaml:"due_date"`
	Party  model.Party       `json:"party" yaml:"party"`
	Lines  []LineInput       `json:"lines" yaml:"lines"`
	Notes  string            `json:"notes" yaml:"notes"`
}

// FromInput parses and computes an invoice. Dates and kind are structural
// and fail the whole invoice; numeric fields degrade to warnings.
func FromInput(in Input, company model.CompanyContext) (model.Invoice, []Warning, error) {
	date, err := model.ParseDate(in.Date)
	if err != nil {
		return model.Invoice{}, nil, err
	}

	kind := in.Kind
	if kind == "" {
		kind = model.InvoiceSale
	}
	if kind != model.InvoiceSale && kind != model.InvoicePurchase {
		return model.Invoice{}, nil, &InputError{Field: "kind", Value: string(in.Kind)}
	}

	status := model.InvoiceStatus(in.Status)
	switch status {
	case "":
		status = model.InvoiceDraft
	case model.InvoiceDraft, model.InvoiceSent, model.InvoicePaid, model.InvoiceVoided:
	default:
		return model.Invoice{}, nil, &InputError{Field: "status", Value: in.Status}
	}

	due := DueDate(date, company)
	if in.Due != "" {
		if due, err = model.ParseDate(in.Due); err != nil {
			return model.Invoice{}, nil, err
		}
	}

	inv := model.Invoice{
		Number:  in.Number,
		Kind:    kind,
		Status:  status,
		Date:    date,
		DueDate: due,
		Party:   in.Party,
		Notes:   in.Notes,
	}

	var warnings []Warning
	for i, li := range in.Lines {
		line, w := ParseLine(li, company)
		for j := range w {
			w[j].LineIndex = i
		}
		warnings = append(warnings, w...)
		inv.Lines = append(inv.Lines, line)
	}
	return withTotals(inv), warnings, nil
}

// InputError reports an invoice field that cannot be defaulted.
type InputError struct {
	Field string
	Value string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invoice: invalid %s %q", e.Field, e.Value)
}

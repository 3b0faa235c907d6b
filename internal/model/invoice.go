package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/money"
)

// InvoiceKind distinguishes what we bill from what we are billed.
type InvoiceKind string

const (
	InvoiceSale     InvoiceKind = "sale"
	InvoicePurchase InvoiceKind = "purchase"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "draft"
	InvoiceSent   InvoiceStatus = "sent"
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceVoided InvoiceStatus = "voided"
)

// CanTransition reports whether an invoice may move from s to next. Paid and
// voided are terminal.
func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	switch s {
	case InvoiceDraft:
		return next == InvoiceSent || next == InvoiceVoided
	case InvoiceSent:
		return next == InvoicePaid || next == InvoiceVoided
	}
	return false
}

// Party is the customer or supplier on an invoice.
type Party struct {
	Name    string `json:"name" yaml:"name"`
	TaxID   string `json:"tax_id,omitempty" yaml:"tax_id,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
}

// InvoiceLine is one billed item. PreTax, TaxAmount and Amount are derived.
type InvoiceLine struct {
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	AccountID       int             `json:"account_id"`

	PreTax    decimal.Decimal `json:"pre_tax"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Amount    decimal.Decimal `json:"amount"`
}

// MarshalJSON writes the derived amounts with two decimals. Quantity, unit
// price and rates keep the precision they were entered with.
func (l InvoiceLine) MarshalJSON() ([]byte, error) {
	type line InvoiceLine
	return json.Marshal(struct {
		line
		PreTax    money.Amount `json:"pre_tax"`
		TaxAmount money.Amount `json:"tax_amount"`
		Amount    money.Amount `json:"amount"`
	}{line(l), money.NewAmount(l.PreTax), money.NewAmount(l.TaxAmount), money.NewAmount(l.Amount)})
}

// Invoice is a sale or purchase document. Subtotal, GSTTotal and Total are
// always recomputed from the lines.
type Invoice struct {
	Number  string        `json:"number"`
	Kind    InvoiceKind   `json:"kind"`
	Status  InvoiceStatus `json:"status"`
	Date    Date          `json:"date"`
	DueDate Date          `json:"due_date"`
	Party   Party         `json:"party"`
	Lines   []InvoiceLine `json:"lines"`
	Notes   string        `json:"notes,omitempty"`

	Subtotal decimal.Decimal `json:"subtotal"`
	GSTTotal decimal.Decimal `json:"gst_total"`
	Total    decimal.Decimal `json:"total"`
}

func (inv Invoice) MarshalJSON() ([]byte, error) {
	type invoice Invoice
	return json.Marshal(struct {
		invoice
		Subtotal money.Amount `json:"subtotal"`
		GSTTotal money.Amount `json:"gst_total"`
		Total    money.Amount `json:"total"`
	}{invoice(inv), money.NewAmount(inv.Subtotal), money.NewAmount(inv.GSTTotal), money.NewAmount(inv.Total)})
}

// Transition returns a copy of inv in the next status.
func (inv Invoice) Transition(next InvoiceStatus) (Invoice, error) {
	if !inv.Status.CanTransition(next) {
		return inv, fmt.Errorf("%w: invoice %s %s -> %s", ErrInvalidStatus, inv.Number, inv.Status, next)
	}
	inv.Status = next
	return inv, nil
}

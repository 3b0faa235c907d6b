package invoice

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/journal"
	"github.com/ledgerbook/ledgerbook/internal/model"
)

// ErrNotPostable is returned for invoices that cannot produce a journal
// entry.
var ErrNotPostable = errors.New("invoice: not postable")

// Post turns an invoice into a draft journal entry.
//
// A sale debits the receivable account with the total and credits each line
// account with its pre-tax amount and the output tax account with the tax.
// A purchase debits line accounts and input tax and credits payables.
// Lines sharing an account are merged in first-seen order. The entry is left
// unnumbered for the journal store to assign.
func Post(inv model.Invoice, company model.CompanyContext) (model.JournalEntry, error) {
	if inv.Status == model.InvoiceVoided {
		return model.JournalEntry{}, fmt.Errorf("%w: %s is voided", ErrNotPostable, inv.Number)
	}
	inv, _ = Compute(inv)
	if !inv.Total.IsPositive() {
		return model.JournalEntry{}, fmt.Errorf("%w: %s has no positive total", ErrNotPostable, inv.Number)
	}

	var controlID, taxID int
	var lineSide func(decimal.Decimal) model.LineAmount
	var controlSide func(decimal.Decimal) model.LineAmount
	switch inv.Kind {
	case model.InvoiceSale:
		controlID, taxID = company.ReceivableAccountID, company.OutputTaxAccountID
		lineSide, controlSide = model.Credit, model.Debit
	case model.InvoicePurchase:
		controlID, taxID = company.PayableAccountID, company.InputTaxAccountID
		lineSide, controlSide = model.Debit, model.Credit
	default:
		return model.JournalEntry{}, fmt.Errorf("%w: unknown kind %q", ErrNotPostable, inv.Kind)
	}
	if controlID == 0 {
		return model.JournalEntry{}, fmt.Errorf("%w: no control account configured for %s invoices", ErrNotPostable, inv.Kind)
	}
	if taxID == 0 && inv.GSTTotal.IsPositive() {
		return model.JournalEntry{}, fmt.Errorf("%w: no tax account configured for %s invoices", ErrNotPostable, inv.Kind)
	}

	var order []int
	byAccount := make(map[int]decimal.Decimal)
	for i, l := range inv.Lines {
		if l.AccountID == 0 {
			return model.JournalEntry{}, fmt.Errorf("%w: line %d has no account", ErrNotPostable, i+1)
		}
		if !l.PreTax.IsPositive() {
			continue
		}
		if _, seen := byAccount[l.AccountID]; !seen {
			order = append(order, l.AccountID)
		}
		byAccount[l.AccountID] = byAccount[l.AccountID].Add(l.PreTax)
	}

	party := inv.Party.Name
	entry := model.JournalEntry{
		Date:        inv.Date,
		Description: fmt.Sprintf("%s %s %s", inv.Kind, inv.Number, party),
		Reference:   inv.Number,
		Status:      model.StatusDraft,
	}
	if inv.Kind == model.InvoiceSale {
		entry.Lines = append(entry.Lines, model.JournalLine{AccountID: controlID, Description: party, Amount: controlSide(inv.Total)})
	}
	for _, acct := range order {
		entry.Lines = append(entry.Lines, model.JournalLine{AccountID: acct, Amount: lineSide(byAccount[acct])})
	}
	if inv.GSTTotal.IsPositive() {
		entry.Lines = append(entry.Lines, model.JournalLine{AccountID: taxID, Description: "GST", Amount: lineSide(inv.GSTTotal)})
	}
	if inv.Kind == model.InvoicePurchase {
		entry.Lines = append(entry.Lines, model.JournalLine{AccountID: controlID, Description: party, Amount: controlSide(inv.Total)})
	}

	if res := journal.Validate(entry); !res.OK() {
		return model.JournalEntry{}, fmt.Errorf("%w: %w", ErrNotPostable, res.Err())
	}
	return entry, nil
}

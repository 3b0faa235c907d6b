// Package statement projects ledger postings into the balance sheet, the
// profit and loss statement and the cash flow statement.
//
// Every builder is a pure function of its arguments: accounts and postings
// are read, never modified, and identical inputs give identical output.
package statement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// Amounts maps account id to an amount in the account's normal direction.
type Amounts map[int]decimal.Decimal

// Get returns the amount for id, zero when absent.
func (a Amounts) Get(id int) decimal.Decimal {
	if v, ok := a[id]; ok {
		return v
	}
	return decimal.Zero
}

// Ledger is a read-only view over a chart of accounts and its postings.
type Ledger struct {
	accounts []model.Account // ordered by code
	byID     map[int]model.Account
	postings []model.Posting
}

// NewLedger indexes accounts and postings. The inputs are not modified.
func NewLedger(accounts []model.Account, postings []model.Posting) *Ledger {
	sorted := append([]model.Account(nil), accounts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Code != sorted[j].Code {
			return sorted[i].Code < sorted[j].Code
		}
		return sorted[i].ID < sorted[j].ID
	})
	byID := make(map[int]model.Account, len(sorted))
	for _, a := range sorted {
		byID[a.ID] = a
	}
	return &Ledger{accounts: sorted, byID: byID, postings: postings}
}

// Accounts returns the accounts ordered by code.
func (l *Ledger) Accounts() []model.Account { return l.accounts }

// Account looks up an account by id.
func (l *Ledger) Account(id int) (model.Account, bool) {
	a, ok := l.byID[id]
	return a, ok
}

// Balances returns opening balance plus every posting on or before through,
// per account.
func (l *Ledger) Balances(through model.Date) Amounts {
	out := make(Amounts, len(l.accounts))
	for _, a := range l.accounts {
		out[a.ID] = a.OpeningBalance
	}
	for _, p := range l.postings {
		a, ok := l.byID[p.AccountID]
		if !ok || p.Date.After(through) {
			continue
		}
		out[a.ID] = out[a.ID].Add(a.Signed(p.Amount))
	}
	return roundAll(out)
}

// Movements returns the net postings inside r per account, excluding
// opening balances.
func (l *Ledger) Movements(r model.DateRange) Amounts {
	out := make(Amounts, len(l.accounts))
	for _, a := range l.accounts {
		out[a.ID] = decimal.Zero
	}
	for _, p := range l.postings {
		a, ok := l.byID[p.AccountID]
		if !ok || !r.Contains(p.Date) {
			continue
		}
		out[a.ID] = out[a.ID].Add(a.Signed(p.Amount))
	}
	return roundAll(out)
}

// CashEffects returns credit minus debit inside r per account: the cash a
// posting on that account brought in.
func (l *Ledger) CashEffects(r model.DateRange) Amounts {
	out := make(Amounts, len(l.accounts))
	for _, a := range l.accounts {
		out[a.ID] = decimal.Zero
	}
	for _, p := range l.postings {
		if _, ok := l.byID[p.AccountID]; !ok || !r.Contains(p.Date) {
			continue
		}
		out[p.AccountID] = out[p.AccountID].Add(p.Amount.CreditValue()).Sub(p.Amount.DebitValue())
	}
	return roundAll(out)
}

// Depth counts the ancestors of an account. Unknown parents and cycles stop
// the walk.
func (l *Ledger) Depth(id int) int {
	depth := 0
	seen := map[int]bool{id: true}
	for a := l.byID[id]; a.ParentID != 0; {
		parent, ok := l.byID[a.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		depth++
		a = parent
	}
	return depth
}

func roundAll(a Amounts) Amounts {
	for id, v := range a {
		a[id] = money.Round(v)
	}
	return a
}

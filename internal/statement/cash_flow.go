package statement

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
)

// CashFlow explains the change in cash over a range by activity.
type CashFlow struct {
	Range        model.DateRange  `json:"range"`
	CompareRange *model.DateRange `json:"compare_range,omitempty"`

	Operating Section `json:"operating"`
	Investing Section `json:"investing"`
	Financing Section `json:"financing"`

	NetChange      decimal.Decimal `json:"net_change"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`

	CompareNetChange      *decimal.Decimal `json:"compare_net_change,omitempty"`
	CompareOpeningBalance *decimal.Decimal `json:"compare_opening_balance,omitempty"`
	CompareClosingBalance *decimal.Decimal `json:"compare_closing_balance,omitempty"`
}

// BuildCashFlow buckets postings on accounts tagged operating, investing or
// financing. A posting's cash effect is its credit less its debit: money
// received against revenue or a loan is positive. Untagged accounts and the
// cash accounts themselves are not classified.
//
// OpeningBalance is the balance of cash and bank accounts at the end of the
// day before r starts; ClosingBalance is OpeningBalance plus NetChange.
func BuildCashFlow(accounts []model.Account, postings []model.Posting, r model.DateRange, compareRange *model.DateRange) CashFlow {
	l := NewLedger(accounts, postings)

	current := l.CashEffects(r)
	var compare Amounts
	if compareRange != nil {
		compare = l.CashEffects(*compareRange)
	}

	cf := CashFlow{Range: r, CompareRange: compareRange}
	cf.Operating = l.buildSection(sectionInput{name: "Operating", include: ofSubtype(model.SubtypeOperating), current: current, compare: compare})
	cf.Investing = l.buildSection(sectionInput{name: "Investing", include: ofSubtype(model.SubtypeInvesting), current: current, compare: compare})
	cf.Financing = l.buildSection(sectionInput{name: "Financing", include: ofSubtype(model.SubtypeFinancing), current: current, compare: compare})

	cf.NetChange = cf.Operating.Total.Add(cf.Investing.Total).Add(cf.Financing.Total)
	cf.OpeningBalance = l.cashBalance(r.Start.AddDays(-1))
	cf.ClosingBalance = cf.OpeningBalance.Add(cf.NetChange)

	if compareRange != nil {
		net := cf.Operating.CompareTotal.Add(*cf.Investing.CompareTotal).Add(*cf.Financing.CompareTotal)
		opening := l.cashBalance(compareRange.Start.AddDays(-1))
		cf.CompareNetChange = &net
		cf.CompareOpeningBalance = &opening
		cf.CompareClosingBalance = ptr(opening.Add(net))
	}
	return cf
}

func (l *Ledger) cashBalance(through model.Date) decimal.Decimal {
	balances := l.Balances(through)
	total := decimal.Zero
	for _, a := range l.accounts {
		if a.Subtype.IsCash() {
			total = total.Add(balances.Get(a.ID))
		}
	}
	return total
}

func ofSubtype(s model.Subtype) func(model.Account) bool {
	return func(a model.Account) bool { return a.Subtype == s }
}

package statement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// CurrentEarningsName labels the derived equity row holding revenue less
// expenses not yet closed to retained earnings.
const CurrentEarningsName = "Current earnings"

// ReconciliationWarning reports a balance sheet where assets differ from
// liabilities plus equity by more than a cent. The statement is still
// returned as computed.
type ReconciliationWarning struct {
	AsOf                      model.Date      `json:"as_of"`
	TotalAssets               decimal.Decimal `json:"total_assets"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
	Difference                decimal.Decimal `json:"difference"`
}

func (w ReconciliationWarning) Error() string {
	return fmt.Sprintf("balance sheet as of %s does not balance: assets %s, liabilities and equity %s, difference %s",
		w.AsOf, money.Format(w.TotalAssets), money.Format(w.TotalLiabilitiesAndEquity), money.Format(w.Difference))
}

// BalanceSheet is the position of the books on a day.
type BalanceSheet struct {
	AsOf        model.Date  `json:"as_of"`
	CompareAsOf *model.Date `json:"compare_as_of,omitempty"`

	Assets      Section `json:"assets"`
	Liabilities Section `json:"liabilities"`
	Equity      Section `json:"equity"`

	TotalAssets                      decimal.Decimal  `json:"total_assets"`
	TotalLiabilitiesAndEquity        decimal.Decimal  `json:"total_liabilities_and_equity"`
	CompareTotalAssets               *decimal.Decimal `json:"compare_total_assets,omitempty"`
	CompareTotalLiabilitiesAndEquity *decimal.Decimal `json:"compare_total_liabilities_and_equity,omitempty"`

	Warnings []ReconciliationWarning `json:"warnings,omitempty"`
}

// Balanced reports whether no reconciliation warning was raised.
func (b BalanceSheet) Balanced() bool { return len(b.Warnings) == 0 }

// BuildBalanceSheet computes balances as of asOf, and as of compareAsOf when
// given. Equity carries a current earnings row so that a ledger whose
// entries balance also reconciles.
func BuildBalanceSheet(accounts []model.Account, postings []model.Posting, asOf model.Date, compareAsOf *model.Date) BalanceSheet {
	l := NewLedger(accounts, postings)

	current := l.Balances(asOf)
	var compare Amounts
	if compareAsOf != nil {
		compare = l.Balances(*compareAsOf)
	}

	bs := BalanceSheet{AsOf: asOf, CompareAsOf: compareAsOf}
	bs.Assets = l.buildSection(sectionInput{name: "Assets", include: ofType(model.AccountTypeAsset), current: current, compare: compare})
	bs.Liabilities = l.buildSection(sectionInput{name: "Liabilities", include: ofType(model.AccountTypeLiability), current: current, compare: compare})
	bs.Equity = l.buildSection(sectionInput{name: "Equity", include: ofType(model.AccountTypeEquity), current: current, compare: compare})

	earnings := Row{Name: CurrentEarningsName, Amount: l.earnings(current)}
	if compare != nil {
		earnings.Compare = ptr(l.earnings(compare))
	}
	bs.Equity.addRow(earnings)

	bs.TotalAssets = bs.Assets.Total
	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Total.Add(bs.Equity.Total)
	if w, ok := reconcile(asOf, bs.TotalAssets, bs.TotalLiabilitiesAndEquity); !ok {
		bs.Warnings = append(bs.Warnings, w)
	}

	if compareAsOf != nil {
		bs.CompareTotalAssets = bs.Assets.CompareTotal
		bs.CompareTotalLiabilitiesAndEquity = ptr(bs.Liabilities.CompareTotal.Add(*bs.Equity.CompareTotal))
		if w, ok := reconcile(*compareAsOf, *bs.CompareTotalAssets, *bs.CompareTotalLiabilitiesAndEquity); !ok {
			bs.Warnings = append(bs.Warnings, w)
		}
	}
	return bs
}

// earnings is revenue less expenses over the given balances.
func (l *Ledger) earnings(balances Amounts) decimal.Decimal {
	total := decimal.Zero
	for _, a := range l.accounts {
		switch a.Type {
		case model.AccountTypeRevenue:
			total = total.Add(balances.Get(a.ID))
		case model.AccountTypeExpense:
			total = total.Sub(balances.Get(a.ID))
		}
	}
	return total
}

func reconcile(asOf model.Date, assets, liabilitiesAndEquity decimal.Decimal) (ReconciliationWarning, bool) {
	if money.Equal(assets, liabilitiesAndEquity) {
		return ReconciliationWarning{}, true
	}
	return ReconciliationWarning{
		AsOf:                      asOf,
		TotalAssets:               assets,
		TotalLiabilitiesAndEquity: liabilitiesAndEquity,
		Difference:                assets.Sub(liabilitiesAndEquity),
	}, false
}

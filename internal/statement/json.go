package statement

import (
	"encoding/json"

	"github.com/ledgerbook/ledgerbook/internal/money"
)

// The marshallers below write every money field through money.Amount so
// statements always carry two decimals.

func (r Row) MarshalJSON() ([]byte, error) {
	type row Row
	return json.Marshal(struct {
		row
		Amount  money.Amount   `json:"amount"`
		Compare *money.Amount  `json:"compare,omitempty"`
		Buckets []money.Amount `json:"buckets,omitempty"`
	}{row(r), money.NewAmount(r.Amount), money.AmountPtr(r.Compare), money.Amounts(r.Buckets)})
}

func (s Section) MarshalJSON() ([]byte, error) {
	type section Section
	return json.Marshal(struct {
		section
		Total        money.Amount   `json:"total"`
		CompareTotal *money.Amount  `json:"compare_total,omitempty"`
		BucketTotals []money.Amount `json:"bucket_totals,omitempty"`
	}{section(s), money.NewAmount(s.Total), money.AmountPtr(s.CompareTotal), money.Amounts(s.BucketTotals)})
}

func (w ReconciliationWarning) MarshalJSON() ([]byte, error) {
	type warning ReconciliationWarning
	return json.Marshal(struct {
		warning
		TotalAssets               money.Amount `json:"total_assets"`
		TotalLiabilitiesAndEquity money.Amount `json:"total_liabilities_and_equity"`
		Difference                money.Amount `json:"difference"`
	}{warning(w), money.NewAmount(w.TotalAssets), money.NewAmount(w.TotalLiabilitiesAndEquity), money.NewAmount(w.Difference)})
}

func (b BalanceSheet) MarshalJSON() ([]byte, error) {
	type sheet BalanceSheet
	return json.Marshal(struct {
		sheet
		TotalAssets                      money.Amount  `json:"total_assets"`
		TotalLiabilitiesAndEquity        money.Amount  `json:"total_liabilities_and_equity"`
		CompareTotalAssets               *money.Amount `json:"compare_total_assets,omitempty"`
		CompareTotalLiabilitiesAndEquity *money.Amount `json:"compare_total_liabilities_and_equity,omitempty"`
	}{
		sheet(b),
		money.NewAmount(b.TotalAssets),
		money.NewAmount(b.TotalLiabilitiesAndEquity),
		money.AmountPtr(b.CompareTotalAssets),
		money.AmountPtr(b.CompareTotalLiabilitiesAndEquity),
	})
}

func (p ProfitLoss) MarshalJSON() ([]byte, error) {
	type statement ProfitLoss
	return json.Marshal(struct {
		statement
		TotalIncome      money.Amount   `json:"total_income"`
		TotalExpenses    money.Amount   `json:"total_expenses"`
		NetProfit        money.Amount   `json:"net_profit"`
		CompareNetProfit *money.Amount  `json:"compare_net_profit,omitempty"`
		PeriodNetProfit  []money.Amount `json:"period_net_profit,omitempty"`
	}{
		statement(p),
		money.NewAmount(p.TotalIncome),
		money.NewAmount(p.TotalExpenses),
		money.NewAmount(p.NetProfit),
		money.AmountPtr(p.CompareNetProfit),
		money.Amounts(p.PeriodNetProfit),
	})
}

func (c CashFlow) MarshalJSON() ([]byte, error) {
	type statement CashFlow
	return json.Marshal(struct {
		statement
		NetChange             money.Amount  `json:"net_change"`
		OpeningBalance        money.Amount  `json:"opening_balance"`
		ClosingBalance        money.Amount  `json:"closing_balance"`
		CompareNetChange      *money.Amount `json:"compare_net_change,omitempty"`
		CompareOpeningBalance *money.Amount `json:"compare_opening_balance,omitempty"`
		CompareClosingBalance *money.Amount `json:"compare_closing_balance,omitempty"`
	}{
		statement(c),
		money.NewAmount(c.NetChange),
		money.NewAmount(c.OpeningBalance),
		money.NewAmount(c.ClosingBalance),
		money.AmountPtr(c.CompareNetChange),
		money.AmountPtr(c.CompareOpeningBalance),
		money.AmountPtr(c.CompareClosingBalance),
	})
}

package statement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
)

// GroupBy splits a profit and loss statement into calendar periods.
type GroupBy string

const (
	GroupNone    GroupBy = "none"
	GroupMonth   GroupBy = "month"
	GroupQuarter GroupBy = "quarter"
)

// ParseGroupBy accepts none, month or quarter; blank means none.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(s); g {
	case "", GroupNone:
		return GroupNone, nil
	case GroupMonth, GroupQuarter:
		return g, nil
	}
	return "", fmt.Errorf("unknown group by %q", s)
}

// Period is one bucket of a grouped statement, clipped to the statement's
// range.
type Period struct {
	Label string          `json:"label"`
	Range model.DateRange `json:"range"`
}

// Periods splits r into calendar months or quarters (starting January,
// April, July and October). The first and last buckets are clipped to r.
// GroupNone yields no periods.
func Periods(r model.DateRange, g GroupBy) []Period {
	if g != GroupMonth && g != GroupQuarter {
		return nil
	}
	var periods []Period
	for start := r.Start; !start.After(r.End); {
		var bucket, next model.Date
		var label string
		if g == GroupMonth {
			bucket = start.StartOfMonth()
			next = model.NewDate(bucket.Year, bucket.Month+1, 1)
			label = fmt.Sprintf("%04d-%02d", bucket.Year, int(bucket.Month))
		} else {
			bucket = start.StartOfQuarter()
			next = model.NewDate(bucket.Year, bucket.Month+3, 1)
			label = fmt.Sprintf("%04d-Q%d", bucket.Year, quarterOf(bucket.Month))
		}
		end := next.AddDays(-1)
		if end.After(r.End) {
			end = r.End
		}
		periods = append(periods, Period{Label: label, Range: model.DateRange{Start: start, End: end}})
		start = next
	}
	return periods
}

// ProfitLoss is income and expense over a range.
type ProfitLoss struct {
	Range        model.DateRange  `json:"range"`
	CompareRange *model.DateRange `json:"compare_range,omitempty"`
	GroupBy      GroupBy          `json:"group_by"`
	Periods      []Period         `json:"periods,omitempty"`

	Income   Section `json:"income"`
	Expenses Section `json:"expenses"`

	TotalIncome      decimal.Decimal   `json:"total_income"`
	TotalExpenses    decimal.Decimal   `json:"total_expenses"`
	NetProfit        decimal.Decimal   `json:"net_profit"`
	CompareNetProfit *decimal.Decimal  `json:"compare_net_profit,omitempty"`
	PeriodNetProfit  []decimal.Decimal `json:"period_net_profit,omitempty"`
}

// BuildProfitLoss sums revenue and expense postings inside r, and inside
// compareRange when given. NetProfit is TotalIncome less TotalExpenses.
func BuildProfitLoss(accounts []model.Account, postings []model.Posting, r model.DateRange, compareRange *model.DateRange, groupBy GroupBy) ProfitLoss {
	l := NewLedger(accounts, postings)
	if groupBy == "" {
		groupBy = GroupNone
	}

	current := l.Movements(r)
	var compare Amounts
	if compareRange != nil {
		compare = l.Movements(*compareRange)
	}
	periods := Periods(r, groupBy)
	buckets := make([]Amounts, len(periods))
	for i, p := range periods {
		buckets[i] = l.Movements(p.Range)
	}

	pl := ProfitLoss{Range: r, CompareRange: compareRange, GroupBy: groupBy, Periods: periods}
	pl.Income = l.buildSection(sectionInput{name: "Income", include: ofType(model.AccountTypeRevenue), current: current, compare: compare, buckets: buckets})
	pl.Expenses = l.buildSection(sectionInput{name: "Expenses", include: ofType(model.AccountTypeExpense), current: current, compare: compare, buckets: buckets})

	pl.TotalIncome = pl.Income.Total
	pl.TotalExpenses = pl.Expenses.Total
	pl.NetProfit = pl.TotalIncome.Sub(pl.TotalExpenses)
	pl.CompareNetProfit = sub(pl.Income.CompareTotal, pl.Expenses.CompareTotal)
	for i := range periods {
		pl.PeriodNetProfit = append(pl.PeriodNetProfit, pl.Income.BucketTotals[i].Sub(pl.Expenses.BucketTotals[i]))
	}
	return pl
}

func quarterOf(m time.Month) int { return (int(m)-1)/3 + 1 }

package statement

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// Row is one account line of a statement.
type Row struct {
	AccountID int              `json:"account_id"`
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Depth     int              `json:"depth"`
	Amount    decimal.Decimal  `json:"amount"`
	Compare   *decimal.Decimal `json:"compare,omitempty"`
	// Buckets holds per-period amounts when a statement is grouped.
	Buckets []decimal.Decimal `json:"buckets,omitempty"`
}

// Section groups the rows of one account type or activity.
type Section struct {
	Name         string            `json:"name"`
	Rows         []Row             `json:"rows"`
	Total        decimal.Decimal   `json:"total"`
	CompareTotal *decimal.Decimal  `json:"compare_total,omitempty"`
	BucketTotals []decimal.Decimal `json:"bucket_totals,omitempty"`
}

// sectionInput carries the per-period amounts a section is built from. A
// nil compare means no comparative period.
type sectionInput struct {
	name    string
	include func(model.Account) bool
	current Amounts
	compare Amounts
	buckets []Amounts
}

// buildSection lists every included account in code order, merging the
// comparative and bucket amounts by account id. Inactive accounts are
// dropped when every amount they carry is zero.
func (l *Ledger) buildSection(in sectionInput) Section {
	sec := Section{Name: in.name, Rows: []Row{}, Total: decimal.Zero}
	if in.compare != nil {
		sec.CompareTotal = ptr(decimal.Zero)
	}
	if len(in.buckets) > 0 {
		sec.BucketTotals = zeros(len(in.buckets))
	}

	for _, a := range l.accounts {
		if !in.include(a) {
			continue
		}
		row := Row{
			AccountID: a.ID,
			Code:      a.Code,
			Name:      a.Name,
			Depth:     l.Depth(a.ID),
			Amount:    in.current.Get(a.ID),
		}
		allZero := row.Amount.IsZero()
		if in.compare != nil {
			cmp := in.compare.Get(a.ID)
			row.Compare = &cmp
			allZero = allZero && cmp.IsZero()
		}
		for _, b := range in.buckets {
			v := b.Get(a.ID)
			row.Buckets = append(row.Buckets, v)
			allZero = allZero && v.IsZero()
		}
		if !a.IsActive && allZero {
			continue
		}

		sec.Rows = append(sec.Rows, row)
		sec.Total = sec.Total.Add(row.Amount)
		if row.Compare != nil {
			*sec.CompareTotal = sec.CompareTotal.Add(*row.Compare)
		}
		for i, v := range row.Buckets {
			sec.BucketTotals[i] = sec.BucketTotals[i].Add(v)
		}
	}
	sec.Total = money.Round(sec.Total)
	return sec
}

// addRow appends a derived row that has no account behind it.
func (s *Section) addRow(row Row) {
	s.Rows = append(s.Rows, row)
	s.Total = s.Total.Add(row.Amount)
	if s.CompareTotal != nil && row.Compare != nil {
		*s.CompareTotal = s.CompareTotal.Add(*row.Compare)
	}
}

func ofType(t model.AccountType) func(model.Account) bool {
	return func(a model.Account) bool { return a.Type == t }
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}

// sub returns a - b, nil when either side is absent.
func sub(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	return ptr(a.Sub(*b))
}

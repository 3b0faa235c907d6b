package report

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
	"github.com/ledgerbook/ledgerbook/internal/statement"
)

// NotApplicable is the text form of a percent change against zero.
const NotApplicable = "n/a"

// PercentChange is (current - compare) / |compare| * 100, or not applicable
// when compare is zero.
type PercentChange struct {
	Value         decimal.Decimal
	NotApplicable bool
}

func (p PercentChange) String() string {
	if p.NotApplicable {
		return NotApplicable
	}
	return money.Format(p.Value)
}

// MarshalJSON renders the value as a string, "n/a" when not applicable.
func (p PercentChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func percentChange(current, compare decimal.Decimal) PercentChange {
	if compare.IsZero() {
		return PercentChange{NotApplicable: true}
	}
	v := current.Sub(compare).Div(compare.Abs()).Mul(money.Hundred)
	return PercentChange{Value: money.Round(v)}
}

// Row holds the requested columns for one account. Columns that were not
// requested stay empty and are omitted from JSON.
type Row struct {
	AccountID      int               `json:"account_id"`
	Code           string            `json:"code,omitempty"`
	Name           string            `json:"name,omitempty"`
	Type           model.AccountType `json:"type,omitempty"`
	Subtype        model.Subtype     `json:"subtype,omitempty"`
	CurrentBalance *decimal.Decimal  `json:"current_balance,omitempty"`
	YTDBalance     *decimal.Decimal  `json:"ytd_balance,omitempty"`
	CompareBalance *decimal.Decimal  `json:"compare_balance,omitempty"`
	Change         *decimal.Decimal  `json:"change,omitempty"`
	PercentChange  *PercentChange    `json:"percent_change,omitempty"`

	account model.Account
	current decimal.Decimal
	compare decimal.Decimal
}

func (r Row) MarshalJSON() ([]byte, error) {
	type row Row
	return json.Marshal(struct {
		row
		CurrentBalance *money.Amount `json:"current_balance,omitempty"`
		YTDBalance     *money.Amount `json:"ytd_balance,omitempty"`
		CompareBalance *money.Amount `json:"compare_balance,omitempty"`
		Change         *money.Amount `json:"change,omitempty"`
	}{row(r), money.AmountPtr(r.CurrentBalance), money.AmountPtr(r.YTDBalance), money.AmountPtr(r.CompareBalance), money.AmountPtr(r.Change)})
}

// Totals sums the numeric columns over surviving rows.
type Totals struct {
	CurrentBalance *decimal.Decimal `json:"current_balance,omitempty"`
	YTDBalance     *decimal.Decimal `json:"ytd_balance,omitempty"`
	CompareBalance *decimal.Decimal `json:"compare_balance,omitempty"`
	Change         *decimal.Decimal `json:"change,omitempty"`
	PercentChange  *PercentChange   `json:"percent_change,omitempty"`
}

func (t Totals) MarshalJSON() ([]byte, error) {
	type plain Totals
	return json.Marshal(struct {
		plain
		CurrentBalance *money.Amount `json:"current_balance,omitempty"`
		YTDBalance     *money.Amount `json:"ytd_balance,omitempty"`
		CompareBalance *money.Amount `json:"compare_balance,omitempty"`
		Change         *money.Amount `json:"change,omitempty"`
	}{plain(t), money.AmountPtr(t.CurrentBalance), money.AmountPtr(t.YTDBalance), money.AmountPtr(t.CompareBalance), money.AmountPtr(t.Change)})
}

// Group is a labelled subset of rows with its own totals.
type Group struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Rows   []Row  `json:"rows"`
	Totals Totals `json:"totals"`
}

// Result is a built report.
type Result struct {
	Config Config  `json:"config"`
	Rows   []Row   `json:"rows"`
	Groups []Group `json:"groups,omitempty"`
	Totals Totals  `json:"totals"`
}

// Build selects accounts by the filters, computes the requested columns and
// applies the amount filter, sort and grouping.
//
// Balance sheet accounts report their closing balance at the end of each
// range; revenue and expense accounts report the movement inside it. The
// year-to-date column runs from the company's fiscal year start through the
// end of the range.
func Build(accounts []model.Account, postings []model.Posting, cfg Config, company model.CompanyContext) Result {
	l := statement.NewLedger(accounts, postings)

	current := amountsFor(l, cfg.Range)
	var ytd, compare amountFunc
	if cfg.Has(ColYTDBalance) {
		ytd = amountsFor(l, model.DateRange{Start: company.FiscalYearStart(cfg.Range.End), End: cfg.Range.End})
	}
	if cfg.CompareRange != nil {
		compare = amountsFor(l, *cfg.CompareRange)
	}

	rows := []Row{}
	for _, a := range l.Accounts() {
		if !cfg.Filters.selects(a) {
			continue
		}
		cur := current(a)
		cmp := decimal.Zero
		if compare != nil {
			cmp = compare(a)
		}
		if !a.IsActive && cur.IsZero() && cmp.IsZero() {
			continue
		}
		if !cfg.Filters.keeps(cur) {
			continue
		}
		rows = append(rows, newRow(cfg, a, cur, cmp, ytd))
	}

	sortRows(rows, cfg.SortBy, cfg.SortDirection)

	res := Result{Config: cfg, Rows: rows, Totals: totals(cfg, rows, ytd)}
	if cfg.GroupBy != GroupNone {
		res.Groups = group(cfg, l, rows, ytd)
	}
	return res
}

// amountFunc yields an account's figure for one range.
type amountFunc func(model.Account) decimal.Decimal

func amountsFor(l *statement.Ledger, r model.DateRange) amountFunc {
	closing := l.Balances(r.End)
	movement := l.Movements(r)
	return func(a model.Account) decimal.Decimal {
		if a.Type.IsBalanceSheet() {
			return closing.Get(a.ID)
		}
		return movement.Get(a.ID)
	}
}

func (f Filters) selects(a model.Account) bool {
	if len(f.AccountTypes) > 0 {
		found := false
		for _, t := range f.AccountTypes {
			found = found || t == a.Type
		}
		if !found {
			return false
		}
	}
	if len(f.AccountIDs) > 0 {
		found := false
		for _, id := range f.AccountIDs {
			found = found || id == a.ID
		}
		if !found {
			return false
		}
	}
	return true
}

func (f Filters) keeps(current decimal.Decimal) bool {
	if f.MinAmount != nil && current.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && current.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}

func newRow(cfg Config, a model.Account, cur, cmp decimal.Decimal, ytd amountFunc) Row {
	row := Row{AccountID: a.ID, account: a, current: cur, compare: cmp}
	for _, col := range cfg.Columns {
		switch col {
		case ColCode:
			row.Code = a.Code
		case ColName:
			row.Name = a.Name
		case ColType:
			row.Type = a.Type
		case ColSubtype:
			row.Subtype = a.Subtype
		case ColCurrentBalance:
			row.CurrentBalance = ptr(cur)
		case ColYTDBalance:
			row.YTDBalance = ptr(ytd(a))
		case ColCompareBalance:
			row.CompareBalance = ptr(cmp)
		case ColChange:
			row.Change = ptr(cur.Sub(cmp))
		case ColPercentChange:
			pc := percentChange(cur, cmp)
			row.PercentChange = &pc
		}
	}
	return row
}

func totals(cfg Config, rows []Row, ytd amountFunc) Totals {
	cur, cmp, y := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		cur = cur.Add(r.current)
		cmp = cmp.Add(r.compare)
		if ytd != nil {
			y = y.Add(ytd(r.account))
		}
	}

	var t Totals
	if cfg.Has(ColCurrentBalance) {
		t.CurrentBalance = ptr(cur)
	}
	if cfg.Has(ColYTDBalance) {
		t.YTDBalance = ptr(y)
	}
	if cfg.Has(ColCompareBalance) {
		t.CompareBalance = ptr(cmp)
	}
	if cfg.Has(ColChange) {
		t.Change = ptr(cur.Sub(cmp))
	}
	if cfg.Has(ColPercentChange) {
		pc := percentChange(cur, cmp)
		t.PercentChange = &pc
	}
	return t
}

// sortRows orders rows on col, breaking ties on account code ascending
// whatever the direction. A percent change of n/a sorts last.
func sortRows(rows []Row, col Column, dir SortDirection) {
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareOn(rows[i], rows[j], col)
		if c == 0 {
			return rows[i].account.Code < rows[j].account.Code
		}
		if col == ColPercentChange {
			ni, nj := rows[i].PercentChange.NotApplicable, rows[j].PercentChange.NotApplicable
			if ni != nj {
				return nj
			}
		}
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareOn(a, b Row, col Column) int {
	switch col {
	case ColCode:
		return compareStrings(a.account.Code, b.account.Code)
	case ColName:
		return compareStrings(a.account.Name, b.account.Name)
	case ColType:
		return compareStrings(string(a.account.Type), string(b.account.Type))
	case ColSubtype:
		return compareStrings(string(a.account.Subtype), string(b.account.Subtype))
	case ColCurrentBalance:
		return a.current.Cmp(b.current)
	case ColYTDBalance:
		return a.YTDBalance.Cmp(*b.YTDBalance)
	case ColCompareBalance:
		return a.compare.Cmp(b.compare)
	case ColChange:
		return a.current.Sub(a.compare).Cmp(b.current.Sub(b.compare))
	case ColPercentChange:
		pa, pb := a.PercentChange, b.PercentChange
		switch {
		case pa.NotApplicable && pb.NotApplicable:
			return 0
		case pa.NotApplicable:
			return 1
		case pb.NotApplicable:
			return -1
		}
		return pa.Value.Cmp(pb.Value)
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// group splits sorted rows, keeping their order inside each group. Types
// follow statement order, subtypes and parents sort by key with ungrouped
// rows last.
func group(cfg Config, l *statement.Ledger, rows []Row, ytd amountFunc) []Group {
	var keys []string
	labels := make(map[string]string)
	members := make(map[string][]Row)
	order := make(map[string]string)

	for _, r := range rows {
		var key, label, rank string
		switch cfg.GroupBy {
		case GroupType:
			key, label = string(r.account.Type), string(r.account.Type)
			for i, t := range model.AccountTypes {
				if t == r.account.Type {
					rank = strconv.Itoa(i)
				}
			}
		case GroupSubtype:
			key, label, rank = string(r.account.Subtype), string(r.account.Subtype), "0"+string(r.account.Subtype)
			if key == "" {
				label, rank = "(none)", "1"
			}
		case GroupParent:
			key, label, rank = "", "(top level)", "1"
			if parent, ok := l.Account(r.account.ParentID); ok {
				key, label, rank = strconv.Itoa(parent.ID), parent.Code+" "+parent.Name, "0"+parent.Code
			}
		}
		if _, seen := members[key]; !seen {
			keys = append(keys, key)
			labels[key] = label
			order[key] = rank
		}
		members[key] = append(members[key], r)
	}

	sort.SliceStable(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group{
			Key:    k,
			Label:  labels[k],
			Rows:   members[k],
			Totals: totals(cfg, members[k], ytd),
		})
	}
	return groups
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

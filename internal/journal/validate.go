package journal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// Issue is a single reason a journal entry cannot be posted.
type Issue interface {
	error
	Code() string
}

// TooFewLines is reported when an entry has fewer than two lines.
type TooFewLines struct {
	Count int
}

func (e TooFewLines) Code() string { return "too_few_lines" }
func (e TooFewLines) Error() string {
	return fmt.Sprintf("entry needs at least two lines, has %d", e.Count)
}

// MissingAccount is reported for a line without an account.
type MissingAccount struct {
	LineIndex int
}

func (e MissingAccount) Code() string { return "missing_account" }
func (e MissingAccount) Error() string {
	return fmt.Sprintf("line %d: account required", e.LineIndex+1)
}

// UnknownAccount is reported for a line whose account is not in the chart.
type UnknownAccount struct {
	LineIndex int
	AccountID int
}

func (e UnknownAccount) Code() string { return "unknown_account" }
func (e UnknownAccount) Error() string {
	return fmt.Sprintf("line %d: unknown account %d", e.LineIndex+1, e.AccountID)
}

// AmbiguousAmount is reported for a line without exactly one positive side.
type AmbiguousAmount struct {
	LineIndex int
}

func (e AmbiguousAmount) Code() string { return "ambiguous_amount" }
func (e AmbiguousAmount) Error() string {
	return fmt.Sprintf("line %d: must have exactly one positive debit or credit", e.LineIndex+1)
}

// ExcessPrecision is reported for amounts with more than two decimals.
type ExcessPrecision struct {
	LineIndex int
	Amount    decimal.Decimal
}

func (e ExcessPrecision) Code() string { return "excess_precision" }
func (e ExcessPrecision) Error() string {
	return fmt.Sprintf("line %d: amount %s has more than 2 decimal places", e.LineIndex+1, e.Amount)
}

// BalanceMismatch is reported when debits and credits differ by more than a
// cent. Diff is DebitTotal - CreditTotal.
type BalanceMismatch struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
	Diff        decimal.Decimal
}

func (e BalanceMismatch) Code() string { return "balance_mismatch" }
func (e BalanceMismatch) Error() string {
	return fmt.Sprintf("debits (%s) != credits (%s), difference %s",
		money.Format(e.DebitTotal), money.Format(e.CreditTotal), money.Format(e.Diff))
}

// ZeroAmount is reported for an entry that moves nothing.
type ZeroAmount struct{}

func (e ZeroAmount) Code() string  { return "zero_amount" }
func (e ZeroAmount) Error() string { return "entry total must be greater than zero" }

// Result holds every issue found on an entry, in check order.
type Result struct {
	Issues []Issue
}

// OK reports whether the entry passed every check.
func (r Result) OK() bool { return len(r.Issues) == 0 }

// Err joins all issues, or returns nil when the entry is valid.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Issues))
	for i, issue := range r.Issues {
		errs[i] = issue
	}
	return errors.Join(errs...)
}

// Has reports whether an issue with the given code was found.
func (r Result) Has(code string) bool {
	for _, issue := range r.Issues {
		if issue.Code() == code {
			return true
		}
	}
	return false
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// Validate checks the double-entry invariants of a single entry. It has no
// side effects and is safe to call on every edit.
func Validate(entry model.JournalEntry) Result {
	return validate(entry, nil)
}

// ValidateAgainst is Validate plus a check that every referenced account is
// in the chart.
func ValidateAgainst(entry model.JournalEntry, accounts AccountChecker) Result {
	return validate(entry, accounts)
}

func validate(entry model.JournalEntry, accounts AccountChecker) Result {
	var res Result

	if len(entry.Lines) < 2 {
		res.Issues = append(res.Issues, TooFewLines{Count: len(entry.Lines)})
	}

	for i, line := range entry.Lines {
		if line.AccountID == 0 {
			res.Issues = append(res.Issues, MissingAccount{LineIndex: i})
		} else if accounts != nil && !accounts.Exists(line.AccountID) {
			res.Issues = append(res.Issues, UnknownAccount{LineIndex: i, AccountID: line.AccountID})
		}
	}

	for i, line := range entry.Lines {
		if !line.Amount.IsSet() {
			res.Issues = append(res.Issues, AmbiguousAmount{LineIndex: i})
		}
	}

	for i, line := range entry.Lines {
		if v := line.Amount.Value(); money.HasExcessPrecision(v) {
			res.Issues = append(res.Issues, ExcessPrecision{LineIndex: i, Amount: v})
		}
	}

	debit, credit := sumPositive(entry.Lines)
	if !money.Equal(debit, credit) {
		res.Issues = append(res.Issues, BalanceMismatch{
			DebitTotal:  debit,
			CreditTotal: credit,
			Diff:        debit.Sub(credit),
		})
	}

	if !debit.IsPositive() && !credit.IsPositive() {
		res.Issues = append(res.Issues, ZeroAmount{})
	}

	return res
}

// sumPositive totals each column, ignoring non-positive amounts already
// reported as ambiguous.
func sumPositive(lines []model.JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		if !l.Amount.IsSet() {
			continue
		}
		debit = debit.Add(l.Amount.DebitValue())
		credit = credit.Add(l.Amount.CreditValue())
	}
	return debit, credit
}

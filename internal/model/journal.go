package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidStatus indicates a lifecycle transition that is not allowed.
var ErrInvalidStatus = errors.New("model: invalid status transition")

// EntryStatus represents the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusDraft  EntryStatus = "draft"
	StatusPosted EntryStatus = "posted"
	StatusVoided EntryStatus = "voided"
)

// Valid reports whether s is one of the known statuses. Matching is exact.
func (s EntryStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPosted, StatusVoided:
		return true
	}
	return false
}

// CanTransition reports whether an entry may move from s to next.
// Entries only move forward; voided is terminal.
func (s EntryStatus) CanTransition(next EntryStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusPosted
	case StatusPosted:
		return next == StatusVoided
	}
	return false
}

// Side is the column a line amount belongs to.
type Side int

const (
	SideNone Side = iota
	SideDebit
	SideCredit
)

func (s Side) String() string {
	switch s {
	case SideDebit:
		return "debit"
	case SideCredit:
		return "credit"
	}
	return "none"
}

// LineAmount is either a debit or a credit, never both. The zero value is
// unset.
type LineAmount struct {
	side  Side
	value decimal.Decimal
}

// Debit returns a debit of d.
func Debit(d decimal.Decimal) LineAmount { return LineAmount{side: SideDebit, value: d} }

// Credit returns a credit of d.
func Credit(d decimal.Decimal) LineAmount { return LineAmount{side: SideCredit, value: d} }

// NewLineAmount builds a LineAmount from the two-column form used by CSV
// files and entry forms. Exactly one column must be non-zero.
func NewLineAmount(debit, credit decimal.Decimal) (LineAmount, error) {
	hasDebit := !debit.IsZero()
	hasCredit := !credit.IsZero()
	switch {
	case hasDebit && hasCredit:
		return LineAmount{}, fmt.Errorf("line has both debit %s and credit %s", debit.StringFixed(2), credit.StringFixed(2))
	case hasDebit:
		return Debit(debit), nil
	case hasCredit:
		return Credit(credit), nil
	}
	return LineAmount{}, errors.New("line has neither debit nor credit")
}

func (a LineAmount) Side() Side             { return a.side }
func (a LineAmount) Value() decimal.Decimal { return a.value }

// IsSet reports whether a has a side and a strictly positive value.
func (a LineAmount) IsSet() bool {
	return a.side != SideNone && a.value.IsPositive()
}

// DebitValue returns the debit column (zero for credits).
func (a LineAmount) DebitValue() decimal.Decimal {
	if a.side == SideDebit {
		return a.value
	}
	return decimal.Zero
}

// CreditValue returns the credit column (zero for debits).
func (a LineAmount) CreditValue() decimal.Decimal {
	if a.side == SideCredit {
		return a.value
	}
	return decimal.Zero
}

func (a LineAmount) String() string {
	return a.side.String() + " " + a.value.StringFixed(2)
}

// JournalLine is one side of a double-entry movement.
type JournalLine struct {
	AccountID   int // 0 = not chosen yet
	Description string
	Amount      LineAmount
}

// JournalEntry is a dated group of lines that must balance once posted.
type JournalEntry struct {
	Number      string
	Date        Date
	Description string
	Reference   string
	Status      EntryStatus
	Lines       []JournalLine
}

// Totals sums the debit and credit columns.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Amount.DebitValue())
		credit = credit.Add(l.Amount.CreditValue())
	}
	return debit, credit
}

// Transition returns a copy of e in the next status.
func (e JournalEntry) Transition(next EntryStatus) (JournalEntry, error) {
	if !e.Status.CanTransition(next) {
		return e, fmt.Errorf("%w: entry %s %s -> %s", ErrInvalidStatus, e.Number, e.Status, next)
	}
	e.Status = next
	return e, nil
}

type lineAmountJSON struct {
	Side   string `json:"side"`
	Amount string `json:"amount"`
}

func (a LineAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(lineAmountJSON{Side: a.side.String(), Amount: a.value.StringFixed(2)})
}

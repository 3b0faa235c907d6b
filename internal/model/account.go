package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists every type in statement order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// ParseAccountType accepts any casing; "income" is an alias for revenue.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(strings.ToLower(strings.TrimSpace(s))); t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return t, nil
	case "income":
		return AccountTypeRevenue, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// NormalSide is the side on which the account type grows.
func (t AccountType) NormalSide() Side {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// IsBalanceSheet reports whether balances of this type carry across periods.
func (t AccountType) IsBalanceSheet() bool {
	return t == AccountTypeAsset || t == AccountTypeLiability || t == AccountTypeEquity
}

// Subtype is a free-form account tag. A few values carry meaning for
// statements.
type Subtype string

const (
	SubtypeCash      Subtype = "cash"
	SubtypeBank      Subtype = "bank"
	SubtypeOperating Subtype = "operating"
	SubtypeInvesting Subtype = "investing"
	SubtypeFinancing Subtype = "financing"
)

// IsCash reports whether the subtype marks a cash or bank account.
func (s Subtype) IsCash() bool {
	return s == SubtypeCash || s == SubtypeBank
}

// Account is a node in the chart of accounts.
type Account struct {
	ID             int
	Code           string
	Name           string
	Type           AccountType
	Subtype        Subtype
	ParentID       int // 0 = top-level
	IsActive       bool
	OpeningBalance decimal.Decimal // in the account's normal direction
	Description    string
}

// Signed converts a posting into the account's normal direction: a debit
// grows an asset and shrinks a liability.
func (a Account) Signed(amount LineAmount) decimal.Decimal {
	v := amount.Value()
	if amount.Side() != a.Type.NormalSide() {
		return v.Neg()
	}
	return v
}

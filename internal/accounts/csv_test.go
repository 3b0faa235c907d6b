package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: 1010, Code: "1010", Name: "Business Checking", Type: model.AccountTypeAsset, Subtype: model.SubtypeBank,
			IsActive: true, OpeningBalance: decimal.RequireFromString("2500.00"), Description: "Primary checking account"},
		{ID: 5020, Code: "5020", Name: "Software, SaaS", Type: model.AccountTypeExpense, ParentID: 5000},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, accounts[0].ID, got[0].ID)
	assert.Equal(t, accounts[0].Code, got[0].Code)
	assert.Equal(t, accounts[0].Subtype, got[0].Subtype)
	assert.True(t, got[0].IsActive)
	assert.True(t, got[0].OpeningBalance.Equal(decimal.RequireFromString("2500")))
	assert.Equal(t, accounts[0].Description, got[0].Description)

	assert.Equal(t, "Software, SaaS", got[1].Name)
	assert.Equal(t, 5000, got[1].ParentID)
	assert.False(t, got[1].IsActive)
	assert.True(t, got[1].OpeningBalance.IsZero())
}

func TestUnmarshalAccount_Defaults(t *testing.T) {
	// Blank code falls back to the id, blank is_active means active.
	acct, err := UnmarshalAccount([]string{"4010", "", "Sales", "Income", "", "", "", "", ""})
	require.NoError(t, err)
	assert.Equal(t, "4010", acct.Code)
	assert.Equal(t, model.AccountTypeRevenue, acct.Type)
	assert.True(t, acct.IsActive)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
	}{
		{"bad id", []string{"x", "", "A", "asset", "", "", "", "", ""}},
		{"bad type", []string{"1", "", "A", "widget", "", "", "", "", ""}},
		{"bad parent", []string{"1", "", "A", "asset", "", "p", "", "", ""}},
		{"bad active", []string{"1", "", "A", "asset", "", "", "maybe", "", ""}},
		{"bad opening", []string{"1", "", "A", "asset", "", "", "", "lots", ""}},
		{"short", []string{"1", "", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAccount(tt.record)
			assert.Error(t, err)
		})
	}
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart("small_business")
	require.NotEmpty(t, chart)
	require.NoError(t, Check(chart))

	ids := make(map[int]bool)
	for _, a := range chart {
		ids[a.ID] = true
		assert.True(t, a.IsActive)
		assert.NotEmpty(t, a.Code)
	}
	for _, id := range []int{ReceivableID, PayableID, InputTaxID, OutputTaxID} {
		assert.True(t, ids[id], "control account %d", id)
	}

	var cash int
	for _, a := range chart {
		if a.Subtype.IsCash() {
			cash++
		}
	}
	assert.Equal(t, 3, cash)
}

func TestReadAccounts_HeaderOnly(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

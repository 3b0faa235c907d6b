package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/accounts"
	"github.com/ledgerbook/ledgerbook/internal/commands"
	"github.com/ledgerbook/ledgerbook/internal/runlog"
)

func runLedgerbook(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func initBooks(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runLedgerbook(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)
	return dir
}

func writeFile(t *testing.T, path, contents string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const capitalEntry = `date: 2025-01-10
description: Owner investment
lines:
  - account_id: 1010
    debit: "1000"
  - account_id: 3010
    credit: "1000"
`

const saleInvoice = `kind: sale
status: sent
date: 2025-01-15
party:
  name: Acme Traders
  tax_id: 29ABCDE1234F1Z5
lines:
  - description: Consulting
    quantity: "2"
    unit_price: "100"
    tax_rate: "18"
    account_id: 4020
`

func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initBooks(t)

	for _, d := range []string{"accounts", "invoices", "reports", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	data, err := os.ReadFile(filepath.Join(dir, "ledgerbook.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Test Biz")

	svc, err := accounts.Load(dir)
	require.NoError(t, err)
	assert.True(t, svc.Exists(accounts.ReceivableID))
}

func TestInit_RefusesExistingBooks(t *testing.T) {
	dir := initBooks(t)
	_, err := runLedgerbook(t, "init", dir, "--name", "Again")
	assert.Error(t, err)
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runLedgerbook(t, "init", t.TempDir())
	assert.Error(t, err)
}

func TestJournal_AddPostVoidList(t *testing.T) {
	dir := initBooks(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "entry.yaml"), capitalEntry)

	out, err := runLedgerbook(t, "--books", dir, "journal", "add", path)
	require.NoError(t, err)
	var added struct {
		Number     string `json:"number"`
		Status     string `json:"status"`
		TotalDebit string `json:"total_debit"`
	}
	decodeJSON(t, out, &added)
	assert.Equal(t, "2025-01-001", added.Number)
	assert.Equal(t, "draft", added.Status)
	assert.Equal(t, "1000.00", added.TotalDebit)

	_, err = runLedgerbook(t, "--books", dir, "journal", "void", added.Number)
	assert.Error(t, err, "a draft cannot be voided")

	_, err = runLedgerbook(t, "--books", dir, "journal", "post", added.Number)
	require.NoError(t, err)

	out, err = runLedgerbook(t, "--books", dir, "journal", "list", "--status", "posted")
	require.NoError(t, err)
	var listed []struct {
		Number string `json:"number"`
	}
	decodeJSON(t, out, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "2025-01-001", listed[0].Number)

	_, err = runLedgerbook(t, "--books", dir, "journal", "void", added.Number)
	require.NoError(t, err)

	out, err = runLedgerbook(t, "--books", dir, "journal", "list", "--month", "2025-01", "--status", "voided")
	require.NoError(t, err)
	decodeJSON(t, out, &listed)
	assert.Len(t, listed, 1)
}

func TestJournal_AddRejectsUnbalanced(t *testing.T) {
	dir := initBooks(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "entry.yaml"), `date: 2025-01-10
lines:
  - account_id: 1010
    debit: "100"
  - account_id: 3010
    credit: "90"
`)
	_, err := runLedgerbook(t, "--books", dir, "journal", "add", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestJournal_AddRejectsBothColumns(t *testing.T) {
	dir := initBooks(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "entry.yaml"), `date: 2025-01-10
lines:
  - account_id: 1010
    debit: "100"
    credit: "100"
  - account_id: 3010
    credit: "100"
`)
	_, err := runLedgerbook(t, "--books", dir, "journal", "add", path)
	assert.Error(t, err)
}

func TestJournal_Validate(t *testing.T) {
	dir := initBooks(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "entry.yaml"), capitalEntry)
	_, err := runLedgerbook(t, "--books", dir, "journal", "add", "--post", path)
	require.NoError(t, err)

	out, err := runLedgerbook(t, "--books", dir, "journal", "validate")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	// Edit the stored entry so it no longer balances.
	journalPath := filepath.Join(dir, "2025", "01", "journal.csv")
	data, err := os.ReadFile(journalPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(journalPath, bytes.Replace(data, []byte(",,1000.00"), []byte(",,900.00"), 1), 0o644))

	out, err = runLedgerbook(t, "--books", dir, "journal", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "balance_mismatch")
}

func TestInvoice_ComputeSavePostAndTaxSummary(t *testing.T) {
	dir := initBooks(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "invoice.yaml"), saleInvoice)

	out, err := runLedgerbook(t, "--books", dir, "invoice", "compute", "--save", "--post", path)
	require.NoError(t, err)

	var computed struct {
		Invoice struct {
			Number   string          `json:"number"`
			DueDate  string          `json:"due_date"`
			Subtotal decimal.Decimal `json:"subtotal"`
			GSTTotal decimal.Decimal `json:"gst_total"`
			Total    decimal.Decimal `json:"total"`
		} `json:"invoice"`
		Entry *struct {
			Reference  string `json:"reference"`
			Status     string `json:"status"`
			TotalDebit string `json:"total_debit"`
		} `json:"journal_entry"`
	}
	decodeJSON(t, out, &computed)
	assert.Equal(t, "INV-2025-0001", computed.Invoice.Number)
	assert.Equal(t, "2025-02-14", computed.Invoice.DueDate)
	assertDec(t, "200", computed.Invoice.Subtotal)
	assertDec(t, "36", computed.Invoice.GSTTotal)
	assertDec(t, "236", computed.Invoice.Total)
	require.NotNil(t, computed.Entry)
	assert.Equal(t, "INV-2025-0001", computed.Entry.Reference)
	assert.Equal(t, "posted", computed.Entry.Status)
	assert.Equal(t, "236.00", computed.Entry.TotalDebit)

	_, err = os.Stat(filepath.Join(dir, "invoices", "INV-2025-0001.yaml"))
	require.NoError(t, err)

	out, err = runLedgerbook(t, "--books", dir, "invoice", "compute", "--save", path)
	require.NoError(t, err)
	assert.Contains(t, out, "INV-2025-0002")

	out, err = runLedgerbook(t, "--books", dir, "tax", "summary", "--start", "2025-01-01", "--end", "2025-01-31")
	require.NoError(t, err)
	var summary struct {
		Invoices   int             `json:"invoices"`
		OutputTax  decimal.Decimal `json:"output_tax"`
		NetPayable decimal.Decimal `json:"net_payable"`
	}
	decodeJSON(t, out, &summary)
	assert.Equal(t, 2, summary.Invoices)
	assertDec(t, "72", summary.OutputTax)
	assertDec(t, "72", summary.NetPayable)
}

func TestInvoice_ComputeWarnsOnBadNumbers(t *testing.T) {
	dir := initBooks(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "invoice.yaml"), `date: 2025-01-15
lines:
  - description: Widget
    quantity: "-3"
    unit_price: "abc"
    account_id: 4010
`)
	out, err := runLedgerbook(t, "--books", dir, "invoice", "compute", path)
	require.NoError(t, err)

	var computed struct {
		Warnings []string `json:"warnings"`
	}
	decodeJSON(t, out, &computed)
	assert.Len(t, computed.Warnings, 2)
}

func seedBooks(t *testing.T) string {
	t.Helper()
	dir := initBooks(t)
	entry := writeFile(t, filepath.Join(t.TempDir(), "entry.yaml"), capitalEntry)
	_, err := runLedgerbook(t, "--books", dir, "journal", "add", "--post", entry)
	require.NoError(t, err)
	inv := writeFile(t, filepath.Join(t.TempDir(), "invoice.yaml"), saleInvoice)
	_, err = runLedgerbook(t, "--books", dir, "invoice", "compute", "--save", "--post", inv)
	require.NoError(t, err)
	return dir
}

func TestReport_BalanceSheet(t *testing.T) {
	dir := seedBooks(t)

	out, err := runLedgerbook(t, "--books", dir, "report", "balance-sheet", "--as-of", "2025-01-31", "--compare-as-of", "2025-01-12")
	require.NoError(t, err)

	var bs struct {
		TotalAssets               decimal.Decimal  `json:"total_assets"`
		TotalLiabilitiesAndEquity decimal.Decimal  `json:"total_liabilities_and_equity"`
		CompareTotalAssets        *decimal.Decimal `json:"compare_total_assets"`
		Warnings                  []any            `json:"warnings"`
	}
	decodeJSON(t, out, &bs)
	assertDec(t, "1236", bs.TotalAssets)
	assertDec(t, "1236", bs.TotalLiabilitiesAndEquity)
	require.NotNil(t, bs.CompareTotalAssets)
	assertDec(t, "1000", *bs.CompareTotalAssets)
	assert.Empty(t, bs.Warnings)
}

func TestReport_ProfitLossAndCashFlow(t *testing.T) {
	dir := seedBooks(t)

	out, err := runLedgerbook(t, "--books", dir, "report", "profit-loss", "--start", "2025-01-01", "--end", "2025-03-31", "--group-by", "month")
	require.NoError(t, err)
	var pl struct {
		NetProfit decimal.Decimal `json:"net_profit"`
		Periods   []struct {
			Label string `json:"label"`
		} `json:"periods"`
	}
	decodeJSON(t, out, &pl)
	assertDec(t, "200", pl.NetProfit)
	require.Len(t, pl.Periods, 3)
	assert.Equal(t, "2025-01", pl.Periods[0].Label)

	out, err = runLedgerbook(t, "--books", dir, "report", "cash-flow", "--start", "2025-01-01", "--end", "2025-01-31")
	require.NoError(t, err)
	var cf struct {
		NetChange      decimal.Decimal `json:"net_change"`
		ClosingBalance decimal.Decimal `json:"closing_balance"`
	}
	decodeJSON(t, out, &cf)
	assertDec(t, "1000", cf.NetChange)
	assertDec(t, "1000", cf.ClosingBalance)

	_, err = runLedgerbook(t, "--books", dir, "report", "profit-loss", "--start", "2025-03-01", "--end", "2025-01-01")
	assert.Error(t, err)
}

func TestReport_CustomTemplateAndRunLog(t *testing.T) {
	dir := seedBooks(t)
	writeFile(t, filepath.Join(dir, "reports", "revenue.yaml"), `start: 2025-01-01
end: 2025-01-31
account_types: [revenue]
columns: [code, name, current_balance]
sort_by: current_balance
sort_direction: desc
`)

	var outputs []string
	for n := 0; n < 2; n++ {
		out, err := runLedgerbook(t, "--books", dir, "report", "custom", "revenue")
		require.NoError(t, err)
		outputs = append(outputs, out)
	}
	assert.Equal(t, outputs[0], outputs[1])

	var res struct {
		Rows []struct {
			AccountID      int             `json:"account_id"`
			CurrentBalance decimal.Decimal `json:"current_balance"`
		} `json:"rows"`
	}
	decodeJSON(t, outputs[0], &res)
	require.NotEmpty(t, res.Rows)
	assert.Equal(t, 4020, res.Rows[0].AccountID)
	assertDec(t, "200", res.Rows[0].CurrentBalance)

	runs, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "custom:revenue", runs[0].Report)
	assert.Equal(t, runs[0].Digest, runs[1].Digest)
	assert.Equal(t, runlog.Digest([]byte(outputs[0])), runs[0].Digest)

	out, err := runLedgerbook(t, "--books", dir, "runs", "list", "--report", "custom:revenue")
	require.NoError(t, err)
	var listed []map[string]any
	decodeJSON(t, out, &listed)
	assert.Len(t, listed, 2)
}

func TestReport_CustomRejectsBadConfig(t *testing.T) {
	dir := initBooks(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "bad.yaml"), `start: 2025-01-01
end: 2025-01-31
columns: [code, balance]
`)
	_, err := runLedgerbook(t, "--books", dir, "report", "custom", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns[1]")
}

func TestSchedule_Next(t *testing.T) {
	dir := initBooks(t)
	writeFile(t, filepath.Join(dir, "reports", "pl.yaml"), "start: 2025-01-01\nend: 2025-01-31\ncolumns: [code]\n")
	writeFile(t, filepath.Join(dir, "reports", "bs.yaml"), "start: 2025-01-01\nend: 2025-01-31\ncolumns: [code]\n")

	out, err := runLedgerbook(t, "--books", dir, "schedule", "next",
		"--template", "pl", "--template", "bs",
		"--frequency", "monthly", "--time", "09:00", "--month-day", "31",
		"--from", "2025-02-01T00:00:00Z")
	require.NoError(t, err)

	var runs []struct {
		ID         string `json:"id"`
		TemplateID string `json:"template_id"`
		NextRun    string `json:"next_run"`
	}
	decodeJSON(t, out, &runs)
	require.Len(t, runs, 2)
	assert.Equal(t, "pl", runs[0].TemplateID)
	assert.Equal(t, "2025-02-28T09:00:00Z", runs[0].NextRun)
	assert.NotEqual(t, runs[0].ID, runs[1].ID)
}

func TestSchedule_NextWeekly(t *testing.T) {
	dir := initBooks(t)
	writeFile(t, filepath.Join(dir, "reports", "pl.yaml"), "start: 2025-01-01\nend: 2025-01-31\ncolumns: [code]\n")

	out, err := runLedgerbook(t, "--books", dir, "schedule", "next", "--template", "pl",
		"--frequency", "weekly", "--time", "09:00", "--weekday", "mon,wed",
		"--from", "2025-03-11T10:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, `"next_run": "2025-03-12T09:00:00Z"`)
}

func TestSchedule_NextRejects(t *testing.T) {
	dir := initBooks(t)
	writeFile(t, filepath.Join(dir, "reports", "pl.yaml"), "start: 2025-01-01\nend: 2025-01-31\ncolumns: [code]\n")

	_, err := runLedgerbook(t, "--books", dir, "schedule", "next", "--template", "missing",
		"--frequency", "daily", "--time", "09:00")
	assert.Error(t, err)

	_, err = runLedgerbook(t, "--books", dir, "schedule", "next", "--template", "pl",
		"--frequency", "weekly", "--time", "09:00")
	assert.Error(t, err)
}

func TestBooksFromEnvironment(t *testing.T) {
	dir := initBooks(t)
	t.Setenv("LEDGERBOOK_BOOKS", dir)

	out, err := runLedgerbook(t, "journal", "list")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

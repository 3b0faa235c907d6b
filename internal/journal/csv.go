package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// Header is the CSV header for journal.csv. Each row is one line of an
// entry; the entry fields repeat on every line.
const Header = "entry_number,date,status,description,reference,account_id,line_description,debit,credit"

const (
	numFields   = 9
	colNumber   = 0
	colDate     = 1
	colStatus   = 2
	colDesc     = 3
	colRef      = 4
	colAcctID   = 5
	colLineDesc = 6
	colDebit    = 7
	colCredit   = 8
)

// ReadEntries reads all entries from a journal.csv reader. Rows sharing an
// entry number are folded into one entry in file order.
func ReadEntries(r io.Reader) ([]model.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var entries []model.JournalEntry
	index := make(map[string]int)
	for i, rec := range records[1:] {
		entry, line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		pos, seen := index[entry.Number]
		if !seen {
			index[entry.Number] = len(entries)
			entries = append(entries, entry)
			pos = len(entries) - 1
		}
		entries[pos].Lines = append(entries[pos].Lines, line)
	}
	return entries, nil
}

// WriteEntries writes entries to a journal.csv writer (including header).
func WriteEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		for j, line := range e.Lines {
			if err := cw.Write(MarshalLine(e, line)); err != nil {
				return fmt.Errorf("writing entry %s line %d: %w", e.Number, j+1, err)
			}
		}
	}
	return cw.Error()
}

// MarshalLine converts one line of an entry to a CSV row.
func MarshalLine(e model.JournalEntry, line model.JournalLine) []string {
	row := make([]string, numFields)
	row[colNumber] = e.Number
	row[colDate] = e.Date.String()
	row[colStatus] = string(e.Status)
	row[colDesc] = e.Description
	row[colRef] = e.Reference
	if line.AccountID != 0 {
		row[colAcctID] = strconv.Itoa(line.AccountID)
	}
	row[colLineDesc] = line.Description

	switch line.Amount.Side() {
	case model.SideDebit:
		row[colDebit] = money.Format(line.Amount.Value())
	case model.SideCredit:
		row[colCredit] = money.Format(line.Amount.Value())
	}
	return row
}

// UnmarshalLine converts a CSV row into the entry header it belongs to and
// the line it carries.
func UnmarshalLine(record []string) (model.JournalEntry, model.JournalLine, error) {
	if len(record) != numFields {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := model.ParseDate(record[colDate])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, err
	}

	status := model.EntryStatus(record[colStatus])
	if !status.Valid() {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("unknown status %q: want draft, posted or voided", record[colStatus])
	}

	var accountID int
	if record[colAcctID] != "" {
		accountID, err = strconv.Atoi(record[colAcctID])
		if err != nil {
			return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
		}
	}

	debit, err := money.Parse(record[colDebit])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("debit: %w", err)
	}
	credit, err := money.Parse(record[colCredit])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("credit: %w", err)
	}
	amount, err := model.NewLineAmount(debit, credit)
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, err
	}

	entry := model.JournalEntry{
		Number:      record[colNumber],
		Date:        date,
		Status:      status,
		Description: record[colDesc],
		Reference:   record[colRef],
	}
	line := model.JournalLine{
		AccountID:   accountID,
		Description: record[colLineDesc],
		Amount:      amount,
	}
	return entry, line, nil
}

package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// Header is the CSV header for chart-of-accounts.csv.
const Header = "account_id,code,name,type,subtype,parent_id,is_active,opening_balance,description"

const (
	numFields  = 9
	colID      = 0
	colCode    = 1
	colName    = 2
	colType    = 3
	colSubtype = 4
	colParent  = 5
	colActive  = 6
	colOpening = 7
	colDesc    = 8
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(acct.ID)
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colSubtype] = string(acct.Subtype)
	if acct.ParentID != 0 {
		row[colParent] = strconv.Itoa(acct.ParentID)
	}
	row[colActive] = strconv.FormatBool(acct.IsActive)
	if !acct.OpeningBalance.IsZero() {
		row[colOpening] = money.Format(acct.OpeningBalance)
	}
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account. An empty is_active
// column means active.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	accountType, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, err
	}

	var parentID int
	if record[colParent] != "" {
		parentID, err = strconv.Atoi(record[colParent])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing parent_id %q: %w", record[colParent], err)
		}
	}

	active := true
	if record[colActive] != "" {
		active, err = strconv.ParseBool(record[colActive])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing is_active %q: %w", record[colActive], err)
		}
	}

	opening, err := money.Parse(record[colOpening])
	if err != nil {
		return model.Account{}, fmt.Errorf("opening_balance: %w", err)
	}

	code := record[colCode]
	if code == "" {
		code = record[colID]
	}

	return model.Account{
		ID:             id,
		Code:           code,
		Name:           record[colName],
		Type:           accountType,
		Subtype:        model.Subtype(record[colSubtype]),
		ParentID:       parentID,
		IsActive:       active,
		OpeningBalance: opening,
		Description:    record[colDesc],
	}, nil
}

package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ledgerbook/ledgerbook/internal/model"
)

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[int]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[int]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// Load reads chart-of-accounts.csv from a books directory, checks it and
// returns a Service.
func Load(repoRoot string) (*Service, error) {
	path := filepath.Join(repoRoot, "accounts", "chart-of-accounts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	if err := Check(accts); err != nil {
		return nil, fmt.Errorf("invalid chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

// Check reports duplicate ids or codes, missing parents, parents of a
// different type, and parent cycles.
func Check(accts []model.Account) error {
	var errs []error
	byID := make(map[int]model.Account, len(accts))
	codes := make(map[string]bool, len(accts))
	for _, a := range accts {
		if a.ID <= 0 {
			errs = append(errs, fmt.Errorf("account %q: id must be positive", a.Name))
			continue
		}
		if _, dup := byID[a.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate account id %d", a.ID))
		}
		if codes[a.Code] {
			errs = append(errs, fmt.Errorf("duplicate account code %q", a.Code))
		}
		byID[a.ID] = a
		codes[a.Code] = true
	}

	for _, a := range accts {
		if a.ParentID == 0 {
			continue
		}
		parent, ok := byID[a.ParentID]
		if !ok {
			errs = append(errs, fmt.Errorf("account %d: parent %d not found", a.ID, a.ParentID))
			continue
		}
		if parent.Type != a.Type {
			errs = append(errs, fmt.Errorf("account %d: parent %d is %s, not %s", a.ID, parent.ID, parent.Type, a.Type))
		}
		seen := map[int]bool{a.ID: true}
		for p := a.ParentID; p != 0; p = byID[p].ParentID {
			if seen[p] {
				errs = append(errs, fmt.Errorf("account %d: parent cycle", a.ID))
				break
			}
			seen[p] = true
		}
	}
	return errors.Join(errs...)
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id int) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type, ordered by code.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, "chart-of-accounts.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}

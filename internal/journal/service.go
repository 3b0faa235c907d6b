package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ledgerbook/ledgerbook/internal/id"
	"github.com/ledgerbook/ledgerbook/internal/model"
)

// ErrEntryNotFound is returned when an entry number is not in the journal.
var ErrEntryNotFound = errors.New("journal: entry not found")

// Service stores journal entries as one journal.csv per month under a
// books directory.
type Service struct {
	repoRoot string
	accounts AccountChecker
}

// NewService creates a journal Service.
func NewService(repoRoot string, accounts AccountChecker) *Service {
	return &Service{repoRoot: repoRoot, accounts: accounts}
}

// AddParams holds parameters for recording a journal entry.
type AddParams struct {
	Date        model.Date
	Description string
	Reference   string
	Lines       []model.JournalLine
	Post        bool // record as posted instead of draft
}

// Add validates a new entry, numbers it and appends it to the month's
// journal.csv.
func (s *Service) Add(params AddParams) (model.JournalEntry, error) {
	year, month := params.Date.Year, int(params.Date.Month)

	seq, err := s.NextEntrySeq(year, month)
	if err != nil {
		return model.JournalEntry{}, err
	}

	entry := model.JournalEntry{
		Number:      id.FormatEntryNumber(year, month, seq),
		Date:        params.Date,
		Description: params.Description,
		Reference:   params.Reference,
		Status:      model.StatusDraft,
		Lines:       params.Lines,
	}
	if params.Post {
		entry.Status = model.StatusPosted
	}

	if res := ValidateAgainst(entry, s.accounts); !res.OK() {
		return model.JournalEntry{}, fmt.Errorf("validation failed: %w", res.Err())
	}

	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if err := s.writeMonth(year, month, append(existing, entry)); err != nil {
		return model.JournalEntry{}, err
	}
	return entry, nil
}

// Post moves a draft entry to posted after re-validating it.
func (s *Service) Post(number string) (model.JournalEntry, error) {
	return s.transition(number, model.StatusPosted)
}

// Void moves a posted entry to voided. Voided entries stay in the file but
// no longer reach the ledger.
func (s *Service) Void(number string) (model.JournalEntry, error) {
	return s.transition(number, model.StatusVoided)
}

func (s *Service) transition(number string, next model.EntryStatus) (model.JournalEntry, error) {
	year, month, _, err := id.ParseEntryNumber(number)
	if err != nil {
		return model.JournalEntry{}, err
	}
	entries, err := s.ReadMonth(year, month)
	if err != nil {
		return model.JournalEntry{}, err
	}

	for i, e := range entries {
		if e.Number != number {
			continue
		}
		updated, err := e.Transition(next)
		if err != nil {
			return model.JournalEntry{}, err
		}
		if next == model.StatusPosted {
			if res := ValidateAgainst(updated, s.accounts); !res.OK() {
				return model.JournalEntry{}, fmt.Errorf("validation failed: %w", res.Err())
			}
		}
		entries[i] = updated
		if err := s.writeMonth(year, month, entries); err != nil {
			return model.JournalEntry{}, err
		}
		return updated, nil
	}
	return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, number)
}

// ReadMonth reads all entries for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.JournalEntry, error) {
	return readFile(s.monthPath(year, month))
}

// All reads every month in chronological order.
func (s *Service) All() ([]model.JournalEntry, error) {
	paths, err := filepath.Glob(filepath.Join(s.repoRoot, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "journal.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	sort.Strings(paths)

	var all []model.JournalEntry
	for _, path := range paths {
		entries, err := readFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

// NextEntrySeq returns the next available sequence number for a month.
func (s *Service) NextEntrySeq(year, month int) (int, error) {
	entries, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}

	maxSeq := 0
	for _, e := range entries {
		_, _, seq, err := id.ParseEntryNumber(e.Number)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

func readFile(path string) ([]model.JournalEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return entries, nil
}

// writeMonth replaces the month's journal via a temp file so a failed write
// never truncates existing entries.
func (s *Service) writeMonth(year, month int, entries []model.JournalEntry) error {
	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating journal: %w", err)
	}
	if err := WriteEntries(f, entries); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing journal: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing journal: %w", err)
	}
	return nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}

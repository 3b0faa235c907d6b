package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook/internal/journal"
	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/money"
)

// entryFile is a journal entry as written by hand.
type entryFile struct {
	Date        string     `yaml:"date"`
	Description string     `yaml:"description"`
	Reference   string     `yaml:"reference"`
	Lines       []lineFile `yaml:"lines"`
}

type lineFile struct {
	AccountID   int    `yaml:"account_id"`
	Description string `yaml:"description"`
	Debit       string `yaml:"debit"`
	Credit      string `yaml:"credit"`
}

func (f entryFile) params() (journal.AddParams, error) {
	date, err := model.ParseDate(f.Date)
	if err != nil {
		return journal.AddParams{}, err
	}
	p := journal.AddParams{Date: date, Description: f.Description, Reference: f.Reference}
	for i, l := range f.Lines {
		debit, err := money.Parse(l.Debit)
		if err != nil {
			return journal.AddParams{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		credit, err := money.Parse(l.Credit)
		if err != nil {
			return journal.AddParams{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		amount, err := model.NewLineAmount(debit, credit)
		if err != nil {
			return journal.AddParams{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		p.Lines = append(p.Lines, model.JournalLine{AccountID: l.AccountID, Description: l.Description, Amount: amount})
	}
	return p, nil
}

type entryView struct {
	Number      string     `json:"number"`
	Date        model.Date `json:"date"`
	Description string     `json:"description"`
	Reference   string     `json:"reference,omitempty"`
	Status      string     `json:"status"`
	Lines       []lineView `json:"lines"`
	TotalDebit  string     `json:"total_debit"`
	TotalCredit string     `json:"total_credit"`
}

type lineView struct {
	AccountID   int    `json:"account_id"`
	Description string `json:"description,omitempty"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
}

func viewEntry(e model.JournalEntry) entryView {
	debit, credit := e.Totals()
	v := entryView{
		Number:      e.Number,
		Date:        e.Date,
		Description: e.Description,
		Reference:   e.Reference,
		Status:      string(e.Status),
		Lines:       make([]lineView, len(e.Lines)),
		TotalDebit:  money.Format(debit),
		TotalCredit: money.Format(credit),
	}
	for i, l := range e.Lines {
		lv := lineView{AccountID: l.AccountID, Description: l.Description}
		switch l.Amount.Side() {
		case model.SideDebit:
			lv.Debit = money.Format(l.Amount.Value())
		case model.SideCredit:
			lv.Credit = money.Format(l.Amount.Value())
		}
		v.Lines[i] = lv
	}
	return v
}

func newJournalCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Record and inspect journal entries",
	}
	cmd.AddCommand(
		newJournalAddCommand(a),
		newJournalValidateCommand(a),
		newJournalTransitionCommand(a, "post", "Post a draft entry", (*journal.Service).Post),
		newJournalTransitionCommand(a, "void", "Void a posted entry", (*journal.Service).Void),
		newJournalListCommand(a),
	)
	return cmd
}

func newJournalAddCommand(a *app) *cobra.Command {
	var post bool

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add an entry from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			var f entryFile
			if err := readDocument(args[0], &f); err != nil {
				return err
			}
			params, err := f.params()
			if err != nil {
				return err
			}
			params.Post = post

			entry, err := b.journal.Add(params)
			if err != nil {
				return err
			}
			b.logger.Info("journal entry added", "number", entry.Number, "status", entry.Status)
			return writeJSON(cmd.OutOrStdout(), viewEntry(entry))
		},
	}
	cmd.Flags().BoolVar(&post, "post", false, "record the entry as posted")
	return cmd
}

type issueView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type validationView struct {
	Number string      `json:"number"`
	Status string      `json:"status"`
	Issues []issueView `json:"issues"`
}

func newJournalValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every stored entry against the double-entry rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			entries, err := b.journal.All()
			if err != nil {
				return err
			}

			failed := []validationView{}
			for _, e := range entries {
				if e.Status == model.StatusVoided {
					continue
				}
				res := journal.ValidateAgainst(e, b.chart)
				if res.OK() {
					continue
				}
				v := validationView{Number: e.Number, Status: string(e.Status)}
				for _, issue := range res.Issues {
					v.Issues = append(v.Issues, issueView{Code: issue.Code(), Message: issue.Error()})
				}
				failed = append(failed, v)
			}
			if err := writeJSON(cmd.OutOrStdout(), failed); err != nil {
				return err
			}
			b.logger.Info("journal validated", "entries", len(entries), "failed", len(failed))
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d entries failed validation", len(failed), len(entries))
			}
			return nil
		},
	}
}

func newJournalTransitionCommand(a *app, use, short string, fn func(*journal.Service, string) (model.JournalEntry, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <number>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			entry, err := fn(b.journal, args[0])
			if err != nil {
				return err
			}
			b.logger.Info("journal entry "+use+"ed", "number", entry.Number)
			return writeJSON(cmd.OutOrStdout(), viewEntry(entry))
		},
	}
}

func newJournalListCommand(a *app) *cobra.Command {
	var month, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd)
			if err != nil {
				return err
			}

			var entries []model.JournalEntry
			if month != "" {
				start, err := model.ParseDate(month + "-01")
				if err != nil {
					return fmt.Errorf("--month %q: want YYYY-MM", month)
				}
				entries, err = b.journal.ReadMonth(start.Year, int(start.Month))
				if err != nil {
					return err
				}
			} else if entries, err = b.journal.All(); err != nil {
				return err
			}

			views := []entryView{}
			for _, e := range entries {
				if status != "" && !strings.EqualFold(string(e.Status), status) {
					continue
				}
				views = append(views, viewEntry(e))
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "only entries of this month (YYYY-MM)")
	cmd.Flags().StringVar(&status, "status", "", "only entries with this status")
	return cmd
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ledgerbook/ledgerbook/internal/id"
	"github.com/ledgerbook/ledgerbook/internal/invoice"
	"github.com/ledgerbook/ledgerbook/internal/journal"
	"github.com/ledgerbook/ledgerbook/internal/model"
)

type computedInvoice struct {
	Invoice  model.Invoice `json:"invoice"`
	Warnings []string      `json:"warnings,omitempty"`
	Entry    *entryView    `json:"journal_entry,omitempty"`
}

func newInvoiceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Compute, save and post invoices",
	}
	cmd.AddCommand(newInvoiceComputeCommand(a))
	return cmd
}

func newInvoiceComputeCommand(a *app) *cobra.Command {
	var save, post bool

	cmd := &cobra.Command{
		Use:   "compute <file>",
		Short: "Compute line amounts and totals for an invoice file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			in, err := readInvoiceInput(args[0])
			if err != nil {
				return err
			}

			if save && in.Number == "" {
				if in.Number, err = b.nextInvoiceNumber(in); err != nil {
					return err
				}
			}
			inv, warnings, err := invoice.FromInput(in, b.company)
			if err != nil {
				return err
			}

			out := computedInvoice{Invoice: inv}
			for _, w := range warnings {
				b.logger.Warn("invoice input", "invoice", inv.Number, "warning", w.String())
				out.Warnings = append(out.Warnings, w.String())
			}

			if save {
				if err := b.saveInvoice(in); err != nil {
					return err
				}
				b.logger.Info("invoice saved", "number", inv.Number)
			}
			if post {
				entry, err := b.postInvoice(inv)
				if err != nil {
					return err
				}
				v := viewEntry(entry)
				out.Entry = &v
				b.logger.Info("invoice posted", "number", inv.Number, "entry", entry.Number)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "save the invoice under invoices/, numbering it if needed")
	cmd.Flags().BoolVar(&post, "post", false, "record the invoice as a posted journal entry")
	return cmd
}

// nextInvoiceNumber numbers a new invoice after the highest saved number of
// the same kind and year.
func (b *books) nextInvoiceNumber(in invoice.Input) (string, error) {
	date, err := model.ParseDate(in.Date)
	if err != nil {
		return "", err
	}
	kind := in.Kind
	if kind == "" {
		kind = model.InvoiceSale
	}

	paths, err := filepath.Glob(filepath.Join(b.dir, invoiceDir, "*.yaml"))
	if err != nil {
		return "", err
	}
	maxSeq := 0
	for _, p := range paths {
		k, year, seq, err := id.ParseInvoiceNumber(filepath.Base(p[:len(p)-len(".yaml")]))
		if err != nil || k != kind || year != date.Year {
			continue
		}
		maxSeq = max(maxSeq, seq)
	}
	return id.FormatInvoiceNumber(kind, date.Year, maxSeq+1), nil
}

func (b *books) saveInvoice(in invoice.Input) error {
	dir := filepath.Join(b.dir, invoiceDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating invoices dir: %w", err)
	}
	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling invoice: %w", err)
	}
	path := filepath.Join(dir, in.Number+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing invoice: %w", err)
	}
	return nil
}

func (b *books) postInvoice(inv model.Invoice) (model.JournalEntry, error) {
	entry, err := invoice.Post(inv, b.company)
	if err != nil {
		return model.JournalEntry{}, err
	}
	return b.journal.Add(journal.AddParams{
		Date:        entry.Date,
		Description: entry.Description,
		Reference:   entry.Reference,
		Lines:       entry.Lines,
		Post:        true,
	})
}

func newTaxCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Tax returns",
	}

	var start, end string
	summary := &cobra.Command{
		Use:   "summary",
		Short: "Summarize output and input tax by rate for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRange(start, end)
			if err != nil {
				return err
			}
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			snap, err := b.load(cmd.Context(), true)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), invoice.SummarizeTax(snap.invoices, r))
		},
	}
	summary.Flags().StringVar(&start, "start", "", "first day of the period (YYYY-MM-DD)")
	summary.Flags().StringVar(&end, "end", "", "last day of the period (YYYY-MM-DD)")
	_ = summary.MarkFlagRequired("start")
	_ = summary.MarkFlagRequired("end")

	cmd.AddCommand(summary)
	return cmd
}

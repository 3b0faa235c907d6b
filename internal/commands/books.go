package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ledgerbook/ledgerbook/internal/accounts"
	"github.com/ledgerbook/ledgerbook/internal/config"
	"github.com/ledgerbook/ledgerbook/internal/invoice"
	"github.com/ledgerbook/ledgerbook/internal/journal"
	"github.com/ledgerbook/ledgerbook/internal/model"
)

const invoiceDir = "invoices"

// books is an opened books directory: its config, chart and journal.
type books struct {
	dir     string
	cfg     *config.Config
	company model.CompanyContext
	chart   *accounts.Service
	journal *journal.Service
	logger  *slog.Logger
}

// openBooks reads the config and the chart of accounts. Journal entries are
// read on demand by loadEntries.
func openBooks(dir string, env config.Env, stderr io.Writer) (*books, error) {
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	company, err := cfg.CompanyContext()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	chart, err := accounts.Load(dir)
	if err != nil {
		return nil, err
	}
	return &books{
		dir:     dir,
		cfg:     cfg,
		company: company,
		chart:   chart,
		journal: journal.NewService(dir, chart),
		logger:  NewLogger(cfg.LogFormat, stderr).With("books", dir),
	}, nil
}

// snapshot is the data a statement or report is computed over.
type snapshot struct {
	accounts []model.Account
	entries  []model.JournalEntry
	invoices []model.Invoice
}

// postings returns the ledger movements of posted entries.
func (s snapshot) postings() []model.Posting {
	return model.PostingsFrom(s.entries)
}

// load reads journal entries and, when withInvoices is set, the saved
// invoices. The two reads run concurrently.
func (b *books) load(ctx context.Context, withInvoices bool) (snapshot, error) {
	snap := snapshot{accounts: b.chart.All()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := b.journal.All()
		if err != nil {
			return fmt.Errorf("loading journal: %w", err)
		}
		snap.entries = entries
		return nil
	})
	if withInvoices {
		g.Go(func() error {
			invoices, err := b.loadInvoices(ctx)
			if err != nil {
				return fmt.Errorf("loading invoices: %w", err)
			}
			snap.invoices = invoices
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	b.logger.Debug("books loaded", "accounts", len(snap.accounts), "entries", len(snap.entries), "invoices", len(snap.invoices))
	return snap, nil
}

// loadInvoices parses every saved invoice file, one goroutine per file.
func (b *books) loadInvoices(ctx context.Context) ([]model.Invoice, error) {
	paths, err := filepath.Glob(filepath.Join(b.dir, invoiceDir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	invoices := make([]model.Invoice, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in, err := readInvoiceInput(path)
			if err != nil {
				return err
			}
			inv, warnings, err := invoice.FromInput(in, b.company)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			for _, w := range warnings {
				b.logger.Warn("invoice input", "invoice", inv.Number, "warning", w.String())
			}
			invoices[i] = inv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return invoices, nil
}

func readInvoiceInput(path string) (invoice.Input, error) {
	var in invoice.Input
	if err := readDocument(path, &in); err != nil {
		return invoice.Input{}, err
	}
	return in, nil
}

// readDocument decodes a YAML or JSON file into v. JSON is read as YAML.
func readDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	return append(data, '\n'), nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

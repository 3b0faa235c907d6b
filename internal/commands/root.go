package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook/internal/buildinfo"
	"github.com/ledgerbook/ledgerbook/internal/config"
)

// app is the state shared by every subcommand.
type app struct {
	booksDir string
	env      config.Env
	now      func() time.Time
}

func (a *app) open(cmd *cobra.Command) (*books, error) {
	dir, err := filepath.Abs(a.booksDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return openBooks(dir, a.env, cmd.ErrOrStderr())
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}

	rootCmd := &cobra.Command{
		Use:     "ledgerbook",
		Short:   "Double-entry books, invoices and financial reports",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			a.env = env
			if !cmd.Flags().Changed("books") && env.Books != "" {
				a.booksDir = env.Books
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.booksDir, "books", ".", "books directory (env LEDGERBOOK_BOOKS)")

	rootCmd.AddCommand(
		newInitCommand(),
		newJournalCommand(a),
		newInvoiceCommand(a),
		newTaxCommand(a),
		newReportCommand(a),
		newScheduleCommand(a),
		newRunsCommand(a),
	)

	return rootCmd
}

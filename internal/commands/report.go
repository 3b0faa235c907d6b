package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook/internal/model"
	"github.com/ledgerbook/ledgerbook/internal/report"
	"github.com/ledgerbook/ledgerbook/internal/runlog"
	"github.com/ledgerbook/ledgerbook/internal/statement"
)

const reportDir = "reports"

func newReportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial statements and custom reports",
	}
	cmd.AddCommand(
		newBalanceSheetCommand(a),
		newProfitLossCommand(a),
		newCashFlowCommand(a),
		newCustomReportCommand(a),
	)
	return cmd
}

func newBalanceSheetCommand(a *app) *cobra.Command {
	var asOf, compareAsOf string

	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Assets, liabilities and equity as of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag("as-of", asOf)
			if err != nil {
				return err
			}
			compare, err := parseOptionalDate("compare-as-of", compareAsOf)
			if err != nil {
				return err
			}
			b, snap, err := a.openSnapshot(cmd)
			if err != nil {
				return err
			}

			bs := statement.BuildBalanceSheet(snap.accounts, snap.postings(), date, compare)
			for _, w := range bs.Warnings {
				b.logger.Warn("balance sheet does not reconcile", "as_of", w.AsOf, "difference", w.Difference)
			}
			params := "as_of=" + asOf
			if compare != nil {
				params += ",compare_as_of=" + compareAsOf
			}
			return a.emit(cmd, b, "balance-sheet", params, bs, len(bs.Warnings))
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&compareAsOf, "compare-as-of", "", "comparative balance date")
	_ = cmd.MarkFlagRequired("as-of")
	return cmd
}

func newProfitLossCommand(a *app) *cobra.Command {
	var rf rangeFlags
	var groupBy string

	cmd := &cobra.Command{
		Use:   "profit-loss",
		Short: "Income and expenses over a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, compare, err := rf.parse()
			if err != nil {
				return err
			}
			g, err := statement.ParseGroupBy(groupBy)
			if err != nil {
				return err
			}
			b, snap, err := a.openSnapshot(cmd)
			if err != nil {
				return err
			}

			pl := statement.BuildProfitLoss(snap.accounts, snap.postings(), r, compare, g)
			return a.emit(cmd, b, "profit-loss", rf.params()+",group_by="+string(pl.GroupBy), pl, 0)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&groupBy, "group-by", "none", "period columns: none, month or quarter")
	return cmd
}

func newCashFlowCommand(a *app) *cobra.Command {
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "cash-flow",
		Short: "Cash movements by operating, investing and financing activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, compare, err := rf.parse()
			if err != nil {
				return err
			}
			b, snap, err := a.openSnapshot(cmd)
			if err != nil {
				return err
			}

			cf := statement.BuildCashFlow(snap.accounts, snap.postings(), r, compare)
			return a.emit(cmd, b, "cash-flow", rf.params(), cf, 0)
		},
	}
	rf.register(cmd)
	return cmd
}

func newCustomReportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "custom <template|file>",
		Short: "Run a report definition from reports/<template>.yaml or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			name, path := b.templatePath(args[0])

			var raw report.RawConfig
			if err := readDocument(path, &raw); err != nil {
				return err
			}
			cfg, err := report.NewConfig(raw)
			if err != nil {
				return err
			}
			snap, err := b.load(cmd.Context(), false)
			if err != nil {
				return err
			}

			res := report.Build(snap.accounts, snap.postings(), cfg, b.company)
			return a.emit(cmd, b, "custom:"+name, cfg.Range.String(), res, 0)
		},
	}
}

// templatePath resolves a saved template name to reports/<name>.yaml. Any
// other argument is taken as a path.
func (b *books) templatePath(arg string) (name, path string) {
	if !strings.ContainsAny(arg, `/\.`) {
		return arg, filepath.Join(b.dir, reportDir, arg+".yaml")
	}
	base := filepath.Base(arg)
	return strings.TrimSuffix(base, filepath.Ext(base)), arg
}

func (a *app) openSnapshot(cmd *cobra.Command) (*books, snapshot, error) {
	b, err := a.open(cmd)
	if err != nil {
		return nil, snapshot{}, err
	}
	snap, err := b.load(cmd.Context(), false)
	if err != nil {
		return nil, snapshot{}, err
	}
	return b, snap, nil
}

// emit prints a report and records the run. A run whose output matches the
// previous run with the same parameters is logged as unchanged.
func (a *app) emit(cmd *cobra.Command, b *books, name, params string, v any, warnings int) error {
	data, err := encodeJSON(v)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	runs, err := runlog.Read(b.dir)
	if err != nil {
		return err
	}
	run := runlog.NewRun(a.now(), name, params, data, warnings)
	if prev, ok := runlog.Latest(runs, name, params); ok {
		b.logger.Info("report run", "report", name, "digest", run.Digest, "changed", prev.Digest != run.Digest)
	} else {
		b.logger.Info("report run", "report", name, "digest", run.Digest)
	}
	return runlog.Append(b.dir, []runlog.Run{run})
}

type rangeFlags struct {
	start, end               string
	compareStart, compareEnd string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "first day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "last day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.compareStart, "compare-start", "", "first day of the comparative period")
	cmd.Flags().StringVar(&f.compareEnd, "compare-end", "", "last day of the comparative period")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func (f *rangeFlags) parse() (model.DateRange, *model.DateRange, error) {
	r, err := parseRange(f.start, f.end)
	if err != nil {
		return model.DateRange{}, nil, err
	}
	if f.compareStart == "" && f.compareEnd == "" {
		return r, nil, nil
	}
	if f.compareStart == "" || f.compareEnd == "" {
		return model.DateRange{}, nil, fmt.Errorf("--compare-start and --compare-end go together")
	}
	c, err := parseRange(f.compareStart, f.compareEnd)
	if err != nil {
		return model.DateRange{}, nil, fmt.Errorf("comparative period: %w", err)
	}
	return r, &c, nil
}

func (f *rangeFlags) params() string {
	s := "start=" + f.start + ",end=" + f.end
	if f.compareStart != "" {
		s += ",compare_start=" + f.compareStart + ",compare_end=" + f.compareEnd
	}
	return s
}

func parseDateFlag(name, s string) (model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func parseOptionalDate(name, s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDateFlag(name, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseRange(start, end string) (model.DateRange, error) {
	s, err := parseDateFlag("start", start)
	if err != nil {
		return model.DateRange{}, err
	}
	e, err := parseDateFlag("end", end)
	if err != nil {
		return model.DateRange{}, err
	}
	r := model.DateRange{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return model.DateRange{}, err
	}
	return r, nil
}

// templateExists reports whether reports/<name>.yaml is present.
func (b *books) templateExists(name string) bool {
	_, err := os.Stat(filepath.Join(b.dir, reportDir, name+".yaml"))
	return err == nil
}

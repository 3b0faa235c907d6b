package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook/internal/runlog"
	"github.com/ledgerbook/ledgerbook/internal/schedule"
)

type scheduledRun struct {
	ID         uuid.UUID       `json:"id"`
	TemplateID string          `json:"template_id"`
	Config     schedule.Config `json:"config"`
	NextRun    time.Time       `json:"next_run"`
}

func newScheduleCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Report schedules",
	}

	var (
		templates []string
		frequency string
		at        string
		weekdays  []string
		monthDay  int
		from      string
	)
	next := &cobra.Command{
		Use:   "next",
		Short: "Create schedules for report templates and show when each next runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := parseWeekdays(weekdays)
			if err != nil {
				return err
			}
			now := a.now()
			if from != "" {
				if now, err = time.Parse(time.RFC3339, from); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
			}

			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			for _, t := range templates {
				if !b.templateExists(t) {
					return fmt.Errorf("report template %q not found under %s/", t, reportDir)
				}
			}

			cfg := schedule.Config{
				Frequency: schedule.Frequency(frequency),
				Time:      at,
				Days:      days,
				MonthDay:  monthDay,
			}
			batch, err := schedule.CreateBatch(templates, cfg)
			if err != nil {
				return err
			}

			out := make([]scheduledRun, len(batch))
			for i, s := range batch {
				out[i] = scheduledRun{ID: s.ID, TemplateID: s.TemplateID, Config: s.Config, NextRun: schedule.NextRun(s, now)}
				b.logger.Info("schedule created", "id", s.ID, "template", s.TemplateID, "next_run", out[i].NextRun)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	next.Flags().StringSliceVar(&templates, "template", nil, "report template under reports/ (repeatable)")
	next.Flags().StringVar(&frequency, "frequency", "", "daily, weekly, monthly or quarterly")
	next.Flags().StringVar(&at, "time", "", "time of day (HH:MM)")
	next.Flags().StringSliceVar(&weekdays, "weekday", nil, "weekly run days, e.g. mon,wed")
	next.Flags().IntVar(&monthDay, "month-day", 0, "day of month for monthly and quarterly runs")
	next.Flags().StringVar(&from, "from", "", "compute from this instant (RFC 3339) instead of now")
	_ = next.MarkFlagRequired("template")
	_ = next.MarkFlagRequired("frequency")
	_ = next.MarkFlagRequired("time")

	cmd.AddCommand(next)
	return cmd
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// parseWeekdays accepts three-letter names or 0-6 with Sunday as 0.
func parseWeekdays(in []string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if d, ok := weekdayNames[s]; ok {
			days = append(days, d)
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("--weekday %q: want mon..sun or 0-6", s)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func newRunsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Report run history",
	}

	var name string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded report runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			runs, err := runlog.Read(b.dir)
			if err != nil {
				return err
			}

			type runView struct {
				ID         uuid.UUID `json:"id"`
				Timestamp  time.Time `json:"timestamp"`
				Report     string    `json:"report"`
				Parameters string    `json:"parameters"`
				Digest     string    `json:"digest"`
				Warnings   int       `json:"warnings"`
			}
			views := []runView{}
			for _, r := range runs {
				if name != "" && r.Report != name {
					continue
				}
				views = append(views, runView(r))
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}
	list.Flags().StringVar(&name, "report", "", "only runs of this report")

	cmd.AddCommand(list)
	return cmd
}

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"axiapac.com/timeclock/infrastructure/filesystem"
	"axiapac.com/timeclock/report"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/utils"
	"github.com/spf13/cobra"
)

func newProjectsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			projects, err := a.client.Projects.List(ctx)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no projects")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range projects {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Status, p.Address.String())
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(newProjectShowCmd(opts), newProjectCreateCmd(opts), newProjectUpdateCmd(opts), newProjectDeleteCmd(opts))
	return cmd
}

// loadRecords fetches the caller's history, or everyone's for admins.
func loadRecords(cmd *cobra.Command, a *app) ([]report.RecordRow, error) {
	identity, err := a.identity()
	if err != nil {
		return nil, err
	}
	var history []v1.HistoryDTO
	if identity.Role.IsAdmin() {
		history, err = a.client.History.All(cmd.Context())
	} else {
		history, err = a.client.History.ForUser(cmd.Context(), identity.UserID)
	}
	if err != nil {
		return nil, err
	}
	return report.RecordRows(history, photoBaseURL(a.cfg.APIURL), a.cfg.Location()), nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(utils.DateLayout, s, loc)
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var term, from, to string
	var daily bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List clock-in records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			loc := a.cfg.Location()
			fromDay, err := parseDay(from, loc)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			toDay, err := parseDay(to, loc)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if !toDay.IsZero() {
				toDay = toDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}

			rows, err := loadRecords(cmd, a)
			if err != nil {
				return err
			}
			rows = report.RecordsBetween(report.SearchRecords(rows, term), fromDay, toDay)
			if len(rows) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no records")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if daily {
				for _, d := range report.DailyTotals(rows) {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%d entries\t%.2f\n", d.Date, d.User, d.Entries, d.Hours)
				}
				return w.Flush()
			}
			for _, r := range rows {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f", r.Date, r.User, r.Project, r.Address, r.Hours.Value)
				if r.Hours.Warning != "" {
					_, _ = fmt.Fprintf(w, "\t%s", r.Hours.Warning)
				}
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "\t\t\ttotal\t%.2f\n", report.Total(report.RecordHours(rows)))
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&term, "search", "", "filter by user, project or address")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().BoolVar(&daily, "daily", false, "sum hours per user and day")
	cmd.AddCommand(newHistoryUpdateCmd(opts), newHistoryDeleteCmd(opts))
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var kind, term, outDir string
	var upload bool
	cmd := &cobra.Command{
		Use:   "export --kind records|project-history",
		Short: "Write an Excel export and optionally archive it to S3",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				buf  bytes.Buffer
				name string
			)
			now := a.clock.Now()
			switch kind {
			case "records":
				rows, err := loadRecords(cmd, a)
				if err != nil {
					return err
				}
				if err := report.WriteRecords(&buf, report.SearchRecords(rows, term)); err != nil {
					return err
				}
				name = report.FileName(report.RecordSheet, now)
			case "project-history":
				entries, err := a.client.ProjectHistory.List(ctx)
				if err != nil {
					return err
				}
				rows := report.SearchProjectHistory(report.ProjectHistoryRows(entries), term)
				if err := report.WriteProjectHistory(&buf, rows); err != nil {
					return err
				}
				name = report.FileName(report.HistorySheet, now)
			default:
				return fmt.Errorf("unknown --kind %q", kind)
			}

			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

			if upload {
				if a.cfg.Report.Bucket == "" {
					return fmt.Errorf("report.bucket is not configured")
				}
				bucket, err := filesystem.ConnectBucket(ctx, a.cfg.Report.Bucket)
				if err != nil {
					return err
				}
				key := "exports/" + name
				if err := bucket.WriteFile(ctx, key, xlsxContentType, buf.Bytes()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "uploaded s3://%s/%s\n", bucket.Name(), key)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "records", "records or project-history")
	cmd.Flags().StringVar(&term, "search", "", "filter rows before export")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().BoolVar(&upload, "upload", false, "archive the workbook to the report bucket")
	return cmd
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show total, monthly and weekly hours",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			identity, err := a.identity()
			if err != nil {
				return err
			}
			var summary *v1.SummaryDTO
			if all && identity.Role.IsAdmin() {
				summary, err = a.client.Summary.All(ctx)
			} else {
				summary, err = a.client.Summary.ForUser(ctx, identity.UserID)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "total=%.1fh month=%.1fh week=%.1fh\n", summary.Total, summary.Month, summary.Week)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "company-wide totals (admin only)")
	return cmd
}

func newChartCmd(opts *rootOptions) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show hours per month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			identity, err := a.identity()
			if err != nil {
				return err
			}
			data, err := a.client.Clockins.ChartData(ctx, identity.UserID)
			if err != nil {
				return err
			}
			return report.RenderChart(cmd.OutOrStdout(), report.MonthlyChart(data), width)
		},
	}
	cmd.Flags().IntVar(&width, "width", 40, "bar width in characters")
	return cmd
}

func newClockinsCmd(opts *rootOptions) *cobra.Command {
	var term string
	cmd := &cobra.Command{
		Use:   "clockins",
		Short: "Show your time card",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			identity, err := a.identity()
			if err != nil {
				return err
			}
			clockins, err := a.client.Clockins.ListForUser(ctx, identity.UserID)
			if err != nil {
				return err
			}
			rows := report.SearchClockins(report.ClockinRows(clockins, a.clock.Now()), term)
			if len(rows) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no clock-ins")
				return nil
			}
			loc := a.cfg.Location()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range rows {
				end, hours := "open", "-"
				if !r.End.IsZero() {
					end = r.End.In(loc).Format(time.DateTime)
				}
				if r.Hours != nil {
					hours = fmt.Sprintf("%.2f", r.Hours.Value)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.Code, r.Project, r.PostalCode, r.Start.In(loc).Format(time.DateTime), end, hours)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&term, "search", "", "filter by code, project or postal code")
	cmd.AddCommand(newClockinModifyCmd(opts), newClockinDeleteCmd(opts), newClockinLocationsCmd(opts), newClockinLocateCmd(opts))
	return cmd
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/palemoky/morning-reading/internal/database"
	"github.com/palemoky/morning-reading/internal/report"
)

func newHistoryCmd() *cobra.Command {
	var (
		dbPath   string
		limit    int
		runID    int64
		statuses []string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, or the change log of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Report.DatabasePath = dbPath
			}
			if cmd.Flags().Changed("format") {
				cfg.Report.Format = format
			}

			db, err := database.Open(cfg.Report.DatabasePath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			repo := database.NewRepository(db)

			if runID == 0 {
				runs, err := repo.ListRuns(limit, 0)
				if err != nil {
					return fmt.Errorf("failed to list runs: %w", err)
				}
				return renderRuns(cmd.OutOrStdout(), runs)
			}

			filter, err := parseStatuses(statuses)
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(cfg.Report.Format)
			if err != nil {
				return err
			}
			summary, err := loadRunSummary(repo, runID, filter)
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), summary, f)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "History database path (overrides report.database_path)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().Int64Var(&runID, "run", 0, "Show the change log of this run")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only show changes with these statuses (repaired, flagged, notice, structural)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Report format: table or markdown")
	return cmd
}

func parseStatuses(names []string) ([]report.Status, error) {
	out := make([]report.Status, 0, len(names))
	for _, name := range names {
		st, err := report.ParseStatus(name)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// loadRunSummary rebuilds the end-of-run summary of a stored run.
func loadRunSummary(repo database.RepositoryInterface, runID int64, statuses []report.Status) (*report.Summary, error) {
	run, err := repo.GetRun(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	changes, err := repo.ListChanges(runID, statuses...)
	if err != nil {
		return nil, fmt.Errorf("failed to load changes of run %d: %w", runID, err)
	}
	failures, err := repo.ListFailures(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load failures of run %d: %w", runID, err)
	}

	summary := &report.Summary{
		FilesProcessed: run.FilesProcessed,
		FilesChanged:   run.FilesChanged,
		FilesFailed:    run.FilesFailed,
		Repaired:       run.Repaired,
		Flagged:        run.Flagged,
		Notices:        run.Notices,
		Structural:     run.Structural,
		DryRun:         run.DryRun,
	}
	for _, c := range changes {
		status, err := report.ParseStatus(c.Status)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", runID, err)
		}
		summary.Changes = append(summary.Changes, report.Change{
			File:     c.File,
			Location: c.Location,
			Field:    c.Field,
			Before:   c.Before,
			After:    c.After,
			Kind:     c.Kind,
			Status:   status,
		})
	}
	for _, f := range failures {
		summary.Failures = append(summary.Failures, report.Failure{File: f.File, Code: f.Code, Error: f.Error})
	}
	return summary, nil
}

func renderRuns(w io.Writer, runs []database.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no recorded runs")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Started", "Input", "Mode", "Files", "Changed", "Failed", "Repaired", "Flagged", "Structural")
	for _, r := range runs {
		mode := "write"
		if r.DryRun {
			mode = "check"
		}
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format(time.DateTime),
			r.InputDir,
			mode,
			strconv.Itoa(r.FilesProcessed),
			strconv.Itoa(r.FilesChanged),
			strconv.Itoa(r.FilesFailed),
			strconv.Itoa(r.Repaired),
			strconv.Itoa(r.Flagged),
			strconv.Itoa(r.Structural),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palemoky/morning-reading/internal/config"
	"github.com/palemoky/morning-reading/internal/database"
	"github.com/palemoky/morning-reading/internal/logger"
	"github.com/palemoky/morning-reading/internal/processor"
	"github.com/palemoky/morning-reading/internal/report"
)

// errWouldChange makes check exit non-zero without logging an error.
var errWouldChange = errors.New("files would change")

type normalizeFlags struct {
	input      string
	workers    int
	format     string
	noProgress bool
	persist    bool
	dbPath     string
}

func newNormalizeCmd(check bool) *cobra.Command {
	var flags normalizeFlags

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Repair annotations and normalize lesson files in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg, check)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runNormalize(cmd, afero.NewOsFs(), cfg, check)
		},
	}
	if check {
		cmd.Use = "check"
		cmd.Short = "Report what normalize would change without writing any file"
		cmd.Long = "Run the normalizer in dry-run mode. Exits with status 1 when a file " +
			"would change or could not be processed."
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Corpus directory (overrides input.dir)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Number of concurrent workers (0 = number of CPUs)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Report format: table or markdown")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVar(&flags.persist, "persist", false, "Record the run in the history database")
	cmd.Flags().StringVar(&flags.dbPath, "db", "", "History database path (overrides report.database_path)")
	return cmd
}

// apply overrides cfg with the flags given on the command line.
func (f *normalizeFlags) apply(cmd *cobra.Command, cfg *config.Config, check bool) {
	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Input.Dir = f.input
	}
	if changed("workers") {
		cfg.Processor.Workers = f.workers
	}
	if changed("format") {
		cfg.Report.Format = f.format
	}
	if changed("no-progress") {
		cfg.Processor.Progress = !f.noProgress
	}
	if changed("persist") {
		cfg.Report.Persist = f.persist
	}
	if changed("db") {
		cfg.Report.DatabasePath = f.dbPath
	}
	if check {
		cfg.Processor.DryRun = true
	}
}

func runNormalize(cmd *cobra.Command, fs afero.Fs, cfg *config.Config, check bool) error {
	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}

	n, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	var progress io.Writer
	if cfg.Processor.Progress {
		progress = cmd.ErrOrStderr()
	}

	started := time.Now()
	p := processor.NewProcessor(fs, n, processor.Options{
		Root:     cfg.Input.Dir,
		Includes: cfg.Input.Include,
		Excludes: cfg.Input.Exclude,
		Workers:  cfg.Processor.Workers,
		DryRun:   cfg.Processor.DryRun,
		Progress: progress,
	})

	summary, err := p.Process(cmd.Context())
	if err != nil && summary.FilesProcessed+summary.FilesFailed == 0 {
		return err
	}
	if err != nil {
		logger.Warn("Run interrupted, reporting partial results", zap.Error(err))
	}

	if renderErr := report.Render(cmd.OutOrStdout(), summary, format); renderErr != nil {
		return fmt.Errorf("failed to render report: %w", renderErr)
	}

	if cfg.Report.Persist {
		if persistErr := persistRun(cfg, started, summary); persistErr != nil {
			return persistErr
		}
	}

	if err != nil {
		return err
	}
	if check && (summary.FilesChanged > 0 || summary.FilesFailed > 0) {
		return errWouldChange
	}
	return nil
}

func persistRun(cfg *config.Config, started time.Time, summary *report.Summary) error {
	db, err := database.Open(cfg.Report.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	run, err := database.NewRepository(db).SaveRun(cfg.Input.Dir, started, snapshotRules(cfg), summary)
	if err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}

	logger.Info("Run recorded",
		zap.Int64("run_id", run.ID),
		zap.String("database", cfg.Report.DatabasePath),
		zap.Int("changes", len(summary.Changes)))
	return nil
}

// Package processor drives the normalizer over a corpus: discover, load,
// normalize, write back.
package processor

import (
	"context"
	"io"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/afero"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/morning-reading/internal/errors"
	"github.com/palemoky/morning-reading/internal/lesson"
	"github.com/palemoky/morning-reading/internal/loader"
	"github.com/palemoky/morning-reading/internal/logger"
	"github.com/palemoky/morning-reading/internal/normalizer"
	"github.com/palemoky/morning-reading/internal/report"
)

// Engine normalizes a decoded document in place.
type Engine interface {
	NormalizeDocument(doc *lesson.Document, sink report.Sink) normalizer.Outcome
}

// Options configures a run.
type Options struct {
	Root     string
	Includes []string
	Excludes []string
	// Workers bounds the files processed at once; 0 means runtime.NumCPU().
	Workers int
	// DryRun reports changes without writing any file.
	DryRun bool
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// Processor handles concurrent lesson file processing
type Processor struct {
	fs     afero.Fs
	engine Engine
	opts   Options
	log    *zap.Logger
}

// NewProcessor creates a new processor
func NewProcessor(fs afero.Fs, engine Engine, opts Options) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Processor{
		fs:     fs,
		engine: engine,
		opts:   opts,
		log:    logger.Named("processor"),
	}
}

// fileResult is the outcome of one file; exactly one of changes or failure is set.
type fileResult struct {
	done     bool
	changes  []report.Change
	modified bool
	failure  *report.Failure
}

// Process normalizes every discovered file. A file that cannot be read,
// decoded or written is recorded as a failure and the run goes on; the
// returned error is reserved for discovery failures and cancellation, in
// which case the summary covers the files finished so far.
func (p *Processor) Process(ctx context.Context) (*report.Summary, error) {
	summary := &report.Summary{DryRun: p.opts.DryRun}

	files, err := loader.Discover(p.fs, p.opts.Root, p.opts.Includes, p.opts.Excludes)
	if err != nil {
		return summary, err
	}

	p.log.Info("Processing lesson files",
		zap.String("root", p.opts.Root),
		zap.Int("files", len(files)),
		zap.Int("workers", p.opts.Workers),
		zap.Bool("dry_run", p.opts.DryRun))

	progress, bar := p.newProgress(len(files))

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processFile(file)
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if progress != nil {
		if !bar.Completed() {
			bar.Abort(false)
		}
		progress.Wait()
	}

	// merge in file order so that reports are reproducible
	for _, r := range results {
		switch {
		case !r.done:
		case r.failure != nil:
			summary.AddFailure(*r.failure)
		default:
			summary.AddFile(r.changes, r.modified)
		}
	}

	p.log.Info("Processing finished",
		zap.Int("processed", summary.FilesProcessed),
		zap.Int("changed", summary.FilesChanged),
		zap.Int("failed", summary.FilesFailed),
		zap.Int("repaired", summary.Repaired),
		zap.Int("flagged", summary.Flagged))

	return summary, err
}

func (p *Processor) processFile(file string) fileResult {
	path := filepath.Join(p.opts.Root, filepath.FromSlash(file))
	log := p.log.With(zap.String("file", file))

	doc, err := loader.Load(p.fs, path)
	if err != nil {
		log.Warn("Skipping file", zap.Error(err))
		return failed(file, err)
	}

	collector := report.NewCollector(file)
	outcome := p.engine.NormalizeDocument(doc, collector)
	modified := outcome.Modified()

	if modified && !p.opts.DryRun {
		if err := loader.Save(p.fs, path, doc); err != nil {
			log.Error("Failed to write file", zap.Error(err))
			return failed(file, err)
		}
	}

	log.Debug("Normalized file",
		zap.Int("changes", collector.Len()),
		zap.Int("repaired", outcome.Repaired),
		zap.Int("structural", outcome.Structural),
		zap.Int("flagged", outcome.Flagged),
		zap.Bool("modified", modified))

	return fileResult{done: true, changes: collector.Changes(), modified: modified}
}

func failed(file string, err error) fileResult {
	return fileResult{
		done: true,
		failure: &report.Failure{
			File:  file,
			Code:  string(errors.CodeOf(err)),
			Error: err.Error(),
		},
	}
}

func (p *Processor) newProgress(total int) (*mpb.Progress, *mpb.Bar) {
	if p.opts.Progress == nil || total == 0 {
		return nil, nil
	}

	progress := mpb.New(
		mpb.WithOutput(p.opts.Progress),
		mpb.WithWidth(60),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	bar := progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Normalizing: ", decor.WC{W: 13, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Name(" | "),
			decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 6}),
			decor.Name(" | "),
			decor.AverageSpeed(0, "%.0f files/s", decor.WC{W: 12}),
		),
	)
	return progress, bar
}

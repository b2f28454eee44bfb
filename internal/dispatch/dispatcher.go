// Package dispatch owns the concurrent task pipeline: a bounded queue fed by
// the file enumerator and drained by a fixed pool of workers that each run
// one tool subprocess at a time.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mfletch/tidyherd/internal/enumerate"
	"github.com/mfletch/tidyherd/internal/invoke"
	"github.com/mfletch/tidyherd/internal/log"
	"github.com/mfletch/tidyherd/internal/override"
	"github.com/mfletch/tidyherd/internal/report"
)

// Config is the immutable per-run configuration the dispatcher consumes.
// Preconditions (root exists, tool resolves, Jobs >= 1) are the doctor's
// job; the dispatcher trusts them.
type Config struct {
	Root       string
	BuildDir   string
	Tool       string
	Checks     string
	Fix        bool
	Jobs       int
	Excludes   []string
	Extensions []string
}

// TaskResult summarizes one completed tool invocation for the run log.
type TaskResult struct {
	File     string
	Argv     []string
	ExitCode int
	Duration time.Duration
}

// Recorder receives completed task results. Implemented by runlog.Store.
type Recorder interface {
	Record(ctx context.Context, res TaskResult) error
}

// Dispatcher runs the enumerate -> queue -> worker -> print pipeline.
type Dispatcher struct {
	cfg       Config
	overrides *override.Table
	printer   *report.Printer
	recorder  Recorder
	logger    *slog.Logger

	// execFn runs one subprocess; swapped out in tests.
	execFn func(ctx context.Context, dir, tool string, args []string) (stdout, stderr []byte, exitCode int, err error)
}

// New creates a Dispatcher. recorder may be nil to disable the run log.
func New(cfg Config, overrides *override.Table, printer *report.Printer, recorder Recorder) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		overrides: overrides,
		printer:   printer,
		recorder:  recorder,
		logger:    log.WithComponent("dispatch"),
		execFn:    runCommand,
	}
}

// Run enumerates candidate files and dispatches one tool invocation per file
// across Jobs workers. The task channel capacity equals the worker count, so
// at most Jobs tasks ever sit queued-but-unclaimed and enumeration blocks
// once the workers fall behind. Run returns after every enqueued task has
// completed, or with the first spawn/walk error.
func (d *Dispatcher) Run(ctx context.Context) error {
	start := time.Now()
	tasks := make(chan string, d.cfg.Jobs)

	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < d.cfg.Jobs; i++ {
		id := i
		g.Go(func() error {
			return d.worker(ctx, id, tasks)
		})
	}

	var total int
	g.Go(func() error {
		defer close(tasks)
		return enumerate.Walk(d.cfg.Root, d.cfg.Excludes, d.cfg.Extensions, func(rel string) error {
			select {
			case tasks <- rel:
				total++
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	if err := g.Wait(); err != nil {
		return err
	}

	d.logger.Info("dispatch complete", "files", total, "jobs", d.cfg.Jobs,
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return nil
}

// worker processes tasks one at a time until the queue closes or the run is
// torn down. A failure to spawn the tool is fatal for the whole run; a
// non-zero tool exit is the product, not an error.
func (d *Dispatcher) worker(ctx context.Context, id int, tasks <-chan string) error {
	logger := log.WithWorker(id)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rel, ok := <-tasks:
			if !ok {
				return nil
			}
			if err := d.runTask(ctx, logger, rel); err != nil {
				return err
			}
		}
	}
}

func (d *Dispatcher) runTask(ctx context.Context, logger *slog.Logger, rel string) error {
	args := invoke.Build(invoke.Options{
		BuildDir:     d.cfg.BuildDir,
		Checks:       d.cfg.Checks,
		Suppressions: d.overrides.Lookup(rel),
		Fix:          d.cfg.Fix,
	}, rel)

	logger.Debug("executing tool", "file", rel)
	start := time.Now()
	stdout, stderr, exitCode, err := d.execFn(ctx, d.cfg.Root, d.cfg.Tool, args)
	if err != nil {
		return fmt.Errorf("spawn %s for %s: %w", d.cfg.Tool, rel, err)
	}
	elapsed := time.Since(start)

	if exitCode != 0 {
		logger.Debug("tool reported findings", "file", rel, "exit_code", exitCode)
	}

	outText, errText := report.Reconcile(string(stdout), string(stderr))
	d.printer.Print(invoke.Cmdline(d.cfg.Tool, args), outText, errText)

	if d.recorder != nil {
		res := TaskResult{
			File:     rel,
			Argv:     append([]string{d.cfg.Tool}, args...),
			ExitCode: exitCode,
			Duration: elapsed,
		}
		if rerr := d.recorder.Record(ctx, res); rerr != nil {
			logger.Warn("failed to record task result", "file", rel, "error", rerr)
		}
	}

	return nil
}

// Package sync runs configured sources into the output directory and
// refreshes the lock file and manifest afterwards.
package sync

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/g5becks/ndoc/internal/api"
	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/lockfile"
	"github.com/g5becks/ndoc/internal/manifest"
	"github.com/g5becks/ndoc/internal/source"
)

const defaultMaxParallel = 3

type EventKind int

const (
	EventSourceStart EventKind = iota
	EventSourceDone
)

// Event reports progress for one source. Result and Err are set on
// EventSourceDone only.
type Event struct {
	Kind   EventKind
	Source string
	Result *source.SyncResult
	Err    error
}

type Options struct {
	SourceNames []string
	Force       bool
	DryRun      bool
	MaxParallel int
	Clean       bool

	// OnEvent is called from worker goroutines and must be safe for concurrent use.
	OnEvent func(Event)
	// Progress receives one tracker per source when set.
	Progress progress.Writer
	// APIClient overrides the client built from the [api] config section.
	APIClient *api.Client
}

// RunResult aggregates the per-source outcomes of a run.
type RunResult struct {
	Sources    int
	Downloaded int
	Deleted    int
	Skipped    int
	Errors     int
}

type runState struct {
	result *source.SyncResult
	err    error
}

// runner syncs the selected sources of one Run.
type runner struct {
	cfg       *config.Config
	opts      Options
	outputDir string
	lock      *lockfile.LockFile
	env       source.Env
	emit      func(Event)
}

func Run(ctx context.Context, cfg *config.Config, opts Options) (*RunResult, error) {
	if cfg == nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			Errorf("config is required")
	}

	outputDir := resolveOutputRoot(cfg)
	if opts.Clean && !opts.DryRun {
		if err := os.RemoveAll(outputDir); err != nil {
			return nil, oops.
				Code("WRITE_FAILED").
				With("path", outputDir).
				Wrapf(err, "cleaning output directory")
		}
	}

	lock, err := lockfile.Load(outputDir)
	if err != nil {
		return nil, err
	}

	names, err := resolveSourceNames(cfg.Sources, opts.SourceNames)
	if err != nil {
		return nil, err
	}

	client := opts.APIClient
	if client == nil && needsAPI(cfg.Sources, names) {
		client = api.New(api.Options{
			BaseURL: cfg.API.BaseURL,
			Token:   cfg.API.Token,
			Timeout: cfg.API.Timeout,
		})
		defer func() { _ = client.Close() }()
	}

	r := &runner{
		cfg:       cfg,
		opts:      opts,
		outputDir: outputDir,
		lock:      lock,
		env:       source.Env{API: client, BaseDir: cfg.ConfigDir, OutputRoot: outputDir},
		emit:      opts.OnEvent,
	}
	if r.emit == nil {
		r.emit = func(Event) {}
	}

	states := r.syncAll(ctx, names)
	result := r.record(names, states)

	if !opts.DryRun {
		if err := lock.Save(outputDir); err != nil {
			return result, err
		}

		resolved := *cfg
		resolved.Output = outputDir
		if err := manifest.Generate(ctx, &resolved, lock); err != nil {
			return result, err
		}
	}

	if result.Errors > 0 {
		return result, oops.
			Code("SYNC_FAILED").
			With("failed_sources", result.Errors).
			Errorf("%d source(s) failed during sync", result.Errors)
	}

	return result, nil
}

// syncAll runs the sources at most MaxParallel at a time. A failing source
// never cancels the others; its error is kept in its state.
func (r *runner) syncAll(ctx context.Context, names []string) []runState {
	limit := r.opts.MaxParallel
	if limit <= 0 {
		limit = defaultMaxParallel
	}

	states := make([]runState, len(names))
	var group errgroup.Group
	group.SetLimit(limit)

	for i, name := range names {
		group.Go(func() error {
			r.emit(Event{Kind: EventSourceStart, Source: name})
			states[i] = r.syncOne(ctx, name)
			r.emit(Event{Kind: EventSourceDone, Source: name, Result: states[i].result, Err: states[i].err})
			return nil
		})
	}

	_ = group.Wait()
	return states
}

func (r *runner) syncOne(ctx context.Context, name string) runState {
	cfg := r.cfg.Sources[name]

	var tracker *progress.Tracker
	if r.opts.Progress != nil {
		tracker = &progress.Tracker{Message: name, Units: progress.UnitsDefault}
		r.opts.Progress.AppendTracker(tracker)
	}

	src, err := source.New(name, cfg, r.env)
	if err != nil {
		return runState{err: err}
	}

	result, err := src.Sync(
		ctx,
		resolveSourceOutputDir(r.outputDir, name, cfg),
		r.lock.GetEntry(name),
		source.SyncOptions{Force: r.opts.Force, DryRun: r.opts.DryRun},
		tracker,
	)
	if err != nil {
		slog.Debug("source sync failed", "source", name, "error", err)
	}

	return runState{result: result, err: err}
}

// record totals the states and stores new lock entries unless this is a dry
// run. Failed sources keep their previous entry.
func (r *runner) record(names []string, states []runState) *RunResult {
	result := &RunResult{Sources: len(names)}

	for i, state := range states {
		switch {
		case state.err != nil:
			result.Errors++
			continue
		case state.result == nil:
			continue
		}

		result.Downloaded += state.result.Downloaded
		result.Deleted += state.result.Deleted
		if state.result.Skipped {
			result.Skipped++
		}

		if !r.opts.DryRun && state.result.LockEntry != nil {
			r.lock.SetEntry(names[i], state.result.LockEntry)
		}
	}

	return result
}

func resolveSourceNames(configured map[string]config.Source, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return slices.Sorted(maps.Keys(configured)), nil
	}

	var names []string
	for _, name := range requested {
		if _, ok := configured[name]; !ok {
			return nil, oops.
				Code("SOURCE_NOT_FOUND").
				With("source", name).
				Hint("Run 'ndoc list' to see configured sources").
				Errorf("source %q not found in config", name)
		}

		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	return names, nil
}

func needsAPI(configured map[string]config.Source, names []string) bool {
	return slices.ContainsFunc(names, func(name string) bool {
		return configured[name].Type == config.SourceTypeBoard
	})
}

func resolveOutputRoot(cfg *config.Config) string {
	if filepath.IsAbs(cfg.Output) {
		return cfg.Output
	}

	return filepath.Join(cfg.ConfigDir, cfg.Output)
}

func resolveSourceOutputDir(outputRoot string, name string, cfg config.Source) string {
	return filepath.Join(outputRoot, cmp.Or(cfg.Out, name))
}

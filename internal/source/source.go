// Package source fetches documents from a configured origin into the output tree.
package source

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/api"
	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/lockfile"
)

// SyncResult reports what happened during a sync.
type SyncResult struct {
	Downloaded int
	Deleted    int
	Skipped    bool
	LockEntry  *lockfile.LockEntry
}

// SyncOptions controls behavior for source sync operations.
type SyncOptions struct {
	Force  bool
	DryRun bool
}

// Source defines a document source that can be synced. The tracker may be nil.
type Source interface {
	Sync(
		ctx context.Context,
		destDir string,
		prevLock *lockfile.LockEntry,
		opts SyncOptions,
		tracker *progress.Tracker,
	) (*SyncResult, error)
}

// Env carries what sources need beyond their own config. OutputRoot is the
// directory all collections are synced under; local sources never read it.
type Env struct {
	API        *api.Client
	BaseDir    string
	OutputRoot string
}

// New creates a Source from config.
func New(name string, cfg config.Source, env Env) (Source, error) {
	switch cfg.Type {
	case config.SourceTypeBoard:
		return NewBoard(name, cfg, env.API)
	case config.SourceTypeURL:
		return NewURL(name, cfg)
	case config.SourceTypeDir:
		return NewDir(name, cfg, env)
	default:
		return nil, oops.
			Code("UNKNOWN_SOURCE_TYPE").
			With("type", cfg.Type).
			Hint("Supported types: board, url, dir").
			Errorf("unknown source type %q for source %q", cfg.Type, name)
	}
}

func trackerTotal(tracker *progress.Tracker, total int) {
	if tracker != nil {
		tracker.UpdateTotal(int64(total))
	}
}

func trackerStep(tracker *progress.Tracker) {
	if tracker != nil {
		tracker.Increment(1)
	}
}

func trackerDone(tracker *progress.Tracker, err error) {
	if tracker == nil {
		return
	}

	if err != nil {
		tracker.MarkAsErrored()
		return
	}

	tracker.MarkAsDone()
}

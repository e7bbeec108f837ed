package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	ndocsync "github.com/g5becks/ndoc/internal/sync"
)

var (
	markRunning = color.New(color.Faint).Sprint("⟳")
	markDone    = color.New(color.FgGreen).Sprint("✓")
	markFailed  = color.New(color.FgRed).Sprint("✗")
	markCurrent = color.New(color.Faint).Sprint("=")
	bold        = color.New(color.Bold).SprintFunc()
	faint       = color.New(color.Faint).SprintFunc()
)

// SyncPrinter writes one line per source event and a closing summary. It is
// the fallback when progress bars are off or stderr is not a terminal.
type SyncPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	dryRun bool
}

// NewSyncPrinter writes to w, or to stderr when w is nil.
func NewSyncPrinter(w io.Writer, dryRun bool) *SyncPrinter {
	if w == nil {
		w = os.Stderr
	}
	return &SyncPrinter{w: w, dryRun: dryRun}
}

// HandleEvent is the callback wired into sync.Options.OnEvent.
func (p *SyncPrinter) HandleEvent(e ndocsync.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := bold(e.Source)

	switch {
	case e.Kind == ndocsync.EventSourceStart:
		fmt.Fprintf(p.w, "%s syncing %s...\n", markRunning, name)
	case e.Err != nil:
		fmt.Fprintf(p.w, "%s %s: %s\n", markFailed, name, e.Err)
	case e.Result == nil:
	case e.Result.Skipped:
		fmt.Fprintf(p.w, "%s %s %s\n", markCurrent, name, faint("(up to date)"))
	default:
		fmt.Fprintf(p.w, "%s %s %s\n", markDone, name, faint(p.counts(e.Result.Downloaded, e.Result.Deleted)))
	}
}

func (p *SyncPrinter) counts(downloaded, deleted int) string {
	fetched, removed := "downloaded", "deleted"
	if p.dryRun {
		fetched, removed = "to download", "to delete"
	}

	var parts []string
	if downloaded > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", downloaded, fetched))
	}
	if deleted > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", deleted, removed))
	}
	if len(parts) == 0 {
		return "(no changes)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// PrintSummary writes the totals of a finished run. A nil result prints
// nothing.
func (p *SyncPrinter) PrintSummary(r *ndocsync.RunResult) {
	if r == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	label := "sync complete"
	if p.dryRun {
		label = color.YellowString("dry-run complete")
	}

	line := fmt.Sprintf("%s: %d source(s), %d downloaded, %d deleted, %d up-to-date",
		label, r.Sources, r.Downloaded, r.Deleted, r.Skipped)
	if r.Errors > 0 {
		line += ", " + color.RedString("%d failed", r.Errors)
	}

	fmt.Fprintf(p.w, "\n%s\n", line)
	if p.dryRun {
		fmt.Fprintln(p.w, faint("no files were written or removed"))
	}
}

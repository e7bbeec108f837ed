package source

import (
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/fsutil"
	"github.com/g5becks/ndoc/internal/lockfile"
)

// changeSet lists the slash paths one sync writes and removes under the
// source output directory. Both lists are sorted.
type changeSet struct {
	write  []string
	remove []string
}

// planChanges compares the hashes recorded by the previous sync with the
// current ones. With force every current path is rewritten.
func planChanges(previous *lockfile.LockEntry, current map[string]string, force bool) changeSet {
	var recorded map[string]string
	if previous != nil {
		recorded = previous.Documents
	}

	var changes changeSet
	for _, path := range slices.Sorted(maps.Keys(current)) {
		if hash, ok := recorded[path]; force || !ok || hash != current[path] {
			changes.write = append(changes.write, path)
		}
	}
	for _, path := range slices.Sorted(maps.Keys(recorded)) {
		if _, ok := current[path]; !ok {
			changes.remove = append(changes.remove, path)
		}
	}

	return changes
}

// result reports the plan for entry; a plan with nothing to do is a skip.
func (c changeSet) result(entry *lockfile.LockEntry) *SyncResult {
	if len(c.write) == 0 && len(c.remove) == 0 {
		return &SyncResult{Skipped: true, LockEntry: entry}
	}

	return &SyncResult{Downloaded: len(c.write), Deleted: len(c.remove), LockEntry: entry}
}

// apply writes each planned path with the bytes content returns, then
// removes stale paths and any directories they leave empty.
func (c changeSet) apply(sourceName, destDir string, content func(path string) ([]byte, error)) error {
	for _, path := range c.write {
		data, err := content(path)
		if err != nil {
			return err
		}

		if err := fsutil.WriteFileAtomic(filepath.Join(destDir, filepath.FromSlash(path)), data); err != nil {
			return oops.With("source", sourceName).Wrap(err)
		}
	}

	for _, path := range c.remove {
		local := filepath.Join(destDir, filepath.FromSlash(path))
		if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
			return oops.
				Code("WRITE_FAILED").
				With("source", sourceName).
				With("path", local).
				Wrapf(err, "deleting stale file")
		}

		fsutil.CleanupEmptyDirs(filepath.Dir(local), destDir)
	}

	return nil
}

// shouldIncludeFile matches a slash path against the include patterns and
// then the exclude patterns.
func shouldIncludeFile(path string, patterns []string, exclude []string) (bool, error) {
	included, err := matchesAny(patterns, path)
	if err != nil || !included {
		return false, err
	}

	excluded, err := matchesAny(exclude, path)
	return err == nil && !excluded, err
}

func matchesAny(patterns []string, path string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.PathMatch(pattern, path)
		if err != nil {
			return false, oops.
				Code("CONFIG_INVALID").
				With("pattern", pattern).
				With("path", path).
				Wrapf(err, "invalid glob pattern")
		}

		if matched {
			return true, nil
		}
	}

	return false, nil
}

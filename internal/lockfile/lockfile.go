// Package lockfile tracks per-source sync state in the output directory.
package lockfile

import (
	"encoding/json"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/fsutil"
)

const (
	FileName       = ".ndoc.lock"
	currentVersion = 1
)

type LockFile struct {
	Version int                   `json:"version"`
	Sources map[string]*LockEntry `json:"sources"`
}

// LockEntry is the state a source left behind after its last successful sync.
// Documents maps a path relative to the source output directory to its content hash.
type LockEntry struct {
	Type      string            `json:"type"`
	Board     string            `json:"board,omitempty"`
	ETag      string            `json:"etag,omitempty"`
	LastMod   string            `json:"last_modified,omitempty"`
	SyncedAt  time.Time         `json:"synced_at"`
	Documents map[string]string `json:"documents,omitempty"`
}

func (e *LockEntry) Clone() *LockEntry {
	if e == nil {
		return nil
	}

	cloned := *e
	cloned.Documents = maps.Clone(e.Documents)
	return &cloned
}

func New() *LockFile {
	return (&LockFile{}).normalize()
}

// Load reads the lock file in outputDir. A missing file is an empty lock.
func Load(outputDir string) (*LockFile, error) {
	path := filepath.Join(outputDir, FileName)
	lockErr := oops.Code("LOCK_ERROR").With("path", path)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return New(), nil
	case err != nil:
		return nil, lockErr.Wrapf(err, "reading lock file")
	}

	var lock LockFile
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, lockErr.
			Hint("Delete the lock file and run 'ndoc sync' to regenerate it").
			Wrapf(err, "parsing lock file")
	}

	return lock.normalize(), nil
}

func (l *LockFile) Save(outputDir string) error {
	if l == nil {
		return oops.
			Code("LOCK_ERROR").
			Hint("Initialize lock file state before saving").
			Errorf("cannot save nil lock file")
	}

	path := filepath.Join(outputDir, FileName)
	data, err := json.MarshalIndent(l.normalize(), "", "  ")
	if err != nil {
		return oops.Code("LOCK_ERROR").Wrapf(err, "encoding lock file")
	}

	if err := fsutil.WriteFileAtomic(path, append(data, '\n')); err != nil {
		return oops.Code("LOCK_ERROR").With("path", path).Wrapf(err, "saving lock file")
	}
	return nil
}

func (l *LockFile) normalize() *LockFile {
	if l.Version == 0 {
		l.Version = currentVersion
	}
	if l.Sources == nil {
		l.Sources = map[string]*LockEntry{}
	}
	return l
}

func (l *LockFile) GetEntry(name string) *LockEntry {
	if l == nil {
		return nil
	}
	return l.Sources[name]
}

func (l *LockFile) SetEntry(name string, entry *LockEntry) {
	if l == nil {
		return
	}
	l.normalize().Sources[name] = entry
}

func (l *LockFile) RemoveEntry(name string) {
	if l != nil {
		delete(l.Sources, name)
	}
}

// Names returns the tracked source names in sorted order.
func (l *LockFile) Names() []string {
	if l == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(l.Sources))
}

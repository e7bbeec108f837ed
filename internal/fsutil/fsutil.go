// Package fsutil holds the small filesystem helpers shared by the writers.
package fsutil

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

// WriteFileAtomic writes content to a temp file beside path and renames it
// over path. Missing parent directories are created.
func WriteFileAtomic(path string, content []byte) error {
	failed := oops.Code("WRITE_FAILED").With("path", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return failed.Wrapf(err, "creating destination directory")
	}

	tmp, err := os.CreateTemp(dir, ".ndoc-*.tmp")
	if err != nil {
		return failed.Wrapf(err, "creating temporary file")
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(content)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return failed.Wrapf(err, "writing temporary file")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return failed.Wrapf(err, "replacing destination file")
	}
	return nil
}

// CleanupEmptyDirs removes dir and then each empty parent, stopping before
// stopDir or at the first directory that still has entries.
func CleanupEmptyDirs(dir, stopDir string) {
	stop := filepath.Clean(stopDir)

	for dir = filepath.Clean(dir); dir != stop && dir != "." && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		if entries, err := os.ReadDir(dir); err != nil || len(entries) > 0 {
			return
		}
		if os.Remove(dir) != nil {
			return
		}
	}
}

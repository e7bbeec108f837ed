package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/document"
	"github.com/g5becks/ndoc/internal/lockfile"
)

type dirSource struct {
	name   string
	source config.Source
	root   string
	// outputRoot is skipped while walking so synced collections are not
	// mirrored back into this one.
	outputRoot string
}

// NewDir creates a source that mirrors matching files from a local directory.
// Relative paths resolve against env.BaseDir.
func NewDir(name string, cfg config.Source, env Env) (Source, error) {
	root := cfg.Path
	if !filepath.IsAbs(root) {
		root = filepath.Join(env.BaseDir, root)
	}

	outputRoot := ""
	if env.OutputRoot != "" {
		outputRoot = filepath.Clean(env.OutputRoot)
	}

	return &dirSource{
		name:       name,
		source:     cfg,
		root:       filepath.Clean(root),
		outputRoot: outputRoot,
	}, nil
}

func (s *dirSource) Sync(
	ctx context.Context,
	destDir string,
	prevLock *lockfile.LockEntry,
	opts SyncOptions,
	tracker *progress.Tracker,
) (result *SyncResult, err error) {
	defer func() { trackerDone(tracker, err) }()

	newFiles, err := s.buildFileMap(ctx, destDir)
	if err != nil {
		return nil, err
	}

	trackerTotal(tracker, len(newFiles))

	changes := planChanges(prevLock, newFiles, opts.Force)
	lockEntry := &lockfile.LockEntry{
		Type:      config.SourceTypeDir,
		SyncedAt:  time.Now().UTC(),
		Documents: newFiles,
	}

	if !opts.DryRun {
		applyErr := changes.apply(s.name, destDir, func(path string) ([]byte, error) {
			defer trackerStep(tracker)
			return s.readFile(path)
		})
		if applyErr != nil {
			return nil, applyErr
		}
	}

	return changes.result(lockEntry), nil
}

// buildFileMap hashes every included file under the root, keyed by slash path.
// The destination and the output root are skipped when they live inside it.
func (s *dirSource) buildFileMap(ctx context.Context, destDir string) (map[string]string, error) {
	skipDirs := []string{filepath.Clean(destDir)}
	if s.outputRoot != "" && s.outputRoot != s.root {
		skipDirs = append(skipDirs, s.outputRoot)
	}

	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		return nil, oops.
			Code("SOURCE_NOT_FOUND").
			With("source", s.name).
			With("path", s.root).
			Hint("Check the path of the dir source in ndoc.toml").
			Errorf("directory %q is not readable", s.root)
	}

	files := make(map[string]string)
	walkErr := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if entry.IsDir() {
			if slices.Contains(skipDirs, path) {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		relativePath, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}

		relativePath = filepath.ToSlash(relativePath)
		include, matchErr := shouldIncludeFile(relativePath, s.source.Patterns, s.source.Exclude)
		if matchErr != nil || !include {
			return matchErr
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}

		files[relativePath] = document.HashBytes(content)
		return nil
	})
	if walkErr != nil {
		return nil, oops.
			Code("SYNC_FAILED").
			With("source", s.name).
			With("path", s.root).
			Wrapf(walkErr, "scanning directory source")
	}

	return files, nil
}

func (s *dirSource) readFile(relativePath string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(relativePath)))
	if err != nil {
		return nil, oops.
			Code("SYNC_FAILED").
			With("source", s.name).
			With("path", relativePath).
			Wrapf(err, "reading source file")
	}

	return content, nil
}

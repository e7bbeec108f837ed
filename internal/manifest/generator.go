package manifest

import (
	"bytes"
	"context"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/lockfile"
	"github.com/g5becks/ndoc/internal/parser"
)

// Files above this size are listed with a warning and never parsed.
const maxParseSize = 50 << 20

// Generate walks the output directory of every configured source and writes
// manifest.json. Sources that were never synced are left out; binary files
// are counted as skipped.
func Generate(ctx context.Context, cfg *config.Config, lock *lockfile.LockFile) error {
	m := New()
	parsers := parser.Defaults(parser.WithRenderer(cfg.Render.Renderer()))

	for _, name := range slices.Sorted(maps.Keys(cfg.Sources)) {
		src := cfg.Sources[name]
		root := cfg.OutputDir(name, src)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}

		collection := &Collection{
			Name:     name,
			Dir:      filepath.ToSlash(src.Out),
			Type:     src.Type,
			Source:   sourceLocation(src),
			LastSync: time.Now(),
		}
		if collection.Dir == "" {
			collection.Dir = name
		}
		if entry := lock.GetEntry(name); entry != nil {
			collection.LastSync = entry.SyncedAt
		}

		if err := collection.scan(ctx, root, parsers); err != nil {
			return oops.
				Code("MANIFEST_GENERATION_ERROR").
				With("source", name).
				Wrapf(err, "walking source directory")
		}

		m.Collections[name] = collection
	}

	return m.Save(cfg.Output)
}

// scan describes every file under root and fills the collection totals.
func (c *Collection) scan(ctx context.Context, root string, parsers []parser.Parser) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		switch {
		case walkErr != nil:
			return walkErr
		case d.IsDir(), d.Name() == ManifestFile, d.Name() == lockfile.FileName:
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		}

		rel, _ := filepath.Rel(root, path)
		file, ok := describeFile(path, filepath.ToSlash(rel), parsers)
		if !ok {
			c.Skipped++
			return nil
		}

		c.Files = append(c.Files, file)
		c.TotalSize += file.Size
		return nil
	})

	sortFiles(c.Files)
	c.FileCount = len(c.Files)
	return err
}

// describeFile reads one synced file. It reports false for files that are
// binary, unreadable or fail to parse.
func describeFile(path, rel string, parsers []parser.Parser) (FileInfo, bool) {
	stat, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, false
	}

	file := FileInfo{Path: rel, Type: "unknown", Size: stat.Size(), Modified: stat.ModTime()}
	if stat.Size() > maxParseSize {
		file.Warning = "file_too_large"
		return file, true
	}

	content, err := os.ReadFile(path)
	if err != nil || parser.IsBinary(content) {
		return FileInfo{}, false
	}

	if !parser.IsValidUTF8(content) {
		file.Warning = "invalid_utf8"
	}

	p := parser.Find(parsers, rel)
	if p == nil {
		file.Lines = bytes.Count(content, []byte("\n")) + 1
		return file, true
	}

	result, err := p.Parse(rel, content)
	if err != nil {
		return FileInfo{}, false
	}

	file.Type = parser.DetectFileType(rel)
	file.Lines = result.Lines
	file.Description = result.Description
	file.Outline = result.Outline

	if doc := result.Document; doc != nil {
		file.ID = doc.ID
		file.Board = doc.Board
		file.Title = doc.Title
		file.Username = doc.Username
		file.Views = doc.Views
		file.CreatedAt = doc.CreatedAt
		file.Image = doc.Image
	}

	return file, true
}

func sourceLocation(src config.Source) string {
	switch src.Type {
	case config.SourceTypeBoard:
		return src.Board
	case config.SourceTypeDir:
		return src.Path
	default:
		return src.URL
	}
}

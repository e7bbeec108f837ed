// Package manifest indexes the synced output tree for the read-only commands.
package manifest

import (
	"cmp"
	"encoding/json"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/fsutil"
	"github.com/g5becks/ndoc/internal/parser"
)

const (
	CurrentVersion = "1.0.0"
	ManifestFile   = "manifest.json"
)

type Manifest struct {
	Version     string                 `json:"version"`
	Generated   time.Time              `json:"generated"`
	Collections map[string]*Collection `json:"collections"`
}

type Collection struct {
	Name      string     `json:"name"`
	Dir       string     `json:"dir"`
	Type      string     `json:"type"`
	Source    string     `json:"source"`
	LastSync  time.Time  `json:"last_sync"`
	FileCount int        `json:"file_count"`
	TotalSize int64      `json:"total_size"`
	Skipped   int        `json:"skipped,omitempty"`
	Files     []FileInfo `json:"files"`
}

// FileInfo describes one synced file. The post fields are empty for files
// that are not stored posts.
type FileInfo struct {
	Path        string          `json:"path"`
	Type        string          `json:"type"`
	Size        int64           `json:"size"`
	Lines       int             `json:"lines"`
	Modified    time.Time       `json:"modified"`
	Description string          `json:"description"`
	Warning     string          `json:"warning,omitempty"`
	Outline     *parser.Outline `json:"outline,omitempty"`

	ID        int64     `json:"id,omitempty"`
	Board     string    `json:"board,omitempty"`
	Title     string    `json:"title,omitempty"`
	Username  string    `json:"username,omitempty"`
	Views     int64     `json:"views,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Image     string    `json:"image,omitempty"`
}

// IsPost reports whether the file carries post metadata.
func (f *FileInfo) IsPost() bool {
	return f.ID != 0
}

func New() *Manifest {
	return &Manifest{
		Version:     CurrentVersion,
		Generated:   time.Now(),
		Collections: map[string]*Collection{},
	}
}

// Load reads manifest.json from outputDir.
func Load(outputDir string) (*Manifest, error) {
	path := Path(outputDir)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, oops.
			Code("MANIFEST_NOT_FOUND").
			With("path", path).
			Hint("Run 'ndoc sync' to generate the manifest").
			Errorf("manifest not found at %q", path)
	case err != nil:
		return nil, oops.Code("MANIFEST_READ_ERROR").With("path", path).Wrapf(err, "reading manifest file")
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, oops.
			Code("MANIFEST_CORRUPTED").
			With("path", path).
			Hint("Delete manifest.json from the output directory and run 'ndoc sync'").
			Wrapf(err, "parsing manifest file")
	}
	if m.Collections == nil {
		m.Collections = map[string]*Collection{}
	}

	return &m, nil
}

func (m *Manifest) Save(outputDir string) error {
	writeErr := oops.Code("MANIFEST_WRITE_ERROR").With("path", Path(outputDir))
	if m == nil {
		return writeErr.Hint("Initialize manifest before saving").Errorf("cannot save nil manifest")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return writeErr.Wrapf(err, "encoding manifest")
	}
	if err := fsutil.WriteFileAtomic(Path(outputDir), append(data, '\n')); err != nil {
		return writeErr.Wrapf(err, "writing manifest")
	}
	return nil
}

func Path(outputDir string) string {
	return filepath.Join(outputDir, ManifestFile)
}

// Names returns the collection names in sorted order.
func (m *Manifest) Names() []string {
	return slices.Sorted(maps.Keys(m.Collections))
}

func (m *Manifest) Collection(name string) (*Collection, error) {
	collection, ok := m.Collections[name]
	if !ok {
		return nil, oops.
			Code("COLLECTION_NOT_FOUND").
			With("collection", name).
			Hint("Run 'ndoc collections' to see available collections").
			Errorf("collection %q not found", name)
	}

	return collection, nil
}

// Find looks up a file by its path within a collection. A bare post id such as
// "12" also matches "12.ndoc".
func (m *Manifest) Find(collectionName string, filePath string) (*Collection, *FileInfo, error) {
	collection, err := m.Collection(collectionName)
	if err != nil {
		return nil, nil, err
	}

	want := filepath.ToSlash(filepath.Clean(filePath))
	for _, candidate := range []string{want, want + ".ndoc"} {
		if i := slices.IndexFunc(collection.Files, func(f FileInfo) bool { return f.Path == candidate }); i >= 0 {
			return collection, &collection.Files[i], nil
		}
	}

	return nil, nil, oops.
		Code("FILE_NOT_FOUND").
		With("file", filePath).
		With("collection", collectionName).
		Hint("Run 'ndoc files "+collectionName+"' to see available files").
		Errorf("file %q not found in collection %q", filePath, collectionName)
}

// FilePath is the location of a file on disk under the output directory.
func (c *Collection) FilePath(outputDir string, file *FileInfo) string {
	dir := cmp.Or(c.Dir, c.Name)
	return filepath.Join(outputDir, filepath.FromSlash(dir), filepath.FromSlash(file.Path))
}

// Neighbors returns the posts immediately before and after file when the
// collection's posts are ordered by id. Either result may be nil.
func (c *Collection) Neighbors(file *FileInfo) (*FileInfo, *FileInfo) {
	if file == nil || !file.IsPost() {
		return nil, nil
	}

	var prev, next *FileInfo
	for i := range c.Files {
		candidate := &c.Files[i]
		if !candidate.IsPost() || candidate.ID == file.ID {
			continue
		}

		if candidate.ID < file.ID && (prev == nil || candidate.ID > prev.ID) {
			prev = candidate
		}

		if candidate.ID > file.ID && (next == nil || candidate.ID < next.ID) {
			next = candidate
		}
	}

	return prev, next
}

func sortFiles(files []FileInfo) {
	slices.SortFunc(files, func(a, b FileInfo) int {
		return cmp.Compare(a.Path, b.Path)
	})
}

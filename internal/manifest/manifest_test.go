package manifest_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/manifest"
	"github.com/g5becks/ndoc/internal/parser"
)

func errorCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return fmt.Sprint(oopsErr.Code())
	}
	return ""
}

func TestSaveThenLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".ndoc")
	synced := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)

	saved := manifest.New()
	saved.Collections["notices"] = &manifest.Collection{
		Name:      "notices",
		Dir:       "notices",
		Type:      "board",
		Source:    "announcement",
		LastSync:  synced,
		FileCount: 1,
		TotalSize: 512,
		Files: []manifest.FileInfo{{
			Path:        "12.ndoc",
			Type:        "ndoc",
			Size:        512,
			Lines:       20,
			Modified:    synced,
			Description: "모집 안내",
			Outline: &parser.Outline{
				Type:     parser.OutlineTypeHeadings,
				Headings: []parser.Heading{{Level: 4, Text: "일정", Line: 8}},
			},
			ID:        12,
			Board:     "announcement",
			Title:     "모집 안내",
			Username:  "회장",
			Views:     31,
			CreatedAt: synced.Add(-time.Hour),
		}},
	}

	if err := saved.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != manifest.ManifestFile {
		t.Errorf("output dir holds %v, want only %s", entries, manifest.ManifestFile)
	}

	loaded, err := manifest.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff(saved.Collections, loaded.Collections); diff != "" {
		t.Errorf("collections mismatch (-saved +loaded):\n%s", diff)
	}
	if loaded.Version != manifest.CurrentVersion {
		t.Errorf("Version = %q, want %q", loaded.Version, manifest.CurrentVersion)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
	}{
		{name: "missing", wantCode: "MANIFEST_NOT_FOUND"},
		{name: "corrupted", content: `{"collections": [`, wantCode: "MANIFEST_CORRUPTED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if tc.content != "" {
				if err := os.WriteFile(manifest.Path(dir), []byte(tc.content), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			_, err := manifest.Load(dir)
			if got := errorCode(err); got != tc.wantCode {
				t.Errorf("Load() error = %v, want code %s", err, tc.wantCode)
			}
		})
	}
}

func TestLoadFillsMissingCollections(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(manifest.Path(dir), []byte(`{"version": "1.0.0"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := manifest.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Collections == nil || len(m.Names()) != 0 {
		t.Errorf("Collections = %v, want empty map", m.Collections)
	}
}

func TestSaveNilManifest(t *testing.T) {
	var m *manifest.Manifest
	if err := m.Save(t.TempDir()); errorCode(err) != "MANIFEST_WRITE_ERROR" {
		t.Errorf("Save() error = %v, want MANIFEST_WRITE_ERROR", err)
	}
}

func postCollection() *manifest.Collection {
	return &manifest.Collection{
		Name: "notices",
		Dir:  "boards/notices",
		Type: "board",
		Files: []manifest.FileInfo{
			{Path: "12.ndoc", ID: 12, Title: "twelve"},
			{Path: "3.ndoc", ID: 3, Title: "three"},
			{Path: "7.ndoc", ID: 7, Title: "seven"},
			{Path: "readme.txt"},
		},
	}
}

func TestFind(t *testing.T) {
	m := manifest.New()
	m.Collections["notices"] = postCollection()

	_, file, err := m.Find("notices", "7.ndoc")
	if err != nil || file.ID != 7 {
		t.Fatalf("Find(7.ndoc) = %+v, %v", file, err)
	}

	_, file, err = m.Find("notices", "12")
	if err != nil || file.ID != 12 {
		t.Fatalf("Find(12) = %+v, %v", file, err)
	}

	if _, _, err = m.Find("notices", "99.ndoc"); errorCode(err) != "FILE_NOT_FOUND" {
		t.Fatalf("Find(99.ndoc) error = %v, want FILE_NOT_FOUND", err)
	}

	if _, _, err = m.Find("gallery", "7.ndoc"); errorCode(err) != "COLLECTION_NOT_FOUND" {
		t.Fatalf("Find() on missing collection error = %v", err)
	}

	if got := m.Names(); !cmp.Equal(got, []string{"notices"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestNeighbors(t *testing.T) {
	coll := postCollection()

	testCases := []struct {
		path     string
		wantPrev string
		wantNext string
	}{
		{path: "3.ndoc", wantPrev: "", wantNext: "7.ndoc"},
		{path: "7.ndoc", wantPrev: "3.ndoc", wantNext: "12.ndoc"},
		{path: "12.ndoc", wantPrev: "7.ndoc", wantNext: ""},
		{path: "readme.txt", wantPrev: "", wantNext: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			var file *manifest.FileInfo
			for i := range coll.Files {
				if coll.Files[i].Path == tc.path {
					file = &coll.Files[i]
				}
			}

			prev, next := coll.Neighbors(file)
			if got := pathOf(prev); got != tc.wantPrev {
				t.Errorf("prev = %q, want %q", got, tc.wantPrev)
			}
			if got := pathOf(next); got != tc.wantNext {
				t.Errorf("next = %q, want %q", got, tc.wantNext)
			}
		})
	}
}

func TestCollectionFilePath(t *testing.T) {
	coll := postCollection()

	got := coll.FilePath("/out", &coll.Files[0])
	want := filepath.Join("/out", "boards", "notices", "12.ndoc")
	if got != want {
		t.Fatalf("FilePath() = %q, want %q", got, want)
	}
}

func pathOf(f *manifest.FileInfo) string {
	if f == nil {
		return ""
	}

	return f.Path
}

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/manifest"
)

func errorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	return fmt.Sprint(oopsErr.Code())
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestTruncateDescription(t *testing.T) {
	tests := []struct {
		name   string
		desc   string
		maxLen int
		want   string
	}{
		{name: "no limit", desc: "hello world", maxLen: 0, want: "hello world"},
		{name: "fits", desc: "hello", maxLen: 10, want: "hello"},
		{name: "ascii cut", desc: "hello world", maxLen: 8, want: "hello..."},
		{name: "hangul cut by rune", desc: "정기 모임 공지 안내", maxLen: 7, want: "정기 모..."},
		{name: "tiny limit", desc: "hello world", maxLen: 2, want: "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncateDescription(tc.desc, tc.maxLen); got != tc.want {
				t.Errorf("truncateDescription(%q, %d) = %q, want %q", tc.desc, tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KB",
		1536:        "1.5 KB",
		1024 * 1024: "1.0 MB",
	}

	for size, want := range tests {
		if got := formatSize(size); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", size, got, want)
		}
	}
}

func TestFormatTimeZero(t *testing.T) {
	if got := formatTime(time.Time{}); got != "never" {
		t.Errorf("formatTime(zero) = %q, want never", got)
	}
}

func TestFileColumns(t *testing.T) {
	post := manifest.FileInfo{
		Path:     "12.ndoc",
		Type:     "ndoc",
		ID:       12,
		Board:    "announcement",
		Title:    "공지",
		Username: "admin",
		Lines:    3,
	}
	plain := manifest.FileInfo{Path: "notes.txt", Type: "txt"}

	columns, err := fileColumns([]string{"id", "views", "title", "lines", "created"})
	if err != nil {
		t.Fatalf("fileColumns() error = %v", err)
	}

	var buf bytes.Buffer
	list := listing[manifest.FileInfo]{columns: columns, format: formatCSV}
	if err := list.write(&buf, []manifest.FileInfo{post, plain}); err != nil {
		t.Fatalf("write() error = %v", err)
	}

	want := "id,views,title,lines,created\n12,0,공지,3,\n,,,0,\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}

	if _, err := fileColumns([]string{"path", "colour"}); errorCode(err) != "INVALID_ARGS" {
		t.Errorf("fileColumns(colour) error = %v, want INVALID_ARGS", err)
	}
}

func TestListingClipsTableCellsOnly(t *testing.T) {
	columns := []column[string]{
		{name: "text", value: func(s string) string { return s }, clip: true},
	}
	long := "정기 모임 공지 안내 말씀"

	var csvOut, tableOut bytes.Buffer
	if err := (listing[string]{columns: columns, format: formatCSV, descLength: 6}).write(&csvOut, []string{long}); err != nil {
		t.Fatal(err)
	}
	if err := (listing[string]{columns: columns, format: formatTable, descLength: 6}).write(&tableOut, []string{long}); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(csvOut.String(), long) {
		t.Errorf("csv output clipped: %q", csvOut.String())
	}
	if !strings.Contains(tableOut.String(), "TEXT") || !strings.Contains(tableOut.String(), "정기 ...") {
		t.Errorf("table output = %q, want clipped cell under TEXT", tableOut.String())
	}
}

func TestInitRefusesToOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := run([]string{"ndoc", "init"}); err != nil {
		t.Fatalf("init error = %v", err)
	}

	if _, err := os.Stat("ndoc.toml"); err != nil {
		t.Fatalf("ndoc.toml not created: %v", err)
	}

	err := run([]string{"ndoc", "init"})
	if got := errorCode(err); got != "CONFIG_EXISTS" {
		t.Fatalf("second init error code = %q (%v), want CONFIG_EXISTS", got, err)
	}

	if err := run([]string{"ndoc", "init", "--force"}); err != nil {
		t.Fatalf("init --force error = %v", err)
	}
}

func TestSyncThenReadCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, filepath.Join(dir, "ndoc.toml"), `
[sources.drafts]
path = "drafts"
`)
	writeFile(t, filepath.Join(dir, "drafts", "3.ndoc"), "---\nid: 3\nboard: announcement\ntitle: 셋\n---\n#### 안내\n본문\n")
	writeFile(t, filepath.Join(dir, "drafts", "5.ndoc"), "---\nid: 5\nboard: announcement\ntitle: 다섯\n---\n**굵게**\n")

	if err := run([]string{"ndoc", "sync", "--no-progress"}); err != nil {
		t.Fatalf("sync error = %v", err)
	}

	m, err := manifest.Load(filepath.Join(dir, ".ndoc"))
	if err != nil {
		t.Fatalf("manifest.Load() error = %v", err)
	}

	coll, file, err := m.Find("drafts", "3")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if _, next := coll.Neighbors(file); next == nil || next.ID != 5 {
		t.Fatalf("Neighbors(3) next = %+v, want 5", next)
	}

	commands := [][]string{
		{"ndoc", "list", "--files"},
		{"ndoc", "collections"},
		{"ndoc", "files", "--format", "csv", "drafts"},
		{"ndoc", "cat", "--plain", "drafts", "3"},
		{"ndoc", "outline", "drafts", "3.ndoc"},
		{"ndoc", "render", "--format", "html", "drafts", "3"},
		{"ndoc", "nav", "--json", "drafts", "5"},
		{"ndoc", "search", "안내"},
		{"ndoc", "search", "--content", "굵게"},
	}

	for _, args := range commands {
		if err := run(args); err != nil {
			t.Errorf("%v error = %v", args[1:], err)
		}
	}

	if err := run([]string{"ndoc", "clean", "drafts"}); err != nil {
		t.Fatalf("clean error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".ndoc", "drafts")); !os.IsNotExist(err) {
		t.Fatalf("drafts output survived clean: %v", err)
	}
}

func TestRenderLocalFileWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "post.txt")
	writeFile(t, path, "# 제목\n~~취소~~")

	for _, format := range []string{"tree", "json", "html", "markup"} {
		if err := run([]string{"ndoc", "render", "--file", path, "--format", format}); err != nil {
			t.Errorf("render --format %s error = %v", format, err)
		}
	}

	err := run([]string{"ndoc", "render", "--file", path, "--format", "pdf"})
	if got := errorCode(err); got != "INVALID_ARGS" {
		t.Errorf("render --format pdf error code = %q, want INVALID_ARGS", got)
	}
}

func TestSearchRegexRequiresContent(t *testing.T) {
	err := run([]string{"ndoc", "search", "--regex", "a.*b"})
	if got := errorCode(err); got != "INVALID_ARGS" {
		t.Errorf("error code = %q, want INVALID_ARGS", got)
	}
}

func TestWindow(t *testing.T) {
	lines := []string{"가", "나", "다", "라"}

	tests := []struct {
		offset, limit int
		want          []string
	}{
		{0, 0, lines},
		{1, 2, []string{"나", "다"}},
		{3, 5, []string{"라"}},
		{4, 0, nil},
		{-1, 0, nil},
	}

	for _, tc := range tests {
		got := window(lines, tc.offset, tc.limit)
		if !slices.Equal(got, tc.want) {
			t.Errorf("window(%d, %d) = %q, want %q", tc.offset, tc.limit, got, tc.want)
		}
	}
}

package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// SourceStatus is one row of 'ndoc list'.
type SourceStatus struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Board     string    `json:"board,omitempty"`
	BaseURL   string    `json:"base_url,omitempty"`
	Path      string    `json:"path,omitempty"`
	URL       string    `json:"url,omitempty"`
	Patterns  []string  `json:"patterns,omitempty"`
	OutputDir string    `json:"output_dir"`
	Status    string    `json:"status"`
	FileCount int       `json:"file_count,omitempty"`
	SyncedAt  time.Time `json:"synced_at,omitzero"`
}

// Location is where the source reads from: the board endpoint, the URL or
// the local path.
func (s SourceStatus) Location() string {
	switch s.Type {
	case "board":
		return strings.TrimSuffix(s.BaseURL, "/") + "/" + s.Board
	case "url":
		return s.URL
	default:
		return s.Path
	}
}

// Describe returns the status, with the synced file count when withFiles is
// set and the source has files.
func (s SourceStatus) Describe(withFiles bool) string {
	if !withFiles || s.FileCount == 0 {
		return s.Status
	}
	return fmt.Sprintf("%s (%d files)", s.Status, s.FileCount)
}

type ListOptions struct {
	JSON    bool
	Verbose bool
	Files   bool
}

// RenderSourceList writes the configured sources as JSON or a table.
func RenderSourceList(w io.Writer, sources []SourceStatus, opts ListOptions) error {
	if opts.JSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(sources); err != nil {
			return fmt.Errorf("encode source list: %w", err)
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	header := table.Row{"SOURCE", "TYPE", "LOCATION", "STATUS"}
	if opts.Verbose {
		header = append(header, "SYNCED", "PATTERNS", "OUTPUT DIR")
	}
	t.AppendHeader(header)

	for _, s := range sources {
		row := table.Row{s.Name, s.Type, s.Location(), s.Describe(opts.Files)}
		if opts.Verbose {
			synced := "never"
			if !s.SyncedAt.IsZero() {
				synced = s.SyncedAt.Local().Format(time.DateTime)
			}
			row = append(row, synced, strings.Join(s.Patterns, ", "), s.OutputDir)
		}
		t.AppendRow(row)
	}

	t.Render()
	return nil
}

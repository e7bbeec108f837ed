package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/ndoc/internal/config"
)

const (
	formatJSON  = "json"
	formatCSV   = "csv"
	formatTable = "table"
)

// column renders one field of a listed item. Table cells are truncated to
// the description length when clip is set; CSV cells never are.
type column[T any] struct {
	name  string
	value func(T) string
	clip  bool
}

// listing prints items as JSON, CSV or a rounded table.
type listing[T any] struct {
	columns    []column[T]
	format     string
	descLength int
}

func (l listing[T]) write(w io.Writer, items []T) error {
	switch l.format {
	case formatJSON:
		return writeJSON(w, items)
	case formatCSV:
		return l.writeCSV(w, items)
	default:
		l.writeTable(w, items)
		return nil
	}
}

func (l listing[T]) writeCSV(w io.Writer, items []T) error {
	out := csv.NewWriter(w)

	row := make([]string, len(l.columns))
	for i, col := range l.columns {
		row[i] = col.name
	}
	if err := out.Write(row); err != nil {
		return oops.Code("CSV_ERROR").Wrapf(err, "writing CSV header")
	}

	for _, item := range items {
		for i, col := range l.columns {
			row[i] = col.value(item)
		}
		if err := out.Write(row); err != nil {
			return oops.Code("CSV_ERROR").Wrapf(err, "writing CSV row")
		}
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return oops.Code("CSV_ERROR").Wrapf(err, "flushing CSV")
	}
	return nil
}

func (l listing[T]) writeTable(w io.Writer, items []T) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, len(l.columns))
	for i, col := range l.columns {
		header[i] = strings.ToUpper(col.name)
	}
	t.AppendHeader(header)

	for _, item := range items {
		row := make(table.Row, len(l.columns))
		for i, col := range l.columns {
			cell := col.value(item)
			if col.clip {
				cell = truncateDescription(cell, l.descLength)
			}
			row[i] = cell
		}
		t.AppendRow(row)
	}

	t.Render()
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return oops.Code("JSON_ERROR").Wrapf(err, "encoding output")
	}
	return nil
}

// stdout is where command output goes; tests swap the root writer.
func stdout(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func displayFlags(limitUsage string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		&cli.StringFlag{Name: "format", Usage: "Output format: table, json, csv"},
		&cli.IntFlag{Name: "limit", Usage: limitUsage},
		&cli.IntFlag{Name: "desc-length", Usage: "Max table text length (0 = use config default)"},
	}
}

func resolveLimit(cmd *cli.Command, cfg *config.Config) int {
	switch {
	case cmd.Bool("all"):
		return 0
	case cmd.IsSet("limit"):
		return cmd.Int("limit")
	default:
		return cfg.Display.DefaultLimit
	}
}

func resolveFormat(cmd *cli.Command, cfg *config.Config) string {
	switch {
	case cmd.Bool("json"):
		return formatJSON
	case cmd.IsSet("format"):
		return cmd.String("format")
	default:
		return cfg.Display.Format
	}
}

func resolveDescLength(cmd *cli.Command, cfg *config.Config) int {
	if cmd.IsSet("desc-length") {
		return cmd.Int("desc-length")
	}
	return cfg.Display.DescriptionLength
}

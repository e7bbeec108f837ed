package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/manifest"
)

// fileFields maps a --fields name to how a manifest entry prints it.
var fileFields = map[string]func(manifest.FileInfo) string{
	"path":     func(f manifest.FileInfo) string { return f.Path },
	"type":     func(f manifest.FileInfo) string { return f.Type },
	"title":    func(f manifest.FileInfo) string { return f.Title },
	"board":    func(f manifest.FileInfo) string { return f.Board },
	"username": func(f manifest.FileInfo) string { return f.Username },
	"id": func(f manifest.FileInfo) string {
		if f.ID == 0 {
			return ""
		}
		return strconv.FormatInt(f.ID, 10)
	},
	"views": func(f manifest.FileInfo) string {
		if !f.IsPost() {
			return ""
		}
		return strconv.FormatInt(f.Views, 10)
	},
	"lines":       func(f manifest.FileInfo) string { return strconv.Itoa(f.Lines) },
	"size":        func(f manifest.FileInfo) string { return formatSize(f.Size) },
	"description": func(f manifest.FileInfo) string { return f.Description },
	"modified":    func(f manifest.FileInfo) string { return formatTime(f.Modified) },
	"created": func(f manifest.FileInfo) string {
		if f.CreatedAt.IsZero() {
			return ""
		}
		return formatTime(f.CreatedAt)
	},
}

func newFilesCommand() *cli.Command {
	flags := append([]cli.Flag{configFlag()}, displayFlags("Show first N files (0 = use config default)")...)
	flags = append(flags,
		&cli.BoolFlag{Name: "all", Usage: "Show all files (no limit)"},
		&cli.StringFlag{
			Name:  "fields",
			Usage: "Comma-separated fields: path,type,title,board,id,username,views,lines,size,description,modified,created",
		},
	)

	return &cli.Command{
		Name:      "files",
		Usage:     "List files in a collection",
		ArgsUsage: "<collection>",
		Flags:     flags,
		Action:    filesAction,
	}
}

func filesAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: ndoc files <collection>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}

	cfg, m, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	collection, err := m.Collection(cmd.Args().First())
	if err != nil {
		return err
	}

	columns, err := fileColumns(resolveFields(cmd, cfg))
	if err != nil {
		return err
	}

	files := collection.Files
	if limit := resolveLimit(cmd, cfg); limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	format := resolveFormat(cmd, cfg)
	out := stdout(cmd)
	if format == formatJSON {
		return writeJSON(out, files)
	}

	err = listing[manifest.FileInfo]{columns: columns, format: format, descLength: resolveDescLength(cmd, cfg)}.write(out, files)
	if err == nil && format != formatCSV && len(files) < len(collection.Files) {
		fmt.Fprintf(out, "\n(showing %d of %d files, use --all to show all)\n", len(files), len(collection.Files))
	}
	return err
}

func resolveFields(cmd *cli.Command, cfg *config.Config) []string {
	if !cmd.IsSet("fields") {
		return cfg.Display.ListFields
	}

	fields := strings.Split(cmd.String("fields"), ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func fileColumns(fields []string) ([]column[manifest.FileInfo], error) {
	columns := make([]column[manifest.FileInfo], 0, len(fields))
	for _, field := range fields {
		value, ok := fileFields[field]
		if !ok {
			return nil, oops.
				Code("INVALID_ARGS").
				With("field", field).
				Hint("Valid fields: path,type,title,board,id,username,views,lines,size,description,modified,created").
				Errorf("unknown field %q", field)
		}
		columns = append(columns, column[manifest.FileInfo]{name: field, value: value, clip: field == "description"})
	}
	return columns, nil
}

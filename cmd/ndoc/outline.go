package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
)

func newOutlineCommand() *cli.Command {
	return &cli.Command{
		Name:      "outline",
		Usage:     "Show the heading structure of a file",
		ArgsUsage: "<collection> <file>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: outlineAction,
	}
}

func outlineAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: ndoc outline <collection> <file>").
			Errorf("expected 2 arguments, got %d", cmd.Args().Len())
	}

	_, m, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	_, fileInfo, err := m.Find(cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return err
	}

	out := stdout(cmd)
	if cmd.Bool("json") {
		return writeJSON(out, fileInfo.Outline)
	}

	label := fileInfo.Path
	if fileInfo.Title != "" {
		label += " [" + fileInfo.Title + "]"
	}
	fmt.Fprintf(out, "%s (%d lines, %s)\n\n", label, fileInfo.Lines, formatSize(fileInfo.Size))

	if fileInfo.Outline == nil || len(fileInfo.Outline.Headings) == 0 {
		fmt.Fprint(out, "No headings found.\nUse 'ndoc cat' to read the full content.\n")
		return nil
	}

	fmt.Fprintln(out, "STRUCTURE:")
	for _, h := range fileInfo.Outline.Headings {
		fmt.Fprintf(out, "%3d  %s%s\n", h.Line, strings.Repeat("  ", max(h.Level-1, 0)), h.Text)
	}
	return nil
}

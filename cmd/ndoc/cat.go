package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/document"
	"github.com/g5becks/ndoc/internal/manifest"
	"github.com/g5becks/ndoc/internal/markup"
	"github.com/g5becks/ndoc/internal/parser"
)

func newCatCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "Read file contents from a collection",
		ArgsUsage: "<collection> <file>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON with metadata"},
			&cli.BoolFlag{Name: "line-numbers", Usage: "Show line numbers (default from [display] line_numbers)"},
			&cli.BoolFlag{Name: "plain", Usage: "Print the rendered text without markup or frontmatter"},
			&cli.IntFlag{Name: "offset", Usage: "Start at line N (0-based)"},
			&cli.IntFlag{Name: "limit", Usage: "Show N lines (0 = all)"},
		},
		Action: catAction,
	}
}

type catOutput struct {
	Collection string `json:"collection"`
	Path       string `json:"path"`
	Type       string `json:"type"`
	Title      string `json:"title,omitempty"`
	Lines      int    `json:"lines"`
	Size       int64  `json:"size"`
	Content    string `json:"content"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}

func catAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: ndoc cat <collection> <file>").
			Errorf("expected 2 arguments, got %d", cmd.Args().Len())
	}

	cfg, m, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	collection, fileInfo, err := m.Find(cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return err
	}

	content, err := readCollectionFile(cfg, collection, fileInfo)
	if err != nil {
		return err
	}

	text := string(content)
	if cmd.Bool("plain") {
		text = plainText(cfg, fileInfo.Path, content)
	}

	offset, limit := cmd.Int("offset"), cmd.Int("limit")
	lines := window(strings.Split(text, "\n"), offset, limit)
	out := stdout(cmd)

	if cmd.Bool("json") {
		return writeJSON(out, catOutput{
			Collection: collection.Name,
			Path:       fileInfo.Path,
			Type:       fileInfo.Type,
			Title:      fileInfo.Title,
			Lines:      fileInfo.Lines,
			Size:       fileInfo.Size,
			Content:    strings.Join(lines, "\n"),
			Offset:     offset,
			Limit:      limit,
		})
	}

	numbered := cfg.Display.LineNumbers
	if cmd.IsSet("line-numbers") {
		numbered = cmd.Bool("line-numbers")
	}

	for i, line := range lines {
		if numbered {
			fmt.Fprintf(out, "%6d  %s\n", offset+i+1, line)
		} else {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

// window returns up to limit lines starting at the 0-based offset; a
// non-positive limit keeps the rest.
func window(lines []string, offset, limit int) []string {
	if offset < 0 || offset >= len(lines) {
		return nil
	}

	lines = lines[offset:]
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	return lines
}

func readCollectionFile(cfg *config.Config, collection *manifest.Collection, file *manifest.FileInfo) ([]byte, error) {
	path := collection.FilePath(cfg.Output, file)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.
			Code("FILE_READ_ERROR").
			With("path", path).
			Hint("Run 'ndoc sync' to re-download the file").
			Wrapf(err, "reading file")
	}
	return content, nil
}

// plainText drops the frontmatter of stored posts and strips markup from
// markup files. Other files are returned unchanged.
func plainText(cfg *config.Config, path string, content []byte) string {
	renderer := cfg.Render.Renderer()

	switch parser.DetectFileType(path) {
	case "ndoc":
		doc, err := document.Decode(content)
		if err != nil {
			return string(content)
		}
		return markup.PlainText(renderer.Render(doc.Body))
	case "txt":
		return markup.PlainText(renderer.RenderBytes(content))
	default:
		return string(content)
	}
}

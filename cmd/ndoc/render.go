package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/ndoc/internal/document"
	"github.com/g5becks/ndoc/internal/manifest"
	"github.com/g5becks/ndoc/internal/markup"
	"github.com/g5becks/ndoc/internal/parser"
	"github.com/g5becks/ndoc/internal/ui"
)

const (
	renderFormatTree   = "tree"
	renderFormatJSON   = "json"
	renderFormatHTML   = "html"
	renderFormatMarkup = "markup"
)

func newRenderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a document's markup into a display tree",
		ArgsUsage: "<collection> <file> | --file <path>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Render a local file instead of a synced one (- reads stdin)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: tree, json, html, markup",
				Value: renderFormatTree,
			},
		},
		Action: renderAction,
	}
}

func renderAction(_ context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	switch format {
	case renderFormatTree, renderFormatJSON, renderFormatHTML, renderFormatMarkup:
	default:
		return oops.
			Code("INVALID_ARGS").
			With("format", format).
			Hint("Supported formats: tree, json, html, markup").
			Errorf("unknown render format %q", format)
	}

	renderer, path, content, err := renderInput(cmd)
	if err != nil {
		return err
	}

	body := content
	if parser.DetectFileType(path) == "ndoc" {
		doc, decodeErr := document.Decode(content)
		if decodeErr != nil {
			return decodeErr
		}
		body = []byte(doc.Body)
	}

	return writeTree(os.Stdout, renderer.RenderBytes(body), format)
}

// renderInput reads either a synced file or a local one. A local file does
// not need a config; without one the default render limits apply.
func renderInput(cmd *cli.Command) (*markup.Renderer, string, []byte, error) {
	if local := cmd.String("file"); local != "" {
		if cmd.Args().Len() != 0 {
			return nil, "", nil, oops.
				Code("INVALID_ARGS").
				Hint("Usage: ndoc render --file <path>").
				Errorf("--file cannot be combined with a collection argument")
		}

		renderer := markup.New()
		cfg, err := loadConfig(cmd)
		switch {
		case err == nil:
			renderer = cfg.Render.Renderer()
		case !isCode(err, "CONFIG_NOT_FOUND"):
			return nil, "", nil, err
		}

		content, err := readLocal(local)
		if err != nil {
			return nil, "", nil, err
		}

		return renderer, local, content, nil
	}

	const requiredArgs = 2
	if cmd.Args().Len() != requiredArgs {
		return nil, "", nil, oops.
			Code("INVALID_ARGS").
			Hint("Usage: ndoc render <collection> <file>").
			Errorf("expected %d arguments, got %d", requiredArgs, cmd.Args().Len())
	}

	cfg, m, err := loadManifest(cmd)
	if err != nil {
		return nil, "", nil, err
	}

	collection, fileInfo, err := m.Find(cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return nil, "", nil, err
	}

	content, err := readCollectionFile(cfg, collection, fileInfo)
	if err != nil {
		return nil, "", nil, err
	}

	return cfg.Render.Renderer(), fileInfo.Path, content, nil
}

func readLocal(path string) ([]byte, error) {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, oops.
			Code("FILE_READ_ERROR").
			With("path", path).
			Wrapf(err, "reading file")
	}

	return parser.StripBOM(content), nil
}

func writeTree(w io.Writer, tree *markup.Node, format string) error {
	switch format {
	case renderFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(tree); err != nil {
			return oops.Code("JSON_ERROR").Wrapf(err, "encoding render tree")
		}
		return nil
	case renderFormatHTML:
		if err := markup.WriteHTML(w, tree); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	case renderFormatMarkup:
		_, err := io.WriteString(w, markup.Format(tree))
		return err
	default:
		return ui.NewTreePrinter(w).Print(tree)
	}
}

func isCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && fmt.Sprint(oopsErr.Code()) == code
}

type navOutput struct {
	Collection string    `json:"collection"`
	Current    navEntry  `json:"current"`
	Prev       *navEntry `json:"prev"`
	Next       *navEntry `json:"next"`
}

type navEntry struct {
	ID    int64  `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
}

func newNavCommand() *cli.Command {
	return &cli.Command{
		Name:      "nav",
		Usage:     "Show the previous and next post of a board collection",
		ArgsUsage: "<collection> <file>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: navAction,
	}
}

func navAction(_ context.Context, cmd *cli.Command) error {
	const requiredArgs = 2
	if cmd.Args().Len() != requiredArgs {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: ndoc nav <collection> <file>").
			Errorf("expected %d arguments, got %d", requiredArgs, cmd.Args().Len())
	}

	_, m, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	collection, fileInfo, err := m.Find(cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return err
	}

	if !fileInfo.IsPost() {
		return oops.
			Code("INVALID_ARGS").
			With("file", fileInfo.Path).
			Hint("Navigation needs a synced post (<id>.ndoc)").
			Errorf("file %q is not a post", fileInfo.Path)
	}

	prev, next := collection.Neighbors(fileInfo)
	output := navOutput{
		Collection: collection.Name,
		Current:    *newNavEntry(fileInfo),
		Prev:       newNavEntry(prev),
		Next:       newNavEntry(next),
	}

	if cmd.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return oops.Code("JSON_ERROR").Wrapf(err, "encoding navigation")
		}
		return nil
	}

	outputNavText(output)
	return nil
}

func newNavEntry(file *manifest.FileInfo) *navEntry {
	if file == nil {
		return nil
	}

	return &navEntry{ID: file.ID, Path: file.Path, Title: file.Title}
}

func outputNavText(output navOutput) {
	line := func(label string, entry *navEntry) {
		if entry == nil {
			fmt.Fprintf(os.Stdout, "%-5s -\n", label)
			return
		}
		fmt.Fprintf(os.Stdout, "%-5s %d  %s  (%s)\n", label, entry.ID, entry.Title, entry.Path)
	}

	line("prev", output.Prev)
	line("this", &output.Current)
	line("next", output.Next)
}

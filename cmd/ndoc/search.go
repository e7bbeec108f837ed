package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/manifest"
	"github.com/g5becks/ndoc/internal/search"
)

var metadataColumns = []column[search.MetadataResult]{
	{name: "collection", value: func(r search.MetadataResult) string { return r.Collection }},
	{name: "path", value: func(r search.MetadataResult) string { return r.Path }},
	{name: "title", value: func(r search.MetadataResult) string { return r.Title }, clip: true},
	{name: "match", value: func(r search.MetadataResult) string { return r.MatchField + ": " + r.MatchValue }, clip: true},
	{name: "score", value: func(r search.MetadataResult) string { return strconv.Itoa(r.Score) }},
	{name: "description", value: func(r search.MetadataResult) string { return r.Description }, clip: true},
}

var contentColumns = []column[search.ContentResult]{
	{name: "collection", value: func(r search.ContentResult) string { return r.Collection }},
	{name: "path", value: func(r search.ContentResult) string { return r.Path }},
	{name: "line", value: func(r search.ContentResult) string { return strconv.Itoa(r.Line) }},
	{name: "text", value: func(r search.ContentResult) string { return r.Text }, clip: true},
}

func newSearchCommand() *cli.Command {
	flags := append([]cli.Flag{configFlag()}, displayFlags("Max results (0 = unlimited)")...)
	flags = append(flags,
		&cli.StringFlag{Name: "collection", Usage: "Search only within one collection"},
		&cli.BoolFlag{Name: "content", Usage: "Search rendered file text instead of metadata"},
		&cli.BoolFlag{Name: "regex", Usage: "Treat query as regex (requires --content)"},
	)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search post metadata or rendered content",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action:    searchAction,
	}
}

func searchAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: ndoc search <query>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}

	query := strings.TrimSpace(cmd.Args().First())
	if cmd.Bool("regex") && !cmd.Bool("content") {
		return oops.
			Code("INVALID_ARGS").
			Hint("Add --content to search with a regular expression").
			Errorf("--regex only applies to content search")
	}

	cfg, m, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("content") {
		return searchContent(cmd, cfg, m, query)
	}
	return searchMetadata(cmd, cfg, m, query)
}

func searchMetadata(cmd *cli.Command, cfg *config.Config, m *manifest.Manifest, query string) error {
	results, err := search.Metadata(m, search.MetadataOptions{
		Query:      query,
		Collection: cmd.String("collection"),
		Limit:      resolveLimit(cmd, cfg),
	})
	if err != nil {
		return err
	}

	list := listing[search.MetadataResult]{
		columns:    metadataColumns,
		format:     resolveFormat(cmd, cfg),
		descLength: resolveDescLength(cmd, cfg),
	}
	return list.write(stdout(cmd), results)
}

func searchContent(cmd *cli.Command, cfg *config.Config, m *manifest.Manifest, query string) error {
	results, err := search.Content(m, search.ContentOptions{
		OutputDir:  cfg.Output,
		Query:      query,
		Collection: cmd.String("collection"),
		UseRegex:   cmd.Bool("regex"),
		Limit:      resolveLimit(cmd, cfg),
		Renderer:   cfg.Render.Renderer(),
	})
	if err != nil {
		return err
	}

	list := listing[search.ContentResult]{
		columns:    contentColumns,
		format:     resolveFormat(cmd, cfg),
		descLength: resolveDescLength(cmd, cfg),
	}
	return list.write(stdout(cmd), results)
}

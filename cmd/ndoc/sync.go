package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/lockfile"
	"github.com/g5becks/ndoc/internal/manifest"
	ndocsync "github.com/g5becks/ndoc/internal/sync"
	"github.com/g5becks/ndoc/internal/ui"
)

func newSyncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Sync configured document sources",
		ArgsUsage: "[source-name...]",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Force refresh and skip freshness checks"},
			&cli.BoolFlag{Name: "clean", Usage: "Delete output directory before syncing"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Show planned changes without writing files"},
			&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Usage: "Maximum parallel source syncs", Value: defaultParallel},
			&cli.BoolFlag{Name: "no-progress", Usage: "Print one line per source instead of progress bars"},
		},
		Action: syncAction,
	}
}

func syncAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dryRun := cmd.Bool("dry-run")
	printer := ui.NewSyncPrinter(cmd.Root().ErrWriter, dryRun)
	opts := ndocsync.Options{
		SourceNames: cmd.Args().Slice(),
		Force:       cmd.Bool("force"),
		DryRun:      dryRun,
		Clean:       cmd.Bool("clean"),
		MaxParallel: cmd.Int("parallel"),
	}

	var writer progress.Writer
	if !cmd.Bool("no-progress") && isatty.IsTerminal(os.Stderr.Fd()) {
		writer = ui.NewProgressWriter()
		opts.Progress = writer
		ui.StartProgress(writer)
	} else {
		opts.OnEvent = printer.HandleEvent
	}

	result, runErr := ndocsync.Run(ctx, cfg, opts)
	if writer != nil {
		ui.StopProgress(writer)
	}

	printer.PrintSummary(result)
	return runErr
}

func newListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List configured sources and status",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON output"},
			&cli.BoolFlag{Name: "files", Usage: "Include file counts from the lock file"},
		},
		Action: listAction,
	}
}

func listAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lock, err := lockfile.Load(cfg.Output)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Sources))
	for name := range cfg.Sources {
		names = append(names, name)
	}
	slices.Sort(names)

	statuses := make([]ui.SourceStatus, 0, len(names))
	for _, name := range names {
		statuses = append(statuses, sourceStatus(cfg, lock, name))
	}

	return ui.RenderSourceList(stdout(cmd), statuses, ui.ListOptions{
		JSON:    cmd.Bool("json"),
		Verbose: cmd.Bool("verbose"),
		Files:   cmd.Bool("files"),
	})
}

func sourceStatus(cfg *config.Config, lock *lockfile.LockFile, name string) ui.SourceStatus {
	sourceCfg := cfg.Sources[name]
	status := ui.SourceStatus{
		Name:      name,
		Type:      sourceCfg.Type,
		Board:     sourceCfg.Board,
		URL:       sourceCfg.URL,
		Path:      sourceCfg.Path,
		Patterns:  sourceCfg.Patterns,
		OutputDir: cfg.OutputDir(name, sourceCfg),
		Status:    "not synced",
	}

	if sourceCfg.Type == config.SourceTypeBoard {
		status.BaseURL = cfg.API.BaseURL
	}

	if entry := lock.GetEntry(name); entry != nil {
		status.Status = "synced"
		status.FileCount = len(entry.Documents)
		status.SyncedAt = entry.SyncedAt
	}

	return status
}

func newCleanCommand() *cli.Command {
	return &cli.Command{
		Name:      "clean",
		Usage:     "Remove synced output",
		ArgsUsage: "[source-name...]",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: cleanAction,
	}
}

func cleanAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := cmd.Args().Slice()
	if len(names) == 0 {
		if removeErr := os.RemoveAll(cfg.Output); removeErr != nil {
			return oops.
				Code("WRITE_FAILED").
				With("path", cfg.Output).
				Wrapf(removeErr, "removing output directory")
		}

		_, _ = fmt.Fprintf(os.Stdout, "removed %s\n", cfg.Output)
		return nil
	}

	lock, err := lockfile.Load(cfg.Output)
	if err != nil {
		return err
	}

	for _, name := range names {
		sourceCfg, ok := cfg.Sources[name]
		if !ok {
			return oops.
				Code("SOURCE_NOT_FOUND").
				With("source", name).
				Hint("Run 'ndoc list' to see configured sources").
				Errorf("source %q not found in config", name)
		}

		dir := cfg.OutputDir(name, sourceCfg)
		if removeErr := os.RemoveAll(dir); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return oops.
				Code("WRITE_FAILED").
				With("path", dir).
				Wrapf(removeErr, "removing source output")
		}

		lock.RemoveEntry(name)
		_, _ = fmt.Fprintf(os.Stdout, "removed %s\n", dir)
	}

	if err := lock.Save(cfg.Output); err != nil {
		return err
	}

	return manifest.Generate(ctx, cfg, lock)
}

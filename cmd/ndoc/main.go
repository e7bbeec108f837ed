package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
	"go.uber.org/automaxprocs/maxprocs"
)

const defaultParallel = 3

var (
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	version = "dev"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	commit = "unknown"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	buildTime = "unknown"
)

func main() {
	if err := run(os.Args); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return newRootCommand().Run(context.Background(), args)
}

func newRootCommand() *cli.Command {
	commands := []*cli.Command{
		newInitCommand(),
		newSyncCommand(),
		newListCommand(),
		newCleanCommand(),
		newCollectionsCommand(),
		newFilesCommand(),
		newCatCommand(),
		newOutlineCommand(),
		newRenderCommand(),
		newNavCommand(),
		newSearchCommand(),
	}

	// Flags given after the subcommand name are only parsed by the subcommand,
	// so logging is configured there.
	for _, command := range commands {
		command.Before = configureLogging
	}

	return &cli.Command{
		Name:    "ndoc",
		Usage:   "Sync and read NDIE community documents locally",
		Version: versionString(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "Enable debug logging (on list: show expanded source fields)",
			},
		},
		Commands: commands,
	}
}

func configureLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// maxprocs.Set only fails on an invalid GOMAXPROCS value, in which case
	// the runtime default stays in place.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	return ctx, nil
}

func reportError(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)

	if oopsErr, ok := oops.AsOops(err); ok {
		if hint := oopsErr.Hint(); hint != "" {
			_, _ = fmt.Fprintln(os.Stderr, "hint:", hint)
		}

		slog.Debug("command failed", "error", oopsErr)
	}
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/ndoc/internal/fsutil"
)

const starterConfig = `# ndoc configuration
output = ".ndoc"

[api]
base_url = "http://localhost:8080"
# token = ""    # or set NDIE_TOKEN
timeout = "30s"

[display]
format = "table"
default_limit = 50

[sources.notices]
type = "board"
board = "announcement"

[sources.questions]
type = "board"
board = "qna"

[sources.activities]
type = "board"
board = "activity"
`

func newInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a starter ndoc.toml in the current directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing ndoc.toml"},
		},
		Action: initAction,
	}
}

func initAction(_ context.Context, cmd *cli.Command) error {
	dir, err := os.Getwd()
	if err != nil {
		return oops.Wrapf(err, "getting working directory")
	}

	path := filepath.Join(dir, "ndoc.toml")
	if _, statErr := os.Stat(path); statErr == nil && !cmd.Bool("force") {
		return oops.
			Code("CONFIG_EXISTS").
			With("path", path).
			Hint("Pass --force to overwrite it").
			Errorf("%s already exists", path)
	} else if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return oops.Wrapf(statErr, "checking for existing config")
	}

	if err := fsutil.WriteFileAtomic(path, []byte(starterConfig)); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "created %s\n", path)
	return nil
}

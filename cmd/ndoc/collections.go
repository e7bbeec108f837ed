package main

import (
	"context"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
)

type collectionOutput struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Source   string    `json:"source"`
	Dir      string    `json:"dir"`
	Files    int       `json:"files"`
	Skipped  int       `json:"skipped,omitempty"`
	Size     int64     `json:"size"`
	LastSync time.Time `json:"last_sync"`
}

var collectionColumns = []column[collectionOutput]{
	{name: "name", value: func(c collectionOutput) string { return c.Name }},
	{name: "type", value: func(c collectionOutput) string { return c.Type }},
	{name: "source", value: func(c collectionOutput) string { return c.Source }},
	{name: "files", value: func(c collectionOutput) string { return strconv.Itoa(c.Files) }},
	{name: "size", value: func(c collectionOutput) string { return formatSize(c.Size) }},
	{name: "last sync", value: func(c collectionOutput) string { return formatTime(c.LastSync) }},
}

func newCollectionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "collections",
		Usage: "List synced post collections",
		Flags: append([]cli.Flag{configFlag()}, displayFlags("Limit number of collections (0 = all)")...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, m, err := loadManifest(cmd)
			if err != nil {
				return err
			}

			names := m.Names()
			if limit := cmd.Int("limit"); limit > 0 && len(names) > limit {
				names = names[:limit]
			}

			rows := make([]collectionOutput, 0, len(names))
			for _, name := range names {
				coll := m.Collections[name]
				rows = append(rows, collectionOutput{
					Name:     coll.Name,
					Type:     coll.Type,
					Source:   coll.Source,
					Dir:      coll.Dir,
					Files:    coll.FileCount,
					Skipped:  coll.Skipped,
					Size:     coll.TotalSize,
					LastSync: coll.LastSync,
				})
			}

			list := listing[collectionOutput]{columns: collectionColumns, format: resolveFormat(cmd, cfg)}
			return list.write(stdout(cmd), rows)
		},
	}
}

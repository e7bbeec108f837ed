package main

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/manifest"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config file",
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	return config.FindConfigFile()
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	configPath, err := resolveConfigPath(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	return config.Load(configPath)
}

func loadManifest(cmd *cli.Command) (*config.Config, *manifest.Manifest, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	m, err := manifest.Load(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	return cfg, m, nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return t.Local().Format(time.DateTime)
}

// truncateDescription cuts by runes so Hangul is never split mid-character.
func truncateDescription(desc string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(desc) <= maxLen {
		return desc
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return ellipsis
	}
	runes := []rune(desc)
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

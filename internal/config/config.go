// Package config loads and validates ndoc.toml. Sources name the boards,
// URLs and local folders that are mirrored into the output directory.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

// BaseURLEnv overrides [api] base_url, like TokenEnv overrides the token.
const BaseURLEnv = "NDIE_API_URL"

// Filenames are the config names looked for, in order, in each directory.
var Filenames = []string{"ndoc.toml", ".ndoc.toml"}

// envOverrides maps environment variables onto config keys.
var envOverrides = map[string]string{
	TokenEnv:   "api.token",
	BaseURLEnv: "api.base_url",
}

// Load reads the config at configPath, or the nearest one above the working
// directory when configPath is empty. Environment overrides are applied
// before defaults and validation.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		found, err := FindConfigFile()
		if err != nil {
			return nil, err
		}
		configPath = found
	} else if err := checkConfigFile(configPath); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, oops.Wrapf(err, "resolving absolute config path")
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(absPath), toml.Parser()); err != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", absPath).
			Hint("Check the TOML syntax of "+filepath.Base(absPath)).
			Wrapf(err, "loading config from %q", absPath)
	}

	for env, key := range envOverrides {
		if value := os.Getenv(env); value != "" {
			if err := k.Set(key, value); err != nil {
				return nil, oops.With("env", env).Wrapf(err, "applying %s", env)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", absPath).
			Hint("Sections are [api], [render], [display] and [sources.<name>]").
			Wrapf(err, "decoding config from %q", absPath)
	}

	cfg.ConfigDir = filepath.Dir(absPath)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(cfg.ConfigDir, cfg.Output)
	}
	cfg.Output = filepath.Clean(cfg.Output)

	return cfg, nil
}

// FindConfigFile walks from the working directory up to the filesystem root
// and returns the first config file found.
func FindConfigFile() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", oops.Wrapf(err, "getting working directory")
	}

	for dir := start; ; {
		for _, name := range Filenames {
			candidate := filepath.Join(dir, name)
			_, statErr := os.Stat(candidate)
			if statErr == nil {
				return candidate, nil
			}
			if !errors.Is(statErr, fs.ErrNotExist) {
				return "", oops.Wrapf(statErr, "checking for config file at %q", candidate)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", oops.
		Code("CONFIG_NOT_FOUND").
		With("start", start).
		Hint("Run 'ndoc init' to create a config file").
		Errorf("no ndoc.toml or .ndoc.toml found in any parent directory")
}

func checkConfigFile(configPath string) error {
	_, err := os.Stat(configPath)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return oops.
			Code("CONFIG_NOT_FOUND").
			With("path", configPath).
			Hint("Create the file with 'ndoc init' or pass a valid --config path").
			Errorf("config file %q does not exist", configPath)
	default:
		return oops.Wrapf(err, "checking config file %q", configPath)
	}
}

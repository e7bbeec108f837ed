package config

import (
	"cmp"
	"errors"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/api"
	"github.com/g5becks/ndoc/internal/markup"
)

const (
	DefaultOutput = ".ndoc"
	TokenEnv      = "NDIE_TOKEN"

	SourceTypeBoard = "board"
	SourceTypeURL   = "url"
	SourceTypeDir   = "dir"
)

func DefaultPatterns() []string {
	return []string{"**/*.ndoc", "**/*.txt", "**/*.md"}
}

// DefaultExcludes are skipped by every dir source unless the config sets its own list.
func DefaultExcludes() []string {
	return []string{
		".git/**",
		"node_modules/**",
		"dist/**",
		"**/.DS_Store",
		"**/*.png",
		"**/*.jpg",
		"**/*.jpeg",
		"**/*.gif",
		"**/*.pdf",
	}
}

func DefaultListFields() []string {
	return []string{"path", "title", "lines", "size", "description"}
}

type Config struct {
	Output    string            `koanf:"output"   validate:"omitempty,dirpath"`
	Excludes  []string          `koanf:"excludes"`
	API       API               `koanf:"api"`
	Render    Render            `koanf:"render"`
	Display   Display           `koanf:"display"`
	Sources   map[string]Source `koanf:"sources"  validate:"required,dive"`
	ConfigDir string            `koanf:"-"`
}

type API struct {
	BaseURL string        `koanf:"base_url" validate:"omitempty,url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"  validate:"gte=0"`
}

type Render struct {
	MaxDepth int `koanf:"max_depth" validate:"gte=0"`
	MaxNodes int `koanf:"max_nodes" validate:"gte=0"`
}

// Options converts the render limits into renderer options. Zero keeps the default.
func (r Render) Options() []markup.Option {
	var opts []markup.Option
	if r.MaxDepth > 0 {
		opts = append(opts, markup.WithMaxDepth(r.MaxDepth))
	}

	if r.MaxNodes > 0 {
		opts = append(opts, markup.WithMaxNodes(r.MaxNodes))
	}

	return opts
}

// Renderer builds a markup renderer honoring the configured limits.
func (r Render) Renderer() *markup.Renderer {
	return markup.New(r.Options()...)
}

type Display struct {
	DefaultLimit      int      `koanf:"default_limit"      validate:"gte=0"`
	DescriptionLength int      `koanf:"description_length" validate:"gte=0"`
	LineNumbers       bool     `koanf:"line_numbers"`
	Format            string   `koanf:"format"             validate:"omitempty,oneof=table json csv"`
	ListFields        []string `koanf:"list_fields"        validate:"dive,list_field"`
}

type Source struct {
	Type     string   `koanf:"type"     validate:"required,oneof=board url dir"`
	Board    string   `koanf:"board"    validate:"required_if=Type board,omitempty,ndie_board"`
	URL      string   `koanf:"url"      validate:"required_if=Type url,omitempty,url"`
	Filename string   `koanf:"filename"`
	Path     string   `koanf:"path"     validate:"required_if=Type dir"`
	Patterns []string `koanf:"patterns"`
	Exclude  []string `koanf:"exclude"`
	Out      string   `koanf:"out"`
}

func listFields() []string {
	return []string{
		"path", "type", "title", "board", "id", "username", "views",
		"lines", "size", "description", "modified", "created",
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("ndie_board", func(fl validator.FieldLevel) bool {
		_, err := api.ParseBoard(fl.Field().String())
		return err == nil
	})

	_ = v.RegisterValidation("list_field", func(fl validator.FieldLevel) bool {
		return slices.Contains(listFields(), fl.Field().String())
	})

	return v
}

// ApplyDefaults fills unset settings and infers each source type from the
// field it sets.
func (c *Config) ApplyDefaults() {
	c.Output = cmp.Or(c.Output, DefaultOutput)
	c.API.BaseURL = cmp.Or(c.API.BaseURL, api.DefaultBaseURL)
	c.API.Timeout = cmp.Or(c.API.Timeout, api.DefaultTimeout)
	if c.Excludes == nil {
		c.Excludes = DefaultExcludes()
	}

	c.Display.DefaultLimit = cmp.Or(c.Display.DefaultLimit, 50)
	c.Display.DescriptionLength = cmp.Or(c.Display.DescriptionLength, 60)
	c.Display.Format = cmp.Or(c.Display.Format, "table")
	if len(c.Display.ListFields) == 0 {
		c.Display.ListFields = DefaultListFields()
	}

	for name, src := range c.Sources {
		c.Sources[name] = src.withDefaults(c.Excludes)
	}
}

func (s Source) withDefaults(globalExcludes []string) Source {
	if s.Type == "" {
		switch {
		case s.Board != "":
			s.Type = SourceTypeBoard
		case s.URL != "":
			s.Type = SourceTypeURL
		case s.Path != "":
			s.Type = SourceTypeDir
		}
	}

	switch s.Type {
	case SourceTypeBoard:
		s.Board = strings.ToLower(strings.TrimSpace(s.Board))
	case SourceTypeDir:
		if len(s.Patterns) == 0 {
			s.Patterns = DefaultPatterns()
		}
		s.Exclude = mergeExcludes(globalExcludes, s.Exclude)
	}

	return s
}

func mergeExcludes(global []string, source []string) []string {
	var merged []string
	for _, pattern := range slices.Concat(global, source) {
		if !slices.Contains(merged, pattern) {
			merged = append(merged, pattern)
		}
	}
	return merged
}

func (c *Config) Validate() error {
	v := newValidator()

	for _, section := range []struct {
		name  string
		value any
	}{{"api", c.API}, {"render", c.Render}, {"display", c.Display}} {
		if fe, err := firstFieldError(v.Struct(section.value)); err != nil {
			return oops.Code("CONFIG_INVALID").With("section", section.name).Wrapf(err, "validating [%s]", section.name)
		} else if fe != nil {
			field := strings.ToLower(fe.Field())
			return oops.
				Code("CONFIG_INVALID").
				With("section", section.name).
				With("field", field).
				With("tag", fe.Tag()).
				With("value", fe.Value()).
				Errorf("invalid value for %s.%s", section.name, field)
		}
	}

	if len(c.Sources) == 0 {
		return oops.
			Code("CONFIG_INVALID").
			Hint("Add at least one [sources.<name>] table").
			Errorf("config defines no sources")
	}

	for _, name := range slices.Sorted(maps.Keys(c.Sources)) {
		src := c.Sources[name]
		if fe, err := firstFieldError(v.Struct(src)); err != nil {
			return oops.Code("CONFIG_INVALID").With("source", name).Wrapf(err, "validating source %q", name)
		} else if fe != nil {
			return sourceError(name, src, fe)
		}
	}

	return nil
}

// firstFieldError splits a validator result into its first field failure or
// an error that is not a field failure at all.
func firstFieldError(err error) (validator.FieldError, error) {
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return nil, err
	}
	return fieldErrs[0], nil
}

func sourceError(name string, src Source, fe validator.FieldError) error {
	field := strings.ToLower(fe.Field())
	invalid := oops.Code("CONFIG_INVALID").With("source", name).With("field", field)

	switch fe.Tag() + " " + field {
	case "required type":
		return invalid.
			Hint("Set type, or one of board, url or path so the type can be inferred").
			Errorf("source %q has no type", name)
	case "oneof type":
		return oops.
			Code("UNKNOWN_SOURCE_TYPE").
			With("source", name).
			With("type", src.Type).
			Hint("Supported types: board, url, dir").
			Errorf("unknown source type %q for source %q", src.Type, name)
	case "required_if board":
		return invalid.Hint("Set board to announcement, qna or activity").Errorf("missing board for source %q", name)
	case "ndie_board board":
		return invalid.
			With("value", src.Board).
			Hint("Supported boards: announcement, qna, activity").
			Errorf("invalid board %q for source %q", src.Board, name)
	case "required_if path":
		return invalid.Hint("Set path to a local directory").Errorf("missing path for source %q", name)
	case "required_if url":
		return invalid.Hint("Set url for url sources").Errorf("missing url for source %q", name)
	default:
		return invalid.With("tag", fe.Tag()).Errorf("validation failed for field %q in source %q", field, name)
	}
}

// OutputDir is where a source's files land: the output root joined with the
// source's out setting or its name.
func (c *Config) OutputDir(sourceName string, sourceCfg Source) string {
	return filepath.Join(c.resolve(c.Output), cmp.Or(sourceCfg.Out, sourceName))
}

// SourcePath resolves a dir source's path against the config directory.
func (c *Config) SourcePath(sourceCfg Source) string {
	return c.resolve(sourceCfg.Path)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ConfigDir, path)
}

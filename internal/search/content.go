package search

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/g5becks/ndoc/internal/document"
	"github.com/g5becks/ndoc/internal/manifest"
	"github.com/g5becks/ndoc/internal/markup"
	"github.com/g5becks/ndoc/internal/parser"
)

const maxContentSize = 50 * 1024 * 1024

// ContentResult represents a single match from content search.
type ContentResult struct {
	Collection string `json:"collection"`
	Path       string `json:"path"`
	Line       int    `json:"line"`
	Text       string `json:"text"`
}

// ContentOptions configures content search behavior.
type ContentOptions struct {
	OutputDir  string
	Query      string
	Collection string
	UseRegex   bool
	Limit      int
	// Renderer turns markup lines into plain text; nil uses the defaults.
	Renderer *markup.Renderer
}

type lineMatcher func(line string) bool

// Content performs literal or regex search across synced file contents.
// Markup documents are matched on their rendered plain text, one source line
// at a time, so reported line numbers point into the file on disk.
func Content(m *manifest.Manifest, opts ContentOptions) ([]ContentResult, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return nil, oops.
			Code("INVALID_ARGS").
			Hint("Provide a non-empty search query").
			Errorf("search query cannot be empty")
	}

	names, err := collectionNames(m, opts.Collection)
	if err != nil {
		return nil, err
	}

	match, err := newLineMatcher(query, opts.UseRegex)
	if err != nil {
		return nil, err
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = markup.New()
	}

	var results []ContentResult
	for _, name := range names {
		coll := m.Collections[name]
		for i := range coll.Files {
			file := &coll.Files[i]
			lines, ok := searchableLines(coll.FilePath(opts.OutputDir, file), file.Path, renderer)
			if !ok {
				continue
			}

			for _, line := range lines {
				if !match(line.text) {
					continue
				}

				results = append(results, ContentResult{
					Collection: name,
					Path:       file.Path,
					Line:       line.number,
					Text:       strings.TrimSpace(line.text),
				})

				if opts.Limit > 0 && len(results) >= opts.Limit {
					return results, nil
				}
			}
		}
	}

	return results, nil
}

func newLineMatcher(query string, useRegex bool) (lineMatcher, error) {
	if useRegex {
		pattern, err := regexp.Compile("(?i)" + norm.NFC.String(query))
		if err != nil {
			return nil, oops.
				Code("INVALID_ARGS").
				With("pattern", query).
				Hint("Check the regular expression syntax").
				Wrapf(err, "compiling search pattern")
		}

		return func(line string) bool {
			return pattern.MatchString(norm.NFC.String(line))
		}, nil
	}

	folded := fold(query)
	return func(line string) bool {
		return strings.Contains(fold(line), folded)
	}, nil
}

// fold normalizes to NFC before case folding so composed and decomposed
// Hangul compare equal.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

type numberedLine struct {
	number int
	text   string
}

func searchableLines(absPath string, relPath string, renderer *markup.Renderer) ([]numberedLine, bool) {
	info, err := os.Stat(absPath)
	if err != nil || info.Size() > maxContentSize {
		return nil, false
	}

	content, err := os.ReadFile(absPath)
	if err != nil || parser.IsBinary(content) {
		return nil, false
	}

	content = parser.StripBOM(content)
	fileType := parser.DetectFileType(relPath)

	body := content
	if fileType == "ndoc" {
		if doc, decodeErr := document.Decode(content); decodeErr == nil {
			body = []byte(doc.Body)
		}
	}
	offset := bytes.Count(content[:len(content)-len(body)], []byte("\n"))

	rawLines := strings.Split(string(body), "\n")
	lines := make([]numberedLine, 0, len(rawLines))
	for i, raw := range rawLines {
		text := raw
		if fileType == "ndoc" || fileType == "txt" {
			text = markup.PlainText(renderer.Render(raw))
		}

		lines = append(lines, numberedLine{number: i + 1 + offset, text: text})
	}

	return lines, true
}

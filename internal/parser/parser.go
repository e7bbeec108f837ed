// Package parser extracts descriptions, outlines and document metadata from
// synced files for the manifest.
package parser

import "github.com/g5becks/ndoc/internal/document"

// Parser extracts description and outline from file content.
type Parser interface {
	Parse(path string, content []byte) (*ParseResult, error)
	CanParse(path string) bool
}

// ParseResult describes one file. Document is set only for files that carry
// post metadata; its Body is left empty.
type ParseResult struct {
	Description string
	Outline     *Outline
	Lines       int
	Document    *document.Document
}

type Outline struct {
	Type     OutlineType `json:"type"`
	Headings []Heading   `json:"headings,omitempty"`
}

type OutlineType string

const (
	OutlineTypeHeadings OutlineType = "headings"
	OutlineTypeNone     OutlineType = "none"
)

type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"`
}

// Defaults returns the parsers used for manifest generation, most specific first.
func Defaults(opts ...NdocOption) []Parser {
	return []Parser{
		NewNdocParser(opts...),
		NewMarkdownParser(),
	}
}

// Find returns the first parser that accepts path, or nil.
func Find(parsers []Parser, path string) Parser {
	for _, p := range parsers {
		if p.CanParse(path) {
			return p
		}
	}

	return nil
}

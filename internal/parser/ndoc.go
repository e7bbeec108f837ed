package parser

import (
	"bytes"
	"strings"

	"github.com/g5becks/ndoc/internal/document"
	"github.com/g5becks/ndoc/internal/markup"
)

// NdocParser handles stored posts (.ndoc) and bare markup text (.txt).
type NdocParser struct {
	renderer *markup.Renderer
}

type NdocOption func(*NdocParser)

// WithRenderer sets the renderer used for bodies.
func WithRenderer(renderer *markup.Renderer) NdocOption {
	return func(p *NdocParser) {
		if renderer != nil {
			p.renderer = renderer
		}
	}
}

func NewNdocParser(opts ...NdocOption) *NdocParser {
	p := &NdocParser{renderer: markup.New()}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *NdocParser) CanParse(path string) bool {
	switch DetectFileType(path) {
	case "ndoc", "txt":
		return true
	default:
		return false
	}
}

func (p *NdocParser) Parse(path string, content []byte) (*ParseResult, error) {
	content = StripBOM(content)

	doc := &document.Document{Body: string(content)}
	if DetectFileType(path) == "ndoc" {
		decoded, err := document.Decode(content)
		if err != nil {
			return nil, err
		}
		doc = decoded
	}

	// Frontmatter lines shift every heading down in the file.
	offset := bytes.Count(content[:len(content)-len(doc.Body)], []byte("\n"))

	tree := p.renderer.Render(doc.Body)
	var headings []Heading
	for _, h := range markup.Outline(tree) {
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  h.Text,
			Line:  h.Line + offset,
		})
	}

	outline := &Outline{Type: OutlineTypeNone}
	if len(headings) > 0 {
		outline = &Outline{Type: OutlineTypeHeadings, Headings: headings}
	}

	description := doc.Title
	if description == "" {
		description = firstNonEmptyLine(markup.PlainText(tree))
	}

	return &ParseResult{
		Description: description,
		Outline:     outline,
		Lines:       bytes.Count(content, []byte("\n")) + 1,
		Document:    postMetadata(doc),
	}, nil
}

func firstNonEmptyLine(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}

	return ""
}

package parser

import (
	"bytes"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	mdparser "github.com/gomarkdown/markdown/parser"

	"github.com/g5becks/ndoc/internal/document"
)

// MarkdownParser handles .md files kept next to synced posts, such as club
// guides mirrored by a dir source. Frontmatter is read the same way as in
// stored posts, so a markdown file with an id and title is listed as a post.
type MarkdownParser struct{}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

func (p *MarkdownParser) CanParse(path string) bool {
	return DetectFileType(path) == "md"
}

func (p *MarkdownParser) Parse(_ string, content []byte) (*ParseResult, error) {
	content = StripBOM(content)

	doc, err := document.Decode(content)
	if err != nil {
		return nil, err
	}

	body := []byte(doc.Body)
	tree := mdparser.NewWithExtensions(mdparser.CommonExtensions).Parse(body)
	summary := summarizeMarkdown(tree)

	offset := bytes.Count(content[:len(content)-len(body)], []byte("\n"))
	locateHeadings(summary.headings, body, offset)

	description := doc.Title
	switch {
	case description != "":
	case len(summary.headings) > 0:
		description = summary.headings[0].Text
	default:
		description = summary.firstParagraph
	}

	return &ParseResult{
		Description: description,
		Outline:     &Outline{Type: OutlineTypeHeadings, Headings: summary.headings},
		Lines:       bytes.Count(content, []byte("\n")) + 1,
		Document:    postMetadata(doc),
	}, nil
}

type markdownSummary struct {
	headings       []Heading
	firstParagraph string
}

func summarizeMarkdown(tree ast.Node) markdownSummary {
	var summary markdownSummary

	ast.WalkFunc(tree, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}

		switch n := node.(type) {
		case *ast.Heading:
			if text := literalText(n); text != "" {
				summary.headings = append(summary.headings, Heading{Level: n.Level, Text: text})
			}
			return ast.SkipChildren
		case *ast.Paragraph:
			if summary.firstParagraph == "" {
				summary.firstParagraph = literalText(n)
			}
			return ast.SkipChildren
		}

		return ast.GoToNext
	})

	return summary
}

// literalText joins the text leaves under node with runs of whitespace
// collapsed to one space.
func literalText(node ast.Node) string {
	var parts []string
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if leaf, ok := n.(*ast.Text); ok && entering {
			parts = append(parts, string(leaf.Literal))
		}
		return ast.GoToNext
	})

	return strings.Join(strings.Fields(strings.Join(parts, "")), " ")
}

// locateHeadings fills in 1-based file line numbers. The markdown AST keeps no
// source positions, so heading lines are found again in document order.
func locateHeadings(headings []Heading, body []byte, offset int) {
	lines := strings.Split(string(body), "\n")
	next := 0
	fenced := false

	for i := 0; i < len(lines) && next < len(headings); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fenced = !fenced
			continue
		}

		if fenced || trimmed == "" {
			continue
		}

		level := atxLevel(lines[i])
		if level == 0 && i+1 < len(lines) {
			level = setextLevel(strings.TrimSpace(lines[i+1]))
		}

		if level == headings[next].Level {
			headings[next].Line = offset + i + 1
			next++
		}
	}
}

// atxLevel returns 1-6 for "# title" style lines indented by at most three
// spaces, and 0 otherwise.
func atxLevel(line string) int {
	rest := strings.TrimLeft(line, " ")
	if len(line)-len(rest) > 3 {
		return 0
	}

	title := strings.TrimLeft(rest, "#")
	level := len(rest) - len(title)
	if level < 1 || level > 6 || (title != "" && title[0] != ' ' && title[0] != '\t') {
		return 0
	}

	return level
}

// setextLevel reports the level a "===" or "---" underline gives the line above.
func setextLevel(underline string) int {
	switch {
	case underline == "":
		return 0
	case strings.Trim(underline, "=") == "":
		return 1
	case strings.Trim(underline, "-") == "":
		return 2
	default:
		return 0
	}
}

// postMetadata returns the frontmatter of doc without its body, or nil when
// the file carries no post fields.
func postMetadata(doc *document.Document) *document.Document {
	if doc.ID == 0 && doc.Title == "" {
		return nil
	}

	meta := *doc
	meta.Body = ""
	return &meta
}

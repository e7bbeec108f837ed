package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/g5becks/ndoc/internal/markup"
)

// TreePrinter writes a render tree as an indented outline, one node per line.
type TreePrinter struct {
	w       io.Writer
	heading *color.Color
	image   *color.Color
	other   *color.Color
}

func NewTreePrinter(w io.Writer) *TreePrinter {
	return &TreePrinter{
		w:       w,
		heading: color.New(color.FgCyan, color.Bold),
		image:   color.New(color.FgMagenta),
		other:   color.New(color.FgYellow),
	}
}

func (p *TreePrinter) Print(root *markup.Node) error {
	var err error
	markup.Walk(root, func(node *markup.Node, depth int) bool {
		if err != nil {
			return false
		}

		_, err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), p.label(node))
		return true
	})

	return err
}

func (p *TreePrinter) label(node *markup.Node) string {
	switch {
	case node.Kind == markup.KindLine:
		return faint("line ") + fmt.Sprintf("%q", node.Text)
	case node.Kind == markup.KindImage:
		return p.image.Sprint("image ") + node.Text
	case node.Kind == markup.KindDivider:
		return faint("divider")
	case node.Kind.HeadingLevel() > 0:
		return p.heading.Sprint(string(node.Kind))
	case node.Kind == markup.KindDocument:
		return bold(string(node.Kind))
	default:
		return p.other.Sprint(string(node.Kind))
	}
}

package markup

import "strings"

// Heading is an outline entry. Line is 1-based within the rendered text.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"`
}

// Format serializes a tree back into markup. Rendering the result again
// yields an equivalent tree; heading markers are normalized to one trailing
// space and divider lines lose any trailing text.
func Format(n *Node) string {
	var b strings.Builder
	w := textWriter{b: &b, markers: true}
	w.write(n)
	return b.String()
}

// PlainText returns the displayed text of a tree without any markup. Line
// breaks are kept where the source had them, so line i of the result
// corresponds to line i of the rendered source.
func PlainText(n *Node) string {
	var b strings.Builder
	w := textWriter{b: &b}
	w.write(n)
	return b.String()
}

// Outline lists the headings of a tree in document order.
func Outline(n *Node) []Heading {
	var b strings.Builder
	var headings []Heading

	w := textWriter{
		b: &b,
		onHeading: func(node *Node, line int) {
			headings = append(headings, Heading{
				Level: node.Kind.HeadingLevel(),
				Text:  strings.Join(strings.Fields(PlainText(node)), " "),
				Line:  line,
			})
		},
	}
	w.write(n)

	return headings
}

type textWriter struct {
	b         *strings.Builder
	markers   bool
	newlines  int
	onHeading func(node *Node, line int)
}

func (w *textWriter) write(n *Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case KindLine:
		w.b.WriteString(n.Text)
		return
	case KindDivider:
		if w.markers {
			w.b.WriteString("---")
		}
		return
	case KindImage:
		if w.markers {
			w.b.WriteString(ImageTag(n.Text))
		}
		return
	}

	if n.Kind.HeadingLevel() > 0 && w.onHeading != nil {
		w.onHeading(n, w.newlines+1)
	}

	open, closing := markers(n.Kind)
	if w.markers {
		w.b.WriteString(open)
	}

	for i, child := range n.Children {
		// Sibling lines come from one newline split.
		if i > 0 && child.Kind == KindLine && n.Children[i-1].Kind == KindLine {
			w.b.WriteByte('\n')
			w.newlines++
		}
		w.write(child)
	}

	if w.markers {
		w.b.WriteString(closing)
	}
}

func markers(kind Kind) (string, string) {
	switch kind {
	case KindHeading4:
		return "#### ", ""
	case KindHeading3:
		return "### ", ""
	case KindHeading2:
		return "## ", ""
	case KindHeading1:
		return "# ", ""
	case KindBold:
		return "**", "**"
	case KindUnderline:
		return "__", "__"
	case KindItalic:
		return "*", "*"
	case KindStrikethrough:
		return "~~", "~~"
	default:
		return "", ""
	}
}

package markup

import (
	"io"

	"github.com/samber/oops"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const imageAlt = "추가된 이미지"

// WriteHTML writes the tree as an HTML fragment wrapped in <div class="ndoc">.
// Lines become text separated by <br>; image nodes without a source are
// dropped.
func WriteHTML(w io.Writer, n *Node) error {
	root := element(atom.Div, html.Attribute{Key: "class", Val: "ndoc"})

	type frame struct {
		node   *Node
		parent *html.Node
		br     bool
	}

	var stack []frame
	push := func(children []*Node, parent *html.Node) {
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: children[i], parent: parent})
			if i > 0 && children[i].Kind == KindLine && children[i-1].Kind == KindLine {
				stack = append(stack, frame{parent: parent, br: true})
			}
		}
	}

	if n != nil {
		push(n.Children, root)
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.br {
			top.parent.AppendChild(element(atom.Br))
			continue
		}

		el := htmlNode(top.node)
		if el == nil {
			continue
		}
		top.parent.AppendChild(el)
		push(top.node.Children, el)
	}

	if err := html.Render(w, root); err != nil {
		return oops.
			Code("RENDER_FAILED").
			Wrapf(err, "writing html")
	}

	return nil
}

func htmlNode(n *Node) *html.Node {
	switch n.Kind {
	case KindLine:
		if n.Text == "" {
			return nil
		}
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case KindHeading1:
		return element(atom.H1)
	case KindHeading2:
		return element(atom.H2)
	case KindHeading3:
		return element(atom.H3)
	case KindHeading4:
		return element(atom.H4)
	case KindBold:
		return element(atom.Strong)
	case KindUnderline:
		return element(atom.U)
	case KindItalic:
		return element(atom.Em)
	case KindStrikethrough:
		return element(atom.S)
	case KindDivider:
		return element(atom.Hr)
	case KindImage:
		if n.Text == "" {
			return nil
		}
		return element(atom.Img,
			html.Attribute{Key: "src", Val: n.Text},
			html.Attribute{Key: "alt", Val: imageAlt},
		)
	default:
		return element(atom.Span)
	}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

package markup

// Kind identifies what a Node displays.
type Kind string

const (
	KindDocument      Kind = "document"
	KindHeading4      Kind = "heading-4"
	KindHeading3      Kind = "heading-3"
	KindHeading2      Kind = "heading-2"
	KindHeading1      Kind = "heading-1"
	KindBold          Kind = "bold"
	KindUnderline     Kind = "underline"
	KindItalic        Kind = "italic"
	KindStrikethrough Kind = "strikethrough"
	KindDivider       Kind = "divider"
	KindImage         Kind = "image"
	KindLine          Kind = "line"
)

// Node is an element of the render tree.
//
// Text holds the raw line for KindLine and the raw source URL for KindImage.
// Wrapped kinds (headings, bold, underline, italic, strikethrough) and the
// document root hold their rendered content in Children.
type Node struct {
	Kind     Kind    `json:"kind"`
	Text     string  `json:"text,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// HeadingLevel returns 1-4 for heading kinds and 0 otherwise.
func (k Kind) HeadingLevel() int {
	switch k {
	case KindHeading1:
		return 1
	case KindHeading2:
		return 2
	case KindHeading3:
		return 3
	case KindHeading4:
		return 4
	default:
		return 0
	}
}

// IsWrapper reports whether nodes of this kind carry rendered children.
func (k Kind) IsWrapper() bool {
	switch k {
	case KindDocument, KindHeading1, KindHeading2, KindHeading3, KindHeading4,
		KindBold, KindUnderline, KindItalic, KindStrikethrough:
		return true
	default:
		return false
	}
}

func lineNode(text string) *Node {
	return &Node{Kind: KindLine, Text: text}
}

// Walk visits n and its descendants in document order without recursion.
// Returning false from fn skips the children of the visited node.
func Walk(n *Node, fn func(node *Node, depth int) bool) {
	if n == nil {
		return
	}

	type frame struct {
		node  *Node
		depth int
	}

	stack := []frame{{node: n}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(top.node, top.depth) {
			continue
		}

		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: top.node.Children[i], depth: top.depth + 1})
		}
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node, int) bool {
		total++
		return true
	})
	return total
}

package markup

import (
	"regexp"
	"regexp/syntax"
	"strings"
	"sync"
)

const (
	DefaultMaxDepth = 64
	DefaultMaxNodes = 100_000
)

// Renderer converts markup text into a render tree. A Renderer is immutable
// after New returns and may be shared between goroutines.
type Renderer struct {
	patterns []TagPattern
	// anchors[i] is patterns[i] pinned to the start of the text, or nil when
	// the pattern has no assertion about what precedes a position.
	anchors  []*regexp.Regexp
	maxDepth int
	maxNodes int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxDepth limits how deeply wrapped nodes may nest. Text that would open
// a node beyond the limit is rendered as plain lines; zero disables markup
// entirely. Values below zero are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		if depth >= 0 {
			r.maxDepth = depth
		}
	}
}

// WithMaxNodes limits the number of nodes a single render may produce. Once
// reached, all remaining text is rendered as plain lines. Values below one are
// ignored.
func WithMaxNodes(nodes int) Option {
	return func(r *Renderer) {
		if nodes > 0 {
			r.maxNodes = nodes
		}
	}
}

// WithPatterns replaces the tag set. The slice order is the tie-break order.
func WithPatterns(patterns []TagPattern) Option {
	return func(r *Renderer) {
		r.patterns = append([]TagPattern(nil), patterns...)
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		patterns: DefaultPatterns(),
		maxDepth: DefaultMaxDepth,
		maxNodes: DefaultMaxNodes,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.anchors = make([]*regexp.Regexp, len(r.patterns))
	for i, p := range r.patterns {
		r.anchors[i] = startAnchored(p.Pattern)
	}

	return r
}

var (
	defaultRenderer     *Renderer
	defaultRendererOnce sync.Once
)

// Render renders text with the default tag set and limits.
func Render(text string) *Node {
	defaultRendererOnce.Do(func() {
		defaultRenderer = New()
	})
	return defaultRenderer.Render(text)
}

type match struct {
	pattern  *TagPattern
	start    int
	end      int
	captured string
}

type task struct {
	text   string
	parent *Node
	depth  int
	// scans is inherited from the task whose text this one is a suffix of.
	scans []scan
	// emit is appended to parent instead of rendering text.
	emit *Node
}

// scan caches the leftmost match of one pattern. Offsets are stored as
// distances from the end of the text, so they stay valid for every suffix
// split off it.
type scan struct {
	done bool
	tail []int
}

func (s *scan) store(loc []int, n int) {
	s.done = true
	if loc == nil {
		s.tail = nil
		return
	}

	s.tail = s.tail[:0]
	for _, v := range loc {
		if v < 0 {
			s.tail = append(s.tail, -1)
			continue
		}
		s.tail = append(s.tail, n-v)
	}
}

func (s *scan) at(k, n int) int {
	if s.tail[k] < 0 {
		return -1
	}
	return n - s.tail[k]
}

// Render converts text into a document node. It never fails: text without
// recognizable markup becomes one line node per newline-separated segment.
//
// The earliest match over all patterns is rendered first, the text before and
// after it is rendered the same way, and the matched token's inner text is
// rendered as its children unless the pattern is raw. Work is kept on an
// explicit stack so adversarial input cannot exhaust the goroutine stack.
//
// Pattern matches found in a text are reused for the text after the chosen
// token, so a long run of tokens costs time linear in its length.
func (r *Renderer) Render(text string) *Node {
	root := &Node{Kind: KindDocument}
	if r == nil || text == "" {
		return root
	}

	emitted := 0
	stack := []task{{text: text, parent: root}}

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if t.emit != nil {
			t.parent.Children = append(t.parent.Children, t.emit)
			continue
		}

		if t.depth >= r.maxDepth || emitted >= r.maxNodes {
			emitted += appendLines(t.parent, t.text)
			continue
		}

		scans := t.scans
		if scans == nil {
			scans = make([]scan, len(r.patterns))
		}

		m, ok := r.earliest(t.text, scans)
		if !ok {
			emitted += appendLines(t.parent, t.text)
			continue
		}

		var node *Node
		if m.pattern.Build != nil {
			node = m.pattern.Build(m.captured)
		}
		if node == nil {
			node = &Node{Kind: m.pattern.Kind}
		}
		emitted++

		// LIFO: the prefix is finished before the node is emitted, and the
		// node is emitted before the suffix is started.
		if suffix := t.text[m.end:]; suffix != "" {
			stack = append(stack, task{text: suffix, parent: t.parent, depth: t.depth, scans: scans})
		}
		stack = append(stack, task{parent: t.parent, emit: node})
		if !m.pattern.Raw && m.captured != "" {
			stack = append(stack, task{text: m.captured, parent: node, depth: t.depth + 1})
		}
		if prefix := t.text[:m.start]; prefix != "" {
			stack = append(stack, task{text: prefix, parent: t.parent, depth: t.depth})
		}
	}

	return root
}

// RenderBytes renders content; nil or empty content yields an empty document.
func (r *Renderer) RenderBytes(content []byte) *Node {
	if len(content) == 0 {
		return &Node{Kind: KindDocument}
	}
	return r.Render(string(content))
}

// earliest finds the lowest-offset match over all patterns. Ties go to the
// pattern registered first. Empty matches are ignored since they would not
// shrink the text.
//
// scans holds what each pattern matched in a text that text is a suffix of.
// A cached match that still lies inside text is the leftmost one unless a
// start-of-text or line assertion now holds at offset zero, which the
// anchored form of the pattern checks.
func (r *Renderer) earliest(text string, scans []scan) (match, bool) {
	best := match{start: -1}
	n := len(text)

	for i := range r.patterns {
		p := &r.patterns[i]
		s := &scans[i]

		switch {
		case !s.done, s.tail != nil && s.at(0, n) < 0:
			s.store(p.Pattern.FindStringSubmatchIndex(text), n)
		case r.anchors[i] != nil && (s.tail == nil || s.at(0, n) > 0):
			if loc := r.anchors[i].FindStringSubmatchIndex(text); loc != nil {
				s.store(loc, n)
			}
		}

		if s.tail == nil {
			continue
		}

		start, end := s.at(0, n), s.at(1, n)
		if start == end {
			continue
		}

		if best.start >= 0 && start >= best.start {
			continue
		}

		captured := ""
		if len(s.tail) >= 4 && s.tail[2] >= 0 {
			captured = text[s.at(2, n):s.at(3, n)]
		}

		best = match{pattern: p, start: start, end: end, captured: captured}
	}

	return best, best.start >= 0
}

// startAnchored returns re restricted to match at offset zero, or nil when
// whether re matches at an offset does not depend on the text before it.
func startAnchored(re *regexp.Regexp) *regexp.Regexp {
	if re == nil {
		return nil
	}

	parsed, err := syntax.Parse(re.String(), syntax.Perl)
	if err != nil || !looksBehind(parsed) {
		return nil
	}

	anchored, err := regexp.Compile(`\A(?:` + re.String() + `)`)
	if err != nil {
		return nil
	}
	return anchored
}

func looksBehind(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpBeginLine, syntax.OpBeginText, syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return true
	}

	for _, sub := range re.Sub {
		if looksBehind(sub) {
			return true
		}
	}
	return false
}

func appendLines(parent *Node, text string) int {
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		parent.Children = append(parent.Children, lineNode(line))
	}
	return len(lines)
}

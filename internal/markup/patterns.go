package markup

import "regexp"

// TagPattern is one markup rule. Capture group 1 of Pattern is the inner
// portion of the token; patterns without a group capture the empty string.
//
// Build turns the captured text into the display node. When Raw is false the
// renderer renders the captured text and appends the result to the node's
// children; when Raw is true the captured text is handed to Build untouched.
type TagPattern struct {
	Kind    Kind
	Pattern *regexp.Regexp
	Build   func(captured string) *Node
	Raw     bool
}

// ImageTag formats the image token for a source URL.
func ImageTag(src string) string {
	return `<이미지 src="` + src + `"></이미지>`
}

// DefaultPatterns returns the NDIE tag set in priority order. Order matters:
// when two patterns match at the same offset the earlier one wins, which is
// what keeps a "####" line from rendering as a level-1 heading.
//
// Only '\n' ends a line. On CRLF text a heading captures the trailing '\r'
// and lines keep it; bodies are not normalized before rendering.
func DefaultPatterns() []TagPattern {
	return []TagPattern{
		wrapping(KindHeading4, `(?m)^####[ \t]*(.+)$`),
		wrapping(KindHeading3, `(?m)^###[ \t]*(.+)$`),
		wrapping(KindHeading2, `(?m)^##[ \t]*(.+)$`),
		wrapping(KindHeading1, `(?m)^#[ \t]*(.+)$`),
		wrapping(KindBold, `\*\*(.*?)\*\*`),
		wrapping(KindUnderline, `__(.*?)__`),
		wrapping(KindItalic, `\*(.*?)\*`),
		wrapping(KindStrikethrough, `~~(.*?)~~`),
		{
			Kind:    KindDivider,
			Pattern: regexp.MustCompile(`(?m)^---.*$`),
			Build: func(string) *Node {
				return &Node{Kind: KindDivider}
			},
		},
		{
			Kind:    KindImage,
			Pattern: regexp.MustCompile(`<이미지 src="(.*?)"></이미지>`),
			Build: func(src string) *Node {
				return &Node{Kind: KindImage, Text: src}
			},
			Raw: true,
		},
	}
}

func wrapping(kind Kind, expr string) TagPattern {
	return TagPattern{
		Kind:    kind,
		Pattern: regexp.MustCompile(expr),
		Build: func(string) *Node {
			return &Node{Kind: kind}
		},
	}
}

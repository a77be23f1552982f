package markdown

import (
	"regexp"
	"strings"
)

// inlinePattern tries, at each position, a link, inline code, bold and italic,
// in that order. Groups 1 and 2 capture a link's label and URL.
var inlinePattern = regexp.MustCompile(
	`\[([^\]]+)\]\((https?://[^\s)]+)\)` +
		"|`[^`]+`" +
		`|\*\*[^*]+\*\*` +
		`|\*[^*]+\*`,
)

// ParseInline splits text into non-overlapping inline spans in document order.
// Runs that match no construct, including unterminated markers, are plain text.
func ParseInline(text string) []Inline {
	var spans []Inline
	last := 0
	for _, m := range inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if start > last {
			spans = append(spans, PlainText{Text: text[last:start]})
		}
		spans = append(spans, classify(text, m))
		last = end
	}
	if last < len(text) {
		spans = append(spans, PlainText{Text: text[last:]})
	}
	return spans
}

func classify(text string, m []int) Inline {
	match := text[m[0]:m[1]]
	switch {
	case m[2] >= 0:
		return Link{Label: text[m[2]:m[3]], URL: text[m[4]:m[5]]}
	case strings.HasPrefix(match, "`"):
		return InlineCode{Text: match[1 : len(match)-1]}
	case strings.HasPrefix(match, "**"):
		return Bold{Text: match[2 : len(match)-2]}
	default:
		return Italic{Text: match[1 : len(match)-1]}
	}
}

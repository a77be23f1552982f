package markdown

import (
	"regexp"
	"strings"
)

// Fence delimits verbatim code blocks.
const Fence = "```"

var orderedItemPattern = regexp.MustCompile(`^\d+\.\s+`)

// Render parses text into block nodes in line order. It never fails: anything
// that does not match a construct is emitted as a paragraph of plain text.
//
// The text is split on fences; odd segments are code blocks, even segments are
// prose parsed line by line.
func Render(text string) []Node {
	var nodes []Node
	for i, segment := range strings.Split(text, Fence) {
		if i%2 == 1 {
			nodes = append(nodes, CodeBlock{Text: strings.TrimSpace(segment)})
			continue
		}
		nodes = append(nodes, renderProse(segment)...)
	}
	return nodes
}

// blockState is the fold accumulator threaded through the lines of one prose
// segment: emitted nodes plus the two pending list buffers.
type blockState struct {
	nodes     []Node
	unordered [][]Inline
	ordered   [][]Inline
}

func renderProse(segment string) []Node {
	var state blockState
	for _, line := range strings.Split(segment, "\n") {
		state = state.step(strings.TrimSpace(line))
	}
	return state.flushAll().nodes
}

func (s blockState) step(line string) blockState {
	switch {
	case line == "":
		return s.flushAll()
	case strings.HasPrefix(line, "- "):
		s = s.flushOrdered()
		s.unordered = append(s.unordered, ParseInline(line[2:]))
		return s
	case orderedItemPattern.MatchString(line):
		s = s.flushUnordered()
		s.ordered = append(s.ordered, ParseInline(orderedItemPattern.ReplaceAllString(line, "")))
		return s
	}

	s = s.flushAll()
	switch {
	case strings.HasPrefix(line, "### "):
		s.nodes = append(s.nodes, Heading{Level: 3, Children: ParseInline(line[4:])})
	case strings.HasPrefix(line, "## "):
		s.nodes = append(s.nodes, Heading{Level: 2, Children: ParseInline(line[3:])})
	case strings.HasPrefix(line, "# "):
		s.nodes = append(s.nodes, Heading{Level: 1, Children: ParseInline(line[2:])})
	default:
		s.nodes = append(s.nodes, Paragraph{Children: ParseInline(line)})
	}
	return s
}

func (s blockState) flushUnordered() blockState {
	if len(s.unordered) == 0 {
		return s
	}
	s.nodes = append(s.nodes, UnorderedList{Items: s.unordered})
	s.unordered = nil
	return s
}

func (s blockState) flushOrdered() blockState {
	if len(s.ordered) == 0 {
		return s
	}
	s.nodes = append(s.nodes, OrderedList{Items: s.ordered})
	s.ordered = nil
	return s
}

// flushAll emits the unordered buffer before the ordered one. At most one of
// them is non-empty because appending to either flushes the other.
func (s blockState) flushAll() blockState {
	return s.flushUnordered().flushOrdered()
}

package markdown

import (
	"strconv"
	"strings"
)

// Text renders nodes back to the Markdown dialect. Blocks are separated by a
// blank line, so Render(Text(Render(s))) yields the same nodes as Render(s).
func Text(nodes []Node) string {
	blocks := make([]string, 0, len(nodes))
	for _, n := range nodes {
		blocks = append(blocks, blockText(n, inlineMarkdown))
	}
	return strings.Join(blocks, "\n\n")
}

// Plain renders nodes as readable text without inline markers. Headings lose
// their prefix; list markers and code block contents are kept.
func Plain(nodes []Node) string {
	blocks := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if h, ok := n.(Heading); ok {
			blocks = append(blocks, InlinePlain(h.Children))
			continue
		}
		if cb, ok := n.(CodeBlock); ok {
			blocks = append(blocks, cb.Text)
			continue
		}
		blocks = append(blocks, blockText(n, InlinePlain))
	}
	return strings.Join(blocks, "\n\n")
}

func blockText(n Node, inline func([]Inline) string) string {
	switch n := n.(type) {
	case Heading:
		return strings.Repeat("#", n.Level) + " " + inline(n.Children)
	case Paragraph:
		return inline(n.Children)
	case UnorderedList:
		lines := make([]string, len(n.Items))
		for i, item := range n.Items {
			lines[i] = "- " + inline(item)
		}
		return strings.Join(lines, "\n")
	case OrderedList:
		lines := make([]string, len(n.Items))
		for i, item := range n.Items {
			lines[i] = strconv.Itoa(i+1) + ". " + inline(item)
		}
		return strings.Join(lines, "\n")
	case CodeBlock:
		return Fence + "\n" + n.Text + "\n" + Fence
	}
	return ""
}

func inlineMarkdown(spans []Inline) string {
	var b strings.Builder
	for _, s := range spans {
		switch s := s.(type) {
		case PlainText:
			b.WriteString(s.Text)
		case Bold:
			b.WriteString("**" + s.Text + "**")
		case Italic:
			b.WriteString("*" + s.Text + "*")
		case InlineCode:
			b.WriteString("`" + s.Text + "`")
		case Link:
			b.WriteString("[" + s.Label + "](" + s.URL + ")")
		}
	}
	return b.String()
}

// InlinePlain concatenates the visible text of spans. Links contribute their
// label.
func InlinePlain(spans []Inline) string {
	var b strings.Builder
	for _, s := range spans {
		switch s := s.(type) {
		case PlainText:
			b.WriteString(s.Text)
		case Bold:
			b.WriteString(s.Text)
		case Italic:
			b.WriteString(s.Text)
		case InlineCode:
			b.WriteString(s.Text)
		case Link:
			b.WriteString(s.Label)
		}
	}
	return b.String()
}

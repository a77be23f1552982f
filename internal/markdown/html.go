package markdown

import (
	"html"
	"strconv"
	"strings"
)

// HTML renders nodes as an escaped HTML fragment. Links open in a new tab.
func HTML(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case Heading:
			tag := "h" + strconv.Itoa(n.Level)
			b.WriteString("<" + tag + ">" + inlineHTML(n.Children) + "</" + tag + ">\n")
		case Paragraph:
			b.WriteString("<p>" + inlineHTML(n.Children) + "</p>\n")
		case UnorderedList:
			writeListHTML(&b, "ul", n.Items)
		case OrderedList:
			writeListHTML(&b, "ol", n.Items)
		case CodeBlock:
			b.WriteString("<pre><code>" + html.EscapeString(n.Text) + "</code></pre>\n")
		}
	}
	return b.String()
}

func writeListHTML(b *strings.Builder, tag string, items [][]Inline) {
	b.WriteString("<" + tag + ">\n")
	for _, item := range items {
		b.WriteString("<li>" + inlineHTML(item) + "</li>\n")
	}
	b.WriteString("</" + tag + ">\n")
}

func inlineHTML(spans []Inline) string {
	var b strings.Builder
	for _, s := range spans {
		switch s := s.(type) {
		case PlainText:
			b.WriteString(html.EscapeString(s.Text))
		case Bold:
			b.WriteString("<strong>" + html.EscapeString(s.Text) + "</strong>")
		case Italic:
			b.WriteString("<em>" + html.EscapeString(s.Text) + "</em>")
		case InlineCode:
			b.WriteString("<code>" + html.EscapeString(s.Text) + "</code>")
		case Link:
			b.WriteString(`<a href="` + html.EscapeString(s.URL) + `" target="_blank" rel="noreferrer">` +
				html.EscapeString(s.Label) + "</a>")
		}
	}
	return b.String()
}

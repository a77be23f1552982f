// Package views provides individual view components for the TUI.
package views

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/buker/latamai/internal/markdown"
	"github.com/buker/latamai/internal/tui/shared"
)

// Markdown renders nodes for the terminal. Prose is wrapped to width; a width
// of zero or less disables wrapping.
func Markdown(nodes []markdown.Node, width int, st shared.Styles) string {
	blocks := make([]string, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case markdown.Heading:
			style := st.Heading[clamp(n.Level, 1, len(st.Heading))-1]
			blocks = append(blocks, style.Render(wrap(markdown.InlinePlain(n.Children), width)))
		case markdown.Paragraph:
			blocks = append(blocks, wrap(Inline(n.Children, st), width))
		case markdown.UnorderedList:
			blocks = append(blocks, list(n.Items, width, st, func(int) string {
				return shared.BulletChar
			}))
		case markdown.OrderedList:
			blocks = append(blocks, list(n.Items, width, st, func(i int) string {
				return strconv.Itoa(i+1) + "."
			}))
		case markdown.CodeBlock:
			blocks = append(blocks, codeBlock(n.Text, width, st))
		}
	}
	return strings.Join(blocks, "\n\n")
}

// Inline renders spans with terminal styles. Links keep their URL visible.
func Inline(spans []markdown.Inline, st shared.Styles) string {
	var b strings.Builder
	for _, s := range spans {
		switch s := s.(type) {
		case markdown.PlainText:
			b.WriteString(s.Text)
		case markdown.Bold:
			b.WriteString(st.Bold.Render(s.Text))
		case markdown.Italic:
			b.WriteString(st.Italic.Render(s.Text))
		case markdown.InlineCode:
			b.WriteString(st.InlineCode.Render(s.Text))
		case markdown.Link:
			b.WriteString(st.Link.Render(s.Label) + " " + st.LinkURL.Render("("+s.URL+")"))
		}
	}
	return b.String()
}

// list renders items with a marker; continuation lines are indented to the
// width of the marker.
func list(items [][]markdown.Inline, width int, st shared.Styles, marker func(int) string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		m := marker(i)
		pad := runewidth.StringWidth(m) + 1
		body := strings.Split(wrap(Inline(item, st), width-pad), "\n")
		lines = append(lines, st.Bullet.Render(m)+" "+body[0])
		for _, cont := range body[1:] {
			lines = append(lines, strings.Repeat(" ", pad)+cont)
		}
	}
	return strings.Join(lines, "\n")
}

// codeBlock renders a fenced block in a bordered box. A first line naming a
// known language selects the highlighter and is shown as a badge.
func codeBlock(text string, width int, st shared.Styles) string {
	lang, code := splitLanguage(text)
	body := highlight(code, lang, st.Palette.ChromaID)
	if lang != "" {
		body = st.Subtitle.Render(lang) + "\n" + body
	}
	box := st.CodeBlock
	if width > 4 {
		box = box.MaxWidth(width)
	}
	return box.Render(body)
}

func splitLanguage(text string) (string, string) {
	first, rest, ok := strings.Cut(text, "\n")
	if !ok || first == "" || strings.ContainsAny(first, " \t") {
		return "", text
	}
	if lexers.Get(first) == nil {
		return "", text
	}
	return first, rest
}

// highlight applies syntax highlighting with chroma. Unknown languages are
// guessed from the code; failures return the code unchanged.
func highlight(code, language, styleName string) string {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	// Lexers end the stream with a newline, possibly wrapped in escapes.
	out := buf.String()
	if i := strings.LastIndexByte(out, '\n'); i >= 0 && ansi.Strip(out[i+1:]) == "" {
		out = out[:i] + out[i+1:]
	}
	return out
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

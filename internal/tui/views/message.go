package views

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/indent"

	"github.com/buker/latamai/internal/chat"
	"github.com/buker/latamai/internal/markdown"
	"github.com/buker/latamai/internal/tui/shared"
)

// MessageOptions controls how one message is drawn
type MessageOptions struct {
	Width     int
	Streaming bool // the message is being revealed
	CursorOn  bool // pulse phase of the streaming cursor
	Copied    bool // the message was just copied
}

// Message renders one conversation entry: role label, body and, for answers
// with sources, the sources list and the metadata footer.
func Message(m chat.Message, st shared.Styles, opts MessageOptions) string {
	var b strings.Builder

	if m.Role == chat.RoleUser {
		b.WriteString(st.UserLabel.Render(shared.UserLabelText))
		b.WriteString("\n")
		b.WriteString(st.UserText.Render(wrap(m.Content, opts.Width)))
		return b.String()
	}

	label := st.BotLabel.Render(shared.BotLabelText)
	if opts.Copied {
		label += "  " + st.Notice.Render("Copiado")
	}
	b.WriteString(label)
	b.WriteString("\n")
	b.WriteString(Markdown(markdown.Render(m.Content), opts.Width, st))

	if opts.Streaming {
		frame := shared.CursorFrameOff
		if opts.CursorOn {
			frame = shared.CursorFrameOn
		}
		b.WriteString(st.Cursor.Render(frame))
	}

	if m.Meta != nil && len(m.Meta.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(Footer(*m.Meta, opts.Width, st))
	}
	return b.String()
}

// Footer renders the sources of an answer followed by the metadata line.
func Footer(meta chat.Meta, width int, st shared.Styles) string {
	var b strings.Builder
	b.WriteString(st.Sources.Bold(true).Render("Fuentes"))
	b.WriteString("\n")

	inner := width - 4
	for _, s := range meta.Sources {
		line := s.Label()
		if inner > 0 {
			line = runewidth.Truncate(line, inner, "…")
		}
		b.WriteString(st.Sources.Render("- " + line))
		b.WriteString("\n")
		if s.SourceURL != "" {
			url := s.SourceURL
			if inner > 0 {
				url = runewidth.Truncate(url, inner, "…")
			}
			b.WriteString(st.LinkURL.Render("  " + url))
			b.WriteString("\n")
		}
	}
	b.WriteString(st.Meta.Render(wrap(meta.Footer(), width-2)))
	return indent.String(b.String(), 2)
}

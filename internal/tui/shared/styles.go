// Package shared provides styles and key bindings for the TUI packages.
package shared

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors of one theme
type Palette struct {
	Name     string
	Text     lipgloss.Color
	Dimmed   lipgloss.Color
	Accent   lipgloss.Color
	Border   lipgloss.Color
	User     lipgloss.Color
	UserBg   lipgloss.Color
	Code     lipgloss.Color
	CodeBg   lipgloss.Color
	Link     lipgloss.Color
	Error    lipgloss.Color
	Success  lipgloss.Color
	Notice   lipgloss.Color
	ChromaID string // chroma style used for code blocks
}

// LightPalette is used on light terminal backgrounds.
var LightPalette = Palette{
	Name:     "light",
	Text:     lipgloss.Color("#1F2328"),
	Dimmed:   lipgloss.Color("#6E7781"),
	Accent:   lipgloss.Color("#0B6E4F"),
	Border:   lipgloss.Color("#D0D7DE"),
	User:     lipgloss.Color("#FFFFFF"),
	UserBg:   lipgloss.Color("#0B6E4F"),
	Code:     lipgloss.Color("#953800"),
	CodeBg:   lipgloss.Color("#F6F8FA"),
	Link:     lipgloss.Color("#0969DA"),
	Error:    lipgloss.Color("#CF222E"),
	Success:  lipgloss.Color("#1A7F37"),
	Notice:   lipgloss.Color("#9A6700"),
	ChromaID: "github",
}

// DarkPalette is used on dark terminal backgrounds.
var DarkPalette = Palette{
	Name:     "dark",
	Text:     lipgloss.Color("#E6EDF3"),
	Dimmed:   lipgloss.Color("#8B949E"),
	Accent:   lipgloss.Color("#3FB68B"),
	Border:   lipgloss.Color("#444444"),
	User:     lipgloss.Color("#0D1117"),
	UserBg:   lipgloss.Color("#3FB68B"),
	Code:     lipgloss.Color("#FFA657"),
	CodeBg:   lipgloss.Color("#161B22"),
	Link:     lipgloss.Color("#58A6FF"),
	Error:    lipgloss.Color("#FF5555"),
	Success:  lipgloss.Color("#55FF55"),
	Notice:   lipgloss.Color("#FFAA00"),
	ChromaID: "monokai",
}

// PaletteFor returns the palette named by a resolved theme ("light" or "dark").
func PaletteFor(resolved string) Palette {
	if resolved == LightPalette.Name {
		return LightPalette
	}
	return DarkPalette
}

// Styles are the lipgloss styles derived from a palette
type Styles struct {
	Palette Palette

	Header    lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Divider   lipgloss.Style
	UserLabel lipgloss.Style
	UserText  lipgloss.Style
	BotLabel  lipgloss.Style
	Text      lipgloss.Style

	// Markdown
	Heading    [3]lipgloss.Style
	Bold       lipgloss.Style
	Italic     lipgloss.Style
	InlineCode lipgloss.Style
	Link       lipgloss.Style
	LinkURL    lipgloss.Style
	Bullet     lipgloss.Style
	CodeBlock  lipgloss.Style

	// Footer
	Sources lipgloss.Style
	Meta    lipgloss.Style
	Cursor  lipgloss.Style

	// Status line
	Spinner  lipgloss.Style
	Notice   lipgloss.Style
	Error    lipgloss.Style
	Hint     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
	Input    lipgloss.Style
}

// NewStyles builds the styles of a palette.
func NewStyles(p Palette) Styles {
	return Styles{
		Palette: p,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),

		Subtitle: lipgloss.NewStyle().
			Foreground(p.Dimmed),

		Divider: lipgloss.NewStyle().
			Foreground(p.Border),

		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.User).
			Background(p.UserBg).
			Padding(0, 1),

		UserText: lipgloss.NewStyle().
			Foreground(p.Text),

		BotLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),

		Text: lipgloss.NewStyle().
			Foreground(p.Text),

		Heading: [3]lipgloss.Style{
			lipgloss.NewStyle().Bold(true).Underline(true).Foreground(p.Accent),
			lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
			lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		},

		Bold: lipgloss.NewStyle().
			Bold(true),

		Italic: lipgloss.NewStyle().
			Italic(true),

		InlineCode: lipgloss.NewStyle().
			Foreground(p.Code).
			Background(p.CodeBg),

		Link: lipgloss.NewStyle().
			Underline(true).
			Foreground(p.Link),

		LinkURL: lipgloss.NewStyle().
			Foreground(p.Dimmed),

		Bullet: lipgloss.NewStyle().
			Foreground(p.Accent),

		CodeBlock: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),

		Sources: lipgloss.NewStyle().
			Foreground(p.Dimmed),

		Meta: lipgloss.NewStyle().
			Italic(true).
			Foreground(p.Dimmed),

		Cursor: lipgloss.NewStyle().
			Foreground(p.Accent),

		Spinner: lipgloss.NewStyle().
			Foreground(p.Notice),

		Notice: lipgloss.NewStyle().
			Foreground(p.Success),

		Error: lipgloss.NewStyle().
			Foreground(p.Error),

		Hint: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Notice),

		HelpKey: lipgloss.NewStyle().
			Foreground(p.Accent),

		HelpDesc: lipgloss.NewStyle().
			Foreground(p.Dimmed),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),
	}
}

// Indicators
const (
	CursorFrameOn  = "▍"
	CursorFrameOff = " "
	BulletChar     = "•"
	UserLabelText  = "Tu"
	BotLabelText   = "LATAM AI"
)

// RenderDivider creates a horizontal divider of the specified width
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}

package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buker/latamai/internal/tui/shared"
)

// Status line texts
const (
	ThinkingText = "Pensando"
	JumpHintText = "↓ Nuevas respuestas abajo (^g)"
	StoppedText  = "Respuesta detenida"
)

// StatusView shows the waiting spinner, transient notices and the jump hint
// above the input.
type StatusView struct {
	width    int
	spinner  spinner.Model
	waiting  bool
	notice   string
	isError  bool
	jumpHint bool
}

// NewStatusView creates a new status view
func NewStatusView(st shared.Styles) *StatusView {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = st.Spinner

	return &StatusView{spinner: s}
}

// SetStyles applies a new theme.
func (v *StatusView) SetStyles(st shared.Styles) {
	v.spinner.Style = st.Spinner
}

// SetWaiting shows or hides the spinner. Showing it returns the command that
// starts the animation.
func (v *StatusView) SetWaiting(waiting bool) tea.Cmd {
	v.waiting = waiting
	if waiting {
		return v.spinner.Tick
	}
	return nil
}

// Waiting reports whether the spinner is shown.
func (v *StatusView) Waiting() bool { return v.waiting }

// SetNotice replaces the transient notice. An empty text clears it.
func (v *StatusView) SetNotice(text string, isError bool) {
	v.notice = text
	v.isError = isError
}

// Notice returns the current notice.
func (v *StatusView) Notice() string { return v.notice }

// SetJumpHint shows or hides the hint that newer content sits below.
func (v *StatusView) SetJumpHint(show bool) { v.jumpHint = show }

// JumpHint reports whether the hint is shown.
func (v *StatusView) JumpHint() bool { return v.jumpHint }

// SetSize updates the view dimensions
func (v *StatusView) SetSize(width int) {
	v.width = width
}

// Update handles spinner ticks. Ticks stop once waiting ends.
func (v *StatusView) Update(msg tea.Msg) (*StatusView, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && !v.waiting {
		return v, nil
	}
	var cmd tea.Cmd
	v.spinner, cmd = v.spinner.Update(msg)
	return v, cmd
}

// View renders the status line
func (v *StatusView) View(st shared.Styles) string {
	var parts []string
	if v.waiting {
		parts = append(parts, st.Subtitle.Render(ThinkingText)+" "+v.spinner.View())
	}
	if v.notice != "" {
		style := st.Notice
		if v.isError {
			style = st.Error
		}
		parts = append(parts, style.Render(v.notice))
	}
	if v.jumpHint {
		parts = append(parts, st.Hint.Render(JumpHintText))
	}
	line := strings.Join(parts, "  ")
	if v.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(v.width).Render(line)
	}
	return line
}

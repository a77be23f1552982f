package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/buker/latamai/internal/backend"
	"github.com/buker/latamai/internal/chat"
	"github.com/buker/latamai/internal/logging"
	"github.com/buker/latamai/internal/settings"
	"github.com/buker/latamai/internal/stream"
	"github.com/buker/latamai/internal/tui/views"
)

const (
	// NearBottomLines is how close to the end the view must be for new
	// content to keep it scrolled down.
	NearBottomLines = 5

	// CopiedFor is how long the "Copiado" notice stays.
	CopiedFor = 1200 * time.Millisecond

	pulseEvery  = 500 * time.Millisecond
	inputHeight = 3
	headerLines = 2
)

// State represents where the chat is in a question cycle
type State int

const (
	StateIdle      State = iota // Ready for input
	StateWaiting                // Backend call in flight
	StateStreaming              // Answer being revealed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Backend answers chat questions
type Backend interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Response, error)
}

// Options configures a Model
type Options struct {
	Backend Backend
	// Settings persists the theme preference. Nil keeps it in memory.
	Settings settings.Store
	Logger   *log.Logger
	// Copy writes to the clipboard. Nil uses the system clipboard.
	Copy func(string) error
	// DarkBackground tells how auto resolves.
	DarkBackground bool
	Prompts        []string
}

// Model is the Bubble Tea model of the terminal chat.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	backend  Backend
	store    settings.Store
	logger   *log.Logger
	copyFn   func(string) error
	prompts  []string
	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	input    textarea.Model
	status   *views.StatusView

	mode   settings.Mode
	dark   bool
	styles Styles

	conv        *chat.Conversation
	presenter   stream.Presenter
	state       State
	streamingID string
	cursorOn    bool
	copiedID    string
	copySeq     int

	autoFollow   bool
	userScrolled bool

	width  int
	height int
	ready  bool
	quit   bool
}

// NewModel creates a chat model holding the greeting.
func NewModel(opts Options) *Model {
	store := opts.Settings
	if store == nil {
		store = settings.NewMemoryStore(settings.ModeAuto)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	prompts := opts.Prompts
	if prompts == nil {
		prompts = chat.QuickPrompts
	}

	mode, err := store.Load()
	if err != nil {
		logger.Warn("loading theme preference", "err", err)
		mode = settings.ModeAuto
	}

	ta := textarea.New()
	ta.Placeholder = "Pregunta sobre Latinoamerica y el Caribe..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ctx, cancel := context.WithCancel(context.Background())
	styles := StylesFor(mode, opts.DarkBackground)

	return &Model{
		ctx:        ctx,
		cancel:     cancel,
		backend:    opts.Backend,
		store:      store,
		logger:     logger,
		copyFn:     copyFn,
		prompts:    prompts,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		input:      ta,
		status:     views.NewStatusView(styles),
		mode:       mode,
		dark:       opts.DarkBackground,
		styles:     styles,
		conv:       chat.NewConversation(),
		autoFollow: true,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.trackScroll()
		return m, cmd

	case MsgAnswer:
		return m, m.handleAnswer(msg)

	case MsgRevealTick:
		return m, m.handleReveal(msg.Tick)

	case MsgPulse:
		if msg.Generation != m.presenter.Generation() || !m.presenter.Active() {
			return m, nil
		}
		m.cursorOn = !m.cursorOn
		m.refresh()
		return m, pulseCmd(msg.Generation)

	case MsgCopied:
		if msg.Err != nil {
			m.logger.Warn("copying answer", "err", msg.Err)
			m.copiedID = ""
			m.status.SetNotice("No se pudo copiar", true)
			return m, nil
		}
		m.copySeq++
		m.copiedID = msg.ID
		m.status.SetNotice("Copiado", false)
		m.refresh()
		return m, copyExpireCmd(m.copySeq)

	case MsgCopyExpired:
		if msg.Seq != m.copySeq {
			return m, nil
		}
		m.copiedID = ""
		m.status.SetNotice("", false)
		m.refresh()
		return m, nil

	case MsgThemeChanged:
		if msg.Mode != m.mode {
			m.applyMode(msg.Mode)
		}
		return m, nil

	case MsgThemeSaved:
		if msg.Err != nil {
			m.logger.Warn("saving theme preference", "mode", msg.Mode, "err", msg.Err)
			m.status.SetNotice("No se pudo guardar el tema", true)
			return m, nil
		}
		m.status.SetNotice("Tema: "+msg.Mode.Label(), false)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Stop):
		m.StopReveal()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyLast()

	case key.Matches(msg, m.keys.Theme):
		next := m.mode.Next()
		m.applyMode(next)
		return m, saveThemeCmd(m.store, next)

	case key.Matches(msg, m.keys.Jump):
		m.JumpToBottom()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Newline):
		m.input.InsertString("\n")
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m, m.Submit(m.input.Value())

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		m.trackScroll()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		m.trackScroll()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
		m.trackScroll()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.PageDown()
		m.trackScroll()
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.viewport.HalfPageUp()
		m.trackScroll()
		return m, nil

	case key.Matches(msg, m.keys.HalfPageDown):
		m.viewport.HalfPageDown()
		m.trackScroll()
		return m, nil
	}

	if i := m.keys.PromptIndex(msg.String()); i >= 0 && i < len(m.prompts) {
		return m, m.Submit(m.prompts[i])
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// CanSubmit reports whether question would be sent: it must not be blank and
// no question may be waiting or streaming.
func (m *Model) CanSubmit(question string) bool {
	return strings.TrimSpace(question) != "" && m.state == StateIdle && !m.presenter.Active()
}

// Submit sends question to the backend. It returns nil when the question is
// refused.
func (m *Model) Submit(question string) tea.Cmd {
	if !m.CanSubmit(question) || m.backend == nil {
		return nil
	}

	trimmed := strings.TrimSpace(question)
	m.conv.Append(chat.NewMessage(chat.RoleUser, trimmed))
	m.input.Reset()
	m.state = StateWaiting
	m.autoFollow = true
	m.userScrolled = false
	m.status.SetJumpHint(false)
	m.appended()

	req := chat.NewRequest(trimmed, m.conv.History())
	m.logger.Debug("asking backend", "question_len", len(trimmed), "history", len(req.Messages))
	return tea.Batch(m.status.SetWaiting(true), askCmd(m.ctx, m.backend, req))
}

func (m *Model) handleAnswer(msg MsgAnswer) tea.Cmd {
	if m.state != StateWaiting {
		return nil
	}
	m.status.SetWaiting(false)

	if msg.Err != nil {
		m.logger.Warn("chat request failed", "kind", backend.KindOf(msg.Err), "err", msg.Err)
		m.state = StateIdle
		m.conv.Append(chat.NewMessage(chat.RoleAssistant, backend.Message(msg.Err, backend.EndpointChat)))
		m.appended()
		return nil
	}

	meta := msg.Response.Meta()
	answer := chat.NewMessage(chat.RoleAssistant, "")
	answer.Meta = &meta
	m.conv.Append(answer)

	m.state = StateStreaming
	m.streamingID = answer.ID
	m.userScrolled = false
	m.cursorOn = true
	tick := m.presenter.Start(msg.Response.Text())
	m.appended()
	return tea.Batch(revealCmd(tick), pulseCmd(tick.Generation))
}

func (m *Model) handleReveal(t stream.Tick) tea.Cmd {
	events, next := m.presenter.Handle(t)
	if len(events) == 0 {
		return nil
	}

	follow := false
	for _, ev := range events {
		switch ev.Kind {
		case stream.Partial:
			m.conv.SetContent(m.streamingID, ev.Text)
			follow = follow || stream.ShouldFollow(ev, m.autoFollow, m.userScrolled)
		case stream.Complete:
			m.finishReveal()
		}
	}

	m.refresh()
	if follow {
		m.viewport.GotoBottom()
	}
	if next == nil {
		return nil
	}
	return revealCmd(*next)
}

// StopReveal ends the running reveal. The message keeps the text shown so
// far.
func (m *Model) StopReveal() {
	if !m.presenter.Active() {
		return
	}
	m.presenter.Cancel()
	m.finishReveal()
	m.status.SetNotice(views.StoppedText, false)
	m.refresh()
}

func (m *Model) finishReveal() {
	m.streamingID = ""
	m.cursorOn = false
	m.state = StateIdle
}

// JumpToBottom scrolls to the end and resumes following new content.
func (m *Model) JumpToBottom() {
	m.viewport.GotoBottom()
	m.autoFollow = true
	m.userScrolled = false
	m.status.SetJumpHint(false)
}

func (m *Model) copyLast() tea.Cmd {
	last, ok := m.conv.LastAssistant()
	if !ok || last.Content == "" {
		return nil
	}
	return copyCmd(m.copyFn, last.ID, last.Content)
}

// trackScroll updates auto-follow after the user moved the viewport.
func (m *Model) trackScroll() {
	near := m.distanceToBottom() < NearBottomLines
	m.autoFollow = near
	if !near {
		m.userScrolled = true
	}
	m.status.SetJumpHint(!near)
}

func (m *Model) distanceToBottom() int {
	return max(0, m.viewport.TotalLineCount()-m.viewport.YOffset-m.viewport.Height)
}

func (m *Model) applyMode(mode settings.Mode) {
	m.mode = mode
	m.styles = StylesFor(mode, m.dark)
	m.status.SetStyles(m.styles)
	m.refresh()
}

// Teardown cancels the reveal and any backend call in flight.
func (m *Model) Teardown() {
	if m.quit {
		return
	}
	m.quit = true
	m.presenter.Cancel()
	m.cancel()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.status.SetSize(width)
	m.input.SetWidth(max(10, width-2))
	m.layout()
}

// layout sizes the viewport to what the header, status line, input and help
// leave free.
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	helpLines := lipgloss.Height(m.help.View(m.keys))
	vpHeight := max(1, m.height-headerLines-1-(inputHeight+2)-helpLines)

	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.viewport.KeyMap = viewport.KeyMap{}
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.refresh()
	if m.autoFollow {
		m.viewport.GotoBottom()
	}
}

// refresh re-renders the conversation into the viewport.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
}

// appended re-renders after a message was added and follows it when
// auto-follow is on.
func (m *Model) appended() {
	m.refresh()
	if m.autoFollow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderConversation() string {
	width := max(0, m.viewport.Width-2)
	parts := make([]string, 0, len(m.conv.Messages))
	for _, msg := range m.conv.Messages {
		parts = append(parts, views.Message(msg, m.styles, views.MessageOptions{
			Width:     width,
			Streaming: msg.ID == m.streamingID,
			CursorOn:  m.cursorOn,
			Copied:    msg.ID == m.copiedID,
		}))
	}
	return strings.Join(parts, "\n\n")
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("LATAM AI"))
	b.WriteString(m.styles.Subtitle.Render("  Latinoamerica y el Caribe · tema " + m.mode.Label()))
	b.WriteString("\n")
	b.WriteString(m.styles.RenderDivider(m.width))
	b.WriteString("\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.renderConversation())
	}
	b.WriteString("\n")
	b.WriteString(m.status.View(m.styles))
	b.WriteString("\n")
	b.WriteString(m.styles.Input.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// State returns the current question cycle state.
func (m *Model) State() State { return m.state }

// Conversation returns the messages shown.
func (m *Model) Conversation() *chat.Conversation { return m.conv }

// Mode returns the active theme preference.
func (m *Model) Mode() settings.Mode { return m.mode }

// AutoFollow reports whether new content keeps the view at the bottom.
func (m *Model) AutoFollow() bool { return m.autoFollow }

// UserScrolled reports whether the user moved away from the bottom since the
// last question.
func (m *Model) UserScrolled() bool { return m.userScrolled }

func askCmd(ctx context.Context, b Backend, req chat.Request) tea.Cmd {
	return func() tea.Msg {
		resp, err := b.Chat(ctx, req)
		return MsgAnswer{Response: resp, Err: err}
	}
}

func revealCmd(t stream.Tick) tea.Cmd {
	if t.Delay <= 0 {
		return func() tea.Msg { return MsgRevealTick{Tick: t} }
	}
	return tea.Tick(t.Delay, func(time.Time) tea.Msg { return MsgRevealTick{Tick: t} })
}

func pulseCmd(generation uint64) tea.Cmd {
	return tea.Tick(pulseEvery, func(time.Time) tea.Msg { return MsgPulse{Generation: generation} })
}

func copyCmd(copyFn func(string) error, id, text string) tea.Cmd {
	return func() tea.Msg {
		return MsgCopied{ID: id, Err: copyFn(text)}
	}
}

func copyExpireCmd(seq int) tea.Cmd {
	return tea.Tick(CopiedFor, func(time.Time) tea.Msg { return MsgCopyExpired{Seq: seq} })
}

func saveThemeCmd(store settings.Store, mode settings.Mode) tea.Cmd {
	return func() tea.Msg {
		return MsgThemeSaved{Mode: mode, Err: store.Save(mode)}
	}
}

package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buker/latamai/internal/settings"
)

// Watcher reports theme preference changes made outside this process.
type Watcher interface {
	Watch(ctx context.Context, fn func(settings.Mode)) error
}

// Program wraps a Bubble Tea program to run the chat with its settings
// watcher.
type Program struct {
	program *tea.Program // Underlying Bubble Tea program
	model   *Model       // Shared model for state access
	watcher Watcher
}

// NewProgram creates a Program. Options.DarkBackground is queried from the
// terminal. A nil watcher disables external theme updates.
func NewProgram(opts Options, watcher Watcher, teaOpts ...tea.ProgramOption) *Program {
	opts.DarkBackground = lipgloss.HasDarkBackground()
	model := NewModel(opts)
	teaOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, teaOpts...)
	return &Program{
		program: tea.NewProgram(model, teaOpts...),
		model:   model,
		watcher: watcher,
	}
}

// Run starts the watcher and the TUI and blocks until the user quits or ctx
// is cancelled.
func (p *Program) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer p.model.Teardown()

	if p.watcher != nil {
		go func() {
			err := p.watcher.Watch(ctx, func(mode settings.Mode) {
				p.Send(MsgThemeChanged{Mode: mode})
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				p.model.logger.Warn("watching settings", "err", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		p.program.Quit()
	}()

	_, err := p.program.Run()
	return err
}

// Send dispatches a message to the TUI for processing.
// This is thread-safe and can be called from any goroutine.
func (p *Program) Send(msg tea.Msg) {
	p.program.Send(msg)
}

// Model returns the chat model.
func (p *Program) Model() *Model {
	return p.model
}

package stream

import (
	"time"
	"unicode/utf8"
)

// Tick asks the presenter to advance once Delay has elapsed.
type Tick struct {
	Generation uint64
	Delay      time.Duration
}

// EventKind distinguishes reveal events.
type EventKind int

const (
	// Partial carries a new visible prefix.
	Partial EventKind = iota
	// Complete is emitted once, after the last Partial.
	Complete
)

func (k EventKind) String() string {
	switch k {
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Event is one emission of a reveal.
type Event struct {
	Kind       EventKind
	Generation uint64
	Text       string
	Revealed   int
	Total      int
	// Follow is set while the reveal is still short enough for the view to
	// keep scrolling to the bottom on every emission.
	Follow bool
}

// Presenter owns at most one Session. It is not safe for concurrent use; the
// owning event loop is expected to serialize Start, Handle and Cancel.
type Presenter struct {
	generation uint64
	session    *Session
}

// Start cancels any running session and begins revealing text. The returned
// tick has no delay: the first chunk is shown right away.
func (p *Presenter) Start(text string) Tick {
	return p.StartWith(text, ParamsFor(utf8.RuneCountInString(text)))
}

// StartWith is Start with the reveal params chosen by the caller.
func (p *Presenter) StartWith(text string, params Params) Tick {
	p.Cancel()
	p.generation++
	p.session = NewSessionWith(text, params)
	return Tick{Generation: p.generation}
}

// Handle advances the session the tick belongs to. Ticks from a cancelled or
// replaced session produce nothing. The returned tick, when non-nil, must be
// scheduled after its delay.
func (p *Presenter) Handle(t Tick) ([]Event, *Tick) {
	if p.session == nil || t.Generation != p.generation {
		return nil, nil
	}

	s := p.session
	if s.Total() == 0 {
		p.session = nil
		return []Event{p.event(Complete, Frame{Done: true})}, nil
	}

	f := s.Advance()
	events := []Event{p.event(Partial, f)}
	if f.Done {
		p.session = nil
		return append(events, p.event(Complete, f)), nil
	}
	return events, &Tick{Generation: p.generation, Delay: f.Delay}
}

// Cancel stops the running session. Ticks already scheduled for it become
// no-ops. Cancelling when nothing runs does nothing.
func (p *Presenter) Cancel() {
	if p.session == nil {
		return
	}
	p.session.Stop()
	p.session = nil
	p.generation++
}

// Active reports whether a session is running.
func (p *Presenter) Active() bool { return p.session != nil }

// Generation identifies the current session.
func (p *Presenter) Generation() uint64 { return p.generation }

func (p *Presenter) event(kind EventKind, f Frame) Event {
	return Event{
		Kind:       kind,
		Generation: p.generation,
		Text:       f.Text,
		Revealed:   f.Revealed,
		Total:      f.Total,
		Follow:     f.Revealed <= FollowThreshold,
	}
}

// ShouldFollow reports whether the view should scroll to the bottom for ev.
func ShouldFollow(ev Event, autoFollow, userScrolled bool) bool {
	return ev.Follow && autoFollow && !userScrolled
}

package stream

import (
	"time"
	"unicode/utf8"
)

// Session is one in-progress reveal. The revealed length only grows, and chunk
// size and base delay are fixed when the session is created. Lengths count
// runes so a prefix never splits a character.
type Session struct {
	text     []rune
	revealed int
	params   Params
	active   bool
}

// Frame is the visible state after one Advance.
type Frame struct {
	Text     string
	Revealed int
	Total    int
	// Delay is how long to wait before the next Advance. Zero when Done.
	Delay time.Duration
	Done  bool
}

// NewSession creates an active session for text.
func NewSession(text string) *Session {
	return NewSessionWith(text, ParamsFor(utf8.RuneCountInString(text)))
}

// NewSessionWith creates an active session for text with fixed params.
func NewSessionWith(text string, params Params) *Session {
	if params.ChunkSize < 1 {
		params.ChunkSize = 1
	}
	return &Session{
		text:   []rune(text),
		params: params,
		active: true,
	}
}

// Params returns the reveal parameters fixed for this session.
func (s *Session) Params() Params { return s.params }

// Total is the full text length in runes.
func (s *Session) Total() int { return len(s.text) }

// Revealed is the number of runes revealed so far.
func (s *Session) Revealed() int { return s.revealed }

// Active reports whether the session can still advance.
func (s *Session) Active() bool { return s.active }

// Stop deactivates the session. The revealed prefix is kept.
func (s *Session) Stop() { s.active = false }

// Advance reveals the next chunk. The session deactivates itself once the
// whole text is visible. Advancing an inactive session changes nothing.
func (s *Session) Advance() Frame {
	if !s.active {
		return s.frame(0)
	}

	s.revealed = min(len(s.text), s.revealed+s.params.ChunkSize)
	if s.revealed == len(s.text) {
		s.active = false
		return s.frame(0)
	}
	return s.frame(s.params.BaseDelay + PunctuationPause(s.text[s.revealed-1]))
}

func (s *Session) frame(delay time.Duration) Frame {
	return Frame{
		Text:     string(s.text[:s.revealed]),
		Revealed: s.revealed,
		Total:    len(s.text),
		Delay:    delay,
		Done:     s.revealed == len(s.text),
	}
}

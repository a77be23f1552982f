package tui

import (
	"github.com/buker/latamai/internal/chat"
	"github.com/buker/latamai/internal/settings"
	"github.com/buker/latamai/internal/stream"
)

// MsgAnswer is sent when the backend call for a question returns.
type MsgAnswer struct {
	Response *chat.Response
	Err      error
}

// MsgRevealTick asks the presenter to advance the reveal it belongs to.
type MsgRevealTick struct {
	Tick stream.Tick
}

// MsgPulse toggles the streaming cursor of one reveal.
type MsgPulse struct {
	Generation uint64
}

// MsgCopied reports the result of a clipboard copy.
type MsgCopied struct {
	ID  string
	Err error
}

// MsgCopyExpired clears the "Copiado" notice of copy number Seq.
type MsgCopyExpired struct {
	Seq int
}

// MsgThemeChanged is sent when the theme preference changed outside the
// model, e.g. by another instance writing the settings file.
type MsgThemeChanged struct {
	Mode settings.Mode
}

// MsgThemeSaved reports the result of persisting the theme preference.
type MsgThemeSaved struct {
	Mode settings.Mode
	Err  error
}

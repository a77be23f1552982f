package tui

import (
	"github.com/buker/latamai/internal/chat"
	"github.com/buker/latamai/internal/tui/shared"
)

// KeyMap re-exports the shared KeyMap
type KeyMap = shared.KeyMap

// DefaultKeyMap returns the default keybindings, one Alt+N binding per quick
// prompt.
func DefaultKeyMap() KeyMap {
	return shared.DefaultKeyMap(len(chat.QuickPrompts))
}

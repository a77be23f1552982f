// Package tui provides the terminal chat using Bubble Tea.
package tui

import (
	"github.com/buker/latamai/internal/settings"
	"github.com/buker/latamai/internal/tui/shared"
)

// Styles re-exports the shared Styles
type Styles = shared.Styles

// StylesFor returns the styles of mode. Auto follows the terminal background.
func StylesFor(mode settings.Mode, darkBackground bool) Styles {
	return shared.NewStyles(shared.PaletteFor(mode.Resolve(darkBackground)))
}

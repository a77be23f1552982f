package shared

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings of the chat view
type KeyMap struct {
	Send         key.Binding
	Newline      key.Binding
	Stop         key.Binding
	Copy         key.Binding
	Theme        key.Binding
	Jump         key.Binding
	Quit         key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	Help         key.Binding
	Prompts      []key.Binding
}

// DefaultKeyMap returns the default keybindings. One prompt binding is
// created per quick prompt, up to nine.
func DefaultKeyMap(prompts int) KeyMap {
	if prompts > 9 {
		prompts = 9
	}
	km := KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "enviar"),
		),
		Newline: key.NewBinding(
			key.WithKeys("shift+enter", "alt+enter", "ctrl+j"),
			key.WithHelp("Alt+Enter", "nueva linea"),
		),
		Stop: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "detener"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("^y", "copiar"),
		),
		Theme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("^t", "tema"),
		),
		Jump: key.NewBinding(
			key.WithKeys("ctrl+g", "end"),
			key.WithHelp("^g/End", "ir al final"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("^c", "salir"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "subir"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "bajar"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "pagina arriba"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "pagina abajo"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("^u", "media pagina arriba"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("^d", "media pagina abajo"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "ayuda"),
		),
	}
	for i := 1; i <= prompts; i++ {
		n := strconv.Itoa(i)
		km.Prompts = append(km.Prompts, key.NewBinding(
			key.WithKeys("alt+"+n),
			key.WithHelp("Alt+"+n, "pregunta "+n),
		))
	}
	return km
}

// PromptIndex returns the quick prompt index bound to k, or -1.
func (km KeyMap) PromptIndex(k string) int {
	for i, b := range km.Prompts {
		for _, bk := range b.Keys() {
			if bk == k {
				return i
			}
		}
	}
	return -1
}

// ShortHelp implements help.KeyMap.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Send, km.Newline, km.Stop, km.Copy, km.Theme, km.Help, km.Quit}
}

// FullHelp implements help.KeyMap.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.Send, km.Newline, km.Stop, km.Copy},
		{km.ScrollUp, km.ScrollDown, km.PageUp, km.PageDown, km.Jump},
		append([]key.Binding{km.Theme, km.Help, km.Quit}, km.Prompts...),
	}
}

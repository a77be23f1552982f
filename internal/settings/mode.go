// Package settings persists user preferences between runs. The only
// preference today is the theme mode.
package settings

import "fmt"

// Mode is the theme preference
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// AllModes returns the modes in cycling order
func AllModes() []Mode {
	return []Mode{ModeAuto, ModeLight, ModeDark}
}

// ParseMode validates s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAuto, ModeLight, ModeDark:
		return m, nil
	default:
		return ModeAuto, fmt.Errorf("invalid theme mode %q: must be auto, light or dark", s)
	}
}

// Normalize maps anything that is not a known mode to ModeAuto.
func Normalize(s string) Mode {
	m, err := ParseMode(s)
	if err != nil {
		return ModeAuto
	}
	return m
}

// Resolve returns the concrete theme, "light" or "dark". Auto follows the
// environment, reported by dark.
func (m Mode) Resolve(dark bool) string {
	switch m {
	case ModeLight:
		return string(ModeLight)
	case ModeDark:
		return string(ModeDark)
	}
	if dark {
		return string(ModeDark)
	}
	return string(ModeLight)
}

// Next cycles auto, light, dark.
func (m Mode) Next() Mode {
	switch m {
	case ModeAuto:
		return ModeLight
	case ModeLight:
		return ModeDark
	default:
		return ModeAuto
	}
}

// Label is the display name of the mode.
func (m Mode) Label() string {
	switch m {
	case ModeLight:
		return "Claro"
	case ModeDark:
		return "Oscuro"
	default:
		return "Auto"
	}
}

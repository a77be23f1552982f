// Package stream reveals a complete answer in growing prefixes to simulate
// live generation.
//
// A Session is the pure reveal state. A Presenter owns at most one session at
// a time and hands out Ticks; the caller schedules each tick after its delay
// and feeds it back with Handle. Ticks carry the generation they belong to, so
// cancelling or restarting invalidates every tick already in flight.
package stream

import "time"

// FollowThreshold is the revealed length (in characters) up to which reveal
// events ask the view to stay pinned to the bottom.
const FollowThreshold = 180

// Params are the per-session reveal parameters.
type Params struct {
	ChunkSize int
	BaseDelay time.Duration
}

// ParamsFor derives chunk size and base delay from the total text length.
// Longer answers reveal in bigger chunks with shorter pauses.
func ParamsFor(length int) Params {
	switch {
	case length <= 250:
		return Params{ChunkSize: 2, BaseDelay: 150 * time.Millisecond}
	case length <= 900:
		return Params{ChunkSize: 5, BaseDelay: 115 * time.Millisecond}
	case length <= 1800:
		return Params{ChunkSize: 8, BaseDelay: 90 * time.Millisecond}
	default:
		return Params{ChunkSize: 10, BaseDelay: 76 * time.Millisecond}
	}
}

// PunctuationPause is the extra wait after a chunk ending in last.
func PunctuationPause(last rune) time.Duration {
	switch last {
	case '.', '!', '?', ':':
		return 210 * time.Millisecond
	case ',', ';':
		return 120 * time.Millisecond
	case '\n':
		return 155 * time.Millisecond
	default:
		return 0
	}
}

package stream

import (
	"context"
	"time"
	"unicode/utf8"
)

// Clock schedules tick delays.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// RealClock waits on wall time.
type RealClock struct{}

// After implements Clock.
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Play reveals text to completion, calling emit for every event in order. It
// stops early when ctx is done or emit fails; no event is emitted after that.
// A nil clock means RealClock.
func Play(ctx context.Context, text string, clock Clock, emit func(Event) error) error {
	return PlayWith(ctx, text, ParamsFor(utf8.RuneCountInString(text)), clock, emit)
}

// PlayWith is Play with fixed reveal params, for text that was reformatted
// from a longer or shorter original.
func PlayWith(ctx context.Context, text string, params Params, clock Clock, emit func(Event) error) error {
	if clock == nil {
		clock = RealClock{}
	}

	var p Presenter
	defer p.Cancel()

	first := p.StartWith(text, params)
	for next := &first; next != nil; {
		if next.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(next.Delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var events []Event
		events, next = p.Handle(*next)
		for _, ev := range events {
			if err := emit(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

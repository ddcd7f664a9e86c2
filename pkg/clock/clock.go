// Package clock provides an injectable time source.
//
// Production code takes a Clock instead of calling time.Now or
// time.NewTicker directly. Real returns the standard library behavior,
// Fake returns a clock that only moves when Advance is called.
//
// Times returned by Real carry a monotonic reading, so durations
// computed with Time.Sub are not affected by wall-clock adjustments.
package clock

import "time"

// Clock abstracts the time operations used by the collector.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a Ticker delivering ticks every d. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker

	// After returns a channel that receives once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// Ticker delivers periodic ticks on C. C has capacity 1: a slow
// reader loses ticks instead of queueing them.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop turns the ticker off. C is not closed.
func (t *Ticker) Stop() { t.stop() }

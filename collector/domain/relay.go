package domain

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/samoilenko/sensorlog/pkg/clock"
)

// RelayInterval is the minimum spacing between two forwarded messages.
const RelayInterval = 200 * time.Millisecond

// RelayMessage is the live view of the acceleration channel.
type RelayMessage struct {
	X, Y, Z   float64
	Timestamp time.Time
}

// TelemetrySubscriber consumes relay messages. Publish is called from the
// sampling worker and must not block.
type TelemetrySubscriber interface {
	Publish(msg RelayMessage)
}

// FiniteValuesValidator rejects records holding NaN or infinite values.
type FiniteValuesValidator struct{}

// Apply returns ErrInvalidReading for the first non-finite value.
func (FiniteValuesValidator) Apply(record *SampleRecord) error {
	for i, v := range record.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s value%d is %v", ErrInvalidReading, record.Kind, i+1, v)
		}
	}
	return nil
}

// NewFiniteValuesValidator creates a new instance of FiniteValuesValidator.
func NewFiniteValuesValidator() *FiniteValuesValidator {
	return &FiniteValuesValidator{}
}

// IntervalLimiter lets a record through when at least interval has passed
// since the last record it let through. The first record always passes.
// Elapsed time is measured with Time.Sub on the clock's readings, which
// uses the monotonic clock for real time.
//
// IntervalLimiter is owned by the sampling worker and is not safe for
// concurrent use.
type IntervalLimiter struct {
	clock     clock.Clock
	interval  time.Duration
	last      time.Time
	forwarded bool
}

// Apply returns a RateLimitError when the record arrives too early.
func (l *IntervalLimiter) Apply(_ *SampleRecord) error {
	now := l.clock.Now()
	if l.forwarded {
		elapsed := now.Sub(l.last)
		if elapsed < l.interval {
			return &RateLimitError{
				Message: "relay interval not elapsed",
				Delay:   l.interval - elapsed,
			}
		}
	}

	l.last = now
	l.forwarded = true
	return nil
}

// NewIntervalLimiter creates a limiter forwarding at most once per interval.
func NewIntervalLimiter(clk clock.Clock, interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		clock:    clk,
		interval: interval,
	}
}

// RelayStats counts what happened to offered samples.
type RelayStats struct {
	Forwarded uint64
	Throttled uint64
	Invalid   uint64
}

// TelemetryRelay forwards a throttled view of the acceleration channel to
// a subscriber. It is a pure rate limiter: rejected samples are dropped,
// never queued.
type TelemetryRelay struct {
	chain      *Interceptors[SampleRecord]
	subscriber TelemetrySubscriber
	logger     Logger

	forwarded atomic.Uint64
	throttled atomic.Uint64
	invalid   atomic.Uint64
}

// Offer forwards record when it passes validation and the interval
// limiter. It reports whether a message was published.
func (r *TelemetryRelay) Offer(record SampleRecord) bool {
	if record.ValueCount() < 3 {
		r.invalid.Add(1)
		return false
	}

	if err := r.chain.Apply(&record); err != nil {
		var rateLimitError *RateLimitError
		switch {
		case errors.As(err, &rateLimitError):
			r.throttled.Add(1)
		case errors.Is(err, ErrInvalidReading):
			r.invalid.Add(1)
			r.logger.Debug("relay skipped sample: %s", err.Error())
		default:
			r.logger.Error("relay interceptor returned unknown error: %s", err.Error())
		}
		return false
	}

	values := record.Values()
	r.subscriber.Publish(RelayMessage{
		X:         values[0],
		Y:         values[1],
		Z:         values[2],
		Timestamp: record.Timestamp,
	})
	r.forwarded.Add(1)
	return true
}

// Stats returns the relay counters. Safe to call from any goroutine.
func (r *TelemetryRelay) Stats() RelayStats {
	return RelayStats{
		Forwarded: r.forwarded.Load(),
		Throttled: r.throttled.Load(),
		Invalid:   r.invalid.Load(),
	}
}

// NewTelemetryRelay creates a relay that validates samples and forwards
// at most one per RelayInterval.
func NewTelemetryRelay(clk clock.Clock, subscriber TelemetrySubscriber, logger Logger) *TelemetryRelay {
	return &TelemetryRelay{
		chain: WithInterceptors[SampleRecord](
			NewFiniteValuesValidator(),
			NewIntervalLimiter(clk, RelayInterval),
		),
		subscriber: subscriber,
		logger:     logger,
	}
}

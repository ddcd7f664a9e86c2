package domain

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError is returned by the relay limiter when a sample arrives
// before the forwarding interval has elapsed. Delay is the time left
// until the next sample may be forwarded.
type RateLimitError struct {
	Delay   time.Duration
	Message string
}

// Error implements the error interface, returning the error message.
func (e *RateLimitError) Error() string {
	return e.Message
}

// IOError reports a failed operation on the sensor log. It is never fatal:
// the session continues and only the affected sample is lost.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ErrValidation is a sentinel error used to indicate validation failures.
// This error should be wrapped with additional context using fmt.Errorf
// to provide specific details about what validation failed.
var ErrValidation = errors.New("validation failed")

// ErrSensorUnavailable is returned by a SensorHost when the requested kind
// has no hardware backing on this device. It is expected, not exceptional.
var ErrSensorUnavailable = errors.New("sensor not available")

// ErrInvalidReading marks a reading that must not reach the live relay.
var ErrInvalidReading = errors.New("invalid reading")

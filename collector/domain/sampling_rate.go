package domain

import "time"

// SamplingRate is the delivery cadence requested from the host.
type SamplingRate int

const (
	SamplingRateFastest SamplingRate = iota
	SamplingRateGame
	SamplingRateUI
	SamplingRateNormal
)

// Period returns the nominal interval between two readings.
// SamplingRateFastest has no nominal interval and returns 0.
func (r SamplingRate) Period() time.Duration {
	switch r {
	case SamplingRateGame:
		return 20 * time.Millisecond
	case SamplingRateUI:
		return 66667 * time.Microsecond
	case SamplingRateNormal:
		return 200 * time.Millisecond
	default:
		return 0
	}
}

func (r SamplingRate) String() string {
	switch r {
	case SamplingRateFastest:
		return "fastest"
	case SamplingRateGame:
		return "game"
	case SamplingRateUI:
		return "ui"
	case SamplingRateNormal:
		return "normal"
	default:
		return "unknown"
	}
}

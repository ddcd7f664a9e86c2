package infrastructure

import (
	"math"
	"math/rand/v2"

	collectorDomain "github.com/samoilenko/sensorlog/collector/domain"
)

const standardGravity = 9.80665

// DummySensor generates plausible random values for one sensor kind.
// It is used by a single goroutine and is not safe for concurrent use.
type DummySensor struct {
	kind  collectorDomain.SensorKind
	steps float64
}

func noise(amplitude float64) float64 {
	return (rand.Float64()*2 - 1) * amplitude
}

// GetValues returns the next reading. The slice length matches the
// arity of the kind.
func (d *DummySensor) GetValues() []float64 {
	switch d.kind {
	case collectorDomain.KindAcceleration:
		return []float64{noise(0.3), noise(0.3), standardGravity + noise(0.3)}
	case collectorDomain.KindAngularRate:
		return []float64{noise(0.05), noise(0.05), noise(0.05)}
	case collectorDomain.KindLinearAcceleration:
		return []float64{noise(0.2), noise(0.2), noise(0.2)}
	case collectorDomain.KindGravity:
		return []float64{noise(0.01), noise(0.01), standardGravity}
	case collectorDomain.KindMagneticField:
		return []float64{22 + noise(2), -5 + noise(2), -42 + noise(2)}
	case collectorDomain.KindRotationVector:
		angle := noise(math.Pi / 8)
		return []float64{0, 0, math.Sin(angle / 2)}
	case collectorDomain.KindStepCounter:
		if rand.IntN(10) == 0 {
			d.steps++
		}
		return []float64{d.steps}
	case collectorDomain.KindHeartRate:
		return []float64{float64(60 + rand.IntN(40))}
	default:
		return nil
	}
}

// NewDummySensor creates a generator for kind.
func NewDummySensor(kind collectorDomain.SensorKind) *DummySensor {
	return &DummySensor{kind: kind}
}

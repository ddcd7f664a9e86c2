package domain

import (
	"math"
	"time"
)

// SampleSource tags every record produced by this collector.
const SampleSource = "sensor_device"

// Reading is one raw delivery from the host sensor subsystem.
type Reading struct {
	Kind   SensorKind
	Values []float64
}

// SampleRecord is a single immutable row of the sensor log.
type SampleRecord struct {
	Timestamp time.Time
	Source    string
	Kind      SensorKind
	values    [3]float64
	count     int
	Extra     string
}

// NewSampleRecord builds a record from a reading taken at timestamp.
// Only the first Kind.Arity() values are kept; a reading shorter than the
// arity is padded with NaN.
func NewSampleRecord(timestamp time.Time, reading Reading) SampleRecord {
	record := SampleRecord{
		Timestamp: timestamp,
		Source:    SampleSource,
		Kind:      reading.Kind,
		count:     reading.Kind.Arity(),
	}
	for i := 0; i < record.count; i++ {
		if i < len(reading.Values) {
			record.values[i] = reading.Values[i]
		} else {
			record.values[i] = math.NaN()
		}
	}
	return record
}

// Values returns a copy of the populated values.
func (r SampleRecord) Values() []float64 {
	return append([]float64(nil), r.values[:r.count]...)
}

// ValueCount is the number of populated value slots.
func (r SampleRecord) ValueCount() int {
	return r.count
}

// Value returns slot i and whether it is populated.
func (r SampleRecord) Value(i int) (float64, bool) {
	if i < 0 || i >= r.count {
		return 0, false
	}
	return r.values[i], true
}

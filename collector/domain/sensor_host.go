package domain

// SensorHandle is the host's token for one registered sensor listener.
type SensorHandle interface {
	Kind() SensorKind
}

// ReadingSink receives readings from the host. Deliver returns false
// when the reading was rejected because the session or the worker is
// shutting down.
type ReadingSink interface {
	Deliver(reading Reading) bool
}

// ReadingSinkFunc adapts a function to ReadingSink.
type ReadingSinkFunc func(reading Reading) bool

// Deliver calls f(reading).
func (f ReadingSinkFunc) Deliver(reading Reading) bool {
	return f(reading)
}

// SensorHost is the capability the platform sensor subsystem offers.
// Implementations call sink.Deliver from their own goroutines; kinds are
// delivered independently of each other.
type SensorHost interface {
	// Subscribe starts delivery of kind at the given rate. It returns an
	// error wrapping ErrSensorUnavailable when the device has no such sensor.
	Subscribe(kind SensorKind, rate SamplingRate, sink ReadingSink) (SensorHandle, error)

	// Unregister stops delivery for handle. Callbacks already running may
	// still complete after Unregister returns.
	Unregister(handle SensorHandle)
}

// RecordWriter persists sample records. Append must not return before
// the record is durable.
type RecordWriter interface {
	Append(record SampleRecord) error
}

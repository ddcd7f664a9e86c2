package infrastructure

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	collectorDomain "github.com/samoilenko/sensorlog/collector/domain"
	"github.com/samoilenko/sensorlog/pkg/clock"
)

// fastestPeriod stands in for SamplingRateFastest, which has no nominal period.
const fastestPeriod = 5 * time.Millisecond

// AtomicIDGenerator provides thread-safe unique ID generation using atomic operations.
type AtomicIDGenerator struct {
	id int64
}

// Generate returns the next unique ID.
func (g *AtomicIDGenerator) Generate() int64 {
	return atomic.AddInt64(&g.id, 1)
}

type simulatedHandle struct {
	id   int64
	kind collectorDomain.SensorKind
}

func (h *simulatedHandle) Kind() collectorDomain.SensorKind {
	return h.kind
}

// simulatedStream delivers readings from one DummySensor on a ticker.
type simulatedStream struct {
	stop chan struct{}
	done chan struct{}
}

func (s *simulatedStream) run(
	ticker *clock.Ticker,
	kind collectorDomain.SensorKind,
	sensor *DummySensor,
	sink collectorDomain.ReadingSink,
) {
	defer close(s.done)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			sink.Deliver(collectorDomain.Reading{Kind: kind, Values: sensor.GetValues()})
		}
	}
}

// SimulatedHost is a SensorHost producing random readings for a fixed set
// of available kinds. Each subscription runs its own goroutine, so kinds
// are delivered independently as on a real device.
type SimulatedHost struct {
	clock     clock.Clock
	logger    collectorDomain.Logger
	available map[collectorDomain.SensorKind]bool
	ids       AtomicIDGenerator

	mu      sync.Mutex
	streams map[int64]*simulatedStream
}

// Subscribe starts a stream for kind at the period of rate.
func (h *SimulatedHost) Subscribe(
	kind collectorDomain.SensorKind,
	rate collectorDomain.SamplingRate,
	sink collectorDomain.ReadingSink,
) (collectorDomain.SensorHandle, error) {
	if !h.available[kind] {
		return nil, fmt.Errorf("%w: %s", collectorDomain.ErrSensorUnavailable, kind)
	}

	period := rate.Period()
	if period <= 0 {
		period = fastestPeriod
	}

	handle := &simulatedHandle{id: h.ids.Generate(), kind: kind}
	stream := &simulatedStream{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.streams[handle.id] = stream
	h.mu.Unlock()

	go stream.run(h.clock.NewTicker(period), kind, NewDummySensor(kind), sink)
	h.logger.Debug("simulated %s stream %d started (period=%s)", kind, handle.id, period)

	return handle, nil
}

// Unregister stops the stream behind handle and waits for its goroutine
// to exit. Unknown handles are ignored.
func (h *SimulatedHost) Unregister(handle collectorDomain.SensorHandle) {
	simulated, ok := handle.(*simulatedHandle)
	if !ok {
		return
	}

	h.mu.Lock()
	stream, ok := h.streams[simulated.id]
	delete(h.streams, simulated.id)
	h.mu.Unlock()

	if !ok {
		return
	}
	close(stream.stop)
	<-stream.done
	h.logger.Debug("simulated %s stream %d stopped", simulated.kind, simulated.id)
}

// Close stops every stream that is still running.
func (h *SimulatedHost) Close() {
	h.mu.Lock()
	streams := h.streams
	h.streams = make(map[int64]*simulatedStream)
	h.mu.Unlock()

	for _, stream := range streams {
		close(stream.stop)
		<-stream.done
	}
}

// NewSimulatedHost creates a host offering the given kinds.
func NewSimulatedHost(
	available []collectorDomain.SensorKind,
	clk clock.Clock,
	logger collectorDomain.Logger,
) *SimulatedHost {
	set := make(map[collectorDomain.SensorKind]bool, len(available))
	for _, kind := range available {
		set[kind] = true
	}

	return &SimulatedHost{
		clock:     clk,
		logger:    logger,
		available: set,
		streams:   make(map[int64]*simulatedStream),
	}
}

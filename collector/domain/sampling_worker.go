package domain

import (
	"sync"
	"sync/atomic"

	"github.com/samoilenko/sensorlog/pkg/clock"
)

// SampleRelay receives acceleration records after they were written.
type SampleRelay interface {
	Offer(record SampleRecord) bool
}

// WorkerStats counts processed readings.
type WorkerStats struct {
	Written uint64
	Failed  uint64
}

// SamplingWorker is the single goroutine that turns readings into records,
// appends them to the log and feeds the relay. Every file write and every
// relay update happens on this goroutine, in queue order.
type SamplingWorker struct {
	writer   RecordWriter
	relay    SampleRelay
	clock    clock.Clock
	logger   Logger
	capacity QueueCapacity

	mu      sync.RWMutex
	queue   chan Reading
	done    chan struct{}
	running bool

	written atomic.Uint64
	failed  atomic.Uint64
}

// EnsureStarted starts the worker goroutine unless it is already running.
// A worker that was stopped is recreated with an empty queue. It reports
// whether a new goroutine was started.
func (w *SamplingWorker) EnsureStarted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return false
	}

	w.queue = make(chan Reading, w.capacity)
	w.done = make(chan struct{})
	w.running = true

	go w.loop(w.queue, w.done)
	w.logger.Debug("sampling worker started")

	return true
}

// IsRunning reports whether the worker accepts deliveries.
func (w *SamplingWorker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Deliver enqueues a reading. It blocks while the queue is full and
// returns false once Stop has been requested.
func (w *SamplingWorker) Deliver(reading Reading) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.running {
		return false
	}
	w.queue <- reading

	return true
}

// Stop refuses further deliveries, lets the worker finish every reading
// already queued and waits for the goroutine to exit. Calling Stop on a
// stopped worker does nothing.
func (w *SamplingWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.queue)
	done := w.done
	w.mu.Unlock()

	<-done
	w.logger.Debug("sampling worker stopped")
}

// Stats returns the worker counters. Safe to call from any goroutine.
func (w *SamplingWorker) Stats() WorkerStats {
	return WorkerStats{
		Written: w.written.Load(),
		Failed:  w.failed.Load(),
	}
}

func (w *SamplingWorker) loop(queue <-chan Reading, done chan<- struct{}) {
	defer close(done)
	for reading := range queue {
		w.process(reading)
	}
}

func (w *SamplingWorker) process(reading Reading) {
	if !reading.Kind.IsValid() {
		w.logger.Debug("ignoring reading of unknown sensor kind %d", int(reading.Kind))
		return
	}

	counted := false
	err := SafeFunctionRun(func() error {
		record := NewSampleRecord(w.clock.Now(), reading)

		err := w.writer.Append(record)
		counted = true
		if err != nil {
			w.failed.Add(1)
			w.logger.Error("error writing %s sample: %s", record.Kind, err.Error())
		} else {
			w.written.Add(1)
		}

		if record.Kind == KindAcceleration && w.relay != nil {
			w.relay.Offer(record)
		}
		return nil
	}, w.logger)

	// a panic before the write finished still accounts for the sample
	if err != nil && !counted {
		w.failed.Add(1)
	}
}

// NewSamplingWorker creates a stopped worker. relay may be nil when no
// live consumer is attached.
func NewSamplingWorker(
	writer RecordWriter,
	relay SampleRelay,
	clk clock.Clock,
	capacity QueueCapacity,
	logger Logger,
) *SamplingWorker {
	if capacity == 0 {
		capacity = DefaultQueueCapacity
	}
	return &SamplingWorker{
		writer:   writer,
		relay:    relay,
		clock:    clk,
		capacity: capacity,
		logger:   logger,
	}
}

package domain

import (
	"fmt"
	"sync"
	"time"
)

var testEpoch = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// Mock logger for testing
type mockLogger struct {
	mu     sync.Mutex
	debugs []string
	infos  []string
	errors []string
}

func (m *mockLogger) Debug(msg string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debugs = append(m.debugs, fmt.Sprintf(msg, args...))
}

func (m *mockLogger) Info(msg string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, fmt.Sprintf(msg, args...))
}

func (m *mockLogger) Error(msg string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, fmt.Sprintf(msg, args...))
}

func (m *mockLogger) GetErrors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.errors...)
}

func (m *mockLogger) GetInfos() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.infos...)
}

type manualHandle struct {
	kind SensorKind
}

func (h *manualHandle) Kind() SensorKind { return h.kind }

// manualHost delivers readings only when the test calls emit.
type manualHost struct {
	mu             sync.Mutex
	available      map[SensorKind]bool
	failWith       map[SensorKind]error
	sinks          map[SensorKind]ReadingSink
	subscribeCalls int
	unregistered   []SensorKind
	rates          []SamplingRate
}

func newManualHost(kinds ...SensorKind) *manualHost {
	host := &manualHost{
		available: make(map[SensorKind]bool),
		failWith:  make(map[SensorKind]error),
		sinks:     make(map[SensorKind]ReadingSink),
	}
	for _, kind := range kinds {
		host.available[kind] = true
	}
	return host
}

func (h *manualHost) Subscribe(kind SensorKind, rate SamplingRate, sink ReadingSink) (SensorHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscribeCalls++
	h.rates = append(h.rates, rate)
	if err, ok := h.failWith[kind]; ok {
		return nil, err
	}
	if !h.available[kind] {
		return nil, fmt.Errorf("%w: %s", ErrSensorUnavailable, kind)
	}
	if _, ok := h.sinks[kind]; ok {
		return nil, fmt.Errorf("%s already registered", kind)
	}
	h.sinks[kind] = sink
	return &manualHandle{kind: kind}, nil
}

func (h *manualHost) Unregister(handle SensorHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sinks, handle.Kind())
	h.unregistered = append(h.unregistered, handle.Kind())
}

func (h *manualHost) sinkFor(kind SensorKind) ReadingSink {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sinks[kind]
}

func (h *manualHost) emit(kind SensorKind, values ...float64) bool {
	sink := h.sinkFor(kind)
	if sink == nil {
		return false
	}
	return sink.Deliver(Reading{Kind: kind, Values: values})
}

func (h *manualHost) registeredCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sinks)
}

func (h *manualHost) GetSubscribeCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.subscribeCalls
}

func (h *manualHost) GetUnregistered() []SensorKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]SensorKind{}, h.unregistered...)
}

// memoryWriter keeps appended records in memory.
type memoryWriter struct {
	mu      sync.Mutex
	records []SampleRecord
	err     error
	panicOn SensorKind
	block   chan struct{}
}

func (w *memoryWriter) Append(record SampleRecord) error {
	if w.block != nil {
		<-w.block
	}
	if record.Kind == w.panicOn {
		panic("writer exploded")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.records = append(w.records, record)
	return nil
}

func (w *memoryWriter) GetRecords() []SampleRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]SampleRecord{}, w.records...)
}

// recordingSubscriber collects published relay messages.
type recordingSubscriber struct {
	mu       sync.Mutex
	messages []RelayMessage
}

func (s *recordingSubscriber) Publish(msg RelayMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *recordingSubscriber) GetMessages() []RelayMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RelayMessage{}, s.messages...)
}

// recordingRelay collects offered records.
type recordingRelay struct {
	mu      sync.Mutex
	offered []SampleRecord
}

func (r *recordingRelay) Offer(record SampleRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offered = append(r.offered, record)
	return true
}

func (r *recordingRelay) GetOffered() []SampleRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SampleRecord{}, r.offered...)
}

func waitFor(condition func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return condition()
}

package infrastructure

import (
	"sync"
	"sync/atomic"

	collectorDomain "github.com/samoilenko/sensorlog/collector/domain"
)

// TelemetryHub broadcasts relay messages to every watcher. Publish never
// blocks: a watcher whose buffer is full misses the message.
type TelemetryHub struct {
	mu       sync.RWMutex
	watchers map[int64]chan collectorDomain.RelayMessage
	ids      AtomicIDGenerator
	closed   bool
	dropped  atomic.Uint64
}

// Publish implements domain.TelemetrySubscriber.
func (h *TelemetryHub) Publish(msg collectorDomain.RelayMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, watcher := range h.watchers {
		select {
		case watcher <- msg:
		// ignore slow watchers, they only need the latest values
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped for slow watchers.
func (h *TelemetryHub) Dropped() uint64 {
	return h.dropped.Load()
}

// Subscribe registers a watcher with the given buffer. The returned
// cancel function unregisters it and closes the channel; it may be called
// more than once. After Close, Subscribe returns a closed channel.
func (h *TelemetryHub) Subscribe(buffer int) (<-chan collectorDomain.RelayMessage, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watcher := make(chan collectorDomain.RelayMessage, buffer)
	if h.closed {
		close(watcher)
		return watcher, func() {}
	}

	id := h.ids.Generate()
	h.watchers[id] = watcher

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if w, ok := h.watchers[id]; ok {
				delete(h.watchers, id)
				close(w)
			}
		})
	}

	return watcher, cancel
}

// Watchers returns the number of registered watchers.
func (h *TelemetryHub) Watchers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

// Close closes every watcher channel and refuses new watchers.
func (h *TelemetryHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, watcher := range h.watchers {
		close(watcher)
		delete(h.watchers, id)
	}
}

// NewTelemetryHub creates an empty hub.
func NewTelemetryHub() *TelemetryHub {
	return &TelemetryHub{
		watchers: make(map[int64]chan collectorDomain.RelayMessage),
	}
}

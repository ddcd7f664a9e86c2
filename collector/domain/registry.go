package domain

import (
	"errors"
	"sync"
)

// Subscription binds one sensor kind to the host handle delivering it.
type Subscription struct {
	Kind   SensorKind
	Handle SensorHandle
}

// sessionGate sits between the host and the sampling worker for the
// duration of one session. Once closed it rejects every delivery, and
// close only returns after in-flight deliveries have finished.
type sessionGate struct {
	mu     sync.RWMutex
	closed bool
	sink   ReadingSink
}

func (g *sessionGate) Deliver(reading Reading) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return false
	}
	return g.sink.Deliver(reading)
}

func (g *sessionGate) close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// SensorRegistry subscribes the fixed sensor catalog against a host.
type SensorRegistry struct {
	host    SensorHost
	logger  Logger
	catalog []SensorKind
	rate    SamplingRate

	mu     sync.Mutex
	active []Subscription
	gate   *sessionGate
}

// SubscribeAll requests every catalog kind from the host with delivery
// routed to sink. Kinds the host does not support are skipped. It returns
// the kinds that are now delivering. Calling it while a subscription set
// is already active changes nothing.
func (r *SensorRegistry) SubscribeAll(sink ReadingSink) []SensorKind {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gate != nil {
		return r.kinds()
	}

	gate := &sessionGate{sink: sink}
	for _, kind := range r.catalog {
		handle, err := r.host.Subscribe(kind, r.rate, gate)
		if err != nil {
			if errors.Is(err, ErrSensorUnavailable) {
				r.logger.Debug("sensor not available: %s", kind)
			} else {
				r.logger.Error("error subscribing to %s: %s", kind, err.Error())
			}
			continue
		}
		r.active = append(r.active, Subscription{Kind: kind, Handle: handle})
		r.logger.Debug("registered sensor: %s (rate=%s)", kind, r.rate)
	}
	r.gate = gate

	return r.kinds()
}

// UnsubscribeAll releases every active subscription. When it returns no
// reading of the finished session can reach the sink any more. It returns
// the number of subscriptions released and is safe to call when nothing
// is subscribed.
func (r *SensorRegistry) UnsubscribeAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	released := len(r.active)
	for _, subscription := range r.active {
		r.host.Unregister(subscription.Handle)
	}
	r.active = nil

	if r.gate != nil {
		r.gate.close()
		r.gate = nil
	}

	return released
}

// Active returns the kinds with an active subscription, in catalog order.
func (r *SensorRegistry) Active() []SensorKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kinds()
}

func (r *SensorRegistry) kinds() []SensorKind {
	kinds := make([]SensorKind, 0, len(r.active))
	for _, subscription := range r.active {
		kinds = append(kinds, subscription.Kind)
	}
	return kinds
}

// NewSensorRegistry creates a registry requesting the full catalog at
// game rate.
func NewSensorRegistry(host SensorHost, logger Logger) *SensorRegistry {
	return &SensorRegistry{
		host:    host,
		logger:  logger,
		catalog: Catalog(),
		rate:    SamplingRateGame,
	}
}

// Package domain contains the core logic of the sensor log collector: the
// logging lifecycle, sensor subscriptions, the sampling worker and the live
// telemetry relay.
package domain

import (
	"sync"
	"time"

	"github.com/samoilenko/sensorlog/pkg/clock"
)

// LoggingState is the state of the collector.
type LoggingState int

const (
	StateIdle LoggingState = iota
	StateLogging
)

func (s LoggingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLogging:
		return "logging"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the collector for the control surface.
type Status struct {
	State       LoggingState
	ActiveKinds []SensorKind
	LogPath     string
	Sessions    int
	StartedAt   time.Time
	Worker      WorkerStats
}

// LoggingStateMachine owns the Idle/Logging lifecycle. Start and Stop may
// be called from any goroutine; redundant calls are no-ops.
type LoggingStateMachine struct {
	registry *SensorRegistry
	worker   *SamplingWorker
	clock    clock.Clock
	logger   Logger
	logPath  string

	mu        sync.Mutex
	state     LoggingState
	sessions  int
	startedAt time.Time
	shutdown  bool
}

// Start moves Idle to Logging: the sampling worker is started if needed
// and every available sensor is subscribed with delivery routed to it.
// It returns false when the collector was already logging or has been
// shut down.
func (m *LoggingStateMachine) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		m.logger.Debug("start ignored: collector is shut down")
		return false
	}
	if m.state == StateLogging {
		return false
	}

	m.state = StateLogging
	m.sessions++
	m.startedAt = m.clock.Now()

	m.worker.EnsureStarted()
	kinds := m.registry.SubscribeAll(m.worker)

	m.logger.Info("logging started: session %d, %d sensors %v", m.sessions, len(kinds), kinds)
	return true
}

// Stop moves Logging to Idle and releases every subscription. The worker
// keeps running so readings already queued still reach the log. It
// returns false when the collector was already idle.
func (m *LoggingStateMachine) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stopLocked()
}

func (m *LoggingStateMachine) stopLocked() bool {
	if m.state == StateIdle {
		return false
	}

	m.state = StateIdle
	released := m.registry.UnsubscribeAll()

	m.logger.Info("logging stopped: session %d, %d sensors released", m.sessions, released)
	m.logger.Info("final log file saved at: %s", m.logPath)
	return true
}

// Shutdown stops logging and tears the worker down after it has drained
// its queue. It is meant for process exit and may be called repeatedly.
// Start has no effect afterwards.
func (m *LoggingStateMachine) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	m.shutdown = true
	m.worker.Stop()
}

// State returns the current state.
func (m *LoggingStateMachine) State() LoggingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Status returns a snapshot for the control surface.
func (m *LoggingStateMachine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := Status{
		State:    m.state,
		LogPath:  m.logPath,
		Sessions: m.sessions,
		Worker:   m.worker.Stats(),
	}
	if m.state == StateLogging {
		status.ActiveKinds = m.registry.Active()
		status.StartedAt = m.startedAt
	}
	return status
}

// NewLoggingStateMachine creates an idle state machine. logPath is only
// reported; the writer behind the worker owns the file.
func NewLoggingStateMachine(
	registry *SensorRegistry,
	worker *SamplingWorker,
	clk clock.Clock,
	logPath string,
	logger Logger,
) *LoggingStateMachine {
	return &LoggingStateMachine{
		registry: registry,
		worker:   worker,
		clock:    clk,
		logPath:  logPath,
		logger:   logger,
		state:    StateIdle,
	}
}

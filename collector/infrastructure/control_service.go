package infrastructure

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	collectorDomain "github.com/samoilenko/sensorlog/collector/domain"
	"github.com/samoilenko/sensorlog/pkg/sensorlogv1"
)

// LoggingController is the part of the logging state machine the control
// API drives.
type LoggingController interface {
	Start() bool
	Stop() bool
	Status() collectorDomain.Status
}

// RelayStatsSource exposes the relay counters.
type RelayStatsSource interface {
	Stats() collectorDomain.RelayStats
}

// DefaultWatchBuffer is the number of acceleration messages a watcher can
// fall behind before it starts missing them.
const DefaultWatchBuffer = 16

// ControlService implements sensorlogv1.CollectorServiceHandler.
type ControlService struct {
	controller  LoggingController
	relay       RelayStatsSource
	hub         *TelemetryHub
	logger      collectorDomain.Logger
	watchBuffer int
}

// StartLogging handles the start-logging command. Starting an active
// collector is not an error; the response reports changed=false.
func (s *ControlService) StartLogging(
	_ context.Context,
	_ *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	changed := s.controller.Start()
	if !changed {
		s.logger.Debug("start-logging ignored: already logging")
	}
	return s.statusResponse(changed)
}

// StopLogging handles the stop-logging command. Stopping an idle
// collector is not an error; the response reports changed=false.
func (s *ControlService) StopLogging(
	_ context.Context,
	_ *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	changed := s.controller.Stop()
	if !changed {
		s.logger.Debug("stop-logging ignored: already idle")
	}
	return s.statusResponse(changed)
}

// GetStatus reports whether the collector is logging, for keep-alive
// collaborators and operators.
func (s *ControlService) GetStatus(
	_ context.Context,
	_ *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	return s.statusResponse(false)
}

// WatchAcceleration streams relay messages until the client goes away or
// the collector shuts down. Response headers are sent as soon as the
// watcher is subscribed, before any message.
func (s *ControlService) WatchAcceleration(
	ctx context.Context,
	_ *connect.Request[emptypb.Empty],
	stream *connect.ServerStream[structpb.Struct],
) error {
	messages, cancel := s.hub.Subscribe(s.watchBuffer)
	defer cancel()

	// headers go out now so the client sees the stream open while idle
	if err := stream.Send(nil); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			data, err := sensorlogv1.Acceleration{
				X:         msg.X,
				Y:         msg.Y,
				Z:         msg.Z,
				Timestamp: msg.Timestamp,
			}.ToStruct()
			if err != nil {
				return connect.NewError(connect.CodeInternal, err)
			}
			if err := stream.Send(data); err != nil {
				return err
			}
		}
	}
}

func (s *ControlService) statusResponse(changed bool) (*connect.Response[structpb.Struct], error) {
	status := s.controller.Status()
	relayStats := s.relay.Stats()

	sensors := make([]string, 0, len(status.ActiveKinds))
	for _, kind := range status.ActiveKinds {
		sensors = append(sensors, kind.String())
	}

	data, err := sensorlogv1.Status{
		State:         status.State.String(),
		Changed:       changed,
		ActiveSensors: sensors,
		LogPath:       status.LogPath,
		Sessions:      int64(status.Sessions),
		StartedAt:     status.StartedAt,
		Written:       status.Worker.Written,
		Failed:        status.Worker.Failed,
		Forwarded:     relayStats.Forwarded,
		Throttled:     relayStats.Throttled,
		Invalid:       relayStats.Invalid,
		Watchers:      int64(s.hub.Watchers()),
	}.ToStruct()
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(data), nil
}

// NewControlService creates the control API. watchBuffer falls back to
// DefaultWatchBuffer when not positive.
func NewControlService(
	controller LoggingController,
	relay RelayStatsSource,
	hub *TelemetryHub,
	watchBuffer int,
	logger collectorDomain.Logger,
) *ControlService {
	if watchBuffer <= 0 {
		watchBuffer = DefaultWatchBuffer
	}
	return &ControlService{
		controller:  controller,
		relay:       relay,
		hub:         hub,
		logger:      logger,
		watchBuffer: watchBuffer,
	}
}

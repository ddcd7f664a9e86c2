package sensorlogv1

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// ErrMalformedMessage is returned when a struct lacks a field or carries
// a field of the wrong type.
var ErrMalformedMessage = errors.New("malformed message")

// Acceleration is one message of the WatchAcceleration stream.
type Acceleration struct {
	X, Y, Z   float64
	Timestamp time.Time
}

// ToStruct encodes a into its wire form.
func (a Acceleration) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"x":         a.X,
		"y":         a.Y,
		"z":         a.Z,
		"timestamp": formatTime(a.Timestamp),
	})
}

// AccelerationFromStruct decodes a WatchAcceleration message.
func AccelerationFromStruct(s *structpb.Struct) (Acceleration, error) {
	var (
		a   Acceleration
		err error
	)
	fields := s.GetFields()
	if a.X, err = number(fields, "x"); err != nil {
		return Acceleration{}, err
	}
	if a.Y, err = number(fields, "y"); err != nil {
		return Acceleration{}, err
	}
	if a.Z, err = number(fields, "z"); err != nil {
		return Acceleration{}, err
	}
	if a.Timestamp, err = timestamp(fields, "timestamp"); err != nil {
		return Acceleration{}, err
	}
	return a, nil
}

// Status is the response of StartLogging, StopLogging and GetStatus.
// Changed reports whether the call moved the collector to another state.
type Status struct {
	State         string
	Changed       bool
	ActiveSensors []string
	LogPath       string
	Sessions      int64
	StartedAt     time.Time
	Written       uint64
	Failed        uint64
	Forwarded     uint64
	Throttled     uint64
	Invalid       uint64
	Watchers      int64
}

// ToStruct encodes s into its wire form.
func (s Status) ToStruct() (*structpb.Struct, error) {
	sensors := make([]any, 0, len(s.ActiveSensors))
	for _, name := range s.ActiveSensors {
		sensors = append(sensors, name)
	}

	return structpb.NewStruct(map[string]any{
		"state":          s.State,
		"changed":        s.Changed,
		"active_sensors": sensors,
		"log_path":       s.LogPath,
		"sessions":       float64(s.Sessions),
		"started_at":     formatTime(s.StartedAt),
		"written":        float64(s.Written),
		"failed":         float64(s.Failed),
		"forwarded":      float64(s.Forwarded),
		"throttled":      float64(s.Throttled),
		"invalid":        float64(s.Invalid),
		"watchers":       float64(s.Watchers),
	})
}

// StatusFromStruct decodes a status response.
func StatusFromStruct(st *structpb.Struct) (Status, error) {
	fields := st.GetFields()

	var (
		s   Status
		err error
	)
	if s.State, err = str(fields, "state"); err != nil {
		return Status{}, err
	}
	if s.LogPath, err = str(fields, "log_path"); err != nil {
		return Status{}, err
	}
	if s.StartedAt, err = timestamp(fields, "started_at"); err != nil {
		return Status{}, err
	}
	if v, ok := fields["changed"]; ok {
		s.Changed = v.GetBoolValue()
	}
	if v, ok := fields["active_sensors"]; ok {
		for _, item := range v.GetListValue().GetValues() {
			s.ActiveSensors = append(s.ActiveSensors, item.GetStringValue())
		}
	}

	counters := []struct {
		key    string
		assign func(float64)
	}{
		{"sessions", func(v float64) { s.Sessions = int64(v) }},
		{"written", func(v float64) { s.Written = uint64(v) }},
		{"failed", func(v float64) { s.Failed = uint64(v) }},
		{"forwarded", func(v float64) { s.Forwarded = uint64(v) }},
		{"throttled", func(v float64) { s.Throttled = uint64(v) }},
		{"invalid", func(v float64) { s.Invalid = uint64(v) }},
		{"watchers", func(v float64) { s.Watchers = int64(v) }},
	}
	for _, counter := range counters {
		v, err := number(fields, counter.key)
		if err != nil {
			return Status{}, err
		}
		counter.assign(v)
	}

	return s, nil
}

func number(fields map[string]*structpb.Value, key string) (float64, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrMalformedMessage, key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedMessage, key)
	}
	return n.NumberValue, nil
}

func str(fields map[string]*structpb.Value, key string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrMalformedMessage, key)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", ErrMalformedMessage, key)
	}
	return s.StringValue, nil
}

func timestamp(fields map[string]*structpb.Value, key string) (time.Time, error) {
	raw, err := str(fields, key)
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrMalformedMessage, key, err)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/samoilenko/sensorlog/pkg/clock"
)

func accelerationRecord(clk clock.Clock, x, y, z float64) SampleRecord {
	return NewSampleRecord(clk.Now(), Reading{Kind: KindAcceleration, Values: []float64{x, y, z}})
}

func TestTelemetryRelay_ForwardsAtMostOncePerInterval(t *testing.T) {
	clk := clock.Fake(testEpoch)
	subscriber := &recordingSubscriber{}
	relay := NewTelemetryRelay(clk, subscriber, &mockLogger{})

	// 100 samples, 10ms apart: one second of acceleration
	for i := 0; i < 100; i++ {
		v := float64(i)
		relay.Offer(accelerationRecord(clk, v, v+0.5, -v))
		clk.Advance(10 * time.Millisecond)
	}

	messages := subscriber.GetMessages()
	if len(messages) != 5 {
		t.Fatalf("expected 5 forwarded messages, got %d", len(messages))
	}

	for i, msg := range messages {
		want := float64(i * 20)
		if msg.X != want || msg.Y != want+0.5 || msg.Z != -want {
			t.Errorf("message %d: expected (%v, %v, %v), got (%v, %v, %v)",
				i, want, want+0.5, -want, msg.X, msg.Y, msg.Z)
		}
		wantTs := testEpoch.Add(time.Duration(i) * RelayInterval)
		if !msg.Timestamp.Equal(wantTs) {
			t.Errorf("message %d: expected timestamp %v, got %v", i, wantTs, msg.Timestamp)
		}
	}

	stats := relay.Stats()
	if stats.Forwarded != 5 || stats.Throttled != 95 || stats.Invalid != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestTelemetryRelay_FirstSampleForwarded(t *testing.T) {
	clk := clock.Fake(testEpoch)
	subscriber := &recordingSubscriber{}
	relay := NewTelemetryRelay(clk, subscriber, &mockLogger{})

	if !relay.Offer(accelerationRecord(clk, 1, 2, 3)) {
		t.Fatal("first sample must be forwarded")
	}
	if relay.Offer(accelerationRecord(clk, 4, 5, 6)) {
		t.Error("second sample at the same instant must be throttled")
	}

	clk.Advance(RelayInterval)
	if !relay.Offer(accelerationRecord(clk, 7, 8, 9)) {
		t.Error("sample exactly one interval later must be forwarded")
	}
}

func TestTelemetryRelay_NaNNeverForwarded(t *testing.T) {
	clk := clock.Fake(testEpoch)
	subscriber := &recordingSubscriber{}
	logger := &mockLogger{}
	relay := NewTelemetryRelay(clk, subscriber, logger)

	if relay.Offer(accelerationRecord(clk, math.NaN(), 1, 1)) {
		t.Fatal("NaN sample must not be forwarded")
	}

	// the rejected sample must not have consumed the window
	clk.Advance(10 * time.Millisecond)
	if !relay.Offer(accelerationRecord(clk, 1, 1, 1)) {
		t.Error("valid sample after a NaN one must be forwarded")
	}

	clk.Advance(RelayInterval)
	if relay.Offer(accelerationRecord(clk, 1, math.Inf(1), 1)) {
		t.Error("infinite sample must not be forwarded")
	}

	messages := subscriber.GetMessages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 forwarded message, got %d", len(messages))
	}
	for _, msg := range messages {
		if math.IsNaN(msg.X) || math.IsNaN(msg.Y) || math.IsNaN(msg.Z) {
			t.Errorf("NaN reached the subscriber: %+v", msg)
		}
	}

	if stats := relay.Stats(); stats.Invalid != 2 {
		t.Errorf("expected 2 invalid samples, got %d", stats.Invalid)
	}
	if len(logger.GetErrors()) != 0 {
		t.Errorf("invalid samples must not be logged as errors: %v", logger.GetErrors())
	}
}

func TestTelemetryRelay_RejectsScalarRecords(t *testing.T) {
	clk := clock.Fake(testEpoch)
	subscriber := &recordingSubscriber{}
	relay := NewTelemetryRelay(clk, subscriber, &mockLogger{})

	record := NewSampleRecord(clk.Now(), Reading{Kind: KindHeartRate, Values: []float64{60}})
	if relay.Offer(record) {
		t.Error("scalar record must not be forwarded")
	}
	if len(subscriber.GetMessages()) != 0 {
		t.Error("subscriber must not receive scalar records")
	}
}

func TestIntervalLimiter_ReportsRemainingDelay(t *testing.T) {
	clk := clock.Fake(testEpoch)
	limiter := NewIntervalLimiter(clk, RelayInterval)
	record := accelerationRecord(clk, 0, 0, 0)

	if err := limiter.Apply(&record); err != nil {
		t.Fatalf("first record rejected: %v", err)
	}

	clk.Advance(50 * time.Millisecond)
	err := limiter.Apply(&record)

	var rateLimitError *RateLimitError
	if !errors.As(err, &rateLimitError) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateLimitError.Delay != 150*time.Millisecond {
		t.Errorf("expected delay 150ms, got %v", rateLimitError.Delay)
	}
}

func TestFiniteValuesValidator(t *testing.T) {
	validator := NewFiniteValuesValidator()

	valid := NewSampleRecord(testEpoch, Reading{Kind: KindGravity, Values: []float64{0, 0, 9.81}})
	if err := validator.Apply(&valid); err != nil {
		t.Errorf("unexpected error for finite values: %v", err)
	}

	padded := NewSampleRecord(testEpoch, Reading{Kind: KindGravity, Values: []float64{9.81}})
	if err := validator.Apply(&padded); !errors.Is(err, ErrInvalidReading) {
		t.Errorf("expected ErrInvalidReading for padded record, got %v", err)
	}
}

func BenchmarkTelemetryRelay_Offer(b *testing.B) {
	clk := clock.Fake(testEpoch)
	relay := NewTelemetryRelay(clk, &recordingSubscriber{}, &mockLogger{})
	record := accelerationRecord(clk, 0.1, 0.2, 9.8)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		relay.Offer(record)
	}
}

package domain

import (
	"errors"
	"testing"

	"github.com/samoilenko/sensorlog/pkg/clock"
)

func TestSamplingWorker_WritesInOrderAndRelaysAcceleration(t *testing.T) {
	writer := &memoryWriter{}
	relay := &recordingRelay{}
	worker := NewSamplingWorker(writer, relay, clock.Fake(testEpoch), 16, &mockLogger{})

	if !worker.EnsureStarted() {
		t.Fatal("expected a new worker goroutine")
	}
	worker.Deliver(Reading{Kind: KindAcceleration, Values: []float64{1, 2, 3}})
	worker.Deliver(Reading{Kind: KindHeartRate, Values: []float64{70}})
	worker.Deliver(Reading{Kind: KindAcceleration, Values: []float64{4, 5, 6}})
	worker.Stop()

	records := writer.GetRecords()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	order := []SensorKind{KindAcceleration, KindHeartRate, KindAcceleration}
	for i, record := range records {
		if record.Kind != order[i] {
			t.Errorf("record %d: expected %s, got %s", i, order[i], record.Kind)
		}
		if !record.Timestamp.Equal(testEpoch) {
			t.Errorf("record %d: expected timestamp from the clock, got %v", i, record.Timestamp)
		}
	}

	offered := relay.GetOffered()
	if len(offered) != 2 {
		t.Fatalf("expected 2 records offered to the relay, got %d", len(offered))
	}
	for _, record := range offered {
		if record.Kind != KindAcceleration {
			t.Errorf("non-acceleration record offered to the relay: %s", record.Kind)
		}
	}

	if stats := worker.Stats(); stats.Written != 3 || stats.Failed != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestSamplingWorker_StopDrainsQueue(t *testing.T) {
	writer := &memoryWriter{block: make(chan struct{})}
	worker := NewSamplingWorker(writer, nil, clock.Fake(testEpoch), 16, &mockLogger{})
	worker.EnsureStarted()

	for i := 0; i < 5; i++ {
		if !worker.Deliver(Reading{Kind: KindStepCounter, Values: []float64{float64(i)}}) {
			t.Fatalf("delivery %d rejected", i)
		}
	}

	stopped := make(chan struct{})
	go func() {
		worker.Stop()
		close(stopped)
	}()

	if !waitFor(func() bool { return !worker.IsRunning() }) {
		t.Fatal("worker did not begin stopping")
	}
	if worker.Deliver(Reading{Kind: KindStepCounter, Values: []float64{99}}) {
		t.Error("delivery after Stop must be rejected")
	}

	close(writer.block)
	<-stopped

	records := writer.GetRecords()
	if len(records) != 5 {
		t.Fatalf("expected all 5 queued readings written, got %d", len(records))
	}
	for i, record := range records {
		if v, _ := record.Value(0); v != float64(i) {
			t.Errorf("record %d: expected value %d, got %v", i, i, v)
		}
	}
}

func TestSamplingWorker_Restart(t *testing.T) {
	writer := &memoryWriter{}
	worker := NewSamplingWorker(writer, nil, clock.Fake(testEpoch), 4, &mockLogger{})

	worker.EnsureStarted()
	if worker.EnsureStarted() {
		t.Error("EnsureStarted on a running worker must not start another goroutine")
	}
	worker.Stop()
	worker.Stop()

	if worker.IsRunning() {
		t.Fatal("worker still running after Stop")
	}
	if !worker.EnsureStarted() {
		t.Fatal("stopped worker must be recreated")
	}
	if !worker.Deliver(Reading{Kind: KindHeartRate, Values: []float64{80}}) {
		t.Error("recreated worker must accept readings")
	}
	worker.Stop()

	if len(writer.GetRecords()) != 1 {
		t.Errorf("expected 1 record, got %d", len(writer.GetRecords()))
	}
}

func TestSamplingWorker_WriterErrorIsCounted(t *testing.T) {
	writer := &memoryWriter{err: errors.New("disk full")}
	relay := &recordingRelay{}
	logger := &mockLogger{}
	worker := NewSamplingWorker(writer, relay, clock.Fake(testEpoch), 4, logger)
	worker.EnsureStarted()

	worker.Deliver(Reading{Kind: KindAcceleration, Values: []float64{1, 1, 1}})
	worker.Deliver(Reading{Kind: KindAcceleration, Values: []float64{2, 2, 2}})
	worker.Stop()

	if stats := worker.Stats(); stats.Failed != 2 || stats.Written != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if len(logger.GetErrors()) != 2 {
		t.Errorf("expected 2 error logs, got %v", logger.GetErrors())
	}
	if len(relay.GetOffered()) != 2 {
		t.Errorf("a failed write must not keep the sample from the relay")
	}
}

func TestSamplingWorker_SurvivesWriterPanic(t *testing.T) {
	writer := &memoryWriter{panicOn: KindGravity}
	logger := &mockLogger{}
	worker := NewSamplingWorker(writer, nil, clock.Fake(testEpoch), 4, logger)
	worker.EnsureStarted()

	worker.Deliver(Reading{Kind: KindGravity, Values: []float64{0, 0, 9.8}})
	worker.Deliver(Reading{Kind: KindHeartRate, Values: []float64{65}})
	worker.Stop()

	records := writer.GetRecords()
	if len(records) != 1 || records[0].Kind != KindHeartRate {
		t.Errorf("expected only the heart rate record, got %v", records)
	}
	if len(logger.GetErrors()) != 1 {
		t.Errorf("expected the panic to be logged, got %v", logger.GetErrors())
	}
	if stats := worker.Stats(); stats.Written != 1 || stats.Failed != 1 {
		t.Errorf("expected 1 written and 1 failed, got %+v", stats)
	}
}

func TestSamplingWorker_IgnoresUnknownKind(t *testing.T) {
	writer := &memoryWriter{}
	worker := NewSamplingWorker(writer, nil, clock.Fake(testEpoch), 4, &mockLogger{})
	worker.EnsureStarted()

	worker.Deliver(Reading{Kind: SensorKind(99), Values: []float64{1}})
	worker.Stop()

	if len(writer.GetRecords()) != 0 {
		t.Error("reading of an unknown kind must not be written")
	}
}

func TestSamplingWorker_DeliverBeforeStart(t *testing.T) {
	worker := NewSamplingWorker(&memoryWriter{}, nil, clock.Fake(testEpoch), 0, &mockLogger{})

	if worker.Deliver(Reading{Kind: KindHeartRate, Values: []float64{1}}) {
		t.Error("delivery to a worker that never started must be rejected")
	}
	if worker.capacity != DefaultQueueCapacity {
		t.Errorf("expected default capacity, got %d", worker.capacity)
	}
}

func BenchmarkSamplingWorker_Deliver(b *testing.B) {
	worker := NewSamplingWorker(&memoryWriter{}, nil, clock.Fake(testEpoch), 1024, &mockLogger{})
	worker.EnsureStarted()
	reading := Reading{Kind: KindAcceleration, Values: []float64{0.1, 0.2, 9.8}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		worker.Deliver(reading)
	}
	b.StopTimer()
	worker.Stop()
}

package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var testEpoch = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// Mock logger for testing
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockLogger) Error(msg string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf(msg, args...))
}

func (m *mockLogger) Info(_ string, _ ...interface{}) {}

func (m *mockLogger) Debug(_ string, _ ...interface{}) {}

func (m *mockLogger) GetMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.messages...)
}

// Test helper to create temporary file
func createTempFile(tb testing.TB) (string, func()) {
	tb.Helper()
	tmpDir, err := os.MkdirTemp("", "csvwriter_test")
	if err != nil {
		tb.Fatalf("Failed to create temp dir: %v", err)
	}

	filePath := filepath.Join(tmpDir, "sensor_log.csv")
	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}

	return filePath, cleanup
}

func readLines(tb testing.TB, path string) []string {
	tb.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("Failed to read file: %v", err)
	}
	text := string(content)
	if text == "" {
		return nil
	}
	if text[len(text)-1] != '\n' {
		tb.Fatalf("file does not end with a newline: %q", text)
	}
	var lines []string
	start := 0
	for i, r := range text {
		if r == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return lines
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

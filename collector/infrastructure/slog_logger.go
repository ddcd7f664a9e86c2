package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// ParseLogFormat validates a log format name.
func ParseLogFormat(value string) (LogFormat, error) {
	switch format := LogFormat(strings.ToLower(value)); format {
	case LogFormatText, LogFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unknown log format %q (expected text or json)", value)
	}
}

// ParseLogLevel parses debug, info, warn or error.
func ParseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("unknown log level %q: %w", value, err)
	}
	return level, nil
}

// SlogLogger implements the domain Logger on top of log/slog. Messages
// are formatted before they reach the handler, so printf-style callers
// keep working.
type SlogLogger struct {
	logger *slog.Logger
}

func (l *SlogLogger) log(level slog.Level, msg string, args []interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.Log(ctx, level, msg)
}

// Debug logs at debug level.
func (l *SlogLogger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, msg, args)
}

// Info logs at info level.
func (l *SlogLogger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, msg, args)
}

// Error logs at error level.
func (l *SlogLogger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, msg, args)
}

// With returns a logger that adds the given attributes to every record.
func (l *SlogLogger) With(args ...any) *SlogLogger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

// NewSlogLogger creates a logger writing to w.
func NewSlogLogger(w io.Writer, format LogFormat, level slog.Level) *SlogLogger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &SlogLogger{logger: slog.New(handler)}
}

// Package infrastructure provides concrete implementations of domain abstractions:
// the CSV sensor log, the simulated sensor host, configuration, logging and
// the Connect control API.
package infrastructure

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	collectorDomain "github.com/samoilenko/sensorlog/collector/domain"
)

// TimestampLayout is the layout of the timestamp column, in local time.
const TimestampLayout = "2006-01-02 15:04:05.000"

// LogDirName is the directory created under the storage root.
const LogDirName = "sensorLog"

var csvHeader = []string{"timestamp", "source", "sensor_type", "value1", "value2", "value3", "extra"}

// CSVAppendWriter appends sample records to a CSV file. It holds one
// append handle that is opened on first use and reopened after an error.
type CSVAppendWriter struct {
	path   string
	fsync  bool
	logger collectorDomain.Logger

	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// Path returns the file the writer appends to.
func (cw *CSVAppendWriter) Path() string {
	return cw.path
}

// EnsureHeader opens the file ahead of the first sample. The header is
// written by open, so calling it is optional.
func (cw *CSVAppendWriter) EnsureHeader() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	return cw.open()
}

// Append writes one line for record. The line is flushed to the file
// before Append returns, and synced to disk when fsync is enabled.
func (cw *CSVAppendWriter) Append(record collectorDomain.SampleRecord) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if err := cw.open(); err != nil {
		return err
	}

	if err := cw.writeLine(formatRecord(record)); err != nil {
		cw.drop()
		return &collectorDomain.IOError{Op: "append", Path: cw.path, Err: err}
	}

	return nil
}

// Close flushes and closes the file. Calling Close on a closed writer
// does nothing.
func (cw *CSVAppendWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.f == nil {
		return nil
	}

	cw.w.Flush()
	flushErr := cw.w.Error()
	closeErr := cw.f.Close()
	cw.f = nil
	cw.w = nil

	if err := errors.Join(flushErr, closeErr); err != nil {
		return &collectorDomain.IOError{Op: "close", Path: cw.path, Err: err}
	}
	return nil
}

// open returns the append handle, opening it when needed. A new or empty
// file gets the header before anything else is written to it.
func (cw *CSVAppendWriter) open() error {
	if cw.f != nil {
		return nil
	}

	f, err := os.OpenFile(cw.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return &collectorDomain.IOError{Op: "open", Path: cw.path, Err: err}
	}
	cw.f = f
	cw.w = csv.NewWriter(f)

	info, err := f.Stat()
	if err != nil {
		cw.drop()
		return &collectorDomain.IOError{Op: "stat", Path: cw.path, Err: err}
	}
	if info.Size() > 0 {
		return nil
	}

	if err := cw.writeLine(csvHeader); err != nil {
		cw.drop()
		return &collectorDomain.IOError{Op: "write header", Path: cw.path, Err: err}
	}
	cw.logger.Debug("header written to %s", cw.path)

	return nil
}

func (cw *CSVAppendWriter) writeLine(fields []string) error {
	if err := cw.w.Write(fields); err != nil {
		return err
	}
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return err
	}
	if cw.fsync {
		return cw.f.Sync()
	}
	return nil
}

// drop closes the handle after a failure so the next call reopens it.
func (cw *CSVAppendWriter) drop() {
	if cw.f == nil {
		return
	}
	if err := cw.f.Close(); err != nil {
		cw.logger.Error("error on closing file: %s", err.Error())
	}
	cw.f = nil
	cw.w = nil
}

func formatRecord(record collectorDomain.SampleRecord) []string {
	fields := make([]string, 0, len(csvHeader))
	fields = append(fields,
		record.Timestamp.Local().Format(TimestampLayout),
		record.Source,
		record.Kind.String(),
	)
	for i := 0; i < 3; i++ {
		if v, ok := record.Value(i); ok {
			fields = append(fields, strconv.FormatFloat(v, 'g', -1, 64))
		} else {
			fields = append(fields, "")
		}
	}
	return append(fields, record.Extra)
}

// NewLogFilePath creates the log directory under root and returns the
// path of the log file for a process started at now.
func NewLogFilePath(root collectorDomain.StorageRoot, now time.Time) (string, error) {
	dir := filepath.Join(string(root), LogDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error on creating log directory: %w", err)
	}

	return filepath.Join(dir, "sensor_log_"+now.Format("20060102_150405")+".csv"), nil
}

// NewCSVAppendWriter creates a writer for path. No file is touched until
// EnsureHeader or Append is called.
func NewCSVAppendWriter(path string, fsync bool, logger collectorDomain.Logger) *CSVAppendWriter {
	return &CSVAppendWriter{
		path:   path,
		fsync:  fsync,
		logger: logger,
	}
}

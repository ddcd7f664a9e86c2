// Package infrastructure provides the collector client used by sensorlogctl.
package infrastructure

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/samoilenko/sensorlog/pkg/clock"
	"github.com/samoilenko/sensorlog/pkg/sensorlogv1"
)

// errStreamClosed is reported when the collector ends a watch stream
// without an error, for example on shutdown.
var errStreamClosed = errors.New("stream closed by collector")

// NewH2CClient returns an HTTP client speaking cleartext HTTP/2, as the
// collector serves the control API over h2c.
func NewH2CClient() *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var dialer net.Dialer
				return dialer.DialContext(ctx, network, addr)
			},
		},
	}
}

// AccelerationWatcher follows the collector's acceleration stream and
// reopens it with exponential backoff when it breaks.
type AccelerationWatcher struct {
	client       sensorlogv1.CollectorServiceClient
	clock        clock.Clock
	logger       *slog.Logger
	initialDelay time.Duration
	maxDelay     time.Duration
}

// Watch calls handle for every received message until ctx is done. It
// only returns ctx.Err().
func (w *AccelerationWatcher) Watch(ctx context.Context, handle func(sensorlogv1.Acceleration)) error {
	delay := w.initialDelay

	for {
		received, err := w.watchOnce(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if received {
			delay = w.initialDelay
		}

		w.logger.Warn("acceleration stream ended, reconnecting", "error", err, "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.clock.After(delay):
		}

		delay *= 2
		if delay > w.maxDelay {
			delay = w.maxDelay
		}
	}
}

// watchOnce consumes one stream. It reports whether at least one message
// arrived, which resets the backoff.
func (w *AccelerationWatcher) watchOnce(ctx context.Context, handle func(sensorlogv1.Acceleration)) (bool, error) {
	stream, err := w.client.WatchAcceleration(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return false, err
	}
	defer func() {
		_ = stream.Close()
	}()

	received := false
	for stream.Receive() {
		msg, err := sensorlogv1.AccelerationFromStruct(stream.Msg())
		if err != nil {
			w.logger.Warn("skipping malformed message", "error", err)
			continue
		}
		received = true
		handle(msg)
	}

	if err := stream.Err(); err != nil {
		return received, err
	}
	return received, errStreamClosed
}

// NewAccelerationWatcher creates a watcher retrying after 1s, doubling up
// to 10s.
func NewAccelerationWatcher(
	client sensorlogv1.CollectorServiceClient,
	clk clock.Clock,
	logger *slog.Logger,
) *AccelerationWatcher {
	return &AccelerationWatcher{
		client:       client,
		clock:        clk,
		logger:       logger,
		initialDelay: time.Second,
		maxDelay:     10 * time.Second,
	}
}

// Sensorlogctl controls a running collector.
//
// Usage: sensorlogctl [--address=http://127.0.0.1:8081] start|stop|status|watch
//
// Commands:
//
//	start: start logging (no-op when already logging)
//	stop: stop logging (no-op when idle)
//	status: print the collector state
//	watch: print live acceleration until interrupted, reconnecting as needed
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	ctlInfrastructure "github.com/samoilenko/sensorlog/ctl/infrastructure"
	"github.com/samoilenko/sensorlog/pkg/clock"
	"github.com/samoilenko/sensorlog/pkg/sensorlogv1"
)

type unaryCall func(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error)

func printStatus(w io.Writer, status sensorlogv1.Status) {
	fmt.Fprintf(w, "state:      %s\n", status.State)
	fmt.Fprintf(w, "log file:   %s\n", status.LogPath)
	fmt.Fprintf(w, "sessions:   %d\n", status.Sessions)
	if !status.StartedAt.IsZero() {
		fmt.Fprintf(w, "started at: %s\n", status.StartedAt.Local().Format(time.DateTime))
	}
	if len(status.ActiveSensors) > 0 {
		fmt.Fprintf(w, "sensors:    %s\n", strings.Join(status.ActiveSensors, ", "))
	}
	fmt.Fprintf(w, "samples:    %d written, %d failed\n", status.Written, status.Failed)
	fmt.Fprintf(w, "relay:      %d forwarded, %d throttled, %d invalid, %d watchers\n",
		status.Forwarded, status.Throttled, status.Invalid, status.Watchers)
}

func callUnary(ctx context.Context, timeout time.Duration, call unaryCall) (sensorlogv1.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := call(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return sensorlogv1.Status{}, err
	}
	return sensorlogv1.StatusFromStruct(resp.Msg)
}

func run(ctx context.Context, command string, client sensorlogv1.CollectorServiceClient, timeout time.Duration, logger *slog.Logger) error {
	var call unaryCall
	switch command {
	case "start":
		call = client.StartLogging
	case "stop":
		call = client.StopLogging
	case "status":
		call = client.GetStatus
	case "watch":
		watcher := ctlInfrastructure.NewAccelerationWatcher(client, clock.Real(), logger)
		err := watcher.Watch(ctx, func(msg sensorlogv1.Acceleration) {
			fmt.Printf("%s  x=%9.4f  y=%9.4f  z=%9.4f\n",
				msg.Timestamp.Local().Format("15:04:05.000"), msg.X, msg.Y, msg.Z)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	status, err := callUnary(ctx, timeout, call)
	if err != nil {
		return err
	}
	if command != "status" && !status.Changed {
		fmt.Printf("collector already %s\n", status.State)
	}
	printStatus(os.Stdout, status)
	return nil
}

func main() {
	flagSet := pflag.NewFlagSet("sensorlogctl", pflag.ContinueOnError)
	address := flagSet.String("address", "http://127.0.0.1:8081", "collector base URL")
	timeout := flagSet.Duration("timeout", 5*time.Second, "timeout for start, stop and status")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sensorlogctl [flags] start|stop|status|watch\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		os.Exit(2)
	}

	ctx, finish := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer finish()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := sensorlogv1.NewCollectorServiceClient(
		ctlInfrastructure.NewH2CClient(),
		*address,
		connect.WithGRPC(),
	)

	if err := run(ctx, flagSet.Arg(0), client, *timeout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

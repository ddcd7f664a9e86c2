// Collector records device sensor readings to a CSV file and relays a
// throttled view of the acceleration channel to live watchers.
//
// Usage: collector --storage-root=./data --bind-address=127.0.0.1:8081 --autostart
//
// Flags:
//
//	--config: YAML file with the same keys as the flags (bind_address, storage_root, ...)
//	--bind-address: control API bind address
//	--storage-root: directory under which sensorLog/ is created
//	--queue-capacity: readings the sampling worker holds before deliveries block
//	--sensors: sensor kinds the simulated host provides
//	--autostart: start logging as soon as the collector is up
//	--fsync: sync the log file to disk after every sample
//	--log-level, --log-format: logging of the collector itself
//
// Explicitly set flags take precedence over the config file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/pflag"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	collectorDomain "github.com/samoilenko/sensorlog/collector/domain"
	collectorInfrastructure "github.com/samoilenko/sensorlog/collector/infrastructure"
	"github.com/samoilenko/sensorlog/pkg/clock"
	"github.com/samoilenko/sensorlog/pkg/sensorlogv1"
)

const shutdownTimeout = 5 * time.Second

func endWithError(flagSet *pflag.FlagSet, err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
	flagSet.Usage()
	os.Exit(1)
}

func main() {
	ctx, finish := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer finish()

	flagSet := collectorInfrastructure.NewFlagSet("collector")
	config, err := collectorInfrastructure.GetConfig(flagSet, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		endWithError(flagSet, err)
	}

	logger := collectorInfrastructure.NewSlogLogger(os.Stdout, config.LogFormat, config.LogLevel)
	clk := clock.Real()

	logger.Info("Creating services...")
	logPath, err := collectorInfrastructure.NewLogFilePath(config.StorageRoot, clk.Now())
	if err != nil {
		logger.Error("%s", err.Error())
		os.Exit(1)
	}

	writer := collectorInfrastructure.NewCSVAppendWriter(logPath, config.Fsync, logger.With("component", "writer"))
	if err := writer.EnsureHeader(); err != nil {
		// not fatal: every append retries the open
		logger.Error("error on preparing log file: %s", err.Error())
	}
	logger.Info("sensor log file: %s", logPath)

	host := collectorInfrastructure.NewSimulatedHost(config.Sensors, clk, logger.With("component", "host"))
	hub := collectorInfrastructure.NewTelemetryHub()
	relay := collectorDomain.NewTelemetryRelay(clk, hub, logger.With("component", "relay"))
	worker := collectorDomain.NewSamplingWorker(
		writer,
		relay,
		clk,
		config.QueueCapacity,
		logger.With("component", "worker"),
	)
	registry := collectorDomain.NewSensorRegistry(host, logger.With("component", "registry"))
	machine := collectorDomain.NewLoggingStateMachine(registry, worker, clk, logPath, logger)

	control := collectorInfrastructure.NewControlService(
		machine,
		relay,
		hub,
		collectorInfrastructure.DefaultWatchBuffer,
		logger,
	)
	handlerInterceptors := connect.WithInterceptors(
		collectorInfrastructure.NewPanicRecoveryInterceptor(logger.With("component", "api")),
	)

	path, handler := sensorlogv1.NewCollectorServiceHandler(control, handlerInterceptors)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	server := &http.Server{
		Addr:        string(config.BindAddress),
		Handler:     h2c.NewHandler(mux, &http2.Server{}),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	if config.Autostart {
		machine.Start()
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		logger.Info("Shutting down control API...")
		// ends open watch streams so Shutdown does not wait for them
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error: %s", err.Error())
		}
	}()

	logger.Info("Listening on %s", config.BindAddress)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("listenAndServe error: %s", err.Error())
		finish()
	}
	wg.Wait()

	logger.Info("stopping logging...")
	machine.Shutdown()
	host.Close()
	if err := writer.Close(); err != nil {
		logger.Error("error on closing log file: %s", err.Error())
	}

	logger.Info("All components stopped gracefully")
}

// Package sensorlogv1 defines the sensorlog.v1.CollectorService API served
// over Connect. Requests and responses are protobuf well-known types, so
// the service needs no generated message code.
package sensorlogv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// CollectorServiceName is the fully-qualified name of the service.
const CollectorServiceName = "sensorlog.v1.CollectorService"

// Fully-qualified procedure names, used as HTTP paths.
const (
	CollectorServiceStartLoggingProcedure      = "/sensorlog.v1.CollectorService/StartLogging"
	CollectorServiceStopLoggingProcedure       = "/sensorlog.v1.CollectorService/StopLogging"
	CollectorServiceGetStatusProcedure         = "/sensorlog.v1.CollectorService/GetStatus"
	CollectorServiceWatchAccelerationProcedure = "/sensorlog.v1.CollectorService/WatchAcceleration"
)

// CollectorServiceHandler is implemented by the collector.
type CollectorServiceHandler interface {
	StartLogging(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error)
	StopLogging(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error)
	GetStatus(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error)
	WatchAcceleration(context.Context, *connect.Request[emptypb.Empty], *connect.ServerStream[structpb.Struct]) error
}

// NewCollectorServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and
// the handler itself.
func NewCollectorServiceHandler(svc CollectorServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	startLogging := connect.NewUnaryHandler(
		CollectorServiceStartLoggingProcedure,
		svc.StartLogging,
		opts...,
	)
	stopLogging := connect.NewUnaryHandler(
		CollectorServiceStopLoggingProcedure,
		svc.StopLogging,
		opts...,
	)
	getStatus := connect.NewUnaryHandler(
		CollectorServiceGetStatusProcedure,
		svc.GetStatus,
		connect.WithIdempotency(connect.IdempotencyNoSideEffects),
		connect.WithHandlerOptions(opts...),
	)
	watchAcceleration := connect.NewServerStreamHandler(
		CollectorServiceWatchAccelerationProcedure,
		svc.WatchAcceleration,
		opts...,
	)

	prefix := "/" + CollectorServiceName + "/"
	return prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CollectorServiceStartLoggingProcedure:
			startLogging.ServeHTTP(w, r)
		case CollectorServiceStopLoggingProcedure:
			stopLogging.ServeHTTP(w, r)
		case CollectorServiceGetStatusProcedure:
			getStatus.ServeHTTP(w, r)
		case CollectorServiceWatchAccelerationProcedure:
			watchAcceleration.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// CollectorServiceClient is a client for the collector.
type CollectorServiceClient interface {
	StartLogging(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error)
	StopLogging(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error)
	GetStatus(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error)
	WatchAcceleration(context.Context, *connect.Request[emptypb.Empty]) (*connect.ServerStreamForClient[structpb.Struct], error)
}

type collectorServiceClient struct {
	startLogging      *connect.Client[emptypb.Empty, structpb.Struct]
	stopLogging       *connect.Client[emptypb.Empty, structpb.Struct]
	getStatus         *connect.Client[emptypb.Empty, structpb.Struct]
	watchAcceleration *connect.Client[emptypb.Empty, structpb.Struct]
}

func (c *collectorServiceClient) StartLogging(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	return c.startLogging.CallUnary(ctx, req)
}

func (c *collectorServiceClient) StopLogging(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	return c.stopLogging.CallUnary(ctx, req)
}

func (c *collectorServiceClient) GetStatus(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	return c.getStatus.CallUnary(ctx, req)
}

func (c *collectorServiceClient) WatchAcceleration(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.ServerStreamForClient[structpb.Struct], error) {
	return c.watchAcceleration.CallServerStream(ctx, req)
}

// NewCollectorServiceClient constructs a client for the service at baseURL
// (for example, http://127.0.0.1:8081).
func NewCollectorServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CollectorServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &collectorServiceClient{
		startLogging: connect.NewClient[emptypb.Empty, structpb.Struct](
			httpClient,
			baseURL+CollectorServiceStartLoggingProcedure,
			opts...,
		),
		stopLogging: connect.NewClient[emptypb.Empty, structpb.Struct](
			httpClient,
			baseURL+CollectorServiceStopLoggingProcedure,
			opts...,
		),
		getStatus: connect.NewClient[emptypb.Empty, structpb.Struct](
			httpClient,
			baseURL+CollectorServiceGetStatusProcedure,
			connect.WithIdempotency(connect.IdempotencyNoSideEffects),
			connect.WithClientOptions(opts...),
		),
		watchAcceleration: connect.NewClient[emptypb.Empty, structpb.Struct](
			httpClient,
			baseURL+CollectorServiceWatchAccelerationProcedure,
			opts...,
		),
	}
}

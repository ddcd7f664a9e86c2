package infrastructure

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"

	collectorDomain "github.com/samoilenko/sensorlog/collector/domain"
)

var errInternal = errors.New("internal server error")

// PanicRecoveryInterceptor is a Connect interceptor that catches panics in
// control API handlers and converts them to CodeInternal errors instead of
// crashing the collector. Every handled call is logged at debug level.
type PanicRecoveryInterceptor struct {
	logger collectorDomain.Logger
}

func (i *PanicRecoveryInterceptor) recoverPanic(procedure string, err *error) {
	if rec := recover(); rec != nil {
		i.logger.Error("panic in handler %s. Panic: %v", procedure, rec)
		*err = connect.NewError(connect.CodeInternal, errInternal)
	}
}

// WrapUnary wraps unary handlers such as StartLogging and GetStatus.
func (i *PanicRecoveryInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return connect.UnaryFunc(func(
		ctx context.Context,
		req connect.AnyRequest,
	) (resp connect.AnyResponse, err error) {
		procedure := req.Spec().Procedure
		started := time.Now()
		defer func() {
			i.logger.Debug("%s handled in %s", procedure, time.Since(started))
		}()
		defer i.recoverPanic(procedure, &err)

		resp, err = next(ctx, req)
		return resp, err
	})
}

// WrapStreamingClient leaves client connections untouched.
func (i *PanicRecoveryInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler wraps the acceleration watch stream.
func (i *PanicRecoveryInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return connect.StreamingHandlerFunc(func(
		ctx context.Context,
		conn connect.StreamingHandlerConn,
	) (err error) {
		procedure := conn.Spec().Procedure
		i.logger.Debug("%s stream opened by %s", procedure, conn.Peer().Addr)
		defer func() {
			i.logger.Debug("%s stream closed", procedure)
		}()
		defer i.recoverPanic(procedure, &err)

		return next(ctx, conn)
	})
}

// NewPanicRecoveryInterceptor creates a new instance of PanicRecoveryInterceptor.
func NewPanicRecoveryInterceptor(logger collectorDomain.Logger) *PanicRecoveryInterceptor {
	return &PanicRecoveryInterceptor{
		logger: logger,
	}
}

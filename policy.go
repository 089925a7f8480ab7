package grpcprom

import (
	"context"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

// exceptionPolicy decides what happens when something other than an
// RPC-level error escapes the instrumented region of a call. The
// default is to re-raise: an instrumentation bug fails the call loudly.
// With skip enabled the failure is suppressed (optionally logged) and
// the call degrades to the uninstrumented behavior, returning whatever
// response was already produced or re-invoking the original handler
// once more. Metrics for that one call may be lost; the service is not.
type exceptionPolicy struct {
	skip bool
	log  bool
}

// recoverUnary resolves a recovered panic for a unary call. produced is
// the response the handler had already returned, if any.
func (p exceptionPolicy) recoverUnary(ctx context.Context, req interface{}, handler grpc.UnaryHandler, produced interface{}, cause interface{}) (interface{}, error) {
	if !p.skip {
		panic(cause)
	}
	if p.log {
		logrus.Errorf("grpcprom: suppressed panic during unary call instrumentation: %v", cause)
	}
	if produced != nil {
		return produced, nil
	}
	return handler(ctx, req)
}

// recoverStream resolves a recovered panic for a streaming call by
// re-invoking the handler once on the raw, uninstrumented stream.
// Messages consumed before the failure are gone; this is a best-effort
// availability trade the operator opted into.
func (p exceptionPolicy) recoverStream(srv interface{}, ss grpc.ServerStream, handler grpc.StreamHandler, cause interface{}) error {
	if !p.skip {
		panic(cause)
	}
	if p.log {
		logrus.Errorf("grpcprom: suppressed panic during stream call instrumentation: %v", cause)
	}
	return handler(srv, ss)
}

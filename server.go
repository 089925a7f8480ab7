package grpcprom

import (
	"context"

	"google.golang.org/grpc"
)

// UnaryServerInterceptor returns an interceptor that instruments
// unary/unary calls. The call is counted as started before the handler
// runs, handled with its resolved status code after it returns, and its
// latency observed whether it succeeded or failed. The handler's
// response and error reach the transport unchanged; an absent handler
// is passed through, never fabricated.
func (m *ServerMetrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		if handler == nil {
			return nil, nil
		}

		service, method := splitMethodName(info.FullMethod)
		report := m.newCallReport(typeUnary, service, method)

		var produced interface{}
		defer func() {
			if cause := recover(); cause != nil {
				resp, err = m.policy.recoverUnary(ctx, req, handler, produced, cause)
			}
		}()
		// Registered after the recovery above so latency is still
		// observed before a panic reaches the policy, matching the
		// ordering for normal completion.
		defer report.observeHandlingTime()

		report.incStarted()

		resp, err = handler(ctx, req)
		produced = resp

		report.incHandled(resolveStatus(ctx, err))
		return resp, err
	}
}

// StreamServerInterceptor returns an interceptor that instruments
// streaming calls. Streamed request messages are counted as they are
// received and streamed response messages as they are sent, both
// exactly at consumption. A non-streaming request is counted as
// started instead of per message; a call with a non-streaming response
// is additionally counted as handled with its resolved status and its
// latency observed. Calls with a streaming response are deliberately
// not counted as handled, since the stream is not drained when the
// handler is entered; their outcome shows up in the message counters.
//
// With UnaryOnly set the original handler runs on the raw stream,
// completely uninstrumented.
func (m *ServerMetrics) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		if handler == nil {
			return nil
		}
		if m.unaryOnly {
			return handler(srv, ss)
		}

		service, method := splitMethodName(info.FullMethod)
		report := m.newCallReport(streamRPCType(info), service, method)

		defer func() {
			if cause := recover(); cause != nil {
				err = m.policy.recoverStream(srv, ss, handler, cause)
			}
		}()
		if !info.IsServerStream {
			defer report.observeHandlingTime()
		}

		wrapped := &monitoredServerStream{ServerStream: ss}
		if info.IsClientStream {
			wrapped.received = report.receivedCounter()
		} else {
			report.incStarted()
		}
		if info.IsServerStream {
			wrapped.sent = report.sentCounter()
		}

		err = handler(srv, wrapped)

		if !info.IsServerStream {
			report.incHandled(resolveStatus(ss.Context(), err))
		}
		return err
	}
}

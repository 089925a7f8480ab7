package grpcprom

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func TestPolicyReRaisesByDefault(t *testing.T) {
	p := exceptionPolicy{skip: false, log: true}

	assert.PanicsWithValue(t, "instrumentation bug", func() {
		p.recoverUnary(context.Background(), nil, nil, nil, "instrumentation bug")
	})
	assert.PanicsWithValue(t, "instrumentation bug", func() {
		p.recoverStream(nil, nil, nil, "instrumentation bug")
	})
}

func TestPolicyReturnsProducedResponse(t *testing.T) {
	p := exceptionPolicy{skip: true}

	handlerCalled := false
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return nil, nil
	}

	resp, err := p.recoverUnary(context.Background(), "req", handler, "partial", "boom")
	require.NoError(t, err)
	assert.Equal(t, "partial", resp)
	assert.False(t, handlerCalled)
}

func TestPolicyReInvokesWhenNothingProduced(t *testing.T) {
	p := exceptionPolicy{skip: true}

	calls := 0
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		calls++
		return "fallback", nil
	}

	resp, err := p.recoverUnary(context.Background(), "req", handler, nil, "boom")
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp)
	assert.Equal(t, 1, calls)
}

func TestPolicyReInvokesStreamHandler(t *testing.T) {
	p := exceptionPolicy{skip: true}

	ss := &fakeServerStream{}
	var got grpc.ServerStream
	handler := func(srv interface{}, stream grpc.ServerStream) error {
		got = stream
		return nil
	}

	require.NoError(t, p.recoverStream(nil, ss, handler, "boom"))
	assert.Same(t, ss, got)
}

func TestUnaryInterceptorFailsLoudByDefault(t *testing.T) {
	m := newTestMetrics()

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("handler exploded")
	}

	assert.Panics(t, func() {
		m.UnaryServerInterceptor()(context.Background(), "ping", &grpc.UnaryServerInfo{FullMethod: fullMethod}, handler)
	})
}

func TestUnaryInterceptorDegradesWithSkipExceptions(t *testing.T) {
	m := newTestMetrics(SkipExceptions(), SuppressExceptionLogs())

	calls := 0
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		calls++
		if calls == 1 {
			panic("first call explodes")
		}
		return "recovered", nil
	}

	resp, err := m.UnaryServerInterceptor()(context.Background(), "ping", &grpc.UnaryServerInfo{FullMethod: fullMethod}, handler)
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp)
	assert.Equal(t, 2, calls)

	// The degraded call bypassed the handled counter but was started
	assert.Equal(t, float64(1), counterValue(m.serverStartedCounter, "UNARY", "helloworld.Greeter", "SayHello"))
	assert.Equal(t, 0, testutil.CollectAndCount(m.serverHandledCounter))
}

func TestStreamInterceptorDegradesWithSkipExceptions(t *testing.T) {
	m := newTestMetrics(SkipExceptions(), SuppressExceptionLogs())

	info := &grpc.StreamServerInfo{FullMethod: "/helloworld.Greeter/Chat", IsClientStream: true, IsServerStream: true}

	calls := 0
	handler := func(srv interface{}, stream grpc.ServerStream) error {
		calls++
		if calls == 1 {
			panic("first call explodes")
		}
		return nil
	}

	err := m.StreamServerInterceptor()(nil, &fakeServerStream{}, info, handler)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

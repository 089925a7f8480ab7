package grpcprom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
)

func TestBlankNewServer(t *testing.T) {
	s := NewServer()
	assert.NotNil(t, s)
}

func TestName(t *testing.T) {
	s := NewServer(
		Name("somethingcool"),
	)
	assert.NotNil(t, s)
	assert.Equal(t, "somethingcool", s.opts.name)
	assert.Contains(t, s.opts.id, "somethingcool-")
}

func TestUnaryOption(t *testing.T) {
	s := NewServer(
		AddUnaryInterceptor(
			UnaryServerInterceptor,
		),
	)
	assert.NotNil(t, s)
	assert.NotEmpty(t, s.opts.unaryInts)
}

func TestStreamOption(t *testing.T) {
	s := NewServer(
		AddStreamInterceptor(
			StreamServerInterceptor,
		),
	)
	assert.NotNil(t, s)
	assert.NotEmpty(t, s.opts.streamInts)
}

func TestImplementation(t *testing.T) {
	s := NewServer(
		Implementation(func(g *grpc.Server) {}),
	)
	assert.NotNil(t, s)
	assert.NotNil(t, s.opts.implementation)
}

func TestDefaultMonitor(t *testing.T) {
	s := NewServer()
	assert.Equal(t, Monitor(DefaultServerMetrics), s.opts.monitor)
}

func TestWithMonitor(t *testing.T) {
	m := newTestMetrics()
	s := NewServer(WithMonitor(m))
	assert.Equal(t, Monitor(m), s.opts.monitor)
}

func TestListenAndServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewServer(
		Name("listentest"),
		WithMonitor(NewServerMetrics(WithRegisterer(reg))),
		WithGatherer(reg),
		GRPCConfig(ServerConfig{Host: "127.0.0.1", Port: 0}),
		PrometheusConfig(ServerConfig{Host: "127.0.0.1", Port: 0}),
	)
	go s.ListenAndServe()
}

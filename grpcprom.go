// Package grpcprom instruments gRPC servers with Prometheus metrics:
// per-method counters for started calls, stream messages and completed
// calls by status code, plus an optional handling time histogram. It
// sits between the transport and the application handlers and never
// changes what the handlers return.
package grpcprom

// DefaultServerMetrics is the application-wide default instance,
// recording into the default prometheus registry. Construct your own
// with NewServerMetrics to inject a registry or change behavior.
var DefaultServerMetrics = NewServerMetrics()

// UnaryServerInterceptor is a server interceptor for the default
// metrics instance, usable directly in grpc.NewServer options.
var UnaryServerInterceptor = DefaultServerMetrics.UnaryServerInterceptor()

// StreamServerInterceptor is the streaming counterpart of
// UnaryServerInterceptor for the default metrics instance.
var StreamServerInterceptor = DefaultServerMetrics.StreamServerInterceptor()

// Register registers the default metrics instance with the default
// prometheus registry.
func Register() error {
	return DefaultServerMetrics.Register(nil)
}

// EnableHandlingTimeHistogram enables latency observation on the
// default metrics instance. Call before serving.
func EnableHandlingTimeHistogram(opts ...HistogramOption) {
	DefaultServerMetrics.EnableHandlingTimeHistogram(opts...)
}

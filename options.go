package grpcprom

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServerOption configures a ServerMetrics at construction
type ServerOption func(*serverOptions)

// A HistogramOption can tweak the handling time histogram before it is
// created, typically to change the buckets
type HistogramOption func(*prometheus.HistogramOpts)

type serverOptions struct {
	registerer       prometheus.Registerer
	legacy           bool
	enableHistogram  bool
	histogramOptions []HistogramOption
	policy           exceptionPolicy
	unaryOnly        bool
}

func defaultServerOptions() serverOptions {
	return serverOptions{
		registerer: prometheus.DefaultRegisterer,
		policy:     exceptionPolicy{skip: false, log: true},
	}
}

// WithRegisterer sets the prometheus registerer the metrics register
// against. Defaults to the process-wide prometheus.DefaultRegisterer
func WithRegisterer(r prometheus.Registerer) ServerOption {
	return func(o *serverOptions) {
		o.registerer = r
	}
}

// Legacy switches to the backwards compatible metric naming: the
// handled counter uses the "code" label key and latency is always
// observed into grpc_server_handled_latency_seconds. Mutually exclusive
// with the current naming per deployment
func Legacy() ServerOption {
	return func(o *serverOptions) {
		o.legacy = true
	}
}

// WithHandlingTimeHistogram enables the handling time histogram at
// construction time
func WithHandlingTimeHistogram(opts ...HistogramOption) ServerOption {
	return func(o *serverOptions) {
		o.enableHistogram = true
		o.histogramOptions = append(o.histogramOptions, opts...)
	}
}

// SkipExceptions suppresses panics raised inside the instrumentation
// path, degrading the affected call to its uninstrumented behavior
// instead of failing it. Off by default: visibility beats availability
// unless the operator opts out
func SkipExceptions() ServerOption {
	return func(o *serverOptions) {
		o.policy.skip = true
	}
}

// SuppressExceptionLogs stops suppressed instrumentation panics from
// being logged. Only meaningful together with SkipExceptions
func SuppressExceptionLogs() ServerOption {
	return func(o *serverOptions) {
		o.policy.log = false
	}
}

// UnaryOnly leaves any call that is not unary/unary completely
// uninstrumented
func UnaryOnly() ServerOption {
	return func(o *serverOptions) {
		o.unaryOnly = true
	}
}

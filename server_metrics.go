package grpcprom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
)

// ServerMetrics owns the metric series for one instrumented gRPC
// server: counters for started calls and stream messages, a handled
// counter keyed by status code and an optional handling time histogram.
// It implements prometheus.Collector so it can be registered against
// any registry; the interceptors returned by UnaryServerInterceptor and
// StreamServerInterceptor only ever increment and observe through it.
type ServerMetrics struct {
	registerer      prometheus.Registerer
	legacy          bool
	enableHistogram bool
	unaryOnly       bool
	policy          exceptionPolicy

	// now is the clock source, swappable in tests
	now func() time.Time

	serverStartedCounter     *prometheus.CounterVec
	serverMsgReceivedCounter *prometheus.CounterVec
	serverMsgSentCounter     *prometheus.CounterVec
	serverHandledCounter     *prometheus.CounterVec
	serverHandledHistogram   *prometheus.HistogramVec
}

// NewServerMetrics creates server metrics with the given options.
// Nothing is registered until Register is called or the collector is
// handed to a registry
func NewServerMetrics(opts ...ServerOption) *ServerMetrics {
	o := defaultServerOptions()
	for _, opt := range opts {
		opt(&o)
	}

	codeLabel := "grpc_code"
	if o.legacy {
		codeLabel = "code"
	}

	m := &ServerMetrics{
		registerer: o.registerer,
		legacy:     o.legacy,
		unaryOnly:  o.unaryOnly,
		policy:     o.policy,
		now:        time.Now,

		serverStartedCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grpc_server_started_total",
				Help: "Total number of RPCs started on the server.",
			},
			[]string{"grpc_type", "grpc_service", "grpc_method"},
		),
		serverMsgReceivedCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grpc_server_msg_received_total",
				Help: "Total number of RPC stream messages received on the server.",
			},
			[]string{"grpc_type", "grpc_service", "grpc_method"},
		),
		serverMsgSentCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grpc_server_msg_sent_total",
				Help: "Total number of gRPC stream messages sent by the server.",
			},
			[]string{"grpc_type", "grpc_service", "grpc_method"},
		),
		serverHandledCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grpc_server_handled_total",
				Help: "Total number of RPCs completed on the server, regardless of success or failure.",
			},
			[]string{"grpc_type", "grpc_service", "grpc_method", codeLabel},
		),
	}

	if o.legacy {
		m.buildHandledHistogram("grpc_server_handled_latency_seconds", o.histogramOptions)
	} else if o.enableHistogram {
		m.EnableHandlingTimeHistogram(o.histogramOptions...)
	}

	return m
}

// EnableHandlingTimeHistogram turns on latency observation for calls
// with a non-streaming response. Call before serving; the histogram is
// created on first enable and options are ignored afterwards
func (m *ServerMetrics) EnableHandlingTimeHistogram(opts ...HistogramOption) {
	if m.serverHandledHistogram == nil {
		m.buildHandledHistogram("grpc_server_handling_seconds", opts)
	}
	m.enableHistogram = true
}

func (m *ServerMetrics) buildHandledHistogram(name string, opts []HistogramOption) {
	histOpts := prometheus.HistogramOpts{
		Name:    name,
		Help:    "Histogram of response latency (seconds) of gRPC that had been application-level handled by the server.",
		Buckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&histOpts)
	}
	m.serverHandledHistogram = prometheus.NewHistogramVec(
		histOpts,
		[]string{"grpc_type", "grpc_service", "grpc_method"},
	)
}

// Describe implements prometheus.Collector
func (m *ServerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.serverStartedCounter.Describe(ch)
	m.serverMsgReceivedCounter.Describe(ch)
	m.serverMsgSentCounter.Describe(ch)
	m.serverHandledCounter.Describe(ch)
	if m.serverHandledHistogram != nil {
		m.serverHandledHistogram.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *ServerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.serverStartedCounter.Collect(ch)
	m.serverMsgReceivedCounter.Collect(ch)
	m.serverMsgSentCounter.Collect(ch)
	m.serverHandledCounter.Collect(ch)
	if m.serverHandledHistogram != nil {
		m.serverHandledHistogram.Collect(ch)
	}
}

// Register registers the metrics with the configured registerer. The
// Service argument makes ServerMetrics satisfy Monitor and may be nil
func (m *ServerMetrics) Register(_ *Service) error {
	return m.registerer.Register(m)
}

// InterceptRPC satisfies Monitor
func (m *ServerMetrics) InterceptRPC() (grpc.UnaryServerInterceptor, grpc.StreamServerInterceptor) {
	return m.UnaryServerInterceptor(), m.StreamServerInterceptor()
}

// callReport is the per invocation state: shape and identity resolved
// once at wrap time plus the start timestamp. It is owned by a single
// call and discarded when the call terminates
type callReport struct {
	metrics *ServerMetrics
	rpcType rpcType
	service string
	method  string
	start   time.Time
}

func (m *ServerMetrics) newCallReport(t rpcType, service, method string) *callReport {
	return &callReport{
		metrics: m,
		rpcType: t,
		service: service,
		method:  method,
		start:   m.now(),
	}
}

func (c *callReport) incStarted() {
	c.metrics.serverStartedCounter.
		WithLabelValues(string(c.rpcType), c.service, c.method).
		Inc()
}

func (c *callReport) receivedCounter() prometheus.Counter {
	return c.metrics.serverMsgReceivedCounter.
		WithLabelValues(string(c.rpcType), c.service, c.method)
}

func (c *callReport) sentCounter() prometheus.Counter {
	return c.metrics.serverMsgSentCounter.
		WithLabelValues(string(c.rpcType), c.service, c.method)
}

func (c *callReport) incHandled(code codes.Code) {
	c.metrics.serverHandledCounter.
		WithLabelValues(string(c.rpcType), c.service, c.method, statusName(code)).
		Inc()
}

// observeHandlingTime records now-start into the handling time
// histogram, floored at zero to tolerate clock skew. Legacy mode always
// records; otherwise recording is gated on the histogram being enabled
func (c *callReport) observeHandlingTime() {
	m := c.metrics
	if !m.legacy && !m.enableHistogram {
		return
	}
	elapsed := m.now().Sub(c.start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	m.serverHandledHistogram.
		WithLabelValues(string(c.rpcType), c.service, c.method).
		Observe(elapsed)
}

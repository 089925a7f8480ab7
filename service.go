package grpcprom

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/uuid"
	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/grpc-ecosystem/grpc-opentracing/go/otgrpc"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

// RegisterImplementation attaches gRPC service implementations to a
// server
type RegisterImplementation func(s *grpc.Server)

// ServerConfig is a generic server configuration
type ServerConfig struct {
	Host string
	Port int
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Service is a gRPC server assembled with metrics interception, panic
// recovery, optional tracing and a Prometheus exporter
type Service struct {
	opts options

	// Exposed so they can be useful if needed
	ServiceListener net.Listener
	GRPCServer      *grpc.Server
	Exporter        *Exporter
}

type options struct {
	id   string
	name string

	config     ServerConfig
	prometheus ServerConfig
	gatherer   prometheus.Gatherer

	monitor Monitor
	tracer  opentracing.Tracer

	unaryInts  []grpc.UnaryServerInterceptor
	streamInts []grpc.StreamServerInterceptor

	implementation RegisterImplementation
	grpcOptions    []grpc.ServerOption
}

// Option configures a Service
type Option func(*options)

func defaultOptions(n string) options {
	return options{
		id:             generateID(n),
		name:           n,
		config:         ServerConfig{Host: "0.0.0.0", Port: 8000},
		prometheus:     ServerConfig{Host: "0.0.0.0", Port: 9000},
		gatherer:       prometheus.DefaultGatherer,
		monitor:        DefaultServerMetrics,
		implementation: func(s *grpc.Server) {},
	}
}

// Name sets the name of the service, used for instance IDs and tracing
func Name(n string) Option {
	return func(o *options) {
		o.name = n
		o.id = generateID(n)
	}
}

// Implementation registers the gRPC implementation of the service
func Implementation(impl RegisterImplementation) Option {
	return func(o *options) {
		o.implementation = impl
	}
}

// AddUnaryInterceptor adds a unary interceptor to the RPC server
func AddUnaryInterceptor(unint grpc.UnaryServerInterceptor) Option {
	return func(o *options) {
		o.unaryInts = append(o.unaryInts, unint)
	}
}

// AddStreamInterceptor adds a stream interceptor to the RPC server
func AddStreamInterceptor(sint grpc.StreamServerInterceptor) Option {
	return func(o *options) {
		o.streamInts = append(o.streamInts, sint)
	}
}

// WithMonitor sets the metrics provider for the service. Defaults to
// DefaultServerMetrics
func WithMonitor(m Monitor) Option {
	return func(o *options) {
		o.monitor = m
	}
}

// WithTracer sets an opentracing tracer for the service. When unset a
// tracer is built from the Zipkin env vars if present
func WithTracer(t opentracing.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// GRPCConfig sets the host and port the gRPC server binds to
func GRPCConfig(c ServerConfig) Option {
	return func(o *options) {
		o.config = c
	}
}

// PrometheusConfig sets the host and port of the metrics exporter
func PrometheusConfig(c ServerConfig) Option {
	return func(o *options) {
		o.prometheus = c
	}
}

// WithGatherer sets the prometheus gatherer the exporter serves from.
// Defaults to the process-wide prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *options) {
		o.gatherer = g
	}
}

// AddGRPCOptions appends raw grpc server options
func AddGRPCOptions(opts ...grpc.ServerOption) Option {
	return func(o *options) {
		o.grpcOptions = append(o.grpcOptions, opts...)
	}
}

// NewServer creates a service with default options
func NewServer(opts ...Option) *Service {
	o := defaultOptions("grpcprom")
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{opts: o}
}

// Run serves the gRPC and metrics servers and blocks until an error
// occurs or a termination signal arrives, in which case it shuts down
// gracefully
func (s *Service) Run() error {
	errChan := make(chan error)
	go func() {
		errChan <- s.ListenAndServe()
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-signalChan:
		logrus.Infof("Caught %v, attempting graceful shutdown...", sig)
		s.Shutdown()
		return nil
	}
}

// ListenAndServe creates and runs a blocking gRPC server alongside the
// metrics exporter
func (s *Service) ListenAndServe() error {
	var err error
	s.ServiceListener, err = net.Listen("tcp", s.opts.config.Address())
	if err != nil {
		return err
	}

	server, err := s.createGrpcServer()
	if err != nil {
		return err
	}

	s.Exporter = NewExporter(s.opts.prometheus.Address(), s.opts.gatherer)
	s.Exporter.Start()

	logrus.Infof("Serving %s (%s) gRPC on %s", s.opts.name, s.opts.id, s.opts.config.Address())
	return server.Serve(s.ServiceListener)
}

// Shutdown gracefully shuts down the gRPC and metrics servers
func (s *Service) Shutdown() {
	if s.GRPCServer != nil {
		s.GRPCServer.GracefulStop()
	}
	if s.Exporter != nil {
		s.Exporter.Shutdown()
	}
}

func (s *Service) createGrpcServer() (*grpc.Server, error) {
	unaryInt, streamInt := s.opts.monitor.InterceptRPC()

	unary := []grpc.UnaryServerInterceptor{unaryInt, grpc_recovery.UnaryServerInterceptor()}
	stream := []grpc.StreamServerInterceptor{streamInt, grpc_recovery.StreamServerInterceptor()}

	tracer := s.opts.tracer
	if tracer == nil {
		tracer = tracerFromEnv(s.opts)
	}
	if tracer != nil {
		unary = append(unary, otgrpc.OpenTracingServerInterceptor(tracer))
	}

	unary = append(unary, s.opts.unaryInts...)
	stream = append(stream, s.opts.streamInts...)

	grpcOpts := append(s.opts.grpcOptions,
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(unary...)),
		grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(stream...)),
	)

	s.GRPCServer = grpc.NewServer(grpcOpts...)
	s.opts.implementation(s.GRPCServer)

	if err := s.opts.monitor.Register(s); err != nil {
		return nil, err
	}

	return s.GRPCServer, nil
}

func generateID(n string) string {
	uid, _ := uuid.NewV4()
	return n + "-" + uid.String()
}

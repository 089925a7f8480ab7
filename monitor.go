package grpcprom

import (
	"google.golang.org/grpc"
)

// Monitor is an interface to metrics providers (i.e prometheus)
type Monitor interface {
	// InterceptRPC allows a monitor to add gRPC interceptors before the
	// gRPC server is fully initialized
	InterceptRPC() (grpc.UnaryServerInterceptor, grpc.StreamServerInterceptor)

	// Register takes a configured Service and registers its metrics.
	// Serving or saving those metrics is usually done in a goroutine.
	// Returning an error will cause a fatal start for a service.
	Register(*Service) error
}

var _ Monitor = (*ServerMetrics)(nil)

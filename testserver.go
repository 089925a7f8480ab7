package grpcprom

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

// NewTestServer is a helper function to serve a gRPC server on an
// in-memory listener. It returns the listener and a func to call which
// starts the server
func NewTestServer(s *grpc.Server) (*bufconn.Listener, func()) {
	l := bufconn.Listen(1024 * 1024)
	return l, func() {
		s.Serve(l)
	}
}

// TestConn is a connection that connects to an in-memory listener
// created with NewTestServer
func TestConn(l *bufconn.Listener) *grpc.ClientConn {
	conn, err := grpc.Dial(
		"bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return l.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		panic(err)
	}

	return conn
}

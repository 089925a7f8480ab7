package grpcprom

import (
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
)

// monitoredServerStream wraps a grpc.ServerStream so that every message
// actually pulled or pushed through it increments a pre-bound counter.
// Counting happens exactly at consumption: a message that is never
// received or sent is never counted, stream termination (io.EOF or an
// error) passes through untouched, and no message is buffered.
//
// A nil counter disables counting for that direction.
type monitoredServerStream struct {
	grpc.ServerStream
	received prometheus.Counter
	sent     prometheus.Counter
}

func (s *monitoredServerStream) SendMsg(m interface{}) error {
	err := s.ServerStream.SendMsg(m)
	if err == nil && s.sent != nil {
		s.sent.Inc()
	}
	return err
}

func (s *monitoredServerStream) RecvMsg(m interface{}) error {
	err := s.ServerStream.RecvMsg(m)
	if err == nil && s.received != nil {
		s.received.Inc()
	}
	return err
}

package grpcprom

import (
	"strings"

	"google.golang.org/grpc"
)

// rpcType is the streaming shape of a call, fixed at wrap time. The
// values are the label values exported as grpc_type.
type rpcType string

const (
	typeUnary           rpcType = "UNARY"
	typeClientStreaming rpcType = "CLIENT_STREAMING"
	typeServerStreaming rpcType = "SERVER_STREAMING"
	typeBidiStreaming   rpcType = "BIDI_STREAMING"
)

func rpcTypeOf(clientStream, serverStream bool) rpcType {
	switch {
	case clientStream && serverStream:
		return typeBidiStreaming
	case clientStream:
		return typeClientStreaming
	case serverStream:
		return typeServerStreaming
	default:
		return typeUnary
	}
}

func streamRPCType(info *grpc.StreamServerInfo) rpcType {
	return rpcTypeOf(info.IsClientStream, info.IsServerStream)
}

// splitMethodName splits a full method name like
// "/helloworld.Greeter/SayHello" into service and method, using the
// last separator so nested package names stay part of the service.
func splitMethodName(fullMethod string) (string, string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[:i], fullMethod[i+1:]
	}
	return "unknown", "unknown"
}

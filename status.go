package grpcprom

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Canonical status names as exported in the grpc_code/code label.
// These follow the cross-language enum spelling (NOT_FOUND rather than
// NotFound) so existing dashboards keep working. codeNames and
// nameCodes form a bidirectional table over the complete status space,
// built once at init.
var codeNames = map[codes.Code]string{
	codes.OK:                 "OK",
	codes.Canceled:           "CANCELLED",
	codes.Unknown:            "UNKNOWN",
	codes.InvalidArgument:    "INVALID_ARGUMENT",
	codes.DeadlineExceeded:   "DEADLINE_EXCEEDED",
	codes.NotFound:           "NOT_FOUND",
	codes.AlreadyExists:      "ALREADY_EXISTS",
	codes.PermissionDenied:   "PERMISSION_DENIED",
	codes.ResourceExhausted:  "RESOURCE_EXHAUSTED",
	codes.FailedPrecondition: "FAILED_PRECONDITION",
	codes.Aborted:            "ABORTED",
	codes.OutOfRange:         "OUT_OF_RANGE",
	codes.Unimplemented:      "UNIMPLEMENTED",
	codes.Internal:           "INTERNAL",
	codes.Unavailable:        "UNAVAILABLE",
	codes.DataLoss:           "DATA_LOSS",
	codes.Unauthenticated:    "UNAUTHENTICATED",
}

var nameCodes = make(map[string]codes.Code, len(codeNames))

func init() {
	for c, n := range codeNames {
		nameCodes[n] = c
	}
}

// statusName maps a code to its canonical label value. A code outside
// the well-known status space is a contract violation, not a runtime
// condition.
func statusName(c codes.Code) string {
	n, ok := codeNames[c]
	if !ok {
		panic(fmt.Sprintf("grpcprom: status code %d is outside the canonical status space", uint32(c)))
	}
	return n
}

// codeFromName is the reverse direction of the table.
func codeFromName(name string) (codes.Code, bool) {
	c, ok := nameCodes[name]
	return c, ok
}

// resolveStatus returns the single canonical status code for a
// completed call. Cancellation observed through the call's context wins
// on the success path; on the error path an error that carries its own
// status code keeps it, anything else resolves to UNKNOWN. The
// resolution is a pure function of terminal state, so re-resolving an
// already-terminal call always yields the same code.
func resolveStatus(ctx context.Context, err error) codes.Code {
	if err != nil {
		if s, ok := status.FromError(err); ok {
			return s.Code()
		}
		if ctx.Err() == context.Canceled {
			return codes.Canceled
		}
		return codes.Unknown
	}
	if ctx.Err() == context.Canceled {
		return codes.Canceled
	}
	return codes.OK
}

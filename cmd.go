package grpcprom

import "github.com/spf13/cobra"

// Flags is the standard flag surface for a grpcprom instrumented
// service: where to bind the gRPC and metrics servers and how the
// interceptor should behave
type Flags struct {
	GRPC       ServerConfig
	Prometheus ServerConfig

	Legacy                      bool
	EnableHandlingTimeHistogram bool
	SkipExceptions              bool
	SuppressExceptionLogs       bool
	UnaryOnly                   bool
}

// MetricsOptions converts the parsed metric flags into ServerMetrics
// options
func (f *Flags) MetricsOptions() []ServerOption {
	var opts []ServerOption
	if f.Legacy {
		opts = append(opts, Legacy())
	}
	if f.EnableHandlingTimeHistogram {
		opts = append(opts, WithHandlingTimeHistogram())
	}
	if f.SkipExceptions {
		opts = append(opts, SkipExceptions())
	}
	if f.SuppressExceptionLogs {
		opts = append(opts, SuppressExceptionLogs())
	}
	if f.UnaryOnly {
		opts = append(opts, UnaryOnly())
	}
	return opts
}

// BaseCommand provides the basic flags for running a service
func BaseCommand(serviceName, shortDescription string, f *Flags) *cobra.Command {
	command := &cobra.Command{
		Use:   serviceName,
		Short: shortDescription,
	}

	command.PersistentFlags().StringVar(
		&f.GRPC.Host,
		"grpc-host",
		"0.0.0.0",
		"gRPC service hostname",
	)

	command.PersistentFlags().IntVar(
		&f.GRPC.Port,
		"grpc-port",
		8000,
		"gRPC port",
	)

	command.PersistentFlags().StringVar(
		&f.Prometheus.Host,
		"prometheus-host",
		"0.0.0.0",
		"Prometheus metrics hostname",
	)

	command.PersistentFlags().IntVar(
		&f.Prometheus.Port,
		"prometheus-port",
		9000,
		"Prometheus metrics port",
	)

	command.PersistentFlags().BoolVar(
		&f.Legacy,
		"legacy",
		false,
		"Use the backwards compatible metric and label naming",
	)

	command.PersistentFlags().BoolVar(
		&f.EnableHandlingTimeHistogram,
		"enable-handling-time-histogram",
		false,
		"Record a handling time histogram for completed calls",
	)

	command.PersistentFlags().BoolVar(
		&f.SkipExceptions,
		"skip-exceptions",
		false,
		"Suppress instrumentation failures instead of failing the call",
	)

	command.PersistentFlags().BoolVar(
		&f.SuppressExceptionLogs,
		"suppress-exception-logs",
		false,
		"Do not log suppressed instrumentation failures",
	)

	command.PersistentFlags().BoolVar(
		&f.UnaryOnly,
		"unary-only",
		false,
		"Instrument unary calls only, leaving streams untouched",
	)

	return command
}

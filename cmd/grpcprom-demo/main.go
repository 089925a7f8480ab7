package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/promgrid/grpcprom"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var flags = &grpcprom.Flags{}

func main() {
	root := grpcprom.BaseCommand(
		"grpcprom-demo",
		"Demo gRPC server and client instrumented with grpcprom",
		flags,
	)
	root.AddCommand(serverCmd, clientCmd)

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the gRPC health service with metrics interception",
	RunE: func(cmd *cobra.Command, args []string) error {
		metrics := grpcprom.NewServerMetrics(flags.MetricsOptions()...)

		healthServer := health.NewServer()
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

		svc := grpcprom.NewServer(
			grpcprom.Name("grpcprom-demo"),
			grpcprom.WithMonitor(metrics),
			grpcprom.GRPCConfig(flags.GRPC),
			grpcprom.PrometheusConfig(flags.Prometheus),
			grpcprom.Implementation(func(s *grpc.Server) {
				healthpb.RegisterHealthServer(s, healthServer)
			}),
		)

		return svc.Run()
	},
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Exercise the demo server with unary and streaming calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := grpc.Dial(
			flags.GRPC.Address(),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return err
		}
		defer conn.Close()

		client := healthpb.NewHealthClient(conn)

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		// Unary: one started and one handled increment on the server.
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
		if err != nil {
			return err
		}
		logrus.Infof("Check: %s", resp.GetStatus())

		// Server streaming: per message sent increments, no handled.
		watch, err := client.Watch(ctx, &healthpb.HealthCheckRequest{})
		if err != nil {
			return err
		}
		update, err := watch.Recv()
		if err != nil {
			return err
		}
		logrus.Infof("Watch: %s", update.GetStatus())

		return nil
	},
}

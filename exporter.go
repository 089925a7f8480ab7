package grpcprom

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Exporter serves gathered metrics over HTTP on /metrics
type Exporter struct {
	server *http.Server
}

// NewExporter creates an exporter serving the given gatherer on addr
func NewExporter(addr string, g prometheus.Gatherer) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	return &Exporter{
		server: &http.Server{Addr: addr, Handler: mux},
	}
}

// Start serves the exporter in the background
func (e *Exporter) Start() {
	logrus.Infof("Prometheus metrics at http://%s/metrics", e.server.Addr)

	go func() {
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// cannot panic, because this probably is an intentional close
			logrus.Errorf("Prometheus http server: ListenAndServe() error: %s", err)
		}
	}()
}

// Shutdown gracefully shuts the exporter down
func (e *Exporter) Shutdown() {
	// 30 seconds is the default grace period in Kubernetes
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.server.Shutdown(ctx); err != nil {
		logrus.Infof("Timeout during shutdown of metrics server. Error: %v", err)
	}
}

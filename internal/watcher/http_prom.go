package watcher

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	m "git.home.luguber.info/inful/testbuild/internal/metrics"
)

// MetricsServer exposes watch-mode build metrics over HTTP.
type MetricsServer struct {
	registry *prom.Registry
	recorder *m.PrometheusRecorder
	server   *http.Server
}

// NewMetricsServer builds a registry with process collectors and the run
// recorder, serving /metrics on addr.
func NewMetricsServer(addr string) *MetricsServer {
	registry := prom.NewRegistry()
	registry.MustRegister(
		promcollect.NewGoCollector(),
		promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}),
	)
	recorder := m.NewPrometheusRecorder(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		registry: registry,
		recorder: recorder,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Recorder returns the recorder to inject into the pipeline.
func (ms *MetricsServer) Recorder() m.Recorder {
	return ms.recorder
}

// Start serves in the background until Stop is called.
func (ms *MetricsServer) Start() {
	go func() {
		slog.Info("Serving watch metrics", "addr", ms.server.Addr)
		if err := ms.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (ms *MetricsServer) Stop(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

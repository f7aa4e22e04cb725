package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/monitor"
	"github.com/rileyhilliard/sysdash/internal/stats"
)

// metricsServer exposes the dashboard's own metrics over HTTP.
type metricsServer struct {
	srv  *http.Server
	addr string
}

// serveMetrics starts a /metrics endpoint for reg on addr. The Go runtime
// and process collectors are registered alongside the dashboard metrics.
func serveMetrics(addr string, reg *prometheus.Registry, log logger.Logger) (*metricsServer, error) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot serve metrics on "+addr,
			"Pick a free address for 'metrics_addr' or leave it empty")
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s := &metricsServer{
		srv: &http.Server{
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: ln.Addr().String(),
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server: %v", err)
		}
	}()
	log.Debug("serving metrics on http://%s/metrics", s.addr)

	return s, nil
}

// Addr is the address actually bound, useful when addr used port 0.
func (s *metricsServer) Addr() string {
	return s.addr
}

// Close shuts the server down, waiting briefly for in-flight scrapes.
func (s *metricsServer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func statsObserver(m *monitor.Metrics) stats.Option {
	return stats.WithObserver(m.ObserveFetch)
}

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// searchMetrics exposes search progress. The search goroutine writes, the
// HTTP handler reads; the collectors are safe for that.
type searchMetrics struct {
	registry      *prometheus.Registry
	squadsChecked prometheus.Counter
	bestMetric    prometheus.Gauge
	bestFoundAt   prometheus.Gauge
}

func newSearchMetrics() *searchMetrics {
	m := &searchMetrics{
		registry: prometheus.NewRegistry(),
		squadsChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "squad_optimizer",
			Name:      "squads_checked_total",
			Help:      "Full valid squads reported by the search.",
		}),
		bestMetric: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "squad_optimizer",
			Name:      "best_adjusted_metric",
			Help:      "Adjusted metric of the best squad found so far.",
		}),
		bestFoundAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "squad_optimizer",
			Name:      "best_found_at",
			Help:      "Number of squads checked when the best squad was found.",
		}),
	}
	m.registry.MustRegister(m.squadsChecked, m.bestMetric, m.bestFoundAt)
	return m
}

func (m *searchMetrics) observe(top *TopSquad) {
	m.squadsChecked.Inc()
	if top.TopSquad() != nil {
		m.bestMetric.Set(top.TopMetric())
		m.bestFoundAt.Set(float64(top.TopSquadIndex()))
	}
}

func (m *searchMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// serveMetrics serves /metrics on addr until the returned stop func is called.
func serveMetrics(addr string, m *searchMetrics, log *zap.Logger) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("[metrics] server stopped", zap.Error(err))
		}
	}()
	log.Info("[metrics] serving", zap.String("addr", ln.Addr().String()))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

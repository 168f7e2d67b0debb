package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// handleMetrics implements GET /metrics, a Prometheus exposition of
// the same framecache.Snapshot the status endpoints render. A fresh
// registry is built per request rather than kept as package state,
// since the gauges mirror one point-in-time Stats() call and have no
// meaningful identity between requests.
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) (int, error) {
	snap := h.Cache.Stats()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "frameserver_cache_capacity",
			Help: "Configured number of cache lines.",
		}, func() float64 { return float64(snap.Capacity) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "frameserver_cache_lines_resident",
			Help: "Number of non-empty cache lines.",
		}, func() float64 { return float64(len(snap.Lines)) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "frameserver_cache_hits_total",
			Help: "Cumulative cache hits since the counters were last reset (purge, or flush with reset).",
		}, func() float64 { return float64(snap.Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "frameserver_cache_misses_total",
			Help: "Cumulative cache misses since the counters were last reset (purge, or flush with reset).",
		}, func() float64 { return float64(snap.Misses) }),
	)

	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	return 0, nil
}

// Package metrics holds the Prometheus collectors for the clinic server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atinyakov/SchoolClinic/internal/models"
)

// Registry holds the application-specific Prometheus collectors.
var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route"},
	)

	dispenses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "dispense",
			Name:      "requests_total",
			Help:      "Medicine requests by outcome.",
		},
		[]string{"outcome"},
	)

	stockLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "inventory",
			Name:      "stock_units",
			Help:      "Current stock per medicine.",
		},
		[]string{"medicine"},
	)

	lowStockItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "inventory",
			Name:      "low_stock_items",
			Help:      "Number of medicines at or below the low-stock threshold.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		dispenses,
		stockLevel,
		lowStockItems,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHTTP records request counts and latency keyed by the chi route pattern.
func InstrumentHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordDispense counts a medicine request with the given outcome label.
func RecordDispense(outcome string) {
	dispenses.WithLabelValues(outcome).Inc()
}

// ObserveInventory publishes per-item stock and the low-stock count.
func ObserveInventory(items []models.InventoryItem) {
	low := 0
	for _, it := range items {
		stockLevel.WithLabelValues(it.Name).Set(float64(it.Stock))
		if it.Low() {
			low++
		}
	}
	lowStockItems.Set(float64(low))
}

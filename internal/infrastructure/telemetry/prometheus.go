package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wms/backend/internal/domain/fulfillment"
)

// StatusCounter reports order counts grouped by status
type StatusCounter interface {
	CountByStatus() map[fulfillment.OrderStatus]int
}

// Registry is the Prometheus scrape registry served on /metrics.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	SyncPasses     *prometheus.CounterVec
	SyncInserted   prometheus.Counter
	SyncPruned     prometheus.Counter
	LastPassUnix   prometheus.Gauge
	LastPassFailed prometheus.Gauge
}

// NewRegistry builds the registry. When orders is non-nil the store is exposed
// as one gauge per status, evaluated at scrape time.
func NewRegistry(orders StatusCounter) *Registry {
	r := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wms_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wms_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	syncPasses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wms_sync_passes_total",
		Help: "Reconciliation passes by outcome",
	}, []string{"outcome"})
	inserted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wms_sync_inserted_total",
		Help: "Orders inserted by reconciliation",
	})
	pruned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wms_sync_pruned_total",
		Help: "New orders pruned by reconciliation",
	})
	lastPass := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wms_sync_last_pass_timestamp_seconds",
		Help: "Unix time the last reconciliation pass finished",
	})
	lastFailed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wms_sync_last_pass_failed",
		Help: "1 when the last pass aborted or lost a batch",
	})

	r.MustRegister(httpRequests, httpDuration, syncPasses, inserted, pruned, lastPass, lastFailed)

	if orders != nil {
		for _, status := range []fulfillment.OrderStatus{fulfillment.OrderStatusNew, fulfillment.OrderStatusProcessed} {
			r.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name:        "wms_orders",
				Help:        "Orders held in memory by status",
				ConstLabels: prometheus.Labels{"status": status.String()},
			}, func() float64 {
				return float64(orders.CountByStatus()[status])
			}))
		}
	}

	return &Registry{
		reg:            r,
		HTTPRequests:   httpRequests,
		HTTPDuration:   httpDuration,
		SyncPasses:     syncPasses,
		SyncInserted:   inserted,
		SyncPruned:     pruned,
		LastPassUnix:   lastPass,
		LastPassFailed: lastFailed,
	}
}

// ObserveHTTP records one served request.
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObservePass records one finished reconciliation pass.
func (r *Registry) ObservePass(_ context.Context, report fulfillment.PassReport) {
	r.SyncPasses.WithLabelValues(PassOutcome(report)).Inc()
	r.SyncInserted.Add(float64(report.Inserted))
	r.SyncPruned.Add(float64(report.Pruned))
	r.LastPassUnix.Set(float64(report.FinishedAt.Unix()))
	if report.Succeeded() {
		r.LastPassFailed.Set(0)
	} else {
		r.LastPassFailed.Set(1)
	}
}

// Gatherer exposes the underlying registry for tests and custom handlers.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the scrape endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/fulfillment"
)

// ErrMeterNil is returned when sync metrics are built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// AttrOutcome labels pass metrics with the PassOutcome of the report
const AttrOutcome = attribute.Key("outcome")

// Pass outcomes
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeAborted = "aborted"
)

// passDurationBuckets spans a quick empty pass up to the default pass timeout (seconds)
var passDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// OrderCounter reports how many orders the store currently holds
type OrderCounter interface {
	Len() int
}

// SyncMetrics records reconciliation pass outcomes to OpenTelemetry.
type SyncMetrics struct {
	logger *zap.Logger
	orders OrderCounter

	passes        metric.Int64Counter
	inserted      metric.Int64Counter
	pruned        metric.Int64Counter
	duplicates    metric.Int64Counter
	malformed     metric.Int64Counter
	failedBatches metric.Int64Counter
	authRefreshes metric.Int64Counter
	passDuration  metric.Float64Histogram
	storeSize     metric.Int64Gauge
}

// SyncMetricsConfig holds configuration for sync metrics.
type SyncMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
	// Orders is optional; when set the store size is recorded after every pass
	Orders OrderCounter
}

// NewSyncMetrics creates the pass instruments on the given meter.
func NewSyncMetrics(cfg SyncMetricsConfig) (*SyncMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &SyncMetrics{logger: logger, orders: cfg.Orders}
	m := cfg.Meter

	var errs []error
	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			errs = append(errs, fmt.Errorf("counter %s: %w", name, err))
		}
		return c
	}

	sm.passes = counter("wms_sync_pass_total", "Reconciliation passes by outcome", "{passes}")
	sm.inserted = counter("wms_sync_orders_inserted_total", "Orders inserted from marketplace details", "{orders}")
	sm.pruned = counter("wms_sync_orders_pruned_total", "New orders removed because they left the live listing", "{orders}")
	sm.duplicates = counter("wms_sync_duplicates_total", "Inserts discarded because the order already existed", "{orders}")
	sm.malformed = counter("wms_sync_malformed_total", "Order records skipped as malformed", "{orders}")
	sm.failedBatches = counter("wms_sync_failed_batches_total", "Detail batches that failed", "{batches}")
	sm.authRefreshes = counter("wms_sync_auth_refresh_total", "Token refreshes triggered by an auth error", "{refreshes}")

	var err error
	sm.passDuration, err = m.Float64Histogram("wms_sync_pass_duration_seconds",
		metric.WithDescription("Wall time of one reconciliation pass"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(passDurationBuckets...),
	)
	if err != nil {
		errs = append(errs, fmt.Errorf("histogram wms_sync_pass_duration_seconds: %w", err))
	}
	sm.storeSize, err = m.Int64Gauge("wms_order_store_size",
		metric.WithDescription("Orders currently held in memory"),
		metric.WithUnit("{orders}"),
	)
	if err != nil {
		errs = append(errs, fmt.Errorf("gauge wms_order_store_size: %w", err))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("telemetry: create sync instruments: %w", errors.Join(errs...))
	}
	return sm, nil
}

// ObservePass records one finished pass.
func (sm *SyncMetrics) ObservePass(ctx context.Context, report fulfillment.PassReport) {
	outcome := metric.WithAttributes(AttrOutcome.String(PassOutcome(report)))
	sm.passes.Add(ctx, 1, outcome)
	sm.passDuration.Record(ctx, report.Duration().Seconds(), outcome)

	sm.inserted.Add(ctx, int64(report.Inserted))
	sm.pruned.Add(ctx, int64(report.Pruned))
	sm.duplicates.Add(ctx, int64(report.Duplicates))
	sm.malformed.Add(ctx, int64(report.Malformed))
	sm.failedBatches.Add(ctx, int64(report.FailedBatches))
	if report.AuthRefreshed {
		sm.authRefreshes.Add(ctx, 1)
	}

	if sm.orders != nil {
		sm.storeSize.Record(ctx, int64(sm.orders.Len()))
	}
	sm.logger.Debug("Pass metrics recorded", zap.String("outcome", PassOutcome(report)))
}

// PassOutcome classifies a report as success, partial or aborted
func PassOutcome(report fulfillment.PassReport) string {
	switch {
	case report.Aborted:
		return OutcomeAborted
	case report.FailedBatches > 0 || report.Err != nil:
		return OutcomePartial
	default:
		return OutcomeSuccess
	}
}

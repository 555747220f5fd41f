package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// DefaultLookback is the trailing window scanned by each pass
const DefaultLookback = 15 * 24 * time.Hour

// ErrListingUnavailable marks a pass aborted because no live listing was obtained
var ErrListingUnavailable = errors.New("sync: live order listing unavailable")

// SyncService runs reconciliation passes between the marketplace and the order store.
// It is not safe to run two passes concurrently; the scheduler serializes them.
type SyncService struct {
	market    integration.Marketplace
	parser    DetailParser
	store     fulfillment.OrderStore
	logger    *zap.Logger
	now       func() time.Time
	lookback  time.Duration
	observers []SyncObserver
}

// SyncServiceOption configures a SyncService
type SyncServiceOption func(*SyncService)

// WithClock overrides the time source
func WithClock(now func() time.Time) SyncServiceOption {
	return func(s *SyncService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLookback sets the listing window length; non-positive values keep the default
func WithLookback(d time.Duration) SyncServiceOption {
	return func(s *SyncService) {
		if d > 0 {
			s.lookback = d
		}
	}
}

// WithObserver registers an observer notified after each pass
func WithObserver(o SyncObserver) SyncServiceOption {
	return func(s *SyncService) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithSyncLogger sets the logger
func WithSyncLogger(logger *zap.Logger) SyncServiceOption {
	return func(s *SyncService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSyncService creates a new SyncService
func NewSyncService(
	market integration.Marketplace,
	parser DetailParser,
	store fulfillment.OrderStore,
	opts ...SyncServiceOption,
) *SyncService {
	s := &SyncService{
		market:   market,
		parser:   parser,
		store:    store,
		logger:   zap.NewNop(),
		now:      time.Now,
		lookback: DefaultLookback,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// passState tracks the single token refresh a pass may spend
type passState struct {
	report    *fulfillment.PassReport
	refreshed bool
}

// RunPass performs one reconciliation pass. Failures are contained in the report.
func (s *SyncService) RunPass(ctx context.Context) (report fulfillment.PassReport) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sync", "run_pass")
	defer span.End()

	report = fulfillment.PassReport{StartedAt: s.now()}
	state := &passState{report: &report}
	defer func() {
		report.FinishedAt = s.now()
		report.AuthRefreshed = state.refreshed
		s.finish(ctx, report)
	}()

	to := report.StartedAt
	from := to.Add(-s.lookback)

	liveIDs, err := s.listLiveOrders(ctx, state, from, to)
	if err != nil {
		report.Aborted = true
		report.Err = fmt.Errorf("%w: %w", ErrListingUnavailable, err)
		telemetry.RecordError(span, err)
		return report
	}
	report.LiveOrders = len(liveIDs)

	pruned, newIDs := s.store.PruneAndDiff(liveIDs)
	report.Pruned = pruned
	report.NewOrders = len(newIDs)
	span.SetAttributes(
		telemetry.AttrLiveOrders.Int(report.LiveOrders),
		telemetry.AttrPruned.Int(pruned),
		telemetry.AttrNewOrders.Int(len(newIDs)),
	)

	if len(newIDs) == 0 {
		return report
	}

	for i, batch := range Partition(newIDs, integration.MaxDetailBatchSize) {
		report.Batches++
		if err := s.syncBatch(ctx, state, i, batch); err != nil {
			report.FailedBatches++
			report.Err = errors.Join(report.Err, err)
			span.AddEvent("batch_failed", trace.WithAttributes(
				telemetry.AttrBatch.Int(i),
				telemetry.AttrBatchSize.Int(len(batch)),
			))
			s.logger.Warn("Order detail batch failed",
				zap.Int("batch", i),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
		}
	}

	if report.FailedBatches > 0 {
		telemetry.RecordError(span, report.Err)
	}
	return report
}

// listLiveOrders lists the window, spending the pass's refresh on an auth error
func (s *SyncService) listLiveOrders(ctx context.Context, state *passState, from, to time.Time) ([]string, error) {
	ids, err := s.market.ListLiveOrderIDs(ctx, from, to)
	if err == nil {
		return ids, nil
	}
	if !integration.IsAuthError(err) {
		return nil, err
	}
	if rerr := s.refresh(ctx, state); rerr != nil {
		return nil, rerr
	}
	return s.market.ListLiveOrderIDs(ctx, from, to)
}

// refresh exchanges the token at most once per pass
func (s *SyncService) refresh(ctx context.Context, state *passState) error {
	if state.refreshed {
		return integration.ErrPlatformAuthFailed
	}
	state.refreshed = true
	s.logger.Info("Access token rejected, refreshing")
	if err := s.market.RefreshAuth(ctx); err != nil {
		return fmt.Errorf("refresh auth: %w", err)
	}
	return nil
}

// syncBatch fetches, parses and stores one batch
func (s *SyncService) syncBatch(ctx context.Context, state *passState, index int, ids []string) error {
	payload, err := s.market.FetchOrderDetails(ctx, ids)
	if err != nil && integration.IsAuthError(err) && !state.refreshed {
		if rerr := s.refresh(ctx, state); rerr != nil {
			return fmt.Errorf("batch %d: %w", index, rerr)
		}
		payload, err = s.market.FetchOrderDetails(ctx, ids)
	}
	if err != nil {
		return fmt.Errorf("batch %d: fetch details: %w", index, err)
	}

	result, err := s.parser.ParseOrderDetails(payload)
	if err != nil {
		return fmt.Errorf("batch %d: parse details: %w", index, err)
	}

	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	for _, f := range result.Failures {
		state.report.Malformed++
		s.logger.Warn("Skipping malformed order record",
			zap.Int("batch", index),
			zap.String("order_id", f.OrderID),
			zap.Error(f.Err),
		)
	}

	for _, order := range result.Orders {
		if _, ok := requested[order.OrderID]; !ok {
			s.logger.Warn("Skipping order not requested in batch",
				zap.Int("batch", index),
				zap.String("order_id", order.OrderID),
			)
			continue
		}
		if err := s.store.Upsert(order); err != nil {
			if errors.Is(err, fulfillment.ErrDuplicateKey) {
				state.report.Duplicates++
				s.logger.Debug("Order already stored, keeping existing", zap.String("order_id", order.OrderID))
				continue
			}
			state.report.Malformed++
			s.logger.Warn("Order rejected by store",
				zap.String("order_id", order.OrderID),
				zap.Error(err),
			)
			continue
		}
		state.report.Inserted++
	}
	return nil
}

func (s *SyncService) finish(ctx context.Context, report fulfillment.PassReport) {
	fields := []zap.Field{
		zap.Int("live_orders", report.LiveOrders),
		zap.Int("pruned", report.Pruned),
		zap.Int("new_orders", report.NewOrders),
		zap.Int("batches", report.Batches),
		zap.Int("failed_batches", report.FailedBatches),
		zap.Int("inserted", report.Inserted),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("malformed", report.Malformed),
		zap.Bool("auth_refreshed", report.AuthRefreshed),
		zap.Duration("duration", report.Duration()),
	}
	if report.Aborted {
		s.logger.Error("Sync pass aborted", append(fields, zap.Error(report.Err))...)
	} else {
		s.logger.Info("Sync pass finished", fields...)
	}

	for _, o := range s.observers {
		o.ObservePass(ctx, report)
	}
}

// Partition splits ids into consecutive batches of at most size elements
func Partition(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

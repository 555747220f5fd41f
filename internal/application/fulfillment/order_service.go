package fulfillment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// OrderService serves the staff-facing queries and commands.
// All store access goes through the OrderStore's atomic operations.
type OrderService struct {
	store  fulfillment.OrderStore
	market integration.Marketplace
	parser DetailParser
	logger *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	store fulfillment.OrderStore,
	market integration.Marketplace,
	parser DetailParser,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{store: store, market: market, parser: parser, logger: logger}
}

// ListOrders returns a consistent copy of every stored order
func (s *OrderService) ListOrders(ctx context.Context) []fulfillment.Order {
	orders := s.store.Snapshot()
	if orders == nil {
		return []fulfillment.Order{}
	}
	return orders
}

// AssignOrder records who is picking the order. The assignee is stored exactly as
// given; an empty value clears the assignment.
// Returns ErrOrderNotFound when the order is not stored.
func (s *OrderService) AssignOrder(ctx context.Context, orderID, assignee string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fulfillment.ErrInvalidOrderID
	}

	found := s.store.MutateIfPresent(orderID, func(o *fulfillment.Order) {
		o.Assign(assignee)
	})
	if !found {
		return fmt.Errorf("assign %s: %w", orderID, fulfillment.ErrOrderNotFound)
	}
	s.logger.Info("Order assigned", zap.String("order_id", orderID), zap.String("assignee", assignee))
	return nil
}

// MarkShipped moves the order to Processed. Shipping an already processed order is a no-op.
// Returns ErrOrderNotFound when the order is not stored.
func (s *OrderService) MarkShipped(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fulfillment.ErrInvalidOrderID
	}

	found := s.store.MutateIfPresent(orderID, func(o *fulfillment.Order) {
		o.MarkShipped()
	})
	if !found {
		return fmt.Errorf("ship %s: %w", orderID, fulfillment.ErrOrderNotFound)
	}
	s.logger.Info("Order marked shipped", zap.String("order_id", orderID))
	return nil
}

// LookupProduct fetches live stock for a listing. Any failure, or a service built
// without a marketplace, yields {success:false}.
func (s *OrderService) LookupProduct(ctx context.Context, itemID int64) ProductLookupResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "lookup", telemetry.AttrItemID.Int64(itemID))
	defer span.End()

	if itemID <= 0 || s.market == nil {
		return FailedLookup()
	}

	payload, err := s.market.FetchItemInfo(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Product lookup failed", zap.Int64("item_id", itemID), zap.Error(err))
		return FailedLookup()
	}

	info, err := s.parser.ParseItemInfo(payload)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Product payload rejected", zap.Int64("item_id", itemID), zap.Error(err))
		return FailedLookup()
	}

	return ToProductLookupResult(info)
}

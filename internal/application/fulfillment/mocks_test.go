package fulfillment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/integration"
)

// MockMarketplace is a mock implementation of integration.Marketplace.
// FetchOrderDetails may be given a func(ids) ([]byte, error) as its first return.
type MockMarketplace struct {
	mock.Mock
}

var _ integration.Marketplace = (*MockMarketplace)(nil)

func (m *MockMarketplace) ListLiveOrderIDs(ctx context.Context, from, to time.Time) ([]string, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMarketplace) FetchOrderDetails(ctx context.Context, orderIDs []string) ([]byte, error) {
	args := m.Called(ctx, orderIDs)
	if fn, ok := args.Get(0).(func([]string) ([]byte, error)); ok {
		return fn(orderIDs)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockMarketplace) FetchItemInfo(ctx context.Context, itemID int64) ([]byte, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockMarketplace) RefreshAuth(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// stubParser reads comma separated order IDs. IDs prefixed "BAD" are malformed
// records; the payload "BROKEN" fails as a whole.
type stubParser struct {
	item    *integration.ProductInfo
	itemErr error
}

var errBrokenPayload = errors.New("broken payload")

func (p *stubParser) ParseOrderDetails(payload []byte) (*fulfillment.ParseResult, error) {
	text := string(payload)
	if text == "BROKEN" {
		return nil, errBrokenPayload
	}
	result := &fulfillment.ParseResult{}
	if text == "" {
		return result, nil
	}
	for _, id := range strings.Split(text, ",") {
		if strings.HasPrefix(id, "BAD") {
			result.Failures = append(result.Failures, fulfillment.ParseFailure{OrderID: id, Err: fulfillment.ErrMalformedPayload})
			continue
		}
		item := fulfillment.NewOrderItem(1, "Tee", "Red [A1-03]", "", 1, "SKU-"+id)
		order, err := fulfillment.NewOrder(id, 1772352000, []fulfillment.OrderItem{item})
		if err != nil {
			return nil, err
		}
		result.Orders = append(result.Orders, *order)
	}
	return result, nil
}

func (p *stubParser) ParseItemInfo(payload []byte) (*integration.ProductInfo, error) {
	return p.item, p.itemErr
}

// echoDetails answers a detail request with the requested IDs
func echoDetails(ids []string) ([]byte, error) {
	return []byte(strings.Join(ids, ",")), nil
}

// recordingObserver keeps every report it receives
type recordingObserver struct {
	mu      sync.Mutex
	reports []fulfillment.PassReport
}

func (o *recordingObserver) ObservePass(_ context.Context, r fulfillment.PassReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, r)
}

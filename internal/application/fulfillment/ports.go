package fulfillment

import (
	"context"

	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/integration"
)

// DetailParser turns raw marketplace payloads into domain values
type DetailParser interface {
	ParseOrderDetails(payload []byte) (*fulfillment.ParseResult, error)
	ParseItemInfo(payload []byte) (*integration.ProductInfo, error)
}

// SyncObserver is notified after every reconciliation pass
type SyncObserver interface {
	ObservePass(ctx context.Context, report fulfillment.PassReport)
}

package integration

import (
	"context"
	"errors"
	"time"
)

// ---------------------------------------------------------------------------
// Marketplace Errors
// ---------------------------------------------------------------------------

var (
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")
	ErrTooManyOrderIDs         = errors.New("integration: too many order IDs in one detail request")
	ErrTokenNotFound           = errors.New("integration: token not found")
)

// MaxDetailBatchSize is the most order IDs the marketplace accepts in one detail request
const MaxDetailBatchSize = 50

// Marketplace is the port to the remote marketplace.
// Payloads are returned raw; parsing belongs to a separate, pure step.
type Marketplace interface {
	// ListLiveOrderIDs lists order IDs created within [from, to] that are still live
	ListLiveOrderIDs(ctx context.Context, from, to time.Time) ([]string, error)

	// FetchOrderDetails returns the detail payload for at most MaxDetailBatchSize orders
	FetchOrderDetails(ctx context.Context, orderIDs []string) ([]byte, error)

	// FetchItemInfo returns the base-info payload for one listing
	FetchItemInfo(ctx context.Context, itemID int64) ([]byte, error)

	// RefreshAuth exchanges the refresh token for a new token pair
	RefreshAuth(ctx context.Context) error
}

// IsAuthError reports whether err means the access token was rejected
func IsAuthError(err error) bool {
	return errors.Is(err, ErrPlatformAuthFailed)
}

package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/integration"
)

// Constants for Shopee API
const (
	// maxShopeeResponseSize limits the response body size to prevent memory exhaustion
	maxShopeeResponseSize = 10 * 1024 * 1024 // 10MB max response
	// maxShopeeListPages caps cursor pagination of one listing
	maxShopeeListPages = 100

	shopeePathOrderList   = "/api/v2/order/get_order_list"
	shopeePathOrderDetail = "/api/v2/order/get_order_detail"
	shopeePathItemInfo    = "/api/v2/product/get_item_base_info"
	shopeePathTokenGet    = "/api/v2/auth/access_token/get"
)

// ShopeeAdapter implements integration.Marketplace for the Shopee Open Platform v2
type ShopeeAdapter struct {
	config     *ShopeeConfig
	httpClient *http.Client
	tokens     integration.TokenStore
	logger     *zap.Logger
	now        func() time.Time

	mu    sync.RWMutex // Protects token
	token integration.TokenPair

	// refreshMu serializes refreshes so one refresh token is never spent twice
	refreshMu sync.Mutex
}

// ShopeeAdapterOption configures a ShopeeAdapter
type ShopeeAdapterOption func(*ShopeeAdapter)

// WithShopeeTokenStore sets where refreshed tokens are persisted
func WithShopeeTokenStore(store integration.TokenStore) ShopeeAdapterOption {
	return func(a *ShopeeAdapter) {
		a.tokens = store
	}
}

// WithShopeeLogger sets the logger
func WithShopeeLogger(logger *zap.Logger) ShopeeAdapterOption {
	return func(a *ShopeeAdapter) {
		a.logger = logger
	}
}

// WithShopeeHTTPClient replaces the HTTP client
func WithShopeeHTTPClient(client *http.Client) ShopeeAdapterOption {
	return func(a *ShopeeAdapter) {
		a.httpClient = client
	}
}

// WithShopeeClock sets the time source used for timestamps
func WithShopeeClock(now func() time.Time) ShopeeAdapterOption {
	return func(a *ShopeeAdapter) {
		a.now = now
	}
}

// NewShopeeAdapter creates a new Shopee adapter. A token pair found in the token store
// takes precedence over the tokens in config.
func NewShopeeAdapter(ctx context.Context, config *ShopeeConfig, opts ...ShopeeAdapterOption) (*ShopeeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &ShopeeAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: zap.NewNop(),
		now:    time.Now,
		token: integration.TokenPair{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
		},
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.tokens != nil {
		stored, err := a.tokens.Load(ctx, config.ShopID)
		switch {
		case err == nil && !stored.IsEmpty():
			a.token = stored
		case err != nil && !errors.Is(err, integration.ErrTokenNotFound):
			a.logger.Warn("failed to load stored Shopee token, using configured token", zap.Error(err))
		}
	}

	return a, nil
}

// HasToken reports whether an access or refresh token is available
func (a *ShopeeAdapter) HasToken() bool {
	t := a.currentToken()
	return t.AccessToken != "" || t.RefreshToken != ""
}

func (a *ShopeeAdapter) currentToken() integration.TokenPair {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// ListLiveOrderIDs lists the SNs of orders created within [from, to] in the configured
// live status, following the cursor until the listing is exhausted. A listing that
// still has pages after maxShopeeListPages is an error, never a partial result.
func (a *ShopeeAdapter) ListLiveOrderIDs(ctx context.Context, from, to time.Time) ([]string, error) {
	ids := make([]string, 0)
	cursor := ""

	for page := 0; page < maxShopeeListPages; page++ {
		params := url.Values{}
		params.Set("time_range_field", "create_time")
		params.Set("time_from", strconv.FormatInt(from.Unix(), 10))
		params.Set("time_to", strconv.FormatInt(to.Unix(), 10))
		params.Set("page_size", strconv.Itoa(a.config.PageSize))
		params.Set("cursor", cursor)
		params.Set("order_status", a.config.OrderStatus)

		body, err := a.doShopRequest(ctx, http.MethodGet, shopeePathOrderList, params)
		if err != nil {
			return nil, err
		}

		var resp ShopeeOrderListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: order list: %v", integration.ErrPlatformInvalidResponse, err)
		}
		if resp.Response == nil {
			return nil, fmt.Errorf("%w: order list without response", integration.ErrPlatformInvalidResponse)
		}

		for _, o := range resp.Response.OrderList {
			if o.OrderSN != "" {
				ids = append(ids, o.OrderSN)
			}
		}

		if !resp.Response.More || resp.Response.NextCursor == "" {
			return ids, nil
		}
		cursor = resp.Response.NextCursor
	}

	a.logger.Warn("Shopee order listing hit page cap",
		zap.Int("max_pages", maxShopeeListPages),
		zap.Int("order_count", len(ids)),
	)
	return nil, fmt.Errorf("%w: listing truncated after %d pages", integration.ErrPlatformInvalidResponse, maxShopeeListPages)
}

// FetchOrderDetails returns the raw get_order_detail payload for up to
// integration.MaxDetailBatchSize order SNs
func (a *ShopeeAdapter) FetchOrderDetails(ctx context.Context, orderIDs []string) ([]byte, error) {
	if len(orderIDs) == 0 {
		return nil, fmt.Errorf("%w: no order IDs", integration.ErrPlatformRequestFailed)
	}
	if len(orderIDs) > integration.MaxDetailBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", integration.ErrTooManyOrderIDs, len(orderIDs), integration.MaxDetailBatchSize)
	}

	params := url.Values{}
	params.Set("order_sn_list", strings.Join(orderIDs, ","))
	params.Set("response_optional_fields", "item_list")

	return a.doShopRequest(ctx, http.MethodGet, shopeePathOrderDetail, params)
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// FetchItemInfo returns the raw get_item_base_info payload for one item
func (a *ShopeeAdapter) FetchItemInfo(ctx context.Context, itemID int64) ([]byte, error) {
	if itemID <= 0 {
		return nil, fmt.Errorf("%w: invalid item ID %d", integration.ErrPlatformRequestFailed, itemID)
	}

	params := url.Values{}
	params.Set("item_id_list", strconv.FormatInt(itemID, 10))

	return a.doShopRequest(ctx, http.MethodGet, shopeePathItemInfo, params)
}

// ---------------------------------------------------------------------------
// Auth Operations
// ---------------------------------------------------------------------------

// RefreshAuth exchanges the refresh token for a new pair and persists it
func (a *ShopeeAdapter) RefreshAuth(ctx context.Context) error {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	current := a.currentToken()
	if current.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token", integration.ErrPlatformAuthFailed)
	}

	reqBody, err := json.Marshal(ShopeeTokenRequest{
		RefreshToken: current.RefreshToken,
		PartnerID:    a.config.PartnerID,
		ShopID:       a.config.ShopID,
	})
	if err != nil {
		return fmt.Errorf("shopee: failed to marshal token request: %w", err)
	}

	timestamp := a.now().Unix()
	params := url.Values{}
	params.Set("partner_id", strconv.FormatInt(a.config.PartnerID, 10))
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))
	params.Set("sign", a.config.SignPublic(shopeePathTokenGet, timestamp))

	body, err := a.doRequest(ctx, http.MethodPost, shopeePathTokenGet, params, reqBody)
	if err != nil {
		// The token endpoint reports a bad refresh token like any other auth failure.
		if errors.Is(err, integration.ErrPlatformRequestFailed) {
			return fmt.Errorf("%w: %v", integration.ErrPlatformAuthFailed, err)
		}
		return err
	}

	var resp ShopeeTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: token response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("%w: token response without access_token", integration.ErrPlatformInvalidResponse)
	}

	pair := integration.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = current.RefreshToken
	}
	if resp.ExpireIn > 0 {
		pair.ExpiresAt = a.now().Add(time.Duration(resp.ExpireIn) * time.Second)
	}

	a.mu.Lock()
	a.token = pair
	a.mu.Unlock()

	if a.tokens != nil {
		if err := a.tokens.Save(ctx, a.config.ShopID, pair); err != nil {
			a.logger.Warn("failed to persist refreshed Shopee token", zap.Error(err))
		}
	}

	a.logger.Info("Shopee access token refreshed", zap.Time("expires_at", pair.ExpiresAt))
	return nil
}

// ---------------------------------------------------------------------------
// Helper Methods
// ---------------------------------------------------------------------------

// doShopRequest signs and sends a shop-level call
func (a *ShopeeAdapter) doShopRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	token := a.currentToken()
	timestamp := a.now().Unix()

	params.Set("partner_id", strconv.FormatInt(a.config.PartnerID, 10))
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))
	params.Set("access_token", token.AccessToken)
	params.Set("shop_id", strconv.FormatInt(a.config.ShopID, 10))
	params.Set("sign", a.config.SignShop(path, timestamp, token.AccessToken))

	return a.doRequest(ctx, method, path, params, nil)
}

// doRequest sends the request and classifies marketplace errors
func (a *ShopeeAdapter) doRequest(ctx context.Context, method, path string, params url.Values, body []byte) ([]byte, error) {
	endpoint := a.config.APIBaseURL + path + "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("shopee: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := a.now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxShopeeResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrPlatformUnavailable, err)
	}

	a.logger.Debug("Shopee API call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", a.now().Sub(start)),
	)

	if err := classifyShopeeResponse(resp.StatusCode, respBody); err != nil {
		return nil, fmt.Errorf("shopee %s: %w", path, err)
	}
	return respBody, nil
}

// classifyShopeeResponse maps HTTP status and envelope error codes to integration errors.
// A decoded envelope is trusted as is; only an undecodable body is searched for the
// auth error code, since payloads carry free text such as item names and buyer notes.
func classifyShopeeResponse(status int, body []byte) error {
	var env ShopeeResponse
	decodeErr := json.Unmarshal(body, &env)
	if decodeErr != nil && bytes.Contains(body, []byte(shopeeErrAuth)) {
		return integration.ErrPlatformAuthFailed
	}
	if decodeErr == nil && !env.IsSuccess() {
		switch {
		case env.isAuthError():
			return fmt.Errorf("%w: %s", integration.ErrPlatformAuthFailed, env.Message)
		case env.Error == shopeeErrTooManyRequest:
			return fmt.Errorf("%w: %s", integration.ErrPlatformRateLimited, env.Message)
		default:
			return fmt.Errorf("%w: %s - %s", integration.ErrPlatformRequestFailed, env.Error, env.Message)
		}
	}

	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformAuthFailed, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRateLimited, status)
	case status >= 500:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformUnavailable, status)
	case status >= 400:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, status)
	}

	if decodeErr != nil {
		return fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, decodeErr)
	}
	return nil
}

// Ensure ShopeeAdapter implements Marketplace
var _ integration.Marketplace = (*ShopeeAdapter)(nil)

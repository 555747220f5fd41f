package ecommerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// ShopeeConfig holds configuration for Shopee Open Platform v2 integration
type ShopeeConfig struct {
	// PartnerID is the app's partner ID from the Shopee open platform console
	PartnerID int64
	// PartnerKey is the secret used to sign requests
	PartnerKey string
	// ShopID is the authorized shop
	ShopID int64
	// AccessToken is the initial shop access token; a stored token takes precedence
	AccessToken string
	// RefreshToken is the initial refresh token
	RefreshToken string
	// APIBaseURL is the base URL for the Shopee API (production or sandbox)
	APIBaseURL string
	// IsSandbox indicates if this is a sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// PageSize is the order list page size (1..100)
	PageSize int
	// OrderStatus is the order_status filter that defines the live listing
	OrderStatus string
}

const (
	// ShopeeProductionAPIURL is the production API endpoint
	ShopeeProductionAPIURL = "https://partner.shopeemobile.com"
	// ShopeeSandboxAPIURL is the sandbox API endpoint
	ShopeeSandboxAPIURL = "https://partner.test-stable.shopeemobile.com"

	// ShopeeDefaultOrderStatus lists orders paid and waiting to be packed
	ShopeeDefaultOrderStatus = "READY_TO_SHIP"

	shopeeDefaultTimeoutSeconds = 30
	shopeeMaxPageSize           = 100
)

// Errors for Shopee configuration
var (
	ErrShopeeConfigMissingPartnerID  = errors.New("shopee: partner ID is required")
	ErrShopeeConfigMissingPartnerKey = errors.New("shopee: partner key is required")
	ErrShopeeConfigMissingShopID     = errors.New("shopee: shop ID is required")
)

// NewShopeeConfig creates a new Shopee configuration with defaults
func NewShopeeConfig(partnerID int64, partnerKey string, shopID int64) *ShopeeConfig {
	return &ShopeeConfig{
		PartnerID:      partnerID,
		PartnerKey:     partnerKey,
		ShopID:         shopID,
		APIBaseURL:     ShopeeProductionAPIURL,
		TimeoutSeconds: shopeeDefaultTimeoutSeconds,
		PageSize:       shopeeMaxPageSize,
		OrderStatus:    ShopeeDefaultOrderStatus,
	}
}

// Validate validates the configuration and fills defaults
func (c *ShopeeConfig) Validate() error {
	if c.PartnerID <= 0 {
		return ErrShopeeConfigMissingPartnerID
	}
	if c.PartnerKey == "" {
		return ErrShopeeConfigMissingPartnerKey
	}
	if c.ShopID <= 0 {
		return ErrShopeeConfigMissingShopID
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = ShopeeSandboxAPIURL
		} else {
			c.APIBaseURL = ShopeeProductionAPIURL
		}
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = shopeeDefaultTimeoutSeconds
	}
	if c.PageSize <= 0 || c.PageSize > shopeeMaxPageSize {
		c.PageSize = shopeeMaxPageSize
	}
	if c.OrderStatus == "" {
		c.OrderStatus = ShopeeDefaultOrderStatus
	}
	return nil
}

// SignShop signs a shop-level API call:
// HMAC-SHA256(partner_key, partner_id + path + timestamp + access_token + shop_id)
func (c *ShopeeConfig) SignShop(path string, timestamp int64, accessToken string) string {
	base := strconv.FormatInt(c.PartnerID, 10) + path + strconv.FormatInt(timestamp, 10) +
		accessToken + strconv.FormatInt(c.ShopID, 10)
	return c.hmacHex(base)
}

// SignPublic signs a public API call such as the token endpoints:
// HMAC-SHA256(partner_key, partner_id + path + timestamp)
func (c *ShopeeConfig) SignPublic(path string, timestamp int64) string {
	base := strconv.FormatInt(c.PartnerID, 10) + path + strconv.FormatInt(timestamp, 10)
	return c.hmacHex(base)
}

func (c *ShopeeConfig) hmacHex(base string) string {
	mac := hmac.New(sha256.New, []byte(c.PartnerKey))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

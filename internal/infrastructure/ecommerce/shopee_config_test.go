package ecommerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestShopeeConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *ShopeeConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &ShopeeConfig{PartnerID: 1001, PartnerKey: "key", ShopID: 2002},
			wantErr: nil,
		},
		{
			name:    "missing partner ID",
			config:  &ShopeeConfig{PartnerKey: "key", ShopID: 2002},
			wantErr: ErrShopeeConfigMissingPartnerID,
		},
		{
			name:    "missing partner key",
			config:  &ShopeeConfig{PartnerID: 1001, ShopID: 2002},
			wantErr: ErrShopeeConfigMissingPartnerKey,
		},
		{
			name:    "missing shop ID",
			config:  &ShopeeConfig{PartnerID: 1001, PartnerKey: "key"},
			wantErr: ErrShopeeConfigMissingShopID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShopeeConfig_Validate_Defaults(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		c := &ShopeeConfig{PartnerID: 1, PartnerKey: "k", ShopID: 2, PageSize: 500}
		require.NoError(t, c.Validate())
		assert.Equal(t, ShopeeProductionAPIURL, c.APIBaseURL)
		assert.Equal(t, 30, c.TimeoutSeconds)
		assert.Equal(t, 100, c.PageSize)
		assert.Equal(t, ShopeeDefaultOrderStatus, c.OrderStatus)
	})

	t.Run("sandbox", func(t *testing.T) {
		c := &ShopeeConfig{PartnerID: 1, PartnerKey: "k", ShopID: 2, IsSandbox: true}
		require.NoError(t, c.Validate())
		assert.Equal(t, ShopeeSandboxAPIURL, c.APIBaseURL)
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		c := &ShopeeConfig{PartnerID: 1, PartnerKey: "k", ShopID: 2, APIBaseURL: "http://localhost:9000/"}
		require.NoError(t, c.Validate())
		assert.Equal(t, "http://localhost:9000", c.APIBaseURL)
	})
}

func TestNewShopeeConfig(t *testing.T) {
	c := NewShopeeConfig(1001, "secret", 2002)
	assert.Equal(t, int64(1001), c.PartnerID)
	assert.Equal(t, ShopeeProductionAPIURL, c.APIBaseURL)
	assert.Equal(t, 100, c.PageSize)
}

func TestShopeeConfig_SignShop(t *testing.T) {
	c := NewShopeeConfig(1001, "secret", 2002)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("1001/api/v2/order/get_order_list1700000000tok2002"))
	expected := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, c.SignShop("/api/v2/order/get_order_list", 1700000000, "tok"))
	assert.NotEqual(t, expected, c.SignShop("/api/v2/order/get_order_list", 1700000001, "tok"))
}

func TestShopeeConfig_SignPublic(t *testing.T) {
	c := NewShopeeConfig(1001, "secret", 2002)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("1001/api/v2/auth/access_token/get1700000000"))

	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), c.SignPublic("/api/v2/auth/access_token/get", 1700000000))
}

package ecommerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/integration"
)

const detailPayload = `{
  "error": "",
  "message": "",
  "request_id": "r1",
  "response": {
    "order_list": [
      {
        "order_sn": "240101AAA",
        "create_time": 1704067200,
        "item_list": [
          {
            "item_id": 111,
            "item_name": "Cotton Tee",
            "model_name": "Black,L [A1-03]",
            "model_sku": "TEE-BLK-L",
            "model_quantity_purchased": 2,
            "image_info": {"image_url": "https://cf.shopee/img/1"}
          },
          {
            "item_id": 112,
            "item_name": "Socks",
            "model_name": "Free size",
            "model_sku": null,
            "model_quantity_purchased": 1,
            "image_info": {"image_url": "https://cf.shopee/img/2"}
          }
        ]
      },
      {
        "order_sn": "240101BBB",
        "create_time": 1704067300,
        "item_list": [
          {
            "item_id": 113,
            "item_name": "Cap",
            "model_quantity_purchased": 1,
            "image_info": {"image_url": "https://cf.shopee/img/3"}
          }
        ]
      },
      {
        "order_sn": "240101CCC",
        "item_list": []
      },
      {
        "order_sn": "240101DDD",
        "create_time": "not-a-number",
        "item_list": []
      },
      {
        "order_sn": "240101EEE",
        "create_time": 1704067400,
        "item_list": [
          {"item_id": 114, "item_name": "Bag", "model_quantity_purchased": 1}
        ]
      }
    ]
  }
}`

func TestShopeeParser_ParseOrderDetails(t *testing.T) {
	p := NewShopeeParser()

	result, err := p.ParseOrderDetails([]byte(detailPayload))
	require.NoError(t, err)

	require.Len(t, result.Orders, 2)

	first := result.Orders[0]
	assert.Equal(t, "240101AAA", first.OrderID)
	assert.Equal(t, int64(1704067200), first.CreatedAt)
	assert.Equal(t, fulfillment.OrderStatusNew, first.Status)
	assert.Empty(t, first.AssignedTo)
	require.Len(t, first.Items, 2)

	tee := first.Items[0]
	assert.Equal(t, int64(111), tee.ItemID)
	assert.Equal(t, "Cotton Tee", tee.ProductName)
	assert.Equal(t, "Black,L [A1-03]", tee.ModelName)
	assert.Equal(t, "https://cf.shopee/img/1", tee.ImageURL)
	assert.Equal(t, 2, tee.Quantity)
	assert.Equal(t, "TEE-BLK-L", tee.SKU)
	assert.Equal(t, "A1-03", tee.Location)

	socks := first.Items[1]
	assert.Empty(t, socks.SKU, "null SKU becomes empty")
	assert.Equal(t, fulfillment.DefaultLocation, socks.Location)

	second := result.Orders[1]
	assert.Equal(t, "240101BBB", second.OrderID)
	assert.Equal(t, fulfillment.DefaultLocation, second.Items[0].Location, "absent model_name uses default location")

	require.Len(t, result.Failures, 3)
	failedIDs := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		assert.ErrorIs(t, f.Err, fulfillment.ErrMalformedPayload)
		failedIDs = append(failedIDs, f.OrderID)
	}
	assert.Equal(t, []string{"240101CCC", "240101DDD", "240101EEE"}, failedIDs)
}

func TestShopeeParser_ParseOrderDetails_Envelope(t *testing.T) {
	p := NewShopeeParser()

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `<html>oops</html>`},
		{"missing response", `{"error":"","message":""}`},
		{"missing order_list", `{"error":"","response":{}}`},
		{"error envelope", `{"error":"error_param","message":"bad order_sn","response":{"order_list":[]}}`},
		{"order_list wrong type", `{"error":"","response":{"order_list":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseOrderDetails([]byte(tt.payload))
			assert.ErrorIs(t, err, fulfillment.ErrMalformedPayload)
		})
	}
}

func TestShopeeParser_ParseOrderDetails_EmptyList(t *testing.T) {
	result, err := NewShopeeParser().ParseOrderDetails([]byte(`{"error":"","response":{"order_list":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, result.Orders)
	assert.Empty(t, result.Failures)
}

const itemInfoPayload = `{
  "error": "",
  "response": {
    "item_list": [
      {
        "item_id": 555,
        "item_name": "Canvas Tote",
        "image": {"image_url_list": ["https://cf.shopee/tote-main", "https://cf.shopee/tote-2"]},
        "model_list": [
          {"model_id": 1, "model_name": "Red [B2]", "stock_info_v2": {"summary_info": {"total_available_stock": 14}}},
          {"model_id": 2, "model_name": "Blue", "stock_info": [{"stock_type": 2, "normal_stock": 3}]},
          {"model_id": 3, "model_name": "Green"}
        ]
      }
    ]
  }
}`

func TestShopeeParser_ParseItemInfo(t *testing.T) {
	info, err := NewShopeeParser().ParseItemInfo([]byte(itemInfoPayload))
	require.NoError(t, err)

	assert.Equal(t, int64(555), info.ItemID)
	assert.Equal(t, "Canvas Tote", info.Name)
	assert.Equal(t, "https://cf.shopee/tote-main", info.ImageURL)
	assert.Equal(t, []integration.ProductVariation{
		{Name: "Red [B2]", Stock: 14, Image: "https://cf.shopee/tote-main"},
		{Name: "Blue", Stock: 3, Image: "https://cf.shopee/tote-main"},
		{Name: "Green", Stock: 0, Image: "https://cf.shopee/tote-main"},
	}, info.Variations)
}

func TestShopeeParser_ParseItemInfo_Failures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"not json", `nope`, integration.ErrPlatformInvalidResponse},
		{"empty item list", `{"error":"","response":{"item_list":[]}}`, integration.ErrPlatformInvalidResponse},
		{"missing name", `{"error":"","response":{"item_list":[{"item_id":1}]}}`, integration.ErrPlatformInvalidResponse},
		{"error envelope", `{"error":"error_item_not_found","message":"item not found"}`, integration.ErrPlatformRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShopeeParser().ParseItemInfo([]byte(tt.payload))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestShopeeParser_ParseItemInfo_NoModels(t *testing.T) {
	info, err := NewShopeeParser().ParseItemInfo([]byte(`{"error":"","response":{"item_list":[{"item_id":9,"item_name":"Plain"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "Plain", info.Name)
	assert.Empty(t, info.ImageURL)
	assert.NotNil(t, info.Variations)
	assert.Empty(t, info.Variations)
}

package ecommerce

import (
	"encoding/json"
	"fmt"

	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/integration"
)

// ShopeeParser turns Shopee v2 payloads into domain objects. It is stateless and pure.
type ShopeeParser struct{}

// NewShopeeParser creates a parser
func NewShopeeParser() *ShopeeParser {
	return &ShopeeParser{}
}

// ParseOrderDetails parses a get_order_detail payload.
// A payload without response.order_list fails as a whole; a bad record only skips itself.
func (p *ShopeeParser) ParseOrderDetails(payload []byte) (*fulfillment.ParseResult, error) {
	var resp ShopeeOrderDetailResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", fulfillment.ErrMalformedPayload, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s - %s", fulfillment.ErrMalformedPayload, resp.Error, resp.Message)
	}
	if resp.Response == nil || resp.Response.OrderList == nil {
		return nil, fmt.Errorf("%w: missing response.order_list", fulfillment.ErrMalformedPayload)
	}

	result := &fulfillment.ParseResult{
		Orders: make([]fulfillment.Order, 0, len(resp.Response.OrderList)),
	}
	for i, raw := range resp.Response.OrderList {
		order, err := parseOrderRecord(raw)
		if err != nil {
			result.Failures = append(result.Failures, fulfillment.ParseFailure{
				OrderID: peekOrderSN(raw),
				Err:     fmt.Errorf("order_list[%d]: %w", i, err),
			})
			continue
		}
		result.Orders = append(result.Orders, *order)
	}
	return result, nil
}

func parseOrderRecord(raw json.RawMessage) (*fulfillment.Order, error) {
	var rec ShopeeOrderDetail
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", fulfillment.ErrMalformedPayload, err)
	}
	if rec.OrderSN == nil || *rec.OrderSN == "" {
		return nil, missingField("order_sn")
	}
	if rec.CreateTime == nil {
		return nil, missingField("create_time")
	}
	if rec.ItemList == nil {
		return nil, missingField("item_list")
	}

	items := make([]fulfillment.OrderItem, 0, len(rec.ItemList))
	for j, it := range rec.ItemList {
		item, err := parseOrderItem(it)
		if err != nil {
			return nil, fmt.Errorf("item_list[%d]: %w", j, err)
		}
		items = append(items, item)
	}
	return fulfillment.NewOrder(*rec.OrderSN, *rec.CreateTime, items)
}

func parseOrderItem(it ShopeeOrderItem) (fulfillment.OrderItem, error) {
	switch {
	case it.ItemID == nil:
		return fulfillment.OrderItem{}, missingField("item_id")
	case it.ItemName == nil:
		return fulfillment.OrderItem{}, missingField("item_name")
	case it.ImageInfo == nil || it.ImageInfo.ImageURL == nil:
		return fulfillment.OrderItem{}, missingField("image_info.image_url")
	case it.ModelQuantityPurchased == nil:
		return fulfillment.OrderItem{}, missingField("model_quantity_purchased")
	}
	return fulfillment.NewOrderItem(
		*it.ItemID,
		*it.ItemName,
		deref(it.ModelName),
		*it.ImageInfo.ImageURL,
		*it.ModelQuantityPurchased,
		deref(it.ModelSKU),
	), nil
}

// peekOrderSN recovers the order SN from a record that failed full decoding
func peekOrderSN(raw json.RawMessage) string {
	var head struct {
		OrderSN string `json:"order_sn"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ""
	}
	return head.OrderSN
}

// ParseItemInfo parses a get_item_base_info payload for a single item.
// Stock comes from stock_info_v2 when present, else the legacy stock_info.
func (p *ShopeeParser) ParseItemInfo(payload []byte) (*integration.ProductInfo, error) {
	var resp ShopeeItemBaseInfoResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s - %s", integration.ErrPlatformRequestFailed, resp.Error, resp.Message)
	}
	if resp.Response == nil || len(resp.Response.ItemList) == 0 {
		return nil, fmt.Errorf("%w: empty item_list", integration.ErrPlatformInvalidResponse)
	}

	item := resp.Response.ItemList[0]
	if item.ItemName == nil {
		return nil, fmt.Errorf("%w: missing item_name", integration.ErrPlatformInvalidResponse)
	}

	info := &integration.ProductInfo{
		ItemID:     item.ItemID,
		Name:       *item.ItemName,
		Variations: make([]integration.ProductVariation, 0, len(item.ModelList)),
	}
	if item.Image != nil && len(item.Image.ImageURLList) > 0 {
		info.ImageURL = item.Image.ImageURLList[0]
	}
	for _, m := range item.ModelList {
		info.Variations = append(info.Variations, integration.ProductVariation{
			Name:  m.ModelName,
			Stock: modelStock(m),
			Image: info.ImageURL,
		})
	}
	return info, nil
}

func modelStock(m ShopeeItemModel) int {
	if m.StockInfoV2 != nil && m.StockInfoV2.SummaryInfo != nil && m.StockInfoV2.SummaryInfo.TotalAvailableStock != nil {
		return *m.StockInfoV2.SummaryInfo.TotalAvailableStock
	}
	if len(m.StockInfo) > 0 {
		return m.StockInfo[0].NormalStock
	}
	return 0
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing %s", fulfillment.ErrMalformedPayload, name)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

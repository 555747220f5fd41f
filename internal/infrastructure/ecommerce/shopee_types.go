package ecommerce

import "encoding/json"

// ---------------------------------------------------------------------------
// Common Shopee API Response Types
// ---------------------------------------------------------------------------

// ShopeeResponse is the envelope shared by all Shopee v2 responses
type ShopeeResponse struct {
	// Error is empty on success, otherwise an error code such as "error_auth"
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

// IsSuccess returns true if the response carries no error code
func (r *ShopeeResponse) IsSuccess() bool {
	return r.Error == ""
}

// Shopee error codes the adapter distinguishes
const (
	shopeeErrAuth            = "error_auth"
	shopeeErrInvalidToken    = "invalid_access_token"
	shopeeErrInvalidTokenAlt = "invalid_acceess_token"
	shopeeErrTokenInvalid    = "error_invalid_token"
	shopeeErrTooManyRequest  = "error_too_many_request"
)

// isAuthError returns true for error codes meaning the token was rejected
func (r *ShopeeResponse) isAuthError() bool {
	switch r.Error {
	case shopeeErrAuth, shopeeErrInvalidToken, shopeeErrInvalidTokenAlt, shopeeErrTokenInvalid:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Order Related Types
// ---------------------------------------------------------------------------

// ShopeeOrderListResponse is the response for /api/v2/order/get_order_list
type ShopeeOrderListResponse struct {
	ShopeeResponse
	Response *ShopeeOrderListData `json:"response,omitempty"`
}

// ShopeeOrderListData is one page of the order listing
type ShopeeOrderListData struct {
	More       bool                  `json:"more"`
	NextCursor string                `json:"next_cursor"`
	OrderList  []ShopeeOrderListItem `json:"order_list"`
}

// ShopeeOrderListItem is one entry of the order listing
type ShopeeOrderListItem struct {
	OrderSN     string `json:"order_sn"`
	OrderStatus string `json:"order_status,omitempty"`
}

// ShopeeOrderDetailResponse is the response for /api/v2/order/get_order_detail.
// Orders stay raw so each record can be decoded and rejected on its own.
type ShopeeOrderDetailResponse struct {
	ShopeeResponse
	Response *ShopeeOrderDetailData `json:"response,omitempty"`
}

// ShopeeOrderDetailData holds the raw order records
type ShopeeOrderDetailData struct {
	OrderList []json.RawMessage `json:"order_list"`
}

// ShopeeOrderDetail is one order record. Pointer fields distinguish absent from zero.
type ShopeeOrderDetail struct {
	OrderSN     *string           `json:"order_sn"`
	CreateTime  *int64            `json:"create_time"`
	OrderStatus string            `json:"order_status,omitempty"`
	ItemList    []ShopeeOrderItem `json:"item_list"`
}

// ShopeeOrderItem is one item of an order record
type ShopeeOrderItem struct {
	ItemID                 *int64           `json:"item_id"`
	ItemName               *string          `json:"item_name"`
	ModelName              *string          `json:"model_name"`
	ModelSKU               *string          `json:"model_sku"`
	ModelQuantityPurchased *int             `json:"model_quantity_purchased"`
	ImageInfo              *ShopeeImageInfo `json:"image_info"`
}

// ShopeeImageInfo holds an item image
type ShopeeImageInfo struct {
	ImageURL *string `json:"image_url"`
}

// ---------------------------------------------------------------------------
// Product Related Types
// ---------------------------------------------------------------------------

// ShopeeItemBaseInfoResponse is the response for /api/v2/product/get_item_base_info
type ShopeeItemBaseInfoResponse struct {
	ShopeeResponse
	Response *ShopeeItemBaseInfoData `json:"response,omitempty"`
}

// ShopeeItemBaseInfoData holds the requested items
type ShopeeItemBaseInfoData struct {
	ItemList []ShopeeItem `json:"item_list"`
}

// ShopeeItem is one listing
type ShopeeItem struct {
	ItemID    int64             `json:"item_id"`
	ItemName  *string           `json:"item_name"`
	Image     *ShopeeItemImage  `json:"image"`
	ModelList []ShopeeItemModel `json:"model_list"`
}

// ShopeeItemImage holds listing images
type ShopeeItemImage struct {
	ImageURLList []string `json:"image_url_list"`
}

// ShopeeItemModel is one variation of a listing
type ShopeeItemModel struct {
	ModelID     int64              `json:"model_id"`
	ModelName   string             `json:"model_name"`
	StockInfoV2 *ShopeeStockInfoV2 `json:"stock_info_v2"`
	StockInfo   []ShopeeStockInfo  `json:"stock_info"`
}

// ShopeeStockInfoV2 is the current stock structure
type ShopeeStockInfoV2 struct {
	SummaryInfo *ShopeeStockSummary `json:"summary_info"`
}

// ShopeeStockSummary summarizes stock across warehouses
type ShopeeStockSummary struct {
	TotalReservedStock  int  `json:"total_reserved_stock"`
	TotalAvailableStock *int `json:"total_available_stock"`
}

// ShopeeStockInfo is the legacy stock structure
type ShopeeStockInfo struct {
	StockType   int `json:"stock_type"`
	NormalStock int `json:"normal_stock"`
}

// ---------------------------------------------------------------------------
// Auth Related Types
// ---------------------------------------------------------------------------

// ShopeeTokenRequest is the body for /api/v2/auth/access_token/get
type ShopeeTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
	PartnerID    int64  `json:"partner_id"`
	ShopID       int64  `json:"shop_id"`
}

// ShopeeTokenResponse is the token endpoint response; fields sit at the top level
type ShopeeTokenResponse struct {
	ShopeeResponse
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int64  `json:"expire_in"`
}

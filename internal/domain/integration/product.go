package integration

// ProductInfo is live listing data used by the product lookup
type ProductInfo struct {
	ItemID     int64
	Name       string
	ImageURL   string
	Variations []ProductVariation
}

// ProductVariation is one model (variant) of a listing
type ProductVariation struct {
	Name  string
	Stock int
	Image string
}

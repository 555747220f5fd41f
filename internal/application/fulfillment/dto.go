package fulfillment

import "github.com/wms/backend/internal/domain/integration"

// ---------------------------------------------------------------------------
// Product Lookup DTOs
// ---------------------------------------------------------------------------

// ProductLookupResult is the live stock view of one listing.
// A failed lookup still carries an empty name and an empty variations array.
type ProductLookupResult struct {
	Success    bool               `json:"success"`
	Name       string             `json:"name"`
	Variations []VariationSummary `json:"variations"`
}

// VariationSummary is one model of a listing
type VariationSummary struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
	Image string `json:"image"`
}

// FailedLookup returns the result reported when a lookup cannot be served
func FailedLookup() ProductLookupResult {
	return ProductLookupResult{Success: false, Name: "", Variations: []VariationSummary{}}
}

// ToProductLookupResult converts marketplace product info to the lookup result.
// Variations without their own image fall back to the listing image.
func ToProductLookupResult(info *integration.ProductInfo) ProductLookupResult {
	if info == nil {
		return FailedLookup()
	}
	variations := make([]VariationSummary, 0, len(info.Variations))
	for _, v := range info.Variations {
		image := v.Image
		if image == "" {
			image = info.ImageURL
		}
		variations = append(variations, VariationSummary{Name: v.Name, Stock: v.Stock, Image: image})
	}
	return ProductLookupResult{Success: true, Name: info.Name, Variations: variations}
}

// ---------------------------------------------------------------------------
// Command DTOs
// ---------------------------------------------------------------------------

// CommandResult reports whether a command found its target order
type CommandResult struct {
	OrderID string `json:"order_id"`
	Found   bool   `json:"found"`
}

package fulfillment

import (
	"regexp"
	"strings"
	"time"
)

// DefaultLocation is used when an item's variant label carries no bracketed bin location
const DefaultLocation = "Warehouse"

// OrderStatus represents the warehouse-side state of an order
type OrderStatus int

const (
	// OrderStatusNew is an order not yet shipped by staff
	OrderStatusNew OrderStatus = 0
	// OrderStatusProcessed is an order staff marked as shipped
	OrderStatusProcessed OrderStatus = 1
)

// String returns the status name
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusNew:
		return "NEW"
	case OrderStatusProcessed:
		return "PROCESSED"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if the status is a known value
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusNew || s == OrderStatusProcessed
}

// Order is one marketplace transaction tracked by the warehouse.
// JSON names match what the picking page reads.
type Order struct {
	OrderID    string      `json:"OrderId"`
	Status     OrderStatus `json:"Status"`
	AssignedTo string      `json:"AssignedTo"`
	// CreatedAt is the marketplace creation time in Unix seconds
	CreatedAt int64       `json:"CreatedAt"`
	Items     []OrderItem `json:"Items"`
	Selected  bool        `json:"Selected"`
}

// OrderItem is one line item within an order.
// Picked, OrderIDs, TotalQty and ShowDetail belong to the cross-order picking view
// and stay zero-valued on the sync path.
type OrderItem struct {
	ItemID      int64    `json:"ItemId"`
	ModelName   string   `json:"ModelName"`
	ProductName string   `json:"ProductName"`
	ImageURL    string   `json:"ImageUrl"`
	Quantity    int      `json:"Quantity"`
	SKU         string   `json:"SKU"`
	Location    string   `json:"Location"`
	Picked      bool     `json:"Picked"`
	OrderIDs    []string `json:"OrderIds"`
	TotalQty    int      `json:"TotalQty"`
	ShowDetail  bool     `json:"ShowDetail"`
}

// NewOrder creates a New order with the given marketplace ID, creation time and items
func NewOrder(orderID string, createdAt int64, items []OrderItem) (*Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrInvalidOrderID
	}
	if items == nil {
		items = []OrderItem{}
	}
	for i := range items {
		if items[i].OrderIDs == nil {
			items[i].OrderIDs = []string{}
		}
	}
	return &Order{
		OrderID:   orderID,
		Status:    OrderStatusNew,
		CreatedAt: createdAt,
		Items:     items,
	}, nil
}

// NewOrderItem creates a line item and derives its location from the variant label
func NewOrderItem(itemID int64, productName, modelName, imageURL string, quantity int, sku string) OrderItem {
	return OrderItem{
		ItemID:      itemID,
		ProductName: productName,
		ModelName:   modelName,
		ImageURL:    imageURL,
		Quantity:    quantity,
		SKU:         sku,
		Location:    DeriveLocation(modelName),
		OrderIDs:    []string{},
	}
}

// CreatedTime returns the creation time as time.Time
func (o *Order) CreatedTime() time.Time {
	return time.Unix(o.CreatedAt, 0)
}

// IsProcessed returns true if staff marked the order as shipped
func (o *Order) IsProcessed() bool {
	return o.Status == OrderStatusProcessed
}

// Assign sets the staff member responsible for picking
func (o *Order) Assign(assignee string) {
	o.AssignedTo = assignee
}

// MarkShipped moves the order to Processed. Calling it again is a no-op.
func (o *Order) MarkShipped() {
	o.Status = OrderStatusProcessed
}

// Clone returns a deep copy that shares no slices with the receiver
func (o *Order) Clone() Order {
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		c.Items[i] = item
		c.Items[i].OrderIDs = append([]string{}, item.OrderIDs...)
	}
	return c
}

var locationPattern = regexp.MustCompile(`\[(.*?)\]`)

// DeriveLocation extracts the bin location from the first bracketed segment of a
// variant label, e.g. "Red [A1-03]" yields "A1-03". Labels without brackets, or with
// an empty first bracket pair, yield DefaultLocation.
func DeriveLocation(modelName string) string {
	m := locationPattern.FindStringSubmatch(modelName)
	if m == nil {
		return DefaultLocation
	}
	loc := strings.TrimSpace(m[1])
	if loc == "" {
		return DefaultLocation
	}
	return loc
}

package fulfillment

// OrderStore is the single shared collection of orders.
// Every operation is atomic with respect to every other; implementations must never
// hand out references that alias stored state.
type OrderStore interface {
	// Snapshot returns a consistent copy of all orders
	Snapshot() []Order
	// Upsert inserts a new order, failing with ErrDuplicateKey if the ID exists
	Upsert(order Order) error
	// RemoveWhere removes all orders matching pred and returns how many were removed
	RemoveWhere(pred func(Order) bool) int
	// Exists reports whether an order with the ID is stored
	Exists(orderID string) bool
	// MutateIfPresent applies fn to the stored order and reports whether it was found
	MutateIfPresent(orderID string, fn func(*Order)) bool
	// PruneAndDiff removes New orders absent from liveIDs, then returns the live IDs
	// not present in the store, in listing order without duplicates
	PruneAndDiff(liveIDs []string) (pruned int, missing []string)
	// Len returns the number of stored orders
	Len() int
}

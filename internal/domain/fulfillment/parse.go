package fulfillment

// ParseResult is the outcome of parsing one detail payload.
// Orders holds every record that parsed; Failures holds the rest.
type ParseResult struct {
	Orders   []Order
	Failures []ParseFailure
}

// ParseFailure describes one order record that was skipped
type ParseFailure struct {
	// OrderID is empty when the record had no usable ID
	OrderID string
	Err     error
}

package fulfillment

import "errors"

var (
	// ErrDuplicateKey is returned when an order with the same ID is already stored
	ErrDuplicateKey = errors.New("fulfillment: order already exists")
	// ErrOrderNotFound is returned when a command targets an absent order
	ErrOrderNotFound = errors.New("fulfillment: order not found")
	// ErrMalformedPayload is returned when a marketplace payload lacks required fields
	ErrMalformedPayload = errors.New("fulfillment: malformed order payload")
	// ErrInvalidOrderID is returned for an empty order ID
	ErrInvalidOrderID = errors.New("fulfillment: invalid order ID")
)

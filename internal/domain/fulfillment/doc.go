// Package fulfillment contains the Fulfillment bounded context.
// It holds the warehouse's working set of marketplace orders awaiting picking and shipment.
//
// Key concepts:
//   - Order: one marketplace transaction, keyed by the marketplace order SN
//   - OrderItem: one line item, carrying the bin location derived from its variant label
//   - OrderStore: port for the concurrency-safe collection every component goes through
//
// Orders are created only by reconciliation against the marketplace and removed only by
// staleness pruning. Staff commands mutate status and assignee but never create or delete.
package fulfillment

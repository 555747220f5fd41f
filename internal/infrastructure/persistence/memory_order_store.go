package persistence

import (
	"fmt"
	"sync"

	"github.com/wms/backend/internal/domain/fulfillment"
)

// InMemoryOrderStore implements fulfillment.OrderStore using a map guarded by an RWMutex.
// Orders are kept in insertion order so snapshots are stable between calls.
// Stored orders never escape the lock: reads and writes copy in and out.
type InMemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*fulfillment.Order
	ids    []string
}

// NewInMemoryOrderStore creates an empty order store
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		orders: make(map[string]*fulfillment.Order),
	}
}

// Snapshot returns a deep copy of all orders in insertion order
func (s *InMemoryOrderStore) Snapshot() []fulfillment.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]fulfillment.Order, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.orders[id].Clone())
	}
	return out
}

// Upsert inserts a new order. It never overwrites: an existing ID yields ErrDuplicateKey
// so staff-set fields survive overlapping inserts.
func (s *InMemoryOrderStore) Upsert(order fulfillment.Order) error {
	if order.OrderID == "" {
		return fulfillment.ErrInvalidOrderID
	}
	stored := order.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.OrderID]; exists {
		return fmt.Errorf("insert order %s: %w", order.OrderID, fulfillment.ErrDuplicateKey)
	}
	s.orders[order.OrderID] = &stored
	s.ids = append(s.ids, order.OrderID)
	return nil
}

// RemoveWhere removes all orders matching pred and returns the count removed
func (s *InMemoryOrderStore) RemoveWhere(pred func(fulfillment.Order) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeWhereLocked(pred)
}

func (s *InMemoryOrderStore) removeWhereLocked(pred func(fulfillment.Order) bool) int {
	kept := s.ids[:0]
	removed := 0
	for _, id := range s.ids {
		o := s.orders[id]
		if pred(o.Clone()) {
			delete(s.orders, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	clear(s.ids[len(kept):])
	s.ids = kept
	return removed
}

// Exists reports whether the order is stored
func (s *InMemoryOrderStore) Exists(orderID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.orders[orderID]
	return ok
}

// MutateIfPresent applies fn to a working copy of the order and stores the result.
// The ID is restored after fn runs; the primary key is immutable.
func (s *InMemoryOrderStore) MutateIfPresent(orderID string, fn func(*fulfillment.Order)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return false
	}
	working := o.Clone()
	fn(&working)
	working.OrderID = orderID
	s.orders[orderID] = &working
	return true
}

// PruneAndDiff removes New orders absent from liveIDs and returns the live IDs still
// missing from the store. Both steps share one critical section.
func (s *InMemoryOrderStore) PruneAndDiff(liveIDs []string) (int, []string) {
	live := make(map[string]struct{}, len(liveIDs))
	for _, id := range liveIDs {
		live[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := s.removeWhereLocked(func(o fulfillment.Order) bool {
		if o.Status != fulfillment.OrderStatusNew {
			return false
		}
		_, stillLive := live[o.OrderID]
		return !stillLive
	})

	missing := make([]string, 0)
	seen := make(map[string]struct{}, len(liveIDs))
	for _, id := range liveIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, stored := s.orders[id]; !stored {
			missing = append(missing, id)
		}
	}
	return pruned, missing
}

// Len returns the number of stored orders
func (s *InMemoryOrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// CountByStatus returns how many stored orders have each status
func (s *InMemoryOrderStore) CountByStatus() map[fulfillment.OrderStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[fulfillment.OrderStatus]int, 2)
	for _, o := range s.orders {
		counts[o.Status]++
	}
	return counts
}

// Ensure InMemoryOrderStore implements OrderStore
var _ fulfillment.OrderStore = (*InMemoryOrderStore)(nil)

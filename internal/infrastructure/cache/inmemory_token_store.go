package cache

import (
	"context"
	"sync"

	"github.com/wms/backend/internal/domain/integration"
)

// InMemoryTokenStore implements TokenStore using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryTokenStore struct {
	mu    sync.RWMutex
	pairs map[int64]integration.TokenPair
}

// NewInMemoryTokenStore creates a new in-memory token store
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{
		pairs: make(map[int64]integration.TokenPair),
	}
}

// Load returns the stored pair for the shop or ErrTokenNotFound
func (s *InMemoryTokenStore) Load(ctx context.Context, shopID int64) (integration.TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pair, ok := s.pairs[shopID]
	if !ok {
		return integration.TokenPair{}, integration.ErrTokenNotFound
	}
	return pair, nil
}

// Save stores the pair for the shop
func (s *InMemoryTokenStore) Save(ctx context.Context, shopID int64, pair integration.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pairs[shopID] = pair
	return nil
}

// Ensure InMemoryTokenStore implements TokenStore
var _ integration.TokenStore = (*InMemoryTokenStore)(nil)

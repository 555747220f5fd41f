package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wms/backend/internal/domain/integration"
)

const (
	defaultTokenKeyPrefix = "wms:"
	// tokenTTL matches the lifetime of a Shopee refresh token
	tokenTTL = 30 * 24 * time.Hour
)

// RedisTokenStore implements TokenStore using Redis
// Refreshed tokens survive restarts, so the process does not fall back to an already
// spent refresh token from static configuration
type RedisTokenStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenStore creates a new Redis-based token store
func NewRedisTokenStore(cfg RedisConfig, keyPrefix string) (*RedisTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTokenStoreWithClient(client, keyPrefix), nil
}

// NewRedisTokenStoreWithClient creates a store with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisTokenStoreWithClient(client *redis.Client, keyPrefix string) *RedisTokenStore {
	if keyPrefix == "" {
		keyPrefix = defaultTokenKeyPrefix
	}
	return &RedisTokenStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisTokenStore) key(shopID int64) string {
	return s.keyPrefix + "shopee:token:" + strconv.FormatInt(shopID, 10)
}

// Load returns the stored pair for the shop or ErrTokenNotFound
func (s *RedisTokenStore) Load(ctx context.Context, shopID int64) (integration.TokenPair, error) {
	data, err := s.client.Get(ctx, s.key(shopID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return integration.TokenPair{}, integration.ErrTokenNotFound
	}
	if err != nil {
		return integration.TokenPair{}, fmt.Errorf("failed to load token: %w", err)
	}

	var pair integration.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return integration.TokenPair{}, fmt.Errorf("failed to decode stored token: %w", err)
	}
	return pair, nil
}

// Save stores the pair for the shop with the refresh-token lifetime as TTL
func (s *RedisTokenStore) Save(ctx context.Context, shopID int64, pair integration.TokenPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := s.client.Set(ctx, s.key(shopID), data, tokenTTL).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}

// Ensure RedisTokenStore implements TokenStore
var _ integration.TokenStore = (*RedisTokenStore)(nil)

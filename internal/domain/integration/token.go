package integration

import (
	"context"
	"time"
)

// TokenPair is a marketplace access token with its refresh token
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsEmpty returns true if no access token is held
func (t TokenPair) IsEmpty() bool {
	return t.AccessToken == ""
}

// IsExpired returns true if the access token expiry has passed
func (t TokenPair) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// TokenStore persists the token pair for a shop so restarts reuse refreshed tokens
type TokenStore interface {
	// Load returns the stored pair or ErrTokenNotFound
	Load(ctx context.Context, shopID int64) (TokenPair, error)
	// Save stores the pair, replacing any previous one
	Save(ctx context.Context, shopID int64, pair TokenPair) error
}

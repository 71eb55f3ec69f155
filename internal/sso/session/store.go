// Package session holds the short-lived browser state of the login flow.
//
// Two kinds of data live here: per-flow state secrets (the HMAC key a single
// browser's state token was signed with, discarded on first use) and the
// login sessions issued after a successful callback. Both are keyed by ids
// carried in cookies, so implementations must treat values as opaque.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session: not found")

// Session represents an authenticated login session issued after a
// successful provider callback.
type Session struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"account_id"`
	ProviderID       string    `json:"provider_id"`
	TokenFingerprint string    `json:"token_fingerprint"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// Store defines how flow state secrets and login sessions are stored.
type Store interface {
	// PutStateSecret stores the signing secret for one flow+provider pair.
	// Re-initiating a flow for the same pair overwrites the previous secret.
	PutStateSecret(ctx context.Context, flowID, providerID string, secret []byte, ttl time.Duration) error

	// TakeStateSecret returns the secret and removes it in the same step.
	// A second Take for the same pair returns ErrNotFound, which is what
	// makes state tokens single use.
	TakeStateSecret(ctx context.Context, flowID, providerID string) ([]byte, error)

	// CreateSession stores a login session until its ExpiresAt.
	CreateSession(ctx context.Context, s Session) error

	// GetSession returns a live session or ErrNotFound once expired.
	GetSession(ctx context.Context, id string) (Session, error)

	// DeleteSession removes a session. Deleting an unknown id is a no-op.
	DeleteSession(ctx context.Context, id string) error

	// Close releases any underlying resources.
	Close() error
}

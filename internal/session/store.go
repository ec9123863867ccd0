// Package session provides persistence for per-operator conversation state.
package session

import (
	"context"

	"github.com/ashureev/proxybot/internal/domain"
)

// Store defines the interface for persisting conversation sessions.
// Get and Set provide read-after-write consistency per key; callers that
// need a whole turn to be atomic must serialize turns per identity
// themselves.
type Store interface {
	// Get retrieves the session for an identity.
	// Returns (nil, nil) when no session exists.
	Get(ctx context.Context, identity string) (*domain.Session, error)

	// Set replaces the session for an identity wholesale.
	Set(ctx context.Context, identity string, s *domain.Session) error

	// Close releases resources held by the store.
	Close() error
}

// Package store provides persistence for managed proxy accounts.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/proxybot/internal/domain"
)

var (
	// ErrUsernameTaken is returned by CreateUser when the username exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrUserNotFound is returned by DeleteUser when the username does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Directory defines the interface to the managed proxy-account backend.
type Directory interface {
	// IsUsernameFree reports whether no account exists with the username.
	IsUsernameFree(ctx context.Context, username string) (bool, error)

	// CreateUser provisions a new proxy account.
	// Returns ErrUsernameTaken if the username is already in use.
	CreateUser(ctx context.Context, username, pass string) error

	// DeleteUser removes a proxy account.
	// Returns ErrUserNotFound if no such account exists.
	DeleteUser(ctx context.Context, username string) error

	// GetUsers returns all account usernames, sorted.
	GetUsers(ctx context.Context) ([]string, error)

	// GetUsersStats returns per-account traffic stats, heaviest users first.
	GetUsersStats(ctx context.Context) ([]domain.UsageStat, error)

	// RecordUsage adds transferred bytes to an account's counters and
	// updates its last-seen timestamp. Called by the proxy service.
	RecordUsage(ctx context.Context, username string, bytes int64, seenAt time.Time) error

	// Ping verifies backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the backend connection.
	Close() error
}

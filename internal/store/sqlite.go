package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ashureev/proxybot/internal/domain"
	"github.com/ashureev/proxybot/internal/shared"
)

// SQLiteStore implements Directory using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed account directory.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS accounts (
		username TEXT PRIMARY KEY,
		secret TEXT NOT NULL,
		bytes_used INTEGER NOT NULL DEFAULT 0,
		last_seen_at INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_accounts_usage ON accounts(bytes_used);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// IsUsernameFree reports whether no account exists with the username.
func (s *SQLiteStore) IsUsernameFree(ctx context.Context, username string) (bool, error) {
	var n int
	query := `SELECT COUNT(1) FROM accounts WHERE username = ?`
	if err := s.db.QueryRowContext(ctx, query, username).Scan(&n); err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return n == 0, nil
}

// CreateUser provisions a new proxy account.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, pass string) error {
	now := time.Now().Unix()
	query := `
	INSERT INTO accounts (username, secret, bytes_used, last_seen_at, created_at, updated_at)
	VALUES (?, ?, 0, 0, ?, ?)`

	err := s.withBusyRetry(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, query, username, pass, now, now)
		return execErr
	})
	if err != nil {
		if shared.IsSQLiteUniqueConstraintError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// DeleteUser removes a proxy account.
func (s *SQLiteStore) DeleteUser(ctx context.Context, username string) error {
	var result sql.Result
	err := s.withBusyRetry(ctx, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx, `DELETE FROM accounts WHERE username = ?`, username)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetUsers returns all account usernames, sorted.
func (s *SQLiteStore) GetUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM accounts ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close accounts rows", "error", closeErr)
		}
	}()

	var users []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		users = append(users, username)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return users, nil
}

// GetUsersStats returns per-account traffic stats, heaviest users first.
func (s *SQLiteStore) GetUsersStats(ctx context.Context) ([]domain.UsageStat, error) {
	query := `
		SELECT username, bytes_used, last_seen_at
		FROM accounts ORDER BY bytes_used DESC, username`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query usage stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close stats rows", "error", closeErr)
		}
	}()

	var stats []domain.UsageStat
	for rows.Next() {
		var stat domain.UsageStat
		var lastSeen int64

		if err := rows.Scan(&stat.Username, &stat.BytesUsed, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stat.LastSeenAt = time.Unix(lastSeen, 0)
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage stats: %w", err)
	}

	return stats, nil
}

// RecordUsage adds transferred bytes to an account's counters.
func (s *SQLiteStore) RecordUsage(ctx context.Context, username string, bytes int64, seenAt time.Time) error {
	query := `
		UPDATE accounts
		SET bytes_used = bytes_used + ?, last_seen_at = ?, updated_at = ?
		WHERE username = ?`

	var result sql.Result
	err := s.withBusyRetry(ctx, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx, query, bytes, seenAt.Unix(), time.Now().Unix(), username)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// withBusyRetry runs fn, retrying with exponential backoff on SQLITE_BUSY.
func (s *SQLiteStore) withBusyRetry(ctx context.Context, fn func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			return err
		}

		delay := baseDelay * time.Duration(1<<i)
		slog.Debug("sqlite busy, retrying", "attempt", i+1, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

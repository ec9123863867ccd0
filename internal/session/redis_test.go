package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ashureev/proxybot/internal/domain"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStoreFromClient(client, "test:", 0)

	t.Cleanup(func() {
		_ = store.Close()
	})

	return mr, store
}

func TestRedisStoreGetAbsent(t *testing.T) {
	_, store := setupMiniredis(t)

	got, err := store.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session for unknown identity, got %+v", got)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	_, store := setupMiniredis(t)
	ctx := context.Background()

	in := &domain.Session{
		State: domain.StateCreateUserEnterPassword,
		Data:  map[string]string{"username": "bob"},
	}
	if err := store.Set(ctx, "alice", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != domain.StateCreateUserEnterPassword {
		t.Errorf("State = %s, want %s", got.State, domain.StateCreateUserEnterPassword)
	}
	if got.Data["username"] != "bob" {
		t.Errorf("Data[username] = %q, want %q", got.Data["username"], "bob")
	}
}

func TestRedisStoreReplacesWholesale(t *testing.T) {
	_, store := setupMiniredis(t)
	ctx := context.Background()

	first := &domain.Session{
		State: domain.StateCreateUserEnterPassword,
		Data:  map[string]string{"username": "bob"},
	}
	if err := store.Set(ctx, "alice", first); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "alice", domain.NewIdleSession()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != domain.StateIdle {
		t.Errorf("State = %s, want %s", got.State, domain.StateIdle)
	}
	if len(got.Data) != 0 {
		t.Errorf("old dialog data leaked into new session: %v", got.Data)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, "test:", time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.Set(ctx, "alice", domain.NewIdleSession()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected session to expire, got %+v", got)
	}
}

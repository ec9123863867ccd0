package session

import (
	"context"
	"testing"

	"github.com/ashureev/proxybot/internal/domain"
)

func TestMemoryStoreGetAbsent(t *testing.T) {
	s := NewMemoryStore()

	got, err := s.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session for unknown identity, got %+v", got)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := &domain.Session{
		State: domain.StateCreateUserEnterPassword,
		Data:  map[string]string{"username": "bob"},
	}
	if err := s.Set(ctx, "alice", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(ctx, "alice")
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

func TestMemoryStoreReplacesWholesale(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := &domain.Session{
		State: domain.StateCreateUserEnterPassword,
		Data:  map[string]string{"username": "bob"},
	}
	if err := s.Set(ctx, "alice", first); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "alice", domain.NewIdleSession()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(ctx, "alice")
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

func TestMemoryStoreCopiesRecords(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := &domain.Session{State: domain.StateIdle, Data: map[string]string{}}
	if err := s.Set(ctx, "alice", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Mutating the caller's record must not change the stored one.
	in.Data["username"] = "mallory"

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, ok := got.Data["username"]; ok {
		t.Error("stored session shares memory with the caller's record")
	}
}

func TestMemoryStoreIdentitiesIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "alice", &domain.Session{State: domain.StateDeleteUserEnterUsername, Data: map[string]string{}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(ctx, "bob")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("bob should have no session, got %+v", got)
	}
}

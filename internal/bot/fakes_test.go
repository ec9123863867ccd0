package bot

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ashureev/proxybot/internal/domain"
	"github.com/ashureev/proxybot/internal/store"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Opts   SendOptions
}

// fakeSender records outbound messages.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) Send(_ context.Context, chatID int64, text string, opts SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text, Opts: opts})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeSender) last() (sentMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMessage{}, false
	}
	return f.sent[len(f.sent)-1], true
}

// fakeDirectory is an in-memory store.Directory. Setting failWith makes
// every call return that error.
type fakeDirectory struct {
	mu       sync.Mutex
	accounts map[string]string
	stats    []domain.UsageStat
	failWith error

	createCalls int
	deleteCalls int
	readCalls   int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{accounts: make(map[string]string)}
}

func (f *fakeDirectory) IsUsernameFree(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	if f.failWith != nil {
		return false, f.failWith
	}
	_, exists := f.accounts[username]
	return !exists, nil
}

func (f *fakeDirectory) CreateUser(_ context.Context, username, pass string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failWith != nil {
		return f.failWith
	}
	if _, exists := f.accounts[username]; exists {
		return store.ErrUsernameTaken
	}
	f.accounts[username] = pass
	return nil
}

func (f *fakeDirectory) DeleteUser(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failWith != nil {
		return f.failWith
	}
	if _, exists := f.accounts[username]; !exists {
		return store.ErrUserNotFound
	}
	delete(f.accounts, username)
	return nil
}

func (f *fakeDirectory) GetUsers(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	var users []string
	for u := range f.accounts {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

func (f *fakeDirectory) GetUsersStats(_ context.Context) ([]domain.UsageStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.stats, nil
}

func (f *fakeDirectory) RecordUsage(_ context.Context, username string, bytes int64, seenAt time.Time) error {
	return nil
}

func (f *fakeDirectory) Ping(_ context.Context) error { return nil }

func (f *fakeDirectory) Close() error { return nil }

func (f *fakeDirectory) password(username string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pass, ok := f.accounts[username]
	return pass, ok
}

func (f *fakeDirectory) accountCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}

func (f *fakeDirectory) mutationCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls + f.deleteCalls
}

// errAuthorizer always fails, to exercise the fail-closed path.
type errAuthorizer struct{}

func (errAuthorizer) IsAdmin(context.Context, string) (bool, error) {
	return false, errors.New("oracle unavailable")
}

// Package auth answers authorization questions about chat identities.
package auth

import (
	"context"
	"strings"
)

// Authorizer reports whether a chat identity has administrative rights.
// Implementations backed by remote systems may return an error; callers
// must treat an error as "not admin" (fail closed).
type Authorizer interface {
	IsAdmin(ctx context.Context, username string) (bool, error)
}

// StaticList is an Authorizer backed by a fixed list of admin usernames,
// typically loaded from configuration at startup.
type StaticList struct {
	admins map[string]struct{}
}

// NewStaticList creates an Authorizer from a list of admin usernames.
// Usernames are matched case-insensitively, as Telegram handles are.
func NewStaticList(admins []string) *StaticList {
	set := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			set[a] = struct{}{}
		}
	}
	return &StaticList{admins: set}
}

// IsAdmin reports whether the username is in the admin list.
func (s *StaticList) IsAdmin(_ context.Context, username string) (bool, error) {
	_, ok := s.admins[strings.ToLower(strings.TrimSpace(username))]
	return ok, nil
}

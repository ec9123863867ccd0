package domain

import (
	"time"
)

// Account represents a provisioned proxy credential, distinct from the
// chat identity of the operator who created it.
type Account struct {
	Username  string    `json:"username"`
	Secret    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// UsageStat is one row of the per-account traffic report.
type UsageStat struct {
	Username   string    `json:"username"`
	BytesUsed  int64     `json:"bytes_used"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// HasTraffic returns true if the account has ever moved data through the proxy.
func (u *UsageStat) HasTraffic() bool {
	return u.BytesUsed > 0
}

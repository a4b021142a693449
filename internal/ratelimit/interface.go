package ratelimit

import (
	"context"
	"time"
)

// A single fixed-window counter for one (client, action) pair. When the
// window expires the record is replaced, never mutated in place.
// BlockedUntil is set only by an explicit Block call and outlives any
// number of window resets.
type Record struct {
	Count         int        `json:"count"`
	WindowResetAt time.Time  `json:"window_reset_at"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty"`
}

// Keyed record storage behind the limiter. Get returns nil, nil when no
// record exists. Implementations may drop records passively once the
// ttl passes; the limiter never relies on eager expiry.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)

	Set(ctx context.Context, key string, record *Record, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// Per-action limit configuration.
type Rule struct {
	MaxRequests int
	Window      time.Duration
}

// Outcome of a CheckAndConsume call.
type Result struct {
	Allowed   bool          `json:"allowed"`
	Remaining int           `json:"remaining"`
	ResetIn   time.Duration `json:"reset_in"`
}

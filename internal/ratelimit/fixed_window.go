package ratelimit

import (
	"context"
	"time"
)

// FixedWindowLimiter admits up to MaxRequests per action in fixed
// wall-clock windows. Two requests racing on the same key between Get
// and Set may both be admitted, and a burst straddling a window edge
// can briefly see up to twice the nominal limit; both are accepted
// slack of the fixed-window design, not bugs to fix here.
type FixedWindowLimiter struct {
	store       Store
	rules       map[string]Rule
	defaultRule Rule

	now func() time.Time
}

func NewFixedWindow(store Store, rules map[string]Rule, defaultRule Rule) *FixedWindowLimiter {
	if defaultRule.MaxRequests <= 0 {
		defaultRule = Rule{MaxRequests: 30, Window: time.Minute}
	}

	return &FixedWindowLimiter{
		store:       store,
		rules:       rules,
		defaultRule: defaultRule,
		now:         time.Now,
	}
}

// Returns the rule applied to the given action.
func (f *FixedWindowLimiter) RuleFor(action string) Rule {
	if rule, ok := f.rules[action]; ok && rule.MaxRequests > 0 {
		return rule
	}
	return f.defaultRule
}

func counterKey(clientKey, action string) string {
	return "ratelimit:fixed:" + action + ":" + clientKey
}

func blockKey(clientKey string) string {
	return "ratelimit:blocked:" + clientKey
}

// Admits or denies one request for the (clientKey, action) pair and
// consumes a slot when admitted.
func (f *FixedWindowLimiter) CheckAndConsume(ctx context.Context, clientKey, action string) (Result, error) {
	rule := f.RuleFor(action)
	key := counterKey(clientKey, action)
	now := f.now()

	record, err := f.store.Get(ctx, key)
	if err != nil {
		return Result{}, err
	}

	// First request, or the old window has elapsed: start a fresh
	// window. The old record is discarded, not reused.
	if record == nil || now.After(record.WindowResetAt) {
		fresh := &Record{
			Count:         1,
			WindowResetAt: now.Add(rule.Window),
		}
		if err := f.store.Set(ctx, key, fresh, rule.Window); err != nil {
			return Result{}, err
		}
		return Result{Allowed: true, Remaining: rule.MaxRequests - 1, ResetIn: rule.Window}, nil
	}

	resetIn := record.WindowResetAt.Sub(now)

	if record.Count >= rule.MaxRequests {
		return Result{Allowed: false, Remaining: 0, ResetIn: resetIn}, nil
	}

	record.Count++
	if err := f.store.Set(ctx, key, record, resetIn); err != nil {
		return Result{}, err
	}

	return Result{Allowed: true, Remaining: rule.MaxRequests - record.Count, ResetIn: resetIn}, nil
}

// Quarantines a client beyond any counter window. Every action for the
// key is denied until the block elapses, regardless of counters.
func (f *FixedWindowLimiter) Block(ctx context.Context, clientKey string, duration time.Duration) error {
	until := f.now().Add(duration)
	record := &Record{BlockedUntil: &until}
	return f.store.Set(ctx, blockKey(clientKey), record, duration)
}

// Reports whether the client is currently quarantined and, if so, when
// the block lifts.
func (f *FixedWindowLimiter) IsBlocked(ctx context.Context, clientKey string) (bool, time.Time, error) {
	record, err := f.store.Get(ctx, blockKey(clientKey))
	if err != nil {
		return false, time.Time{}, err
	}

	if record == nil || record.BlockedUntil == nil {
		return false, time.Time{}, nil
	}

	if f.now().After(*record.BlockedUntil) {
		return false, time.Time{}, nil
	}

	return true, *record.BlockedUntil, nil
}

// Lifts a quarantine early. Used by the admin surface.
func (f *FixedWindowLimiter) Unblock(ctx context.Context, clientKey string) error {
	return f.store.Delete(ctx, blockKey(clientKey))
}

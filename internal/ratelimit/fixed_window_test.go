package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, rules map[string]Rule) (*FixedWindowLimiter, *time.Time) {
	t.Helper()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	limiter := NewFixedWindow(NewMemoryStore(), rules, Rule{MaxRequests: 30, Window: time.Minute})
	limiter.now = func() time.Time { return now }

	return limiter, &now
}

func TestCheckAndConsumeCountsDown(t *testing.T) {
	limiter, _ := newTestLimiter(t, map[string]Rule{
		"quote": {MaxRequests: 5, Window: time.Hour},
	})
	ctx := context.Background()

	for _, expected := range []int{4, 3, 2, 1, 0} {
		result, err := limiter.CheckAndConsume(ctx, "1.2.3.4", "quote")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, expected, result.Remaining)
	}

	// Sixth call inside the same window is denied
	result, err := limiter.CheckAndConsume(ctx, "1.2.3.4", "quote")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Greater(t, result.ResetIn, time.Duration(0))
}

func TestWindowExpiryStartsFreshWindow(t *testing.T) {
	limiter, now := newTestLimiter(t, map[string]Rule{
		"quote": {MaxRequests: 2, Window: time.Hour},
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.CheckAndConsume(ctx, "1.2.3.4", "quote")
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := limiter.CheckAndConsume(ctx, "1.2.3.4", "quote")
	require.NoError(t, err)
	require.False(t, result.Allowed)

	// Past the window boundary the old record is discarded
	*now = now.Add(time.Hour + time.Second)

	result, err = limiter.CheckAndConsume(ctx, "1.2.3.4", "quote")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)
	assert.Equal(t, time.Hour, result.ResetIn)
}

func TestKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, map[string]Rule{
		"quote": {MaxRequests: 1, Window: time.Hour},
	})
	ctx := context.Background()

	result, err := limiter.CheckAndConsume(ctx, "1.2.3.4", "quote")
	require.NoError(t, err)
	require.True(t, result.Allowed)

	result, err = limiter.CheckAndConsume(ctx, "1.2.3.4", "quote")
	require.NoError(t, err)
	require.False(t, result.Allowed)

	// Different client, same action
	result, err = limiter.CheckAndConsume(ctx, "5.6.7.8", "quote")
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	// Same client, different action
	result, err = limiter.CheckAndConsume(ctx, "1.2.3.4", "feedback")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestUnknownActionUsesDefaultRule(t *testing.T) {
	limiter, _ := newTestLimiter(t, nil)

	rule := limiter.RuleFor("anything")
	assert.Equal(t, 30, rule.MaxRequests)
	assert.Equal(t, time.Minute, rule.Window)
}

func TestBlockOutlivesCounterWindow(t *testing.T) {
	limiter, now := newTestLimiter(t, map[string]Rule{
		"quote": {MaxRequests: 5, Window: time.Minute},
	})
	ctx := context.Background()

	require.NoError(t, limiter.Block(ctx, "1.2.3.4", time.Hour))

	blocked, until, err := limiter.IsBlocked(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, now.Add(time.Hour), until)

	// Still blocked long after the counter window would have reset
	*now = now.Add(30 * time.Minute)
	blocked, _, err = limiter.IsBlocked(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, blocked)

	// Block lifts once the duration elapses
	*now = now.Add(31 * time.Minute)
	blocked, _, err = limiter.IsBlocked(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestUnblockLiftsQuarantine(t *testing.T) {
	limiter, _ := newTestLimiter(t, nil)
	ctx := context.Background()

	require.NoError(t, limiter.Block(ctx, "1.2.3.4", time.Hour))
	require.NoError(t, limiter.Unblock(ctx, "1.2.3.4"))

	blocked, _, err := limiter.IsBlocked(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, blocked)
}

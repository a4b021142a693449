package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	record, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, record)

	reset := time.Now().Add(time.Minute)
	require.NoError(t, store.Set(ctx, "k", &Record{Count: 3, WindowResetAt: reset}, time.Minute))

	record, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 3, record.Count)
	assert.True(t, record.WindowResetAt.Equal(reset))
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", &Record{Count: 1}, time.Minute))

	record, err := store.Get(ctx, "k")
	require.NoError(t, err)
	record.Count = 99

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Count)
}

func TestMemoryStorePassiveExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", &Record{Count: 1}, time.Millisecond))
	assert.Equal(t, 1, store.Len())

	time.Sleep(5 * time.Millisecond)

	record, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", &Record{Count: 1}, time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	record, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, record)
}

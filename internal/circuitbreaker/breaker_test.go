package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errChannelDown = errors.New("channel down")

func failing() error { return errChannelDown }
func passing() error { return nil }

func TestOpensAfterMaxFailures(t *testing.T) {
	cb := New(Config{MaxFailures: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		err := cb.Call(failing)
		assert.ErrorIs(t, err, errChannelDown)
	}
	assert.Equal(t, StateOpen, cb.State())

	// Open circuit short-circuits without invoking fn
	called := false
	err := cb.Call(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{MaxFailures: 3, Timeout: time.Minute})

	require.Error(t, cb.Call(failing))
	require.Error(t, cb.Call(failing))
	require.NoError(t, cb.Call(passing))
	require.Error(t, cb.Call(failing))
	require.Error(t, cb.Call(failing))

	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: 20 * time.Millisecond})

	require.Error(t, cb.Call(failing))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, cb.Call(passing))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: 20 * time.Millisecond})

	require.Error(t, cb.Call(failing))

	time.Sleep(30 * time.Millisecond)

	require.Error(t, cb.Call(failing))
	assert.Equal(t, StateOpen, cb.State())
}

func TestReset(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: time.Minute})

	require.Error(t, cb.Call(failing))
	require.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.NoError(t, cb.Call(passing))
}

func TestDefaults(t *testing.T) {
	cb := New(Config{})

	for i := 0; i < 4; i++ {
		require.Error(t, cb.Call(failing))
		assert.Equal(t, StateClosed, cb.State())
	}
	require.Error(t, cb.Call(failing))
	assert.Equal(t, StateOpen, cb.State())
}

package resilience

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps test sleeps negligible.
func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(errors.New("database is locked"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("syntax error at or near")
	calls := 0
	err := Do(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return NewTransientError(errors.New("too many clients already"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelStopsRetries(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastPolicy(10), func(ctx context.Context) error {
		calls++
		cancel()
		return NewTransientError(errors.New("database is locked"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ReturnsValue(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), fastPolicy(3), func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, NewTransientError(errors.New("conn closed"))
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	t.Parallel()

	var attempts []int
	p := fastPolicy(3)
	p.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}

	_ = Do(context.Background(), p, func(ctx context.Context) error {
		return NewTransientError(errors.New("database is locked"))
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestComputeBackoff_CapsAtMax(t *testing.T) {
	t.Parallel()

	p := applyDefaults(Policy{
		InitialBackoff: time.Second,
		MaxBackoff:     4 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0,
	})
	assert.Equal(t, time.Second, computeBackoff(0, p))
	assert.Equal(t, 2*time.Second, computeBackoff(1, p))
	assert.Equal(t, 4*time.Second, computeBackoff(2, p))
	assert.Equal(t, 4*time.Second, computeBackoff(5, p))
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped transient", NewTransientError(errors.New("boom")), true},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"postgres starting up", errors.New("FATAL: the database system is starting up"), true},
		{"postgres saturated", errors.New("FATAL: sorry, too many clients already"), true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"constraint violation", errors.New("UNIQUE constraint failed: pricing_rules.id"), false},
		{"syntax error", errors.New("syntax error at or near \"SELEC\""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff(t *testing.T) {
	t.Run("succeeds first time", func(t *testing.T) {
		calls := 0
		err := WithBackoff(context.Background(), fastConfig(3), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after transient errors", func(t *testing.T) {
		calls := 0
		err := WithBackoff(context.Background(), fastConfig(3), func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		last := &HTTPError{StatusCode: 503, Message: "unavailable"}
		err := WithBackoff(context.Background(), fastConfig(3), func() error {
			calls++
			return last
		})
		require.ErrorIs(t, err, last)
		assert.Equal(t, 3, calls)
		assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	})

	t.Run("non-retryable error aborts", func(t *testing.T) {
		calls := 0
		boom := errors.New("bad request")
		err := WithBackoff(context.Background(), fastConfig(5), func() error {
			calls++
			return boom
		})
		assert.Equal(t, boom, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancel stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := fastConfig(5)
		cfg.InitialDelay = time.Second
		err := WithBackoff(ctx, cfg, func() error {
			cancel()
			return syscall.ECONNRESET
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWithBackoff_HonoursRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	err := WithBackoff(context.Background(), fastConfig(2), func() error {
		calls++
		if calls == 1 {
			return &HTTPError{StatusCode: 429, Message: "slow down", RetryAfter: 30 * time.Millisecond}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), Config{}, func() error {
		calls++
		return syscall.ECONNREFUSED
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNextDelay(t *testing.T) {
	cfg := Config{Multiplier: 2, MaxDelay: 300 * time.Millisecond}
	assert.Equal(t, 200*time.Millisecond, nextDelay(100*time.Millisecond, cfg))
	assert.Equal(t, 300*time.Millisecond, nextDelay(200*time.Millisecond, cfg))
	// 倍率が1未満なら据え置き
	assert.Equal(t, 100*time.Millisecond, nextDelay(100*time.Millisecond, Config{Multiplier: 0.5}))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("x: %w", context.DeadlineExceeded), false},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"5xx", &HTTPError{StatusCode: 502}, true},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"408", &HTTPError{StatusCode: 408}, true},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"plain", errors.New("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestAddJitter(t *testing.T) {
	d := 100 * time.Millisecond
	assert.Equal(t, d, addJitter(d, 0))
	for i := 0; i < 20; i++ {
		got := addJitter(d, 0.5)
		assert.GreaterOrEqual(t, got, d)
		assert.LessOrEqual(t, got, 150*time.Millisecond)
	}
}

func TestPresets(t *testing.T) {
	for name, cfg := range map[string]Config{
		"default": DefaultConfig(),
		"feed":    FeedFetchConfig(),
		"ai":      AIAPIConfig(),
		"db":      DBStartupConfig(),
	} {
		assert.Positive(t, cfg.MaxAttempts, name)
		assert.LessOrEqual(t, cfg.InitialDelay, cfg.MaxDelay, name)
	}
}

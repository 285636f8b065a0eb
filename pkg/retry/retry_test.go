package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxAttempts int) Config {
	return Config{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("first attempt success makes a single call", func(t *testing.T) {
		t.Parallel()
		calls := 0
		got, err := Do(context.Background(), nil, "op", fastConfig(3), func(context.Context) (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failure then succeeds", func(t *testing.T) {
		t.Parallel()
		calls := 0
		got, err := Do(context.Background(), nil, "op", fastConfig(3), func(context.Context) (int, error) {
			calls++
			if calls == 1 {
				return 0, errors.New("request timeout")
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 2, calls)
	})

	t.Run("stops immediately when RetryIf rejects the error", func(t *testing.T) {
		t.Parallel()
		cfg := fastConfig(3)
		cfg.RetryIf = func(error) bool { return false }
		calls := 0
		_, err := Do(context.Background(), nil, "op", cfg, func(context.Context) (int, error) {
			calls++
			return 0, errors.New("bad request")
		})
		require.EqualError(t, err, "bad request")
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts and returns last error", func(t *testing.T) {
		t.Parallel()
		exhausted := false
		cfg := fastConfig(3)
		cfg.OnExhausted = func(error) { exhausted = true }
		calls := 0
		_, err := Do(context.Background(), nil, "op", cfg, func(context.Context) (int, error) {
			calls++
			return 0, errors.New("still broken")
		})
		require.EqualError(t, err, "still broken")
		assert.Equal(t, 3, calls)
		assert.True(t, exhausted)
	})

	t.Run("cancelled context aborts the backoff wait", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cfg := fastConfig(3)
		cfg.BaseDelay = time.Minute
		_, err := Do(ctx, nil, "op", cfg, func(context.Context) (int, error) {
			cancel()
			return 0, errors.New("fail once")
		})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("OnRetry fires per failed attempt", func(t *testing.T) {
		t.Parallel()
		var attempts []int
		cfg := fastConfig(3)
		cfg.OnRetry = func(attempt int, _ error) { attempts = append(attempts, attempt) }
		_, _ = Do(context.Background(), nil, "op", cfg, func(context.Context) (int, error) {
			return 0, errors.New("boom")
		})
		assert.Equal(t, []int{1, 2}, attempts)
	})
}

func TestDoBatch(t *testing.T) {
	t.Parallel()

	t.Run("single failing item does not stop the batch", func(t *testing.T) {
		t.Parallel()
		items := []int{1, 2, 3, 4, 5}
		result := DoBatch(context.Background(), nil, "batch", fastConfig(2), items, func(_ context.Context, item int) (int, error) {
			if item == 3 {
				return 0, errors.New("item 3 always fails")
			}
			return item * 10, nil
		})

		assert.Equal(t, []int{10, 20, 40, 50}, result.Successful)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, 3, result.Failed[0].Item)
		assert.Equal(t, BatchSummary{Total: 5, Successful: 4, Failed: 1}, result.Summary)
	})

	t.Run("empty batch yields empty summary", func(t *testing.T) {
		t.Parallel()
		result := DoBatch(context.Background(), nil, "batch", fastConfig(1), nil, func(_ context.Context, item int) (int, error) {
			return item, nil
		})
		assert.Empty(t, result.Successful)
		assert.Empty(t, result.Failed)
		assert.Equal(t, BatchSummary{}, result.Summary)
	})
}

func TestDelay(t *testing.T) {
	t.Parallel()

	t.Run("grows exponentially within jitter bounds", func(t *testing.T) {
		t.Parallel()
		cfg := Config{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Minute, Multiplier: 2}
		for attempt, base := range map[int]time.Duration{
			1: 100 * time.Millisecond,
			2: 200 * time.Millisecond,
			3: 400 * time.Millisecond,
		} {
			d := Delay(cfg, attempt)
			assert.GreaterOrEqual(t, d, base)
			assert.LessOrEqual(t, d, base+base/10)
		}
	})

	t.Run("caps at MaxDelay before jitter", func(t *testing.T) {
		t.Parallel()
		cfg := Config{BaseDelay: time.Second, MaxDelay: 2 * time.Second, Multiplier: 10}
		d := Delay(cfg, 5)
		assert.LessOrEqual(t, d, 2*time.Second+200*time.Millisecond)
	})
}

func TestIsTransientError(t *testing.T) {
	t.Parallel()

	transient := []string{
		"request timeout",
		"rate limit exceeded",
		"429 too many requests",
		"dial tcp: connection refused",
		"503 service unavailable",
		"unexpected EOF",
	}
	for _, msg := range transient {
		assert.True(t, IsTransientError(errors.New(msg)), msg)
	}

	assert.False(t, IsTransientError(errors.New("invalid api key")))
	assert.False(t, IsTransientError(nil))
}

func TestTracker(t *testing.T) {
	t.Parallel()

	t.Run("tracks operations while in flight", func(t *testing.T) {
		t.Parallel()
		tracker := NewTracker()
		entered := make(chan struct{})
		release := make(chan struct{})

		go func() {
			_, _ = Do(context.Background(), tracker, "slow-op", fastConfig(1), func(context.Context) (int, error) {
				close(entered)
				<-release
				return 1, nil
			})
		}()

		<-entered
		ops := tracker.InFlight()
		require.Len(t, ops, 1)
		assert.Equal(t, "slow-op", ops[0].Name)
		assert.Equal(t, 1, ops[0].Attempt)

		close(release)
		assert.Eventually(t, func() bool {
			return len(tracker.InFlight()) == 0
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("CancelAll clears the registry", func(t *testing.T) {
		t.Parallel()
		tracker := NewTracker()
		id := tracker.begin("op")
		require.NotEmpty(t, id)
		require.Len(t, tracker.InFlight(), 1)

		tracker.CancelAll()
		assert.Empty(t, tracker.InFlight())
	})

	t.Run("nil tracker is safe", func(t *testing.T) {
		t.Parallel()
		var tracker *Tracker
		assert.Nil(t, tracker.InFlight())
		tracker.CancelAll()
	})
}

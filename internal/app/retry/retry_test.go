package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"adaptive-voice/internal/app/apperrors"
)

func fastStrategy() Strategy {
	return Strategy{
		MaxRetries:        3,
		RetryDelay:        time.Millisecond,
		BackoffMultiplier: 2,
		RetryablePatterns: []string{"network", "timeout", "5\\d\\d"},
	}
}

func TestDo_SucceedsAfterRetryableFailures(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastStrategy(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("network unreachable")
		}
		return "done", nil
	})

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "done", result.Data)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableFailsAfterOneAttempt(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastStrategy(), func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("404 Not Found")
	})

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	strategy := fastStrategy()
	strategy.MaxRetries = 2

	calls := 0
	result := Do(context.Background(), strategy, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("request timeout")
	})

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts, "maxRetries+1 attempts")
	assert.Equal(t, 3, calls)
}

func TestDo_WallClockBudget(t *testing.T) {
	strategy := Strategy{
		MaxRetries:        100,
		RetryDelay:        50 * time.Millisecond,
		BackoffMultiplier: 10,
		RetryablePatterns: []string{"network"},
		Timeout:           80 * time.Millisecond,
	}

	start := time.Now()
	result := Do(context.Background(), strategy, func(ctx context.Context) (string, error) {
		return "", errors.New("network glitch")
	})

	assert.False(t, result.Success)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, apperrors.CodeTimeout, apperrors.CodeOf(result.Err))
}

func TestDo_ContextCancellationStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	strategy := fastStrategy()
	strategy.RetryDelay = time.Hour // would sleep forever without cancellation

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result := Do(ctx, strategy, func(ctx context.Context) (string, error) {
		return "", errors.New("network glitch")
	})

	assert.False(t, result.Success)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_CodedErrorsCarryRetryability(t *testing.T) {
	// NotAllowed is non-retryable regardless of message patterns.
	calls := 0
	result := Do(context.Background(), fastStrategy(), func(ctx context.Context) (string, error) {
		calls++
		return "", apperrors.New(apperrors.CodeNotAllowed, "microphone permission denied by network policy")
	})
	assert.Equal(t, 1, calls)
	assert.False(t, result.Success)

	// NoSpeech is retryable even though no pattern matches it.
	calls = 0
	Do(context.Background(), fastStrategy(), func(ctx context.Context) (string, error) {
		calls++
		return "", apperrors.New(apperrors.CodeNoSpeech, "nothing heard")
	})
	assert.Equal(t, 4, calls)
}

func TestRetryable_PatternMatching(t *testing.T) {
	patterns := []string{"network", "timeout", "5\\d\\d"}

	assert.True(t, Retryable(errors.New("Network unreachable"), patterns))
	assert.True(t, Retryable(errors.New("connection TIMEOUT"), patterns))
	assert.True(t, Retryable(errors.New("server returned 503"), patterns))
	assert.False(t, Retryable(errors.New("404 Not Found"), patterns))
	assert.False(t, Retryable(nil, patterns))
}

func TestBackoffDelay_CappedGrowth(t *testing.T) {
	strategy := Strategy{RetryDelay: time.Second, BackoffMultiplier: 10}

	assert.Equal(t, time.Second, backoffDelay(strategy, 0))
	assert.Equal(t, 10*time.Second, backoffDelay(strategy, 1))
	assert.Equal(t, maxRetryDelay, backoffDelay(strategy, 2), "growth capped at 30s")
	assert.Equal(t, maxRetryDelay, backoffDelay(strategy, 50))
}

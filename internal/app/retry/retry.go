package retry

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"adaptive-voice/internal/app/apperrors"
)

// maxRetryDelay caps a single backoff sleep regardless of how far the
// exponential growth has run.
const maxRetryDelay = 30 * time.Second

// defaultTimeout bounds the whole retry loop from the first attempt,
// independent of the attempt count.
const defaultTimeout = 60 * time.Second

// Strategy is an immutable retry policy.
type Strategy struct {
	MaxRetries        int
	RetryDelay        time.Duration
	BackoffMultiplier float64
	// RetryablePatterns classify errors by message: case-insensitive
	// substring match, or full regexp when the pattern compiles.
	RetryablePatterns []string
	// Timeout is the overall wall-clock budget. Zero means defaultTimeout.
	Timeout time.Duration
}

// DefaultStrategy retries transient recognition failures.
func DefaultStrategy() Strategy {
	return Strategy{
		MaxRetries:        2,
		RetryDelay:        time.Second,
		BackoffMultiplier: 2,
		RetryablePatterns: []string{"network", "timeout", "no-speech", "no speech", "5\\d\\d"},
	}
}

// Result reports the outcome of a retry loop.
type Result[T any] struct {
	Success  bool
	Data     T
	Err      error
	Attempts int
}

// Do runs fn under the strategy. A non-retryable failure returns after
// exactly one attempt. Retryable failures back off exponentially, each sleep
// capped at maxRetryDelay, until attempts or the wall-clock budget run out.
// Sleeps select on ctx so cancellation is immediate.
func Do[T any](ctx context.Context, strategy Strategy, fn func(context.Context) (T, error)) Result[T] {
	timeout := strategy.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	deadline := time.Now().Add(timeout)

	loopCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	maxAttempts := strategy.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var result Result[T]
	for attempt := 0; attempt < maxAttempts; attempt++ {
		data, err := fn(loopCtx)
		result.Attempts = attempt + 1
		if err == nil {
			result.Success = true
			result.Data = data
			return result
		}
		result.Err = err

		if !Retryable(err, strategy.RetryablePatterns) {
			return result
		}
		if attempt == maxAttempts-1 {
			return result
		}

		delay := backoffDelay(strategy, attempt)
		if time.Now().Add(delay).After(deadline) {
			result.Err = apperrors.Wrapf(err, apperrors.CodeTimeout,
				"retry budget of %s exhausted after %d attempts", timeout, result.Attempts)
			return result
		}

		select {
		case <-loopCtx.Done():
			result.Err = apperrors.Wrap(loopCtx.Err(), apperrors.CodeTimeout, "retry loop cancelled")
			return result
		case <-time.After(delay):
		}
	}

	return result
}

// Retryable classifies an error against the patterns. Coded errors carry
// their own retryability; everything else matches by message, case
// insensitively, as a substring or a regexp.
func Retryable(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	if apperrors.CodeOf(err) != "" {
		return apperrors.IsRetryable(err)
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range patterns {
		if strings.Contains(msg, strings.ToLower(pattern)) {
			return true
		}
		if re, compileErr := regexp.Compile("(?i)" + pattern); compileErr == nil && re.MatchString(msg) {
			return true
		}
	}
	return false
}

func backoffDelay(strategy Strategy, attempt int) time.Duration {
	multiplier := strategy.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	delay := time.Duration(float64(strategy.RetryDelay) * math.Pow(multiplier, float64(attempt)))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	if delay < 0 {
		delay = maxRetryDelay
	}
	return delay
}

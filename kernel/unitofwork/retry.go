package unitofwork

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

const (
	defaultMaxAttempts  = 4
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")

	// ErrNilRetryClassifier is returned when a nil classifier is provided to WithRetryableErrors.
	ErrNilRetryClassifier = errors.New("retry classifier must not be nil")
)

// RetryOption configures the persist retry using the functional options pattern.
type RetryOption func(*retryConfig) error

type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
	isRetryable  func(error) bool
}

func defaultRetryConfig() *retryConfig {
	return &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
		isRetryable:  func(error) bool { return false },
	}
}

// WithPersistRetry retries failed persist calls with exponential backoff.
//
// Retry schedule (default): 0 ms, 10 ms, 20 ms, 40 ms (with 30% jitter).
// Only errors accepted by the WithRetryableErrors classifier are retried, all others fail fast.
// Without a classifier nothing is retried.
func WithPersistRetry(options ...RetryOption) Option {
	return func(u *UnitOfWork) error {
		config := defaultRetryConfig()

		for _, option := range options {
			if err := option(config); err != nil {
				return err
			}
		}

		u.retry = config

		return nil
	}
}

// WithMaxAttempts sets the maximum number of persist attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter added as a fraction of each backoff delay.
// Valid range: 0.0 (no jitter) to 1.0 (100% jitter).
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryableErrors sets the classifier deciding which persist errors are transient.
// postgresoutbox.IsRetryable is the classifier for the Postgres outbox.
func WithRetryableErrors(isRetryable func(error) bool) RetryOption {
	return func(config *retryConfig) error {
		if isRetryable == nil {
			return ErrNilRetryClassifier
		}

		config.isRetryable = isRetryable

		return nil
	}
}

// retryWithExponentialBackoff runs fn until it succeeds, fails permanently, or maxAttempts is reached.
// onRetry is called before every repeated attempt. The context error wins over the last fn error.
func retryWithExponentialBackoff(
	ctx context.Context,
	config *retryConfig,
	fn func(ctx context.Context) error,
	onRetry func(attempt int, delay time.Duration, lastErr error),
) error {

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			onRetry(attempt, backoffDelay, lastErr)

			select {
			case <-time.After(backoffDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !config.isRetryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *slog.Logger
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// Do executes fn with exponential back-off. Permanent errors and context
// cancellation stop it early.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var p *permanentError
		if errors.As(lastErr, &p) {
			return p.err
		}

		if attempt < attempts {
			if r.Logger != nil {
				r.Logger.Warn("Remote call failed, retrying",
					"operation", operationName,
					"attempt", attempt,
					"max_attempts", attempts,
					"delay", delay,
					"error", lastErr)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}

package fs

import (
	"context"
	"time"

	"github.com/raoulx24/flameup/internal/errors"
)

// retryBase is the first backoff delay; it doubles on every attempt.
var retryBase = 100 * time.Millisecond

const maxRetries = 5

// retry runs fn until it succeeds, fails with a non-transient error, the
// context is cancelled, or maxRetries attempts have been made.
func retry(ctx context.Context, opName string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isTransient(err) {
			return errors.Wrapf(err, "%s failed permanently", opName)
		}

		if attempt == maxRetries {
			break
		}

		t := time.NewTimer(retryBase * (1 << (attempt - 1)))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	return errors.Wrapf(lastErr, "%s failed after %d retries", opName, maxRetries)
}

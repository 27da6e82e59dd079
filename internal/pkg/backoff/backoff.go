// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package backoff provides exponential backoff with jitter for retrying operations.
package backoff

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Retry calls f until it succeeds, returns a non-retryable error, or
// maxAttempts is reached. Between attempts it waits with exponential
// backoff and jitter, starting at initialDelay and capped at maxDelay.
//
// f reports its result, whether a failure is retryable, and the error.
// A non-retryable error is returned immediately.
func Retry[T any](
	ctx context.Context,
	maxAttempts int,
	initialDelay time.Duration,
	maxDelay time.Duration,
	f func(ctx context.Context, attempt int) (T, bool, error),
) (T, error) {
	var zero T
	var lastErr error
	delay := initialDelay
	for attempt := range maxAttempts {
		result, retryable, err := f(ctx, attempt)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return zero, err
		}
		lastErr = err
		if attempt == maxAttempts-1 {
			break
		}
		if err := sleepWithJitter(ctx, delay); err != nil {
			return zero, err
		}
		delay = min(delay*2, maxDelay)
	}
	return zero, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

// *** PRIVATE ***

// sleepWithJitter waits for a random duration between delay/2 and delay,
// returning early if the context is canceled.
func sleepWithJitter(ctx context.Context, delay time.Duration) error {
	jitteredDelay := delay/2 + time.Duration(rand.Int64N(int64(delay/2+1)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jitteredDelay):
		return nil
	}
}

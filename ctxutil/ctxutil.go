// Copyright (c) 2023 BVK Chaitanya

package ctxutil

import (
	"context"
	"time"
)

// Sleep blocks the caller for given duration. Returns early with the context
// cancellation cause if the input context is canceled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return context.Cause(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}

// Retry runs the input function upto given number of attempts, sleeping for
// the interval between the attempts. Returns nil on success, context
// cancellation cause if the context is canceled or the last error from the
// function.
func Retry(ctx context.Context, attempts int, interval time.Duration, f func() error) (err error) {
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := Sleep(ctx, interval); err != nil {
				return err
			}
		}
		if err = f(); err == nil {
			return nil
		}
	}
	return err
}

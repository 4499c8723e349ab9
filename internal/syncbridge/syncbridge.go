// Package syncbridge adapts context-based provider operations to call
// sites that cannot carry a context. Each call runs on its own goroutine
// with an independent background-derived context, so the blocking caller's
// stack never hosts the network I/O; the inner operation's error is
// propagated unchanged.
package syncbridge

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds bridged operations when the caller does not pick
// one.
const DefaultTimeout = 2 * time.Minute

// Run executes op on a fresh goroutine under a background-derived context
// with the given timeout, blocking until it finishes. op's error is
// returned as-is; only a timeout produces a bridge-level error.
func Run[T any](op func(ctx context.Context) (T, error), timeout time.Duration) (T, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := op(ctx)
		done <- outcome{value: v, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("syncbridge: operation timed out after %s: %w", timeout, ctx.Err())
	}
}

// run is Run for operations with no result value.
func run(op func(ctx context.Context) error, timeout time.Duration) error {
	_, err := Run(func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, timeout)
	return err
}

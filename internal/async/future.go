// Package async provides a single-value future for work that completes after a delay.
package async

import (
	"context"
	"fmt"
	"time"
)

// Future holds the eventual result of a function running on its own goroutine.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn on a new goroutine and returns a future for its result.
// A panic in fn is reported as the future's error.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("async: panic: %v", r)
			}
		}()
		f.val, f.err = fn(ctx)
	}()
	return f
}

// After waits for delay and then runs fn. If ctx ends first, fn never runs and the
// future resolves with ctx.Err().
func After[T any](ctx context.Context, delay time.Duration, fn func(context.Context) (T, error)) *Future[T] {
	return Go(ctx, func(ctx context.Context) (T, error) {
		if err := Sleep(ctx, delay); err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx)
	})
}

// Resolved returns a future that is already complete.
func Resolved[T any](val T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: val, err: err}
	close(f.done)
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the result is available or ctx ends.
// Abandoning a future does not cancel the work behind it.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Sleep pauses for d or until ctx ends, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package loader

import (
	"context"
	"fmt"

	"casatour/internal/download"
)

// Request is an in-flight background load. Its owner polls it once per frame; nothing
// else touches the owner's state, so the frame loop stays single-threaded.
type Request[T any] struct {
	progress chan float64
	done     chan outcome[T]

	last     float64
	finished bool
	value    T
	err      error
}

type outcome[T any] struct {
	value T
	err   error
}

// Async runs fn on its own goroutine. Progress reports are coalesced: a slow poller only
// sees the latest fraction. A panic in fn becomes the request's error.
func Async[T any](ctx context.Context, fn func(ctx context.Context, progress download.Progress) (T, error)) *Request[T] {
	r := &Request[T]{
		progress: make(chan float64, 1),
		done:     make(chan outcome[T], 1),
	}
	go func() {
		var out outcome[T]
		defer func() {
			if rec := recover(); rec != nil {
				out = outcome[T]{err: fmt.Errorf("loader: panic: %v", rec)}
			}
			r.done <- out
		}()
		out.value, out.err = fn(ctx, r.report)
	}()
	return r
}

func (r *Request[T]) report(f float64) {
	select {
	case r.progress <- f:
		return
	default:
	}
	select {
	case <-r.progress:
	default:
	}
	select {
	case r.progress <- f:
	default:
	}
}

// Poll drains pending progress without blocking and reports whether the load finished.
func (r *Request[T]) Poll() (progress float64, done bool) {
	if r.finished {
		return r.last, true
	}
	select {
	case f := <-r.progress:
		r.last = f
	default:
	}
	select {
	case out := <-r.done:
		r.finished = true
		r.value, r.err = out.value, out.err
		if r.err == nil {
			r.last = 1
		}
	default:
	}
	return r.last, r.finished
}

// Result returns the outcome; valid once Poll reported done.
func (r *Request[T]) Result() (T, error) {
	return r.value, r.err
}

// Wait blocks until the load finishes or ctx ends. It is meant for command-line tools and
// tests, not for the frame loop.
func (r *Request[T]) Wait(ctx context.Context) (T, error) {
	if r.finished {
		return r.value, r.err
	}
	select {
	case out := <-r.done:
		r.finished = true
		r.value, r.err = out.value, out.err
		r.last = 1
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

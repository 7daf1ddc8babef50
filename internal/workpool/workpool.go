// Package workpool bounds the CPU-heavy stages of request handling so the
// request-accepting goroutines are never saturated by decoding or inference.
package workpool

import (
	"context"
	"runtime"
)

type Pool struct {
	slots chan struct{}
}

// New creates a pool with the given number of slots; size <= 0 means one slot
// per CPU.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size reports the slot count.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Do runs fn on its own goroutine once a slot is free and returns its error.
// Waiting for a slot or for fn is abandoned when ctx is done; in that case fn
// may still be running, but its slot is released when it finishes.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	_, err := Run(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

type outcome[T any] struct {
	val T
	err error
}

// Run runs fn on a pool goroutine and returns its value and error. The result
// travels through a buffered channel, never a shared variable, so a task that
// outlives ctx delivers into a channel nobody reads instead of racing the
// caller. The abandoned task's slot is released when it finishes.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	done := make(chan outcome[T], 1)
	go func() {
		defer func() { <-p.slots }()
		v, err := fn()
		done <- outcome[T]{val: v, err: err}
	}()

	select {
	case out := <-done:
		return out.val, out.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoReturnsFnError(t *testing.T) {
	p := New(2)
	want := errors.New("boom")
	if err := p.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if err := p.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBoundedConcurrency(t *testing.T) {
	const size = 3
	p := New(size)

	var active, peak int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Do(context.Background(), func() error {
				n := atomic.AddInt64(&active, 1)
				for {
					old := atomic.LoadInt64(&peak)
					if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt64(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&peak); got > size {
		t.Fatalf("pool ran %d tasks concurrently, limit is %d", got, size)
	}
}

func TestDoHonorsContextWhileWaiting(t *testing.T) {
	p := New(1)

	release := make(chan struct{})
	go func() {
		_ = p.Do(context.Background(), func() error {
			<-release
			return nil
		})
	}()
	// Let the first task grab the only slot.
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Do(ctx, func() error { return nil })
	close(release)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRunReturnsValue(t *testing.T) {
	p := New(1)
	got, err := Run(context.Background(), p, func() ([]int, error) {
		return []int{1, 2, 3}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(got))
	}
}

func TestRunAbandonedTaskDoesNotTouchCallerResult(t *testing.T) {
	p := New(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	got, err := Run(ctx, p, func() ([]float64, error) {
		<-release
		return []float64{1, 2, 3}, nil
	})
	// The abandoned task finishes concurrently with the caller inspecting
	// got; the race detector verifies its result never lands in caller
	// memory.
	close(release)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected zero-value result from abandoned task, got %v", got)
	}

	// The abandoned task's slot must still be released once it finishes.
	if err := p.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("slot was not released: %v", err)
	}
}

func TestDefaultSize(t *testing.T) {
	if New(0).Size() < 1 {
		t.Fatal("expected at least one slot")
	}
	if got := New(4).Size(); got != 4 {
		t.Fatalf("expected 4 slots, got %d", got)
	}
}

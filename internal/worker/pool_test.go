package worker

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolExecutePreservesOrder(t *testing.T) {
	pool := NewPool(4, func(ctx context.Context, n int) (string, error) {
		return strconv.Itoa(n * 2), nil
	})

	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}
	results := pool.Execute(context.Background(), inputs)

	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("task %d: unexpected error: %v", i, r.Err)
		}
		want := strconv.Itoa(inputs[i] * 2)
		if r.Result != want {
			t.Errorf("task %d: got %q, want %q", i, r.Result, want)
		}
	}
}

func TestPoolExecuteCollectsErrors(t *testing.T) {
	failOn := errors.New("boom")
	pool := NewPool(2, func(ctx context.Context, n int) (int, error) {
		if n == 3 {
			return 0, failOn
		}
		return n, nil
	})

	results := pool.Execute(context.Background(), []int{1, 2, 3, 4})

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			if !errors.Is(r.Err, failOn) {
				t.Errorf("unexpected error: %v", r.Err)
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly one failed task, got %d", failed)
	}
}

func TestPoolExecuteCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var processed atomic.Int32
	pool := NewPool(2, func(ctx context.Context, n int) (int, error) {
		if processed.Add(1) == 2 {
			cancel()
		}
		<-ctx.Done()
		return n, ctx.Err()
	})

	done := make(chan struct{})
	go func() {
		pool.Execute(ctx, []int{1, 2, 3, 4, 5})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Execute did not return after cancellation")
	}
}

func TestPoolExecuteSkipsFeedingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var processed atomic.Int32
	pool := NewPool(2, func(ctx context.Context, n int) (int, error) {
		processed.Add(1)
		return n, nil
	})

	results := pool.Execute(ctx, []int{1, 2, 3, 4, 5})

	if got := processed.Load(); got != 0 {
		t.Errorf("expected no tasks processed after cancellation, got %d", got)
	}
	if len(results) != 5 {
		t.Errorf("result slice must keep input length, got %d", len(results))
	}
}

func TestPoolClampsWorkerCount(t *testing.T) {
	pool := NewPool(0, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	if pool.workers != 1 {
		t.Errorf("expected worker count clamped to 1, got %d", pool.workers)
	}
}

func TestBatch(t *testing.T) {
	tests := []struct {
		name      string
		items     []int
		batchSize int
		want      [][]int
	}{
		{"even split", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"remainder", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"single batch", []int{1, 2}, 10, [][]int{{1, 2}}},
		{"zero size clamps to one", []int{1, 2}, 0, [][]int{{1}, {2}}},
		{"empty", nil, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Batch(tt.items, tt.batchSize)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d batches, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("batch %d: got %v, want %v", i, got[i], tt.want[i])
				}
				for j := range got[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("batch %d: got %v, want %v", i, got[i], tt.want[i])
					}
				}
			}
		})
	}
}

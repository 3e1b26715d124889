package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/daydif/daydif-backend/internal/platform/apperr"
)

func TestWaitForCondition_ReturnsMatchingSnapshot(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}
	got, err := WaitForCondition(context.Background(), fetch, func(v int) bool { return v >= 3 }, Options{
		Interval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected snapshot 3, got %d", got)
	}
}

func TestWaitForCondition_TimesOut(t *testing.T) {
	fetch := func(ctx context.Context) (string, error) {
		return "in_progress", nil
	}
	start := time.Now()
	last, err := WaitForCondition(context.Background(), fetch, func(v string) bool { return v == "completed" }, Options{
		Interval: 5 * time.Millisecond,
		Timeout:  40 * time.Millisecond,
	})
	if !errors.Is(err, apperr.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if last != "in_progress" {
		t.Fatalf("expected last snapshot returned, got %q", last)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("timeout took too long: %s", elapsed)
	}
}

func TestWaitForCondition_ToleratesFetchErrors(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			return 0, errors.New("transient read failure")
		}
		return int(n), nil
	}
	got, err := WaitForCondition(context.Background(), fetch, func(v int) bool { return v >= 3 }, Options{
		Interval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got < 3 {
		t.Fatalf("expected fetch to eventually succeed, got %d", got)
	}
}

func TestWaitForCondition_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context) (int, error) { return 0, nil }
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := WaitForCondition(ctx, fetch, func(int) bool { return false }, Options{
		Interval: 5 * time.Millisecond,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPoll_DeliversSnapshotsUntilStopped(t *testing.T) {
	var fetches int32
	fetch := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&fetches, 1)), nil
	}
	seen := make(chan int, 64)
	handle := Poll(context.Background(), fetch, func(v int) { seen <- v }, Options{
		Interval: 5 * time.Millisecond,
	})

	select {
	case <-seen:
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	handle.Stop()
	select {
	case <-handle.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after Stop")
	}

	after := atomic.LoadInt32(&fetches)
	time.Sleep(30 * time.Millisecond)
	if atomic.LoadInt32(&fetches) != after {
		t.Fatal("fetch kept running after Stop")
	}
}

func TestPoll_StopIsIdempotent(t *testing.T) {
	fetch := func(ctx context.Context) (int, error) { return 1, nil }
	handle := Poll(context.Background(), fetch, nil, Options{Interval: 5 * time.Millisecond})
	handle.Stop()
	handle.Stop()
}

func TestPoll_KeepsGoingOnFetchError(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		n := atomic.AddInt32(&calls, 1)
		if n%2 == 1 {
			return 0, errors.New("flaky")
		}
		return int(n), nil
	}
	seen := make(chan int, 64)
	handle := Poll(context.Background(), fetch, func(v int) { seen <- v }, Options{
		Interval: 5 * time.Millisecond,
	})
	defer handle.Stop()

	var delivered []int
	timeout := time.After(time.Second)
	for len(delivered) < 2 {
		select {
		case v := <-seen:
			delivered = append(delivered, v)
		case <-timeout:
			t.Fatal("poller stalled on fetch errors")
		}
	}
	for _, v := range delivered {
		if v%2 != 0 {
			t.Fatalf("error snapshot %d leaked to callback", v)
		}
	}
}

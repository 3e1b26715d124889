package poll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/daydif/daydif-backend/internal/platform/apperr"
)

const DefaultInterval = 3 * time.Second

type Options struct {
	// Interval between fetches. Defaults to DefaultInterval.
	Interval time.Duration
	// Timeout bounds WaitForCondition only. Zero means no timeout.
	Timeout time.Duration
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
}

// FetchFunc retrieves the current snapshot of whatever is being watched.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Handle controls a running poll loop. Stop is idempotent and safe from
// any goroutine; it stops the loop without affecting the watched work.
type Handle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}

// Done is closed when the loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Poll fetches on a fixed interval and passes each snapshot to
// onProgress. Fetch errors are tolerated: the loop skips the callback
// and keeps polling, since a transient read failure says nothing about
// the watched work. The loop runs until Stop or ctx cancellation.
func Poll[T any](ctx context.Context, fetch FetchFunc[T], onProgress func(T), opts Options) *Handle {
	opts.defaults()
	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
			}
			snapshot, err := fetch(loopCtx)
			if err != nil {
				continue
			}
			if onProgress != nil {
				onProgress(snapshot)
			}
		}
	}()
	return h
}

// WaitForCondition polls until predicate returns true for a snapshot,
// then returns that snapshot. With a timeout set, it gives up after the
// deadline and returns the last snapshot seen alongside an error
// wrapping apperr.ErrTimeout. Giving up only stops watching; the work
// being watched is never cancelled.
func WaitForCondition[T any](ctx context.Context, fetch FetchFunc[T], predicate func(T) bool, opts Options) (T, error) {
	opts.defaults()
	var last T

	loopCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		loopCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-loopCtx.Done():
			if opts.Timeout > 0 && ctx.Err() == nil {
				return last, fmt.Errorf("condition not met within %s: %w", opts.Timeout, apperr.ErrTimeout)
			}
			return last, loopCtx.Err()
		case <-ticker.C:
		}
		snapshot, err := fetch(loopCtx)
		if err != nil {
			continue
		}
		last = snapshot
		if predicate(snapshot) {
			return snapshot, nil
		}
	}
}

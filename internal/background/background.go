package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/appspec/server/internal/logger"
)

// runs fire-and-forget work detached from the request that triggered it.
// failures go to the log sink and the optional onError hook; callers never see them.
type Runner struct {
	timeout time.Duration
	onError func(task string, err error)
	wg      sync.WaitGroup
}

func NewRunner(timeout time.Duration, onError func(task string, err error)) *Runner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Runner{timeout: timeout, onError: onError}
}

// starts fn in its own goroutine with a detached, time-limited context.
// the parent context only contributes its values (request-scoped logger).
func (r *Runner) Go(parent context.Context, task string, fn func(ctx context.Context) error) {
	if parent == nil {
		parent = context.Background()
	}

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), r.timeout)
		defer cancel()

		if err := r.run(ctx, fn); err != nil {
			logger.FromContext(parent).Error("background task failed", "task", task, "error", err)

			if r.onError != nil {
				r.onError(task, err)
			}
		}
	}()
}

func (r *Runner) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()

	return fn(ctx)
}

// blocks until every started task finished or ctx expires
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

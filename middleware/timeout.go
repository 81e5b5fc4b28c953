package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/run"
)

// Timeout returns middleware that enforces the task run's Timeout.
//
// The handler runs on its own goroutine with a deadline-bound context. When
// the deadline passes first, the attempt returns an error wrapping
// supremetask.ErrTaskTimeout without waiting for the handler; a handler
// that ignores ctx keeps running in the background and its result is
// discarded. Panics in the handler are re-raised on the caller's goroutine.
func Timeout(logger *slog.Logger) Middleware {
	return func(ctx context.Context, tr *run.TaskRun, next Handler) error {
		if tr.Timeout <= 0 {
			return next(ctx)
		}
		logger.Debug("task run timeout set",
			slog.String("task_run_id", tr.ID.String()),
			slog.Duration("timeout", tr.Timeout),
		)

		ctx, cancel := context.WithTimeout(ctx, tr.Timeout)
		defer cancel()

		type outcome struct {
			err   error
			panic any
		}
		done := make(chan outcome, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- outcome{panic: r}
				}
			}()
			done <- outcome{err: next(ctx)}
		}()

		select {
		case o := <-done:
			if o.panic != nil {
				panic(o.panic)
			}
			if o.err != nil && errors.Is(o.err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return timeoutError(tr, o.err)
			}
			return o.err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return timeoutError(tr, ctx.Err())
			}
			return ctx.Err()
		}
	}
}

func timeoutError(tr *run.TaskRun, cause error) error {
	return fmt.Errorf("%w: task %s exceeded %s: %w", supremetask.ErrTaskTimeout, tr.TaskName, tr.Timeout, cause)
}

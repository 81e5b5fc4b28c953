package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/marwan116/supreme-task/run"
)

// Recover returns middleware that turns a panicking task body into a
// failed attempt. The panic value and stack are logged; the attempt error
// reads "panic in task <name>: <value>".
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, tr *run.TaskRun, next Handler) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if perr, ok := r.(error); ok {
				err = fmt.Errorf("panic in task %s: %w", tr.TaskName, perr)
			} else {
				err = fmt.Errorf("panic in task %s: %v", tr.TaskName, r)
			}
			logger.ErrorContext(ctx, "task body panicked",
				slog.String("task_name", tr.TaskName),
				slog.String("task_run_id", tr.ID.String()),
				slog.Int("run_count", tr.RunCount),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}()
		return next(ctx)
	}
}

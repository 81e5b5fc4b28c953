package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/marwan116/supreme-task/run"
)

// Logging returns middleware that logs every attempt of a task run.
// Attempt starts are logged at debug level; a failed attempt is a warning
// because the engine may still retry it.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, tr *run.TaskRun, next Handler) error {
		l := logger.With(
			slog.String("task_name", tr.TaskName),
			slog.String("task_run", tr.Name),
			slog.Int("run_count", tr.RunCount),
		)
		if !tr.FlowRunID.IsNil() {
			l = l.With(slog.String("flow_run_id", tr.FlowRunID.String()))
		}
		if tr.CacheKey != "" {
			l = l.With(slog.String("cache_key", tr.CacheKey))
		}
		l.DebugContext(ctx, "attempt started")

		start := time.Now()
		err := next(ctx)
		if err != nil {
			l.WarnContext(ctx, "attempt failed",
				slog.Duration("elapsed", time.Since(start)),
				slog.String("error", err.Error()),
			)
			return err
		}
		l.InfoContext(ctx, "attempt completed", slog.Duration("elapsed", time.Since(start)))
		return nil
	}
}

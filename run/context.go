package run

import (
	"context"
	"log/slog"
	"time"

	"github.com/marwan116/supreme-task/result"
)

// TaskRunContext is the ambient state of one task run. It is read-only to
// task bodies and hooks.
type TaskRunContext struct {
	// Task is the name of the running task.
	Task       string
	TaskRun    *TaskRun
	StartTime  time.Time
	Parameters map[string]any

	// ResultFactory is the result configuration of this run.
	ResultFactory *result.Factory

	Logger    *slog.Logger
	LogPrints bool
}

// FlowRunContext is the ambient state of one flow run.
type FlowRunContext struct {
	FlowRun       *FlowRun
	ResultFactory *result.Factory
	Logger        *slog.Logger
}

type taskRunKey struct{}

type flowRunKey struct{}

// WithTaskRunContext returns a context carrying trc.
func WithTaskRunContext(ctx context.Context, trc *TaskRunContext) context.Context {
	return context.WithValue(ctx, taskRunKey{}, trc)
}

// TaskRunContextFrom returns the active task run context, if any.
func TaskRunContextFrom(ctx context.Context) (*TaskRunContext, bool) {
	trc, ok := ctx.Value(taskRunKey{}).(*TaskRunContext)
	return trc, ok && trc != nil
}

// WithFlowRunContext returns a context carrying frc.
func WithFlowRunContext(ctx context.Context, frc *FlowRunContext) context.Context {
	return context.WithValue(ctx, flowRunKey{}, frc)
}

// FlowRunContextFrom returns the active flow run context, if any.
func FlowRunContextFrom(ctx context.Context) (*FlowRunContext, bool) {
	frc, ok := ctx.Value(flowRunKey{}).(*FlowRunContext)
	return frc, ok && frc != nil
}

// Logger returns the logger of the innermost active run, falling back to
// slog.Default outside of runs.
func Logger(ctx context.Context) *slog.Logger {
	if trc, ok := TaskRunContextFrom(ctx); ok && trc.Logger != nil {
		return trc.Logger
	}
	if frc, ok := FlowRunContextFrom(ctx); ok && frc.Logger != nil {
		return frc.Logger
	}
	return slog.Default()
}

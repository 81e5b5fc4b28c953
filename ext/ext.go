// Package ext defines the extension system for the engine.
// Extensions are notified of flow and task run lifecycle events and can
// react to them, for example by recording metrics or audit records.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import (
	"context"
	"time"

	"github.com/marwan116/supreme-task/run"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Task run lifecycle hooks
// ──────────────────────────────────────────────────

// TaskRunStarted is called when a task run begins its first attempt.
type TaskRunStarted interface {
	OnTaskRunStarted(ctx context.Context, tr *run.TaskRun) error
}

// TaskRunCompleted is called after a task run completes, including runs
// served from the cache.
type TaskRunCompleted interface {
	OnTaskRunCompleted(ctx context.Context, tr *run.TaskRun, elapsed time.Duration) error
}

// TaskRunFailed is called when a task run fails with no retries left.
type TaskRunFailed interface {
	OnTaskRunFailed(ctx context.Context, tr *run.TaskRun, err error) error
}

// TaskRunRetrying is called when an attempt fails and another will follow
// after delay.
type TaskRunRetrying interface {
	OnTaskRunRetrying(ctx context.Context, tr *run.TaskRun, attempt int, delay time.Duration) error
}

// ──────────────────────────────────────────────────
// Flow run lifecycle hooks
// ──────────────────────────────────────────────────

// FlowRunStarted is called when a flow run begins.
type FlowRunStarted interface {
	OnFlowRunStarted(ctx context.Context, fr *run.FlowRun) error
}

// FlowRunCompleted is called after a flow run finishes successfully.
type FlowRunCompleted interface {
	OnFlowRunCompleted(ctx context.Context, fr *run.FlowRun, elapsed time.Duration) error
}

// FlowRunFailed is called when a flow run fails.
type FlowRunFailed interface {
	OnFlowRunFailed(ctx context.Context, fr *run.FlowRun, err error) error
}

// ──────────────────────────────────────────────────
// Other lifecycle hooks
// ──────────────────────────────────────────────────

// Shutdown is called when the engine closes.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}

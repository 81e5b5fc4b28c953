package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/marwan116/supreme-task/run"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time.
type taskRunStartedEntry struct {
	name string
	hook TaskRunStarted
}

type taskRunCompletedEntry struct {
	name string
	hook TaskRunCompleted
}

type taskRunFailedEntry struct {
	name string
	hook TaskRunFailed
}

type taskRunRetryingEntry struct {
	name string
	hook TaskRunRetrying
}

type flowRunStartedEntry struct {
	name string
	hook FlowRunStarted
}

type flowRunCompletedEntry struct {
	name string
	hook FlowRunCompleted
}

type flowRunFailedEntry struct {
	name string
	hook FlowRunFailed
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and fans lifecycle events out to
// them. Extensions are type-cached at registration so each emit iterates
// only over the extensions implementing that hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	taskRunStarted   []taskRunStartedEntry
	taskRunCompleted []taskRunCompletedEntry
	taskRunFailed    []taskRunFailedEntry
	taskRunRetrying  []taskRunRetryingEntry
	flowRunStarted   []flowRunStartedEntry
	flowRunCompleted []flowRunCompletedEntry
	flowRunFailed    []flowRunFailedEntry
	shutdown         []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(TaskRunStarted); ok {
		r.taskRunStarted = append(r.taskRunStarted, taskRunStartedEntry{name, h})
	}
	if h, ok := e.(TaskRunCompleted); ok {
		r.taskRunCompleted = append(r.taskRunCompleted, taskRunCompletedEntry{name, h})
	}
	if h, ok := e.(TaskRunFailed); ok {
		r.taskRunFailed = append(r.taskRunFailed, taskRunFailedEntry{name, h})
	}
	if h, ok := e.(TaskRunRetrying); ok {
		r.taskRunRetrying = append(r.taskRunRetrying, taskRunRetryingEntry{name, h})
	}
	if h, ok := e.(FlowRunStarted); ok {
		r.flowRunStarted = append(r.flowRunStarted, flowRunStartedEntry{name, h})
	}
	if h, ok := e.(FlowRunCompleted); ok {
		r.flowRunCompleted = append(r.flowRunCompleted, flowRunCompletedEntry{name, h})
	}
	if h, ok := e.(FlowRunFailed); ok {
		r.flowRunFailed = append(r.flowRunFailed, flowRunFailedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// SetLogger replaces the logger used for hook errors.
func (r *Registry) SetLogger(logger *slog.Logger) { r.logger = logger }

// ──────────────────────────────────────────────────
// Task run event emitters
// ──────────────────────────────────────────────────

// EmitTaskRunStarted notifies all extensions that implement TaskRunStarted.
func (r *Registry) EmitTaskRunStarted(ctx context.Context, tr *run.TaskRun) {
	for _, e := range r.taskRunStarted {
		if err := e.hook.OnTaskRunStarted(ctx, tr); err != nil {
			r.logHookError("OnTaskRunStarted", e.name, err)
		}
	}
}

// EmitTaskRunCompleted notifies all extensions that implement TaskRunCompleted.
func (r *Registry) EmitTaskRunCompleted(ctx context.Context, tr *run.TaskRun, elapsed time.Duration) {
	for _, e := range r.taskRunCompleted {
		if err := e.hook.OnTaskRunCompleted(ctx, tr, elapsed); err != nil {
			r.logHookError("OnTaskRunCompleted", e.name, err)
		}
	}
}

// EmitTaskRunFailed notifies all extensions that implement TaskRunFailed.
func (r *Registry) EmitTaskRunFailed(ctx context.Context, tr *run.TaskRun, runErr error) {
	for _, e := range r.taskRunFailed {
		if err := e.hook.OnTaskRunFailed(ctx, tr, runErr); err != nil {
			r.logHookError("OnTaskRunFailed", e.name, err)
		}
	}
}

// EmitTaskRunRetrying notifies all extensions that implement TaskRunRetrying.
func (r *Registry) EmitTaskRunRetrying(ctx context.Context, tr *run.TaskRun, attempt int, delay time.Duration) {
	for _, e := range r.taskRunRetrying {
		if err := e.hook.OnTaskRunRetrying(ctx, tr, attempt, delay); err != nil {
			r.logHookError("OnTaskRunRetrying", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Flow run event emitters
// ──────────────────────────────────────────────────

// EmitFlowRunStarted notifies all extensions that implement FlowRunStarted.
func (r *Registry) EmitFlowRunStarted(ctx context.Context, fr *run.FlowRun) {
	for _, e := range r.flowRunStarted {
		if err := e.hook.OnFlowRunStarted(ctx, fr); err != nil {
			r.logHookError("OnFlowRunStarted", e.name, err)
		}
	}
}

// EmitFlowRunCompleted notifies all extensions that implement FlowRunCompleted.
func (r *Registry) EmitFlowRunCompleted(ctx context.Context, fr *run.FlowRun, elapsed time.Duration) {
	for _, e := range r.flowRunCompleted {
		if err := e.hook.OnFlowRunCompleted(ctx, fr, elapsed); err != nil {
			r.logHookError("OnFlowRunCompleted", e.name, err)
		}
	}
}

// EmitFlowRunFailed notifies all extensions that implement FlowRunFailed.
func (r *Registry) EmitFlowRunFailed(ctx context.Context, fr *run.FlowRun, runErr error) {
	for _, e := range r.flowRunFailed {
		if err := e.hook.OnFlowRunFailed(ctx, fr, runErr); err != nil {
			r.logHookError("OnFlowRunFailed", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Other event emitters
// ──────────────────────────────────────────────────

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Hook errors never reach the run.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}

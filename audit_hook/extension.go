package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marwan116/supreme-task/ext"
	"github.com/marwan116/supreme-task/run"
)

// Compile-time interface checks.
var (
	_ ext.Extension        = (*Extension)(nil)
	_ ext.TaskRunStarted   = (*Extension)(nil)
	_ ext.TaskRunCompleted = (*Extension)(nil)
	_ ext.TaskRunFailed    = (*Extension)(nil)
	_ ext.TaskRunRetrying  = (*Extension)(nil)
	_ ext.FlowRunStarted   = (*Extension)(nil)
	_ ext.FlowRunCompleted = (*Extension)(nil)
	_ ext.FlowRunFailed    = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one audit record.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension bridges lifecycle events to an audit trail backend.
// Each lifecycle hook emits a structured audit event through the [Recorder].
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// ── Task run lifecycle hooks ────────────────────────

// OnTaskRunStarted implements ext.TaskRunStarted.
func (e *Extension) OnTaskRunStarted(ctx context.Context, tr *run.TaskRun) error {
	return e.record(ctx, ActionTaskRunStarted, SeverityInfo, OutcomeSuccess,
		ResourceTaskRun, tr.ID.String(), CategoryTask, nil,
		"task_name", tr.TaskName,
		"task_run", tr.Name,
		"flow_run_id", tr.FlowRunID.String(),
	)
}

// OnTaskRunCompleted implements ext.TaskRunCompleted.
func (e *Extension) OnTaskRunCompleted(ctx context.Context, tr *run.TaskRun, elapsed time.Duration) error {
	return e.record(ctx, ActionTaskRunCompleted, SeverityInfo, OutcomeSuccess,
		ResourceTaskRun, tr.ID.String(), CategoryTask, nil,
		"task_name", tr.TaskName,
		"state", tr.State.Name,
		"run_count", tr.RunCount,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnTaskRunFailed implements ext.TaskRunFailed.
func (e *Extension) OnTaskRunFailed(ctx context.Context, tr *run.TaskRun, runErr error) error {
	return e.record(ctx, ActionTaskRunFailed, SeverityCritical, OutcomeFailure,
		ResourceTaskRun, tr.ID.String(), CategoryTask, runErr,
		"task_name", tr.TaskName,
		"state", tr.State.Name,
		"run_count", tr.RunCount,
	)
}

// OnTaskRunRetrying implements ext.TaskRunRetrying.
func (e *Extension) OnTaskRunRetrying(ctx context.Context, tr *run.TaskRun, attempt int, delay time.Duration) error {
	return e.record(ctx, ActionTaskRunRetrying, SeverityWarning, OutcomeFailure,
		ResourceTaskRun, tr.ID.String(), CategoryTask, nil,
		"task_name", tr.TaskName,
		"attempt", attempt,
		"delay_ms", delay.Milliseconds(),
	)
}

// ── Flow run lifecycle hooks ────────────────────────

// OnFlowRunStarted implements ext.FlowRunStarted.
func (e *Extension) OnFlowRunStarted(ctx context.Context, fr *run.FlowRun) error {
	return e.record(ctx, ActionFlowRunStarted, SeverityInfo, OutcomeSuccess,
		ResourceFlowRun, fr.ID.String(), CategoryFlow, nil,
		"flow_name", fr.FlowName,
		"flow_run", fr.Name,
	)
}

// OnFlowRunCompleted implements ext.FlowRunCompleted.
func (e *Extension) OnFlowRunCompleted(ctx context.Context, fr *run.FlowRun, elapsed time.Duration) error {
	return e.record(ctx, ActionFlowRunCompleted, SeverityInfo, OutcomeSuccess,
		ResourceFlowRun, fr.ID.String(), CategoryFlow, nil,
		"flow_name", fr.FlowName,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnFlowRunFailed implements ext.FlowRunFailed.
func (e *Extension) OnFlowRunFailed(ctx context.Context, fr *run.FlowRun, runErr error) error {
	return e.record(ctx, ActionFlowRunFailed, SeverityCritical, OutcomeFailure,
		ResourceFlowRun, fr.ID.String(), CategoryFlow, runErr,
		"flow_name", fr.FlowName,
	)
}

// record builds an AuditEvent and sends it through the recorder.
// Returns nil if the action is filtered out. Recorder errors are logged
// and returned so the registry reports them.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			slog.String("action", action),
			slog.String("resource_id", resourceID),
			slog.String("error", recErr.Error()),
		)
		return recErr
	}
	return nil
}

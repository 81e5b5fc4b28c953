package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/marwan116/supreme-task/ext"
	"github.com/marwan116/supreme-task/run"
)

// Compile-time interface checks.
var (
	_ ext.Extension        = (*MetricsExtension)(nil)
	_ ext.TaskRunStarted   = (*MetricsExtension)(nil)
	_ ext.TaskRunCompleted = (*MetricsExtension)(nil)
	_ ext.TaskRunFailed    = (*MetricsExtension)(nil)
	_ ext.TaskRunRetrying  = (*MetricsExtension)(nil)
	_ ext.FlowRunStarted   = (*MetricsExtension)(nil)
	_ ext.FlowRunCompleted = (*MetricsExtension)(nil)
	_ ext.FlowRunFailed    = (*MetricsExtension)(nil)
)

// MetricsExtension records lifecycle counters. Task counters carry the
// task_name attribute and flow counters the flow_name attribute.
type MetricsExtension struct {
	TaskRunStarted   metric.Int64Counter
	TaskRunCompleted metric.Int64Counter
	TaskRunCached    metric.Int64Counter
	TaskRunFailed    metric.Int64Counter
	TaskRunRetried   metric.Int64Counter
	FlowRunStarted   metric.Int64Counter
	FlowRunCompleted metric.Int64Counter
	FlowRunFailed    metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global
// MeterProvider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter("github.com/marwan116/supreme-task/observability"))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the provided
// meter.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	counter := func(name, desc string) metric.Int64Counter {
		// On error the API returns a noop instrument.
		c, _ := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{run}"))
		return c
	}
	return &MetricsExtension{
		TaskRunStarted:   counter("supremetask.task_run.started", "Task runs started"),
		TaskRunCompleted: counter("supremetask.task_run.completed", "Task runs completed"),
		TaskRunCached:    counter("supremetask.task_run.cached", "Task runs completed from cache"),
		TaskRunFailed:    counter("supremetask.task_run.failed", "Task runs failed"),
		TaskRunRetried:   counter("supremetask.task_run.retried", "Task run retries"),
		FlowRunStarted:   counter("supremetask.flow_run.started", "Flow runs started"),
		FlowRunCompleted: counter("supremetask.flow_run.completed", "Flow runs completed"),
		FlowRunFailed:    counter("supremetask.flow_run.failed", "Flow runs failed"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Task run lifecycle hooks ────────────────────────

// OnTaskRunStarted implements ext.TaskRunStarted.
func (m *MetricsExtension) OnTaskRunStarted(ctx context.Context, tr *run.TaskRun) error {
	m.TaskRunStarted.Add(ctx, 1, taskAttrs(tr))
	return nil
}

// OnTaskRunCompleted implements ext.TaskRunCompleted. Cache hits are
// counted separately.
func (m *MetricsExtension) OnTaskRunCompleted(ctx context.Context, tr *run.TaskRun, _ time.Duration) error {
	if tr.State.Name == run.NameCached {
		m.TaskRunCached.Add(ctx, 1, taskAttrs(tr))
		return nil
	}
	m.TaskRunCompleted.Add(ctx, 1, taskAttrs(tr))
	return nil
}

// OnTaskRunFailed implements ext.TaskRunFailed.
func (m *MetricsExtension) OnTaskRunFailed(ctx context.Context, tr *run.TaskRun, _ error) error {
	m.TaskRunFailed.Add(ctx, 1, taskAttrs(tr))
	return nil
}

// OnTaskRunRetrying implements ext.TaskRunRetrying.
func (m *MetricsExtension) OnTaskRunRetrying(ctx context.Context, tr *run.TaskRun, _ int, _ time.Duration) error {
	m.TaskRunRetried.Add(ctx, 1, taskAttrs(tr))
	return nil
}

// ── Flow run lifecycle hooks ────────────────────────

// OnFlowRunStarted implements ext.FlowRunStarted.
func (m *MetricsExtension) OnFlowRunStarted(ctx context.Context, fr *run.FlowRun) error {
	m.FlowRunStarted.Add(ctx, 1, flowAttrs(fr))
	return nil
}

// OnFlowRunCompleted implements ext.FlowRunCompleted.
func (m *MetricsExtension) OnFlowRunCompleted(ctx context.Context, fr *run.FlowRun, _ time.Duration) error {
	m.FlowRunCompleted.Add(ctx, 1, flowAttrs(fr))
	return nil
}

// OnFlowRunFailed implements ext.FlowRunFailed.
func (m *MetricsExtension) OnFlowRunFailed(ctx context.Context, fr *run.FlowRun, _ error) error {
	m.FlowRunFailed.Add(ctx, 1, flowAttrs(fr))
	return nil
}

func taskAttrs(tr *run.TaskRun) metric.AddOption {
	return metric.WithAttributes(attribute.String("task_name", tr.TaskName))
}

func flowAttrs(fr *run.FlowRun) metric.AddOption {
	return metric.WithAttributes(attribute.String("flow_name", fr.FlowName))
}

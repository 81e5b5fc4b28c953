package observability_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/marwan116/supreme-task/ext"
	"github.com/marwan116/supreme-task/id"
	"github.com/marwan116/supreme-task/observability"
	"github.com/marwan116/supreme-task/run"
)

func newTestExtension() (*observability.MetricsExtension, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return observability.NewMetricsExtensionWithMeter(mp.Meter("test")), reader
}

func newTestTaskRun() *run.TaskRun {
	return &run.TaskRun{
		ID:       id.NewTaskRunID(),
		Name:     "add-3f2a9c1b",
		TaskName: "add",
		State:    run.Completed(),
	}
}

func newTestFlowRun() *run.FlowRun {
	return &run.FlowRun{
		ID:       id.NewFlowRunID(),
		Name:     "pipeline-1",
		FlowName: "pipeline",
	}
}

// counterValue sums every data point of the named counter.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: data = %T, want Sum[int64]", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetricsExtension_Name(t *testing.T) {
	e, _ := newTestExtension()
	if e.Name() != "observability-metrics" {
		t.Errorf("Name = %q, want %q", e.Name(), "observability-metrics")
	}
}

func TestMetricsExtension_TaskRunHooks(t *testing.T) {
	e, reader := newTestExtension()
	ctx := context.Background()
	tr := newTestTaskRun()

	if err := e.OnTaskRunStarted(ctx, tr); err != nil {
		t.Fatalf("OnTaskRunStarted: %v", err)
	}
	if err := e.OnTaskRunRetrying(ctx, tr, 1, time.Second); err != nil {
		t.Fatalf("OnTaskRunRetrying: %v", err)
	}
	if err := e.OnTaskRunCompleted(ctx, tr, 10*time.Millisecond); err != nil {
		t.Fatalf("OnTaskRunCompleted: %v", err)
	}
	if err := e.OnTaskRunFailed(ctx, tr, errors.New("boom")); err != nil {
		t.Fatalf("OnTaskRunFailed: %v", err)
	}

	for name, want := range map[string]int64{
		"supremetask.task_run.started":   1,
		"supremetask.task_run.retried":   1,
		"supremetask.task_run.completed": 1,
		"supremetask.task_run.failed":    1,
		"supremetask.task_run.cached":    0,
	} {
		if got := counterValue(t, reader, name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
}

func TestMetricsExtension_CountsCacheHitsSeparately(t *testing.T) {
	e, reader := newTestExtension()
	tr := newTestTaskRun()
	tr.State = run.Cached()

	if err := e.OnTaskRunCompleted(context.Background(), tr, 0); err != nil {
		t.Fatalf("OnTaskRunCompleted: %v", err)
	}
	if got := counterValue(t, reader, "supremetask.task_run.cached"); got != 1 {
		t.Errorf("cached = %d, want 1", got)
	}
	if got := counterValue(t, reader, "supremetask.task_run.completed"); got != 0 {
		t.Errorf("completed = %d, want 0", got)
	}
}

func TestMetricsExtension_FlowRunHooks(t *testing.T) {
	e, reader := newTestExtension()
	ctx := context.Background()
	fr := newTestFlowRun()

	_ = e.OnFlowRunStarted(ctx, fr)
	_ = e.OnFlowRunCompleted(ctx, fr, time.Second)
	_ = e.OnFlowRunStarted(ctx, fr)
	_ = e.OnFlowRunFailed(ctx, fr, errors.New("boom"))

	if got := counterValue(t, reader, "supremetask.flow_run.started"); got != 2 {
		t.Errorf("flow started = %d, want 2", got)
	}
	if got := counterValue(t, reader, "supremetask.flow_run.completed"); got != 1 {
		t.Errorf("flow completed = %d, want 1", got)
	}
	if got := counterValue(t, reader, "supremetask.flow_run.failed"); got != 1 {
		t.Errorf("flow failed = %d, want 1", got)
	}
}

func TestMetricsExtension_ViaRegistry(t *testing.T) {
	e, reader := newTestExtension()
	reg := ext.NewRegistry(slog.Default())
	reg.Register(e)

	reg.EmitTaskRunStarted(context.Background(), newTestTaskRun())
	reg.EmitTaskRunStarted(context.Background(), newTestTaskRun())

	if got := counterValue(t, reader, "supremetask.task_run.started"); got != 2 {
		t.Errorf("started = %d, want 2", got)
	}
}

func TestMetricsExtension_DefaultNoopSafe(t *testing.T) {
	e := observability.NewMetricsExtension()
	if err := e.OnTaskRunStarted(context.Background(), newTestTaskRun()); err != nil {
		t.Fatalf("OnTaskRunStarted: %v", err)
	}
}

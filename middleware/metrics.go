package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/marwan116/supreme-task/run"
)

// meterName is the instrumentation scope name for task metrics.
const meterName = "github.com/marwan116/supreme-task"

// Metrics returns middleware that records per-attempt metrics using the
// global MeterProvider. Without one, noop instruments make this a
// pass-through.
//
// Instruments:
//   - supremetask.task.duration (Float64Histogram): attempt time in seconds
//   - supremetask.task.executions (Int64Counter): total attempts
//
// Both carry the attributes task_name and status ("ok" or "error").
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// On error the API returns noop instruments.
	duration, _ := meter.Float64Histogram(
		"supremetask.task.duration",
		metric.WithDescription("Duration of task run attempts in seconds"),
		metric.WithUnit("s"),
	)
	executions, _ := meter.Int64Counter(
		"supremetask.task.executions",
		metric.WithDescription("Total number of task run attempts"),
		metric.WithUnit("{execution}"),
	)

	return func(ctx context.Context, tr *run.TaskRun, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}
		attrs := metric.WithAttributes(
			attribute.String("task_name", tr.TaskName),
			attribute.String("status", status),
		)
		duration.Record(ctx, elapsed, attrs)
		executions.Add(ctx, 1, attrs)

		return err
	}
}

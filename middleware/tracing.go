package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/marwan116/supreme-task/run"
)

// tracerName is the instrumentation scope name for task tracing.
const tracerName = "github.com/marwan116/supreme-task"

// Tracing returns middleware that wraps each attempt in an OpenTelemetry
// span using the global TracerProvider. Without one, the noop tracer makes
// this a pass-through.
//
// Span attributes: supremetask.task.name, supremetask.task_run.id,
// supremetask.task_run.name, supremetask.flow_run.id, supremetask.run_count.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, tr *run.TaskRun, next Handler) error {
		ctx, span := tracer.Start(ctx, "supremetask.task.execute",
			trace.WithAttributes(
				attribute.String("supremetask.task.name", tr.TaskName),
				attribute.String("supremetask.task_run.id", tr.ID.String()),
				attribute.String("supremetask.task_run.name", tr.Name),
				attribute.String("supremetask.flow_run.id", tr.FlowRunID.String()),
				attribute.Int("supremetask.run_count", tr.RunCount),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}

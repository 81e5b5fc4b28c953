package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/flow"
	"github.com/marwan116/supreme-task/id"
	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/run"
	"github.com/marwan116/supreme-task/storage"
	"github.com/marwan116/supreme-task/task"
	"github.com/marwan116/supreme-task/typecheck"
)

// RunFlow runs f with input in. Tasks called from the flow body are
// orchestrated by eng. A failing flow returns an error wrapping the error
// of the body, which is usually the error of a failed task.
func RunFlow[In, Out any](ctx context.Context, eng *Engine, f *flow.Flow[In, Out], in In) (Out, error) {
	var zero Out
	o := f.Options()

	params := map[string]any{}
	if sig, err := typecheck.Of[In](o.Name); err == nil {
		params = sig.Parameters(in)
	}

	fr := &run.FlowRun{
		ID:         id.NewFlowRunID(),
		FlowName:   o.Name,
		Parameters: params,
		StartTime:  eng.now(),
		State:      run.Pending(),
	}
	fr.Name = runName(o.FlowRunName, o.Name, fr.ID, params)

	logger := eng.logger.With(
		slog.String("flow_run_id", fr.ID.String()),
		slog.String("flow_run", fr.Name),
	)
	frc := &run.FlowRunContext{
		FlowRun:       fr,
		ResultFactory: flowFactory(eng.baseFactory(), o),
		Logger:        logger,
	}

	timeout := o.Timeout
	if timeout == 0 {
		timeout = eng.cfg.FlowTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx = run.WithFlowRunContext(ctx, frc)
	ctx = task.WithRunner(ctx, &flowRunner{eng: eng, frc: frc})

	fr.SetState(run.Running())
	eng.extensions.EmitFlowRunStarted(ctx, fr)
	logger.Info("flow run started", slog.String("flow_name", o.Name))

	start := time.Now()
	out, err := callFlow(ctx, f, in)
	elapsed := time.Since(start)

	if err != nil {
		if timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: flow %s exceeded %s: %w", supremetask.ErrFlowTimeout, o.Name, timeout, err)
			fr.SetState(run.TimedOut(err))
		} else {
			fr.SetState(run.Failed(err))
		}
		eng.extensions.EmitFlowRunFailed(ctx, fr, err)
		logger.Error("flow run failed",
			slog.String("flow_name", o.Name),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return zero, fmt.Errorf("flow %s: %w", o.Name, err)
	}

	fr.SetState(run.Completed())
	eng.extensions.EmitFlowRunCompleted(ctx, fr, elapsed)
	logger.Info("flow run completed",
		slog.String("flow_name", o.Name),
		slog.Duration("elapsed", elapsed),
	)
	return out, nil
}

// Replay reruns the task whose inputs were persisted at key inside a
// one-off flow run. st is the storage holding the inputs; nil means the
// engine's result storage.
func (eng *Engine) Replay(ctx context.Context, reg *task.Registry, st storage.Storage, key string) (any, error) {
	if st == nil {
		st = eng.storage
	}
	f, err := flow.New("replay", func(ctx context.Context, key string) (any, error) {
		return reg.Replay(ctx, st, key)
	}, flow.WithFlowRunName("replay-{input}"))
	if err != nil {
		return nil, err
	}
	return RunFlow(ctx, eng, f, key)
}

func callFlow[In, Out any](ctx context.Context, f *flow.Flow[In, Out], in In) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			run.Logger(ctx).Error("flow run panicked",
				slog.String("flow_name", f.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic in flow %s: %v", f.Name(), r)
		}
	}()
	return f.Fn(ctx, in)
}

// flowFactory applies the flow's result settings on top of base.
func flowFactory(base *result.Factory, o flow.Options) *result.Factory {
	f := base.Clone()
	if o.PersistResult != nil {
		f.PersistResult = *o.PersistResult
	}
	if o.ResultStorage != nil {
		f.Storage = o.ResultStorage
	}
	if o.ResultSerializer != nil {
		f.Serializer = o.ResultSerializer
	}
	return f
}

// runName renders tmpl with params, or returns "<name>-<short id>" when
// tmpl is empty.
func runName(tmpl, name string, runID id.ID, params map[string]any) string {
	if tmpl == "" {
		return name + "-" + runID.Short()
	}
	return run.Render(tmpl, params)
}

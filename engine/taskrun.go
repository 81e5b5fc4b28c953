package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"
	"time"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/id"
	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/run"
	"github.com/marwan116/supreme-task/task"
)

// flowRunner orchestrates the task runs of one flow run.
type flowRunner struct {
	eng *Engine
	frc *run.FlowRunContext
}

var _ task.Runner = (*flowRunner)(nil)

// RunTask implements task.Runner.
//
// A run goes through: naming, cache lookup, attempts through the middleware
// chain with retries, result creation, and finally the completion or
// failure hooks with the task run context still on ctx. Hook errors are
// logged and never change the outcome of the run.
func (r *flowRunner) RunTask(ctx context.Context, spec *task.Spec, params map[string]any, body task.Body) (any, error) {
	eng := r.eng
	o := spec.Options()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("task %s: %w", spec.Name(), err)
	}

	timeout := o.Timeout
	if timeout == 0 {
		timeout = eng.cfg.TaskTimeout
	}
	now := eng.now()
	tr := &run.TaskRun{
		ID:         id.NewTaskRunID(),
		TaskName:   spec.Name(),
		FlowRunID:  r.frc.FlowRun.ID,
		Tags:       slices.Clone(o.Tags),
		Parameters: params,
		Timeout:    timeout,
		StartTime:  now,
		State:      run.Pending(),
	}
	tr.Name = runName(o.TaskRunName, spec.Name(), tr.ID, params)

	logger := r.frc.Logger.With(
		slog.String("task_run_id", tr.ID.String()),
		slog.String("task_run", tr.Name),
	)
	trc := &run.TaskRunContext{
		Task:          spec.Name(),
		TaskRun:       tr,
		StartTime:     now,
		Parameters:    params,
		ResultFactory: taskFactory(r.frc.ResultFactory, o, tr),
		Logger:        logger,
		LogPrints:     o.LogPrints,
	}
	ctx = run.WithTaskRunContext(ctx, trc)

	if o.CacheKeyFn != nil {
		tr.CacheKey = o.CacheKeyFn(ctx, params)
	}
	if tr.CacheKey != "" && !o.RefreshCache {
		if v, ok := r.fromCache(ctx, spec, tr, logger); ok {
			return v, nil
		}
	}

	return r.execute(ctx, spec, trc, body)
}

// fromCache completes tr from a cached result.
func (r *flowRunner) fromCache(ctx context.Context, spec *task.Spec, tr *run.TaskRun, logger *slog.Logger) (any, bool) {
	res, ok := r.eng.cache.get(tr.CacheKey, r.eng.now())
	if !ok {
		return nil, false
	}
	v, err := spec.LoadResult(ctx, res)
	if err != nil {
		logger.Warn("cached result unreadable, running task",
			slog.String("cache_key", tr.CacheKey),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	tr.Result = res
	tr.SetState(run.Cached())
	logger.Info("task run completed from cache", slog.String("cache_key", tr.CacheKey))
	r.eng.extensions.EmitTaskRunCompleted(ctx, tr, 0)
	r.runHooks(ctx, spec, tr, spec.OnCompletion(), logger)
	return v, true
}

func (r *flowRunner) execute(ctx context.Context, spec *task.Spec, trc *run.TaskRunContext, body task.Body) (any, error) {
	eng := r.eng
	o := spec.Options()
	tr := trc.TaskRun
	logger := trc.Logger

	tr.SetState(run.Running())
	eng.extensions.EmitTaskRunStarted(ctx, tr)
	start := time.Now()

	for {
		tr.RunCount++

		var v any
		err := eng.mw(ctx, tr, func(ctx context.Context) error {
			out, err := body(ctx)
			v = out
			return err
		})

		if err == nil {
			res, rerr := trc.ResultFactory.CreateResult(ctx, v)
			if rerr != nil {
				return nil, r.fail(ctx, spec, tr, fmt.Errorf("task %s: persist result: %w", spec.Name(), rerr), logger)
			}
			tr.Result = res
			tr.SetState(run.Completed())
			if tr.CacheKey != "" {
				eng.cache.put(tr.CacheKey, res, eng.now(), o.CacheExpiration)
			}
			eng.extensions.EmitTaskRunCompleted(ctx, tr, time.Since(start))
			r.runHooks(ctx, spec, tr, spec.OnCompletion(), logger)
			return v, nil
		}

		if tr.RunCount > o.Retries || ctx.Err() != nil {
			return nil, r.fail(ctx, spec, tr, err, logger)
		}

		delay := spec.RetryDelay(tr.RunCount)
		tr.SetState(run.Retrying(err))
		eng.extensions.EmitTaskRunRetrying(ctx, tr, tr.RunCount, delay)
		logger.Info("task run scheduled for retry",
			slog.String("task_name", tr.TaskName),
			slog.Int("attempt", tr.RunCount),
			slog.Int("retries", o.Retries),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)
		if serr := sleep(ctx, delay); serr != nil {
			return nil, r.fail(ctx, spec, tr, errors.Join(err, serr), logger)
		}
	}
}

// fail moves tr to its failed state, emits the event and runs the failure
// hooks. It returns err.
func (r *flowRunner) fail(ctx context.Context, spec *task.Spec, tr *run.TaskRun, err error, logger *slog.Logger) error {
	if errors.Is(err, supremetask.ErrTaskTimeout) {
		tr.SetState(run.TimedOut(err))
	} else {
		tr.SetState(run.Failed(err))
	}
	r.eng.extensions.EmitTaskRunFailed(ctx, tr, err)
	logger.Warn("task run failed",
		slog.String("task_name", tr.TaskName),
		slog.Int("run_count", tr.RunCount),
		slog.String("error", err.Error()),
	)
	r.runHooks(ctx, spec, tr, spec.OnFailure(), logger)
	return err
}

// runHooks calls every hook in order. Errors and panics are logged and
// swallowed. Hooks run after the run reached its final state, so they keep
// the context values but not the cancellation of a timed out or cancelled
// flow.
func (r *flowRunner) runHooks(ctx context.Context, spec *task.Spec, tr *run.TaskRun, hooks []run.Hook, logger *slog.Logger) {
	ctx = context.WithoutCancel(ctx)
	for i, h := range hooks {
		if err := callHook(ctx, h, spec, tr); err != nil {
			logger.Error("task run hook failed",
				slog.String("task_name", tr.TaskName),
				slog.String("state", string(tr.State.Type)),
				slog.Int("hook", i),
				slog.String("error", err.Error()),
			)
		}
	}
}

func callHook(ctx context.Context, h run.Hook, spec *task.Spec, tr *run.TaskRun) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in hook: %v\n%s", r, debug.Stack())
		}
	}()
	return h(ctx, spec, tr, tr.State)
}

// taskFactory applies the task's result settings on top of the flow's
// factory. Setting a result storage, serializer or key template without an
// explicit persist flag turns persistence on.
func taskFactory(base *result.Factory, o task.Options, tr *run.TaskRun) *result.Factory {
	f := base.Clone()
	if o.ResultStorage != nil {
		f.Storage = o.ResultStorage
	}
	if o.ResultSerializer != nil {
		f.Serializer = o.ResultSerializer
	}
	if o.CacheResultInMemory != nil {
		f.CacheResultInMemory = *o.CacheResultInMemory
	}
	switch {
	case o.PersistResult != nil:
		f.PersistResult = *o.PersistResult
	case o.ResultStorage != nil || o.ResultSerializer != nil || o.ResultStorageKey != "":
		f.PersistResult = true
	}
	if o.ResultStorageKey != "" {
		vars := maps.Clone(tr.Parameters)
		if vars == nil {
			vars = map[string]any{}
		}
		vars["task_name"] = tr.TaskName
		vars["task_run_id"] = tr.ID.String()
		vars["flow_run_id"] = tr.FlowRunID.String()
		key := run.Render(o.ResultStorageKey, vars)
		f.StorageKeyFn = func() string { return key }
	}
	return f
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package task defines typed tasks: functions with an input struct whose
// runs are orchestrated by the engine inside a flow.
//
// A Task can be called four ways:
//
//   - Fn runs the function directly with a typed input.
//   - FnMap type checks a parameter map and then runs the function directly.
//   - Call runs the task inside the active flow run.
//   - CallMap runs the task inside the active flow run from a parameter
//     map; the type check happens inside the run, so a mismatch fails the
//     run and triggers its failure hooks.
//
// New appends the input persistence hook to the task's failure or
// completion hooks according to the StoreInputs policy.
package task

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/inputs"
	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/typecheck"
)

// Func is the signature of a task body.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Task is an immutable typed task.
type Task[In, Out any] struct {
	fn   Func[In, Out]
	spec *Spec
}

// New creates a task named name that runs fn.
func New[In, Out any](name string, fn Func[In, Out], opts ...Option) (*Task[In, Out], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: task %s: nil function", supremetask.ErrInvalidConfig, name)
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.Name = name
	if err := o.Validate(); err != nil {
		return nil, err
	}
	policy, _ := inputs.ParsePolicy(string(o.StoreInputs))
	o.StoreInputs = policy
	o.Tags = slices.Clone(o.Tags)
	o.RetryDelays = slices.Clone(o.RetryDelays)
	o.OnCompletion = slices.Clone(o.OnCompletion)
	o.OnFailure = slices.Clone(o.OnFailure)

	sig, err := typecheck.Of[In](name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", supremetask.ErrInvalidConfig, err)
	}

	spec := &Spec{
		opts:         o,
		sig:          sig,
		retry:        retryStrategy(o),
		onCompletion: slices.Clone(o.OnCompletion),
		onFailure:    slices.Clone(o.OnFailure),
		load:         loadAs[Out],
	}

	var popts []inputs.Option
	if o.InputStorage != nil {
		popts = append(popts, inputs.WithStorage(o.InputStorage))
	}
	if o.InputSerializer != nil {
		popts = append(popts, inputs.WithSerializer(o.InputSerializer))
	}
	persister := inputs.NewPersister(popts...)

	switch policy {
	case inputs.OnFailure:
		spec.onFailure = append(spec.onFailure, persister.Hook)
	case inputs.OnCompletion:
		spec.onCompletion = append(spec.onCompletion, persister.Hook)
	case inputs.Never:
	}

	return &Task[In, Out]{fn: fn, spec: spec}, nil
}

// Must panics if err is non-nil. It is intended for package level task
// declarations.
func Must[In, Out any](t *Task[In, Out], err error) *Task[In, Out] {
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the task name.
func (t *Task[In, Out]) Name() string { return t.spec.Name() }

// Options returns the task options.
func (t *Task[In, Out]) Options() Options { return t.spec.Options() }

// Signature returns the parameter signature of In.
func (t *Task[In, Out]) Signature() *typecheck.Signature { return t.spec.sig }

// Spec returns the type-erased description of the task.
func (t *Task[In, Out]) Spec() *Spec { return t.spec }

// Fn runs the task function directly, outside of any run.
func (t *Task[In, Out]) Fn(ctx context.Context, in In) (Out, error) {
	return t.fn(ctx, in)
}

// FnMap type checks args against In and runs the function directly. On a
// mismatch the function is not called and the error is a *typecheck.Error.
func (t *Task[In, Out]) FnMap(ctx context.Context, args map[string]any) (Out, error) {
	in, err := typecheck.Bind[In](t.spec.sig, args)
	if err != nil {
		var zero Out
		return zero, err
	}
	return t.fn(ctx, in)
}

// Call runs the task inside the flow run on ctx.
func (t *Task[In, Out]) Call(ctx context.Context, in In) (Out, error) {
	r, ok := RunnerFrom(ctx)
	if !ok {
		var zero Out
		return zero, fmt.Errorf("task %s: %w", t.Name(), supremetask.ErrNoFlowRun)
	}
	body := func(ctx context.Context) (any, error) {
		out, err := t.fn(ctx, in)
		return out, err
	}
	return output[Out](r.RunTask(ctx, t.spec, t.spec.sig.Parameters(in), body))
}

// CallMap runs the task inside the flow run on ctx with arguments from a
// parameter map. The arguments are recorded as the run parameters before
// they are checked.
func (t *Task[In, Out]) CallMap(ctx context.Context, args map[string]any) (Out, error) {
	r, ok := RunnerFrom(ctx)
	if !ok {
		var zero Out
		return zero, fmt.Errorf("task %s: %w", t.Name(), supremetask.ErrNoFlowRun)
	}
	body := func(ctx context.Context) (any, error) {
		in, err := typecheck.Bind[In](t.spec.sig, args)
		if err != nil {
			return nil, err
		}
		out, err := t.fn(ctx, in)
		return out, err
	}
	return output[Out](r.RunTask(ctx, t.spec, maps.Clone(args), body))
}

// Map runs one task run per input concurrently and returns the outputs in
// input order. Every run completes even when others fail; the first error
// is returned.
func (t *Task[In, Out]) Map(ctx context.Context, ins []In) ([]Out, error) {
	outs := make([]Out, len(ins))
	var g errgroup.Group
	for i, in := range ins {
		g.Go(func() error {
			out, err := t.Call(ctx, in)
			if err != nil {
				return err
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outs, err
	}
	return outs, nil
}

func output[Out any](v any, err error) (Out, error) {
	var zero Out
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(Out)
	if !ok {
		return zero, fmt.Errorf("task: output %T is not %T", v, zero)
	}
	return out, nil
}

func loadAs[Out any](ctx context.Context, r *result.Result) (any, error) {
	var out Out
	if err := r.Get(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

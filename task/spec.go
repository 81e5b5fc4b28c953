package task

import (
	"context"
	"slices"
	"time"

	"github.com/marwan116/supreme-task/backoff"
	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/run"
	"github.com/marwan116/supreme-task/typecheck"
)

// Spec is the type-erased description of a task handed to a Runner. It
// carries the resolved hook lists, including the input persistence hook.
type Spec struct {
	opts         Options
	sig          *typecheck.Signature
	retry        backoff.Strategy
	onCompletion []run.Hook
	onFailure    []run.Hook
	load         func(ctx context.Context, r *result.Result) (any, error)
}

var _ run.Task = (*Spec)(nil)

// Name implements run.Task.
func (s *Spec) Name() string { return s.opts.Name }

// Options returns the task options as configured, without the resolved
// hooks.
func (s *Spec) Options() Options { return s.opts }

// Signature returns the parameter signature of the task input.
func (s *Spec) Signature() *typecheck.Signature { return s.sig }

// RetryDelay returns the wait before retry attempt (1-based).
func (s *Spec) RetryDelay(attempt int) time.Duration {
	return s.retry.Delay(attempt)
}

// OnCompletion returns the hooks run after a successful run.
func (s *Spec) OnCompletion() []run.Hook { return slices.Clone(s.onCompletion) }

// OnFailure returns the hooks run after a failed run.
func (s *Spec) OnFailure() []run.Hook { return slices.Clone(s.onFailure) }

// LoadResult reads a cached result back as the task's output type.
func (s *Spec) LoadResult(ctx context.Context, r *result.Result) (any, error) {
	return s.load(ctx, r)
}

// Body executes one attempt of a task and returns its output.
type Body func(ctx context.Context) (any, error)

// Runner orchestrates task runs. The engine installs one on the context of
// every flow run.
type Runner interface {
	RunTask(ctx context.Context, spec *Spec, params map[string]any, body Body) (any, error)
}

type runnerKey struct{}

// WithRunner returns a context carrying r.
func WithRunner(ctx context.Context, r Runner) context.Context {
	return context.WithValue(ctx, runnerKey{}, r)
}

// RunnerFrom returns the Runner on ctx, if any.
func RunnerFrom(ctx context.Context) (Runner, bool) {
	r, ok := ctx.Value(runnerKey{}).(Runner)
	return r, ok && r != nil
}

func retryStrategy(o Options) backoff.Strategy {
	var base backoff.Strategy
	switch {
	case o.Backoff != nil:
		base = o.Backoff
	case len(o.RetryDelays) > 0:
		base = backoff.NewList(o.RetryDelays...)
	default:
		base = backoff.DefaultStrategy()
	}
	return backoff.NewJittered(base, o.RetryJitterFactor)
}

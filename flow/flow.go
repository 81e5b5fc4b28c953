// Package flow defines typed flows. A flow is the function that calls tasks;
// the engine runs it with a flow run context on ctx and orchestrates every
// task called from it.
//
// Result settings on a flow are the defaults for its tasks: a task that
// does not set result storage, serializer or persistence inherits them from
// the flow, and the flow inherits from the engine config.
package flow

import (
	"context"
	"fmt"
	"time"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/serializer"
	"github.com/marwan116/supreme-task/storage"
)

// Func is the signature of a flow body.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Options configures a flow.
type Options struct {
	Name        string
	Description string
	Version     string

	// FlowRunName is a template rendered with the flow parameters.
	// Empty means "<name>-<short run id>".
	FlowRunName string

	// Timeout bounds the whole flow run. Zero uses the engine default.
	Timeout time.Duration

	PersistResult    *bool
	ResultStorage    storage.Storage
	ResultSerializer serializer.Serializer
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("%w: flow name is required", supremetask.ErrInvalidConfig)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("%w: flow %s: timeout must not be negative", supremetask.ErrInvalidConfig, o.Name)
	}
	return nil
}

// Option is a functional option for configuring a flow.
type Option func(*Options)

// WithDescription sets a human readable description.
func WithDescription(d string) Option {
	return func(o *Options) { o.Description = d }
}

// WithVersion sets the flow version.
func WithVersion(v string) Option {
	return func(o *Options) { o.Version = v }
}

// WithFlowRunName sets the run name template.
func WithFlowRunName(tmpl string) Option {
	return func(o *Options) { o.FlowRunName = tmpl }
}

// WithTimeout bounds the flow run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithPersistResult sets the persistence default for the flow's tasks.
func WithPersistResult(persist bool) Option {
	return func(o *Options) { o.PersistResult = &persist }
}

// WithResultStorage sets the result storage default for the flow's tasks.
func WithResultStorage(st storage.Storage) Option {
	return func(o *Options) { o.ResultStorage = st }
}

// WithResultSerializer sets the serializer default for the flow's tasks.
func WithResultSerializer(s serializer.Serializer) Option {
	return func(o *Options) { o.ResultSerializer = s }
}

// Flow is an immutable typed flow.
type Flow[In, Out any] struct {
	fn   Func[In, Out]
	opts Options
}

// New creates a flow named name that runs fn.
func New[In, Out any](name string, fn Func[In, Out], opts ...Option) (*Flow[In, Out], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: flow %s: nil function", supremetask.ErrInvalidConfig, name)
	}
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	o.Name = name
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Flow[In, Out]{fn: fn, opts: o}, nil
}

// Must panics if err is non-nil.
func Must[In, Out any](f *Flow[In, Out], err error) *Flow[In, Out] {
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the flow name.
func (f *Flow[In, Out]) Name() string { return f.opts.Name }

// Options returns the flow options.
func (f *Flow[In, Out]) Options() Options { return f.opts }

// Fn runs the flow function directly. Tasks called from it fail with
// supremetask.ErrNoFlowRun unless ctx already carries a runner.
func (f *Flow[In, Out]) Fn(ctx context.Context, in In) (Out, error) {
	return f.fn(ctx, in)
}

// Package inputs persists the parameters of task runs.
//
// The Persister hook writes a run's parameter mapping to
// "inputs/<task_name>/<start_time>" through a copy of the run's result
// factory in which only the key function is replaced, so inputs land in
// the same storage and format as the run's results.
package inputs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/run"
	"github.com/marwan116/supreme-task/serializer"
	"github.com/marwan116/supreme-task/storage"
)

// KeyPrefix is the first segment of every input storage key.
const KeyPrefix = "inputs"

// StartTimeLayout renders start times as YYYY-MM-DDTHH-MM-SS±ZZZZ.
const StartTimeLayout = "2006-01-02T15-04-05-0700"

// FormatStartTime renders t with StartTimeLayout in t's own location.
func FormatStartTime(t time.Time) string {
	return t.Format(StartTimeLayout)
}

// ParseStartTime parses a string produced by FormatStartTime.
func ParseStartTime(s string) (time.Time, error) {
	return time.Parse(StartTimeLayout, s)
}

// StorageKey returns "inputs/<task>/<FormatStartTime(start)>".
func StorageKey(task string, start time.Time) string {
	return fmt.Sprintf("%s/%s/%s", KeyPrefix, task, FormatStartTime(start))
}

// KeyFunc returns a key function that always yields StorageKey(task, start).
func KeyFunc(task string, start time.Time) result.KeyFunc {
	key := StorageKey(task, start)
	return func() string { return key }
}

// FactoryFrom returns a copy of f whose key function yields the input
// storage key. Storage, serializer and flags are inherited unchanged.
func FactoryFrom(f *result.Factory, task string, start time.Time) *result.Factory {
	return f.WithStorageKeyFn(KeyFunc(task, start))
}

// Option configures a Persister.
type Option func(*Persister)

// WithStorage writes inputs to st instead of the run's result storage.
func WithStorage(st storage.Storage) Option {
	return func(p *Persister) { p.storage = st }
}

// WithSerializer encodes inputs with s instead of the run's result
// serializer.
func WithSerializer(s serializer.Serializer) Option {
	return func(p *Persister) { p.serializer = s }
}

// Persister writes task run inputs. The zero value inherits everything from
// the run's result factory.
type Persister struct {
	storage    storage.Storage
	serializer serializer.Serializer
}

// NewPersister creates a Persister with the given overrides.
func NewPersister(opts ...Option) *Persister {
	p := &Persister{}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Factory derives the input factory for the run described by trc.
func (p *Persister) Factory(trc *run.TaskRunContext) *result.Factory {
	base := trc.ResultFactory
	if base == nil {
		base = &result.Factory{}
	}
	f := FactoryFrom(base, trc.Task, trc.StartTime)
	if p.storage != nil {
		f.Storage = p.storage
	}
	if p.serializer != nil {
		f.Serializer = p.serializer
	}
	return f
}

// Hook persists the parameters of the active task run. It is a run.Hook and
// must run with the task run context on ctx; otherwise it returns an error
// wrapping supremetask.ErrNoRunContext. Storage and serialization errors
// are returned unchanged.
func (p *Persister) Hook(ctx context.Context, t run.Task, _ *run.TaskRun, _ run.State) error {
	trc, ok := run.TaskRunContextFrom(ctx)
	if !ok {
		return fmt.Errorf("inputs: persist inputs of %q: %w", taskName(t), supremetask.ErrNoRunContext)
	}
	res, err := p.Factory(trc).Write(ctx, trc.Parameters)
	if err != nil {
		return err
	}
	run.Logger(ctx).InfoContext(ctx, "task run inputs persisted",
		slog.String("task_name", trc.Task),
		slog.String("key", res.Key),
		slog.Any("inputs", trc.Parameters),
	)
	return nil
}

// Persist is the Hook of a Persister without overrides.
func Persist(ctx context.Context, t run.Task, tr *run.TaskRun, st run.State) error {
	return (&Persister{}).Hook(ctx, t, tr, st)
}

var _ run.Hook = Persist

func taskName(t run.Task) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

package task

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/inputs"
	"github.com/marwan116/supreme-task/storage"
)

// DynamicFunc is a type-erased orchestrated task call taking a parameter
// map. The typed Task is converted to a DynamicFunc at registration time by
// closing over CallMap.
type DynamicFunc func(ctx context.Context, args map[string]any) (any, error)

type entry struct {
	spec *Spec
	call DynamicFunc
}

// Registry maps task names to type-erased callers.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]entry
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]entry)}
}

// Register adds t to r, replacing any task of the same name.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func Register[In, Out any](r *Registry, t *Task[In, Out]) {
	call := func(ctx context.Context, args map[string]any) (any, error) {
		return t.CallMap(ctx, args)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.Name()] = entry{spec: t.Spec(), call: call}
}

// Get returns the caller and description of the named task.
func (r *Registry) Get(name string) (DynamicFunc, *Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tasks[name]
	return e.call, e.spec, ok
}

// Names returns all registered task names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallMap runs the named task inside the flow run on ctx.
func (r *Registry) CallMap(ctx context.Context, name string, args map[string]any) (any, error) {
	call, _, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", supremetask.ErrUnknownTask, name)
	}
	return call(ctx, args)
}

// Replay reruns a task with the inputs persisted at key, which must have
// the form "inputs/<task>/<start_time>". Decoded values are converted to
// the declared parameter types before the call.
func (r *Registry) Replay(ctx context.Context, st storage.Storage, key string) (any, error) {
	name, err := taskFromKey(key)
	if err != nil {
		return nil, err
	}
	call, spec, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", supremetask.ErrUnknownTask, name)
	}

	params, err := inputs.Load(ctx, st, key)
	if err != nil {
		return nil, fmt.Errorf("task %s: load inputs %q: %w", name, key, err)
	}
	args, err := spec.Signature().Coerce(params)
	if err != nil {
		return nil, err
	}
	return call(ctx, args)
}

func taskFromKey(key string) (string, error) {
	rest, ok := strings.CutPrefix(key, inputs.KeyPrefix+"/")
	dir := path.Dir(rest)
	if !ok || dir == "." || dir == "" {
		return "", fmt.Errorf("%w: %q is not an input key", supremetask.ErrInvalidConfig, key)
	}
	return dir, nil
}

package task

import (
	"context"
	"fmt"
	"time"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/backoff"
	"github.com/marwan116/supreme-task/inputs"
	"github.com/marwan116/supreme-task/run"
	"github.com/marwan116/supreme-task/serializer"
	"github.com/marwan116/supreme-task/storage"
)

// MaxRetryDelays is the longest accepted list of per-retry delays.
const MaxRetryDelays = 50

// CacheKeyFunc derives the cache key of a run from its parameters. The task
// run context is on ctx. An empty key disables caching for the run.
type CacheKeyFunc func(ctx context.Context, params map[string]any) string

// Options configures a task. Pointer fields are unset when nil and then
// inherit from the enclosing flow or the engine config.
type Options struct {
	Name        string
	Description string
	Tags        []string
	Version     string

	// CacheKeyFn enables result caching when set.
	CacheKeyFn      CacheKeyFunc
	CacheExpiration time.Duration
	RefreshCache    bool

	// TaskRunName is a template rendered with the run parameters,
	// e.g. "add-{x}-{y}". Empty means "<name>-<short run id>".
	TaskRunName string

	Retries           int
	RetryDelays       []time.Duration
	Backoff           backoff.Strategy
	RetryJitterFactor float64

	PersistResult    *bool
	ResultStorage    storage.Storage
	ResultSerializer serializer.Serializer

	// ResultStorageKey is a template for result keys rendered with the run
	// parameters plus {task_name} and {task_run_id}.
	ResultStorageKey    string
	CacheResultInMemory *bool

	Timeout   time.Duration
	LogPrints bool

	OnCompletion []run.Hook
	OnFailure    []run.Hook

	StoreInputs     inputs.Policy
	InputStorage    storage.Storage
	InputSerializer serializer.Serializer
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		StoreInputs: inputs.OnFailure,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("%w: task name is required", supremetask.ErrInvalidConfig)
	}
	if o.Retries < 0 {
		return fmt.Errorf("%w: task %s: retries must not be negative", supremetask.ErrInvalidConfig, o.Name)
	}
	if len(o.RetryDelays) > MaxRetryDelays {
		return fmt.Errorf("%w: task %s: at most %d retry delays, got %d",
			supremetask.ErrInvalidConfig, o.Name, MaxRetryDelays, len(o.RetryDelays))
	}
	for _, d := range o.RetryDelays {
		if d < 0 {
			return fmt.Errorf("%w: task %s: retry delays must not be negative", supremetask.ErrInvalidConfig, o.Name)
		}
	}
	if len(o.RetryDelays) > 0 && o.Backoff != nil {
		return fmt.Errorf("%w: task %s: retry delays and backoff are exclusive", supremetask.ErrInvalidConfig, o.Name)
	}
	if o.RetryJitterFactor < 0 {
		return fmt.Errorf("%w: task %s: retry jitter factor must not be negative", supremetask.ErrInvalidConfig, o.Name)
	}
	if o.Timeout < 0 || o.CacheExpiration < 0 {
		return fmt.Errorf("%w: task %s: durations must not be negative", supremetask.ErrInvalidConfig, o.Name)
	}
	if _, err := inputs.ParsePolicy(string(o.StoreInputs)); err != nil {
		return fmt.Errorf("task %s: %w", o.Name, err)
	}
	return nil
}

// Option is a functional option for configuring a task.
type Option func(*Options)

// WithDescription sets a human readable description.
func WithDescription(d string) Option {
	return func(o *Options) { o.Description = d }
}

// WithTags adds tags to every run of the task.
func WithTags(tags ...string) Option {
	return func(o *Options) { o.Tags = append(o.Tags, tags...) }
}

// WithVersion sets the task version.
func WithVersion(v string) Option {
	return func(o *Options) { o.Version = v }
}

// WithCacheKeyFn enables caching keyed by fn.
func WithCacheKeyFn(fn CacheKeyFunc) Option {
	return func(o *Options) { o.CacheKeyFn = fn }
}

// WithCacheExpiration bounds how long a cached result stays valid.
// Zero keeps cached results forever.
func WithCacheExpiration(d time.Duration) Option {
	return func(o *Options) { o.CacheExpiration = d }
}

// WithRefreshCache forces the body to run and overwrite the cached result.
func WithRefreshCache(refresh bool) Option {
	return func(o *Options) { o.RefreshCache = refresh }
}

// WithTaskRunName sets the run name template.
func WithTaskRunName(tmpl string) Option {
	return func(o *Options) { o.TaskRunName = tmpl }
}

// WithRetries sets how many times a failed run is retried.
func WithRetries(n int) Option {
	return func(o *Options) { o.Retries = n }
}

// WithRetryDelay waits d before every retry.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelays = []time.Duration{d} }
}

// WithRetryDelays waits delays[i] before retry i+1. Retries past the end of
// the list reuse the last delay.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(o *Options) { o.RetryDelays = append([]time.Duration(nil), delays...) }
}

// WithBackoff computes retry delays with s.
func WithBackoff(s backoff.Strategy) Option {
	return func(o *Options) { o.Backoff = s }
}

// WithRetryJitterFactor spreads each retry delay uniformly within
// delay*(1±factor).
func WithRetryJitterFactor(f float64) Option {
	return func(o *Options) { o.RetryJitterFactor = f }
}

// WithPersistResult overrides whether results are written to storage.
func WithPersistResult(persist bool) Option {
	return func(o *Options) { o.PersistResult = &persist }
}

// WithResultStorage writes results to st.
func WithResultStorage(st storage.Storage) Option {
	return func(o *Options) { o.ResultStorage = st }
}

// WithResultSerializer encodes results with s.
func WithResultSerializer(s serializer.Serializer) Option {
	return func(o *Options) { o.ResultSerializer = s }
}

// WithResultStorageKey sets the result key template.
func WithResultStorageKey(tmpl string) Option {
	return func(o *Options) { o.ResultStorageKey = tmpl }
}

// WithCacheResultInMemory overrides whether result handles keep the value.
func WithCacheResultInMemory(keep bool) Option {
	return func(o *Options) { o.CacheResultInMemory = &keep }
}

// WithTimeout bounds each attempt of the task.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithLogPrints routes run.Printf output to the run logger.
func WithLogPrints(enabled bool) Option {
	return func(o *Options) { o.LogPrints = enabled }
}

// WithOnCompletion adds hooks run after a successful run.
func WithOnCompletion(hooks ...run.Hook) Option {
	return func(o *Options) { o.OnCompletion = append(o.OnCompletion, hooks...) }
}

// WithOnFailure adds hooks run after a failed run.
func WithOnFailure(hooks ...run.Hook) Option {
	return func(o *Options) { o.OnFailure = append(o.OnFailure, hooks...) }
}

// WithStoreInputs sets when run parameters are persisted.
func WithStoreInputs(p inputs.Policy) Option {
	return func(o *Options) { o.StoreInputs = p }
}

// WithInputStorage writes persisted inputs to st instead of the result
// storage of the run.
func WithInputStorage(st storage.Storage) Option {
	return func(o *Options) { o.InputStorage = st }
}

// WithInputSerializer encodes persisted inputs with s instead of the result
// serializer of the run.
func WithInputSerializer(s serializer.Serializer) Option {
	return func(o *Options) { o.InputSerializer = s }
}

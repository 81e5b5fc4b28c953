package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/ext"
	mw "github.com/marwan116/supreme-task/middleware"
	"github.com/marwan116/supreme-task/observability"
	"github.com/marwan116/supreme-task/result"
	"github.com/marwan116/supreme-task/serializer"
	"github.com/marwan116/supreme-task/storage"
)

const instrumentationName = "github.com/marwan116/supreme-task"

// Engine runs flows and orchestrates the tasks they call.
// Use Build to create one.
type Engine struct {
	cfg        supremetask.Config
	logger     *slog.Logger
	extensions *ext.Registry
	mws        []mw.Middleware
	mw         mw.Middleware
	storage    storage.Storage
	serializer serializer.Serializer
	cache      *cache
	now        func() time.Time

	// closer releases storage opened by Build; nil for injected storage.
	closer io.Closer

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. If not set, a text logger on stderr at the
// configured log level is used.
func WithLogger(l *slog.Logger) Option {
	return func(eng *Engine) { eng.logger = l }
}

// WithStorage sets the default result storage instead of opening the one
// described by the config.
func WithStorage(st storage.Storage) Option {
	return func(eng *Engine) { eng.storage = st }
}

// WithSerializer sets the default result serializer.
func WithSerializer(s serializer.Serializer) Option {
	return func(eng *Engine) { eng.serializer = s }
}

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) { eng.extensions.Register(e) }
}

// WithMiddleware adds middleware to the engine's chain, inside the
// default middleware.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) { eng.mws = append(eng.mws, m) }
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) { eng.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// Both the metrics middleware and the observability extension use it.
// If not set, the global otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) { eng.meterProvider = mp }
}

// WithClock sets the time source for run start times.
func WithClock(now func() time.Time) Option {
	return func(eng *Engine) { eng.now = now }
}

// Build validates cfg and creates an Engine.
func Build(cfg supremetask.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng := &Engine{
		cfg:        cfg,
		extensions: ext.NewRegistry(slog.Default()),
		cache:      newCache(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("%w: log level %q", supremetask.ErrInvalidConfig, cfg.LogLevel)
		}
		eng.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	eng.extensions.SetLogger(eng.logger)

	if eng.serializer == nil {
		s, err := serializer.Get(cfg.ResultSerializer)
		if err != nil {
			return nil, err
		}
		eng.serializer = s
	}

	if eng.storage == nil {
		st, closer, err := openStorage(context.Background(), cfg.ResultStorage)
		if err != nil {
			return nil, err
		}
		eng.storage, eng.closer = st, closer
	}

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(eng.tracerProvider.Tracer(instrumentationName))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter(instrumentationName))
	} else {
		metricsMw = mw.Metrics()
	}

	// Register the observability metrics extension.
	var obsExt *observability.MetricsExtension
	if eng.meterProvider != nil {
		obsExt = observability.NewMetricsExtensionWithMeter(eng.meterProvider.Meter(instrumentationName + "/observability"))
	} else {
		obsExt = observability.NewMetricsExtension()
	}
	eng.extensions.Register(obsExt)

	// Default middleware stack: recover → tracing → metrics → logging → timeout.
	defaultMws := []mw.Middleware{
		mw.Recover(eng.logger),
		tracingMw,
		metricsMw,
		mw.Logging(eng.logger),
		mw.Timeout(eng.logger),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(eng.mws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, eng.mws...)
	eng.mw = mw.Chain(allMws...)

	return eng, nil
}

// Close emits the shutdown event and releases storage opened by Build.
func (eng *Engine) Close(ctx context.Context) error {
	eng.extensions.EmitShutdown(ctx)
	if eng.closer != nil {
		return eng.closer.Close()
	}
	return nil
}

// Config returns the engine configuration.
func (eng *Engine) Config() supremetask.Config { return eng.cfg }

// Logger returns the engine logger.
func (eng *Engine) Logger() *slog.Logger { return eng.logger }

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Storage returns the default result storage.
func (eng *Engine) Storage() storage.Storage { return eng.storage }

// Serializer returns the default result serializer.
func (eng *Engine) Serializer() serializer.Serializer { return eng.serializer }

// ClearCache drops every cached task result.
func (eng *Engine) ClearCache() { eng.cache.clear() }

// baseFactory is the result factory described by the engine config.
func (eng *Engine) baseFactory() *result.Factory {
	return &result.Factory{
		PersistResult:       eng.cfg.PersistResult,
		CacheResultInMemory: eng.cfg.CacheResultInMemory,
		Serializer:          eng.serializer,
		Storage:             eng.storage,
		StorageKeyFn:        result.DefaultKeyFunc,
	}
}

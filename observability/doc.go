// Package observability provides an OpenTelemetry metrics extension. The
// MetricsExtension implements lifecycle hooks to record counters for task
// run starts, completions, cache hits, failures, retries and flow runs.
//
// For per-attempt tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability

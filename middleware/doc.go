// Package middleware provides composable middleware for task run attempts.
//
// A [Middleware] wraps the handler of a single attempt. Middleware are
// composed into a chain using [Chain] and applied right-to-left: the first
// middleware in the slice is the outermost wrapper.
//
//	// logging → recover → handler
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging]: logs task name, run name, duration and outcome
//   - [Recover]: converts panics to errors
//   - [Timeout]: bounds the attempt by the task run's timeout
//   - [Tracing]: wraps the attempt in an OpenTelemetry span
//   - [Metrics]: records attempt duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, tr *run.TaskRun, next middleware.Handler) error {
//	        err := next(ctx)
//	        return err
//	    }
//	}
package middleware

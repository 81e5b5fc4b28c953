// Package engine runs flows and orchestrates the tasks they call.
//
// The engine package exists to break an import cycle: task and flow define
// what runs and cannot import the run machinery that calls them back.
// Engine sits above them and below the application layer.
//
// # Building an Engine
//
//	eng, err := engine.Build(supremetask.DefaultConfig(),
//	    engine.WithStorage(local.New("/var/lib/app/results")),
//	    engine.WithExtension(myExtension),
//	    engine.WithMiddleware(myMiddleware),
//	)
//	defer eng.Close(ctx)
//
// # Running Flows
//
//	out, err := engine.RunFlow(ctx, eng, pipeline, PipelineInput{Day: "2023-05-01"})
//
// Every task called inside the flow body gets a task run: a name, a
// TaskRunContext on ctx, the engine middleware (recover, tracing, metrics,
// logging, timeout), retries per the task options, an optional cache
// lookup, and its completion or failure hooks. The input persistence hook
// installed by task.New is one of those hooks.
//
// # Options
//
//   - [WithLogger] sets the logger
//   - [WithStorage] and [WithSerializer] set the default result backend
//   - [WithExtension] registers a lifecycle extension
//   - [WithMiddleware] adds a middleware to the execution chain
//   - [WithTracerProvider] and [WithMeterProvider] set OpenTelemetry providers
//   - [WithClock] sets the time source for run start times
package engine

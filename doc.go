// Package supremetask extends a task/flow runtime with two behaviors:
// runtime argument type checking for dynamically invoked tasks, and
// persistence of a task run's input parameters when the run fails.
//
// Tasks are ordinary Go functions wrapped by the task package. Flows group
// task calls; the engine package executes them, owning run state, retries,
// caching and result persistence.
//
// # Quick Start
//
//	eng, err := engine.Build(supremetask.DefaultConfig(),
//	    engine.WithStorage(local.New("/var/lib/results")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	type AddInput struct {
//	    X int `param:"x"`
//	    Y int `param:"y"`
//	}
//
//	add := task.Must(task.New("add", func(ctx context.Context, in AddInput) (int, error) {
//	    return in.X + in.Y, nil
//	}, task.WithRetries(2)))
//
//	calc := flow.Must(flow.New("calc", func(ctx context.Context, args map[string]any) (int, error) {
//	    return add.CallMap(ctx, args)
//	}))
//
//	sum, err := engine.RunFlow(ctx, eng, calc, map[string]any{"x": 1, "y": "2"})
//	// err wraps ErrTypeMismatch: parameter "y": expected int, got string.
//
// # Input persistence
//
// With the default input storage policy, a failed run writes its parameter
// mapping to "inputs/<task_name>/<start_time>" using the run's result
// storage and serializer. The start time is rendered as
// "2006-01-02T15-04-05-0700". inputs.List finds persisted parameters and
// Engine.Replay in the engine package runs a task again with them.
//
// Configuration is loaded with [LoadConfig] from YAML; every field has a
// default from [DefaultConfig].
package supremetask

// Package ext defines the extension system for the engine.
//
// Extensions are notified of lifecycle events and can react to them by
// recording metrics, writing audit records, and so on.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	func (e *MyExtension) OnTaskRunFailed(ctx context.Context, tr *run.TaskRun, err error) error {
//	    log.Printf("task run %s failed: %v", tr.Name, err)
//	    return nil
//	}
//
// # Task Run Hooks
//
//   - [TaskRunStarted]: the first attempt began
//   - [TaskRunCompleted]: the run completed or was served from the cache
//   - [TaskRunFailed]: the run failed with no retries remaining
//   - [TaskRunRetrying]: an attempt failed and another is scheduled
//
// # Flow Run Hooks
//
//   - [FlowRunStarted], [FlowRunCompleted], [FlowRunFailed]
//
// # Other Hooks
//
//   - [Shutdown]: the engine is closing
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface. Hook errors are logged and
// never propagated.
package ext

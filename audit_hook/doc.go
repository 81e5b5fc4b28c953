// Package audithook is an extension that bridges task and flow run
// lifecycle events to an audit trail backend.
//
// Every lifecycle hook emits a structured audit event through the
// [Recorder] interface. The extension assigns severity levels (info for
// normal operations, warning for retries, critical for terminal failures)
// and metadata such as the task name, run count and error.
//
// # Recording to result storage
//
//	audithook.New(audithook.NewStorageRecorder(st))
//
// writes each event as a JSON blob under "audit/<resource_id>/<action>-<n>".
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionTaskRunFailed,
//	        audithook.ActionFlowRunFailed,
//	    ),
//	)
package audithook

package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle hook
// and becomes the Action field of the audit event.
const (
	ActionTaskRunStarted   = "task_run.started"
	ActionTaskRunCompleted = "task_run.completed"
	ActionTaskRunFailed    = "task_run.failed"
	ActionTaskRunRetrying  = "task_run.retrying"
	ActionFlowRunStarted   = "flow_run.started"
	ActionFlowRunCompleted = "flow_run.completed"
	ActionFlowRunFailed    = "flow_run.failed"
)

// Audit event categories group related actions.
const (
	CategoryTask = "supremetask.task"
	CategoryFlow = "supremetask.flow"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceTaskRun = "task_run"
	ResourceFlowRun = "flow_run"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionTaskRunStarted,
		ActionTaskRunCompleted,
		ActionTaskRunFailed,
		ActionTaskRunRetrying,
		ActionFlowRunStarted,
		ActionFlowRunCompleted,
		ActionFlowRunFailed,
	}
}

// Package run holds the runtime records of flow and task runs and the
// context values that expose them to task bodies and lifecycle hooks.
package run

import (
	"context"
	"time"

	"github.com/marwan116/supreme-task/id"
	"github.com/marwan116/supreme-task/result"
)

// TaskRun represents a single execution of a task, across all its retries.
type TaskRun struct {
	ID         id.ID          `json:"id"`
	Name       string         `json:"name"`
	TaskName   string         `json:"task_name"`
	FlowRunID  id.ID          `json:"flow_run_id,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Parameters map[string]any `json:"parameters"`
	CacheKey   string         `json:"cache_key,omitempty"`
	RunCount   int            `json:"run_count"`
	Timeout    time.Duration  `json:"timeout,omitempty"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    *time.Time     `json:"end_time,omitempty"`
	State      State          `json:"state"`

	// Result is set once the run completes.
	Result *result.Result `json:"-"`
}

// SetState records a state transition.
func (tr *TaskRun) SetState(s State) {
	tr.State = s
	if s.IsFinal() {
		t := s.Timestamp
		tr.EndTime = &t
	}
}

// FlowRun represents a single execution of a flow.
type FlowRun struct {
	ID         id.ID          `json:"id"`
	Name       string         `json:"name"`
	FlowName   string         `json:"flow_name"`
	Parameters map[string]any `json:"parameters"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    *time.Time     `json:"end_time,omitempty"`
	State      State          `json:"state"`
}

// SetState records a state transition.
func (fr *FlowRun) SetState(s State) {
	fr.State = s
	if s.IsFinal() {
		t := s.Timestamp
		fr.EndTime = &t
	}
}

// Task describes the task a hook fires for.
type Task interface {
	Name() string
}

// Hook is a task lifecycle callback. It runs after the task run reaches a
// final state, with the run's TaskRunContext still on ctx.
type Hook func(ctx context.Context, t Task, tr *TaskRun, state State) error

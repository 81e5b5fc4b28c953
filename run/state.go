package run

import "time"

// StateType is the lifecycle phase of a flow or task run.
type StateType string

const (
	// StatePending means the run was created but has not started.
	StatePending StateType = "pending"
	// StateRunning means the run body is executing.
	StateRunning StateType = "running"
	// StateCompleted means the run finished successfully.
	StateCompleted StateType = "completed"
	// StateFailed means the run failed and will not be retried.
	StateFailed StateType = "failed"
	// StateRetrying means the run failed and is waiting to run again.
	StateRetrying StateType = "retrying"
)

// Well-known state names that refine a type.
const (
	NameCached   = "Cached"
	NameTimedOut = "TimedOut"
)

// State is a point-in-time snapshot of a run.
type State struct {
	Type      StateType `json:"type"`
	Name      string    `json:"name"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// Err is set for failed and retrying states.
	Err error `json:"-"`
}

// IsFinal reports whether the run will not change state again.
func (s State) IsFinal() bool {
	return s.Type == StateCompleted || s.Type == StateFailed
}

// IsCompleted reports whether the run completed, cached or not.
func (s State) IsCompleted() bool { return s.Type == StateCompleted }

// IsFailed reports whether the run failed terminally.
func (s State) IsFailed() bool { return s.Type == StateFailed }

// Pending returns a new pending state.
func Pending() State {
	return State{Type: StatePending, Name: "Pending", Timestamp: time.Now().UTC()}
}

// Running returns a new running state.
func Running() State {
	return State{Type: StateRunning, Name: "Running", Timestamp: time.Now().UTC()}
}

// Completed returns a new completed state.
func Completed() State {
	return State{Type: StateCompleted, Name: "Completed", Timestamp: time.Now().UTC()}
}

// Cached returns a completed state for a run served from the cache.
func Cached() State {
	return State{Type: StateCompleted, Name: NameCached, Timestamp: time.Now().UTC()}
}

// Failed returns a failed state carrying err.
func Failed(err error) State {
	return State{Type: StateFailed, Name: "Failed", Message: errMessage(err), Err: err, Timestamp: time.Now().UTC()}
}

// TimedOut returns a failed state for a run that exceeded its timeout.
func TimedOut(err error) State {
	return State{Type: StateFailed, Name: NameTimedOut, Message: errMessage(err), Err: err, Timestamp: time.Now().UTC()}
}

// Retrying returns a retrying state carrying the error of the last attempt.
func Retrying(err error) State {
	return State{Type: StateRetrying, Name: "Retrying", Message: errMessage(err), Err: err, Timestamp: time.Now().UTC()}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

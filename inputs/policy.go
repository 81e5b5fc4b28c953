package inputs

import (
	"fmt"

	supremetask "github.com/marwan116/supreme-task"
)

// Policy selects when a task run's inputs are persisted.
type Policy string

const (
	// OnFailure persists inputs when the run fails. It is the default.
	OnFailure Policy = "on_failure"
	// OnCompletion persists inputs when the run completes.
	OnCompletion Policy = "on_completion"
	// Never disables input persistence.
	Never Policy = "never"
)

// ParsePolicy parses a policy name. The empty string yields OnFailure.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case OnFailure, OnCompletion, Never:
		return p, nil
	case "":
		return OnFailure, nil
	default:
		return "", fmt.Errorf("%w: %q", supremetask.ErrInvalidPolicy, s)
	}
}

// String returns the policy name.
func (p Policy) String() string { return string(p) }

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) { return []byte(p), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(data []byte) error {
	parsed, err := ParsePolicy(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

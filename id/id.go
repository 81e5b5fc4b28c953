// Package id defines prefixed identity types for flow and task runs.
//
// IDs are UUIDv7-based, so they sort by creation time, and render as
// "prefix_<32 hex chars>".
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefix identifies the entity type encoded in an ID.
type Prefix string

// Prefix constants for run entities.
const (
	PrefixFlowRun Prefix = "frun"
	PrefixTaskRun Prefix = "trun"
)

// ID is a prefix-qualified, globally unique, sortable identifier.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalText.
type ID struct {
	prefix Prefix
	inner  uuid.UUID
	valid  bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new ID with the given prefix.
// It panics if prefix is empty or contains an underscore (programming error).
func New(prefix Prefix) ID {
	if prefix == "" || strings.Contains(string(prefix), "_") {
		panic(fmt.Sprintf("id: invalid prefix %q", prefix))
	}
	u, err := uuid.NewV7()
	if err != nil {
		panic(fmt.Sprintf("id: generate: %v", err))
	}
	return ID{prefix: prefix, inner: u, valid: true}
}

// Parse parses "prefix_suffix" into an ID.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}
	prefix, suffix, ok := strings.Cut(s, "_")
	if !ok || prefix == "" {
		return Nil, fmt.Errorf("id: parse %q: missing prefix", s)
	}
	u, err := uuid.Parse(suffix)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{prefix: Prefix(prefix), inner: u, valid: true}, nil
}

// ParseWithPrefix parses an ID and validates that its prefix matches.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}
	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}
	return parsed
}

// NewFlowRunID generates a new flow run ID.
func NewFlowRunID() ID { return New(PrefixFlowRun) }

// NewTaskRunID generates a new task run ID.
func NewTaskRunID() ID { return New(PrefixTaskRun) }

// ParseFlowRunID parses a string and validates the "frun" prefix.
func ParseFlowRunID(s string) (ID, error) { return ParseWithPrefix(s, PrefixFlowRun) }

// ParseTaskRunID parses a string and validates the "trun" prefix.
func ParseTaskRunID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTaskRun) }

// String returns "prefix_suffix", or "" for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}
	return string(i.prefix) + "_" + strings.ReplaceAll(i.inner.String(), "-", "")
}

// Short returns the last eight hex characters of the suffix. They come from
// the random part of the UUID and are used to derive readable run names.
func (i ID) Short() string {
	if !i.valid {
		return ""
	}
	return strings.ReplaceAll(i.inner.String(), "-", "")[24:]
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}
	return i.prefix
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

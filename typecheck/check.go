package typecheck

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	supremetask "github.com/marwan116/supreme-task"
)

// Mismatch reasons.
const (
	ReasonType       = "type"
	ReasonNil        = "nil"
	ReasonMissing    = "missing"
	ReasonUnexpected = "unexpected"
)

// Mismatch describes one argument that failed its check.
type Mismatch struct {
	Param    string
	Expected string
	Actual   string
	Reason   string
}

func (m Mismatch) String() string {
	switch m.Reason {
	case ReasonMissing:
		return fmt.Sprintf("parameter %q: missing required argument of type %s", m.Param, m.Expected)
	case ReasonUnexpected:
		return fmt.Sprintf("parameter %q: unexpected argument of type %s", m.Param, m.Actual)
	default:
		return fmt.Sprintf("parameter %q: expected %s, got %s", m.Param, m.Expected, m.Actual)
	}
}

// Error lists every mismatch of one call. errors.Is(err,
// supremetask.ErrTypeMismatch) reports true.
type Error struct {
	Func       string
	Mismatches []Mismatch
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return fmt.Sprintf("supremetask: type check failed for %q: %s", e.Func, strings.Join(parts, "; "))
}

// Is matches supremetask.ErrTypeMismatch.
func (e *Error) Is(target error) bool {
	return target == supremetask.ErrTypeMismatch
}

// Param returns the mismatch for the named parameter, if any.
func (e *Error) Param(name string) (Mismatch, bool) {
	for _, m := range e.Mismatches {
		if m.Param == name {
			return m, true
		}
	}
	return Mismatch{}, false
}

func checkValue(p Param, v any) (Mismatch, bool) {
	if v == nil {
		if nilable(p.Type) {
			return Mismatch{}, false
		}
		return Mismatch{Param: p.Name, Expected: p.Type.String(), Actual: "nil", Reason: ReasonNil}, true
	}
	vt := reflect.TypeOf(v)
	if vt.AssignableTo(p.Type) {
		return Mismatch{}, false
	}
	return Mismatch{Param: p.Name, Expected: p.Type.String(), Actual: vt.String(), Reason: ReasonType}, true
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// sortMismatches orders declared parameters by field order, then unexpected
// names alphabetically.
func sortMismatches(s *Signature, ms []Mismatch) {
	pos := func(name string) int {
		if i, ok := s.byName[name]; ok {
			return i
		}
		return len(s.params)
	}
	sort.SliceStable(ms, func(i, j int) bool {
		pi, pj := pos(ms[i].Param), pos(ms[j].Param)
		if pi != pj {
			return pi < pj
		}
		return ms[i].Param < ms[j].Param
	})
}

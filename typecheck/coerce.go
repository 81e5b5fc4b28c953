package typecheck

import (
	"encoding/json"
	"reflect"
)

// Coerce converts decoded arguments, such as persisted inputs read back
// from JSON, to the declared parameter types. Assignable values are kept.
// Other values are re-encoded as JSON and decoded into the declared type;
// values that do not convert are reported as a *Error. Unknown names pass
// through untouched so Check can report them.
func (s *Signature) Coerce(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	var mismatches []Mismatch

	for name, v := range args {
		i, ok := s.byName[name]
		if !ok || v == nil {
			out[name] = v
			continue
		}
		p := s.params[i]
		if reflect.TypeOf(v).AssignableTo(p.Type) {
			out[name] = v
			continue
		}
		if cv, ok := convertJSON(v, p.Type); ok {
			out[name] = cv
			continue
		}
		mismatches = append(mismatches, Mismatch{
			Param:    name,
			Expected: p.Type.String(),
			Actual:   typeName(v),
			Reason:   ReasonType,
		})
	}

	if len(mismatches) > 0 {
		sortMismatches(s, mismatches)
		return nil, &Error{Func: s.fn, Mismatches: mismatches}
	}
	return out, nil
}

func convertJSON(v any, typ reflect.Type) (any, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	ptr := reflect.New(typ)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, false
	}
	return ptr.Elem().Interface(), true
}

// Package typecheck validates dynamically supplied task arguments against
// the declared parameter types of a task input.
//
// A task's parameters are the exported fields of its input struct. The
// parameter name is taken from the `param` tag, then the `json` tag, then
// the field name. The ",optional" tag option allows the argument to be
// omitted. A non-struct input is a single parameter named "input".
//
//	type AddInput struct {
//	    X int `param:"x"`
//	    Y int `param:"y"`
//	}
//
// Statically typed calls never need this package; it guards call paths
// where arguments arrive as map[string]any.
package typecheck

import (
	"fmt"
	"reflect"
	"strings"
)

// SingleParam names the only parameter of a non-struct input.
const SingleParam = "input"

// Param is one declared parameter.
type Param struct {
	Name     string
	Type     reflect.Type
	Optional bool

	index []int
}

// Signature is the parameter list of a task input type.
type Signature struct {
	fn     string
	typ    reflect.Type
	params []Param
	byName map[string]int
	single bool
}

// Of inspects the input type T of the named function.
func Of[T any](fn string) (*Signature, error) {
	return Inspect(fn, reflect.TypeFor[T]())
}

// Inspect builds the signature of typ for the named function.
func Inspect(fn string, typ reflect.Type) (*Signature, error) {
	if typ == nil {
		return nil, fmt.Errorf("typecheck: %s: nil input type", fn)
	}
	s := &Signature{fn: fn, typ: typ, byName: make(map[string]int)}

	if typ.Kind() != reflect.Struct {
		s.single = true
		s.add(Param{Name: SingleParam, Type: typ})
		return s, nil
	}

	for _, f := range reflect.VisibleFields(typ) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, optional, skip := paramName(f)
		if skip {
			continue
		}
		if _, dup := s.byName[name]; dup {
			return nil, fmt.Errorf("typecheck: %s: duplicate parameter %q", fn, name)
		}
		s.add(Param{Name: name, Type: f.Type, Optional: optional, index: f.Index})
	}
	return s, nil
}

func (s *Signature) add(p Param) {
	s.byName[p.Name] = len(s.params)
	s.params = append(s.params, p)
}

// Func returns the function name used in errors.
func (s *Signature) Func() string { return s.fn }

// Type returns the inspected input type.
func (s *Signature) Type() reflect.Type { return s.typ }

// Params returns the declared parameters in field order.
func (s *Signature) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}

// Check validates every argument and reports all mismatches at once. It
// returns nil or a *Error.
func (s *Signature) Check(args map[string]any) error {
	var mismatches []Mismatch

	for _, p := range s.params {
		v, ok := args[p.Name]
		if !ok {
			if !p.Optional {
				mismatches = append(mismatches, Mismatch{
					Param:    p.Name,
					Expected: p.Type.String(),
					Reason:   ReasonMissing,
				})
			}
			continue
		}
		if m, bad := checkValue(p, v); bad {
			mismatches = append(mismatches, m)
		}
	}

	for name, v := range args {
		if _, ok := s.byName[name]; !ok {
			mismatches = append(mismatches, Mismatch{
				Param:  name,
				Actual: typeName(v),
				Reason: ReasonUnexpected,
			})
		}
	}

	if len(mismatches) == 0 {
		return nil
	}
	sortMismatches(s, mismatches)
	return &Error{Func: s.fn, Mismatches: mismatches}
}

// Bind checks args and stores them into dst, which must be a non-nil
// pointer to the inspected type. Nothing is written when the check fails.
func (s *Signature) Bind(args map[string]any, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != s.typ {
		return fmt.Errorf("typecheck: %s: Bind requires *%s, got %T", s.fn, s.typ, dst)
	}
	if err := s.Check(args); err != nil {
		return err
	}

	out := rv.Elem()
	if s.single {
		setValue(out, args[SingleParam])
		return nil
	}
	for _, p := range s.params {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		field, err := out.FieldByIndexErr(p.index)
		if err != nil {
			return fmt.Errorf("typecheck: %s: parameter %q: %w", s.fn, p.Name, err)
		}
		setValue(field, v)
	}
	return nil
}

// Parameters converts a typed input into its parameter mapping.
func (s *Signature) Parameters(in any) map[string]any {
	params := make(map[string]any, len(s.params))
	rv := reflect.ValueOf(in)
	if s.single {
		params[SingleParam] = in
		return params
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return params
		}
		rv = rv.Elem()
	}
	if rv.Type() != s.typ {
		return params
	}
	for _, p := range s.params {
		field, err := rv.FieldByIndexErr(p.index)
		if err != nil {
			continue
		}
		params[p.Name] = field.Interface()
	}
	return params
}

// Bind is the typed form of Signature.Bind.
func Bind[T any](s *Signature, args map[string]any) (T, error) {
	var in T
	err := s.Bind(args, &in)
	return in, err
}

func paramName(f reflect.StructField) (name string, optional, skip bool) {
	tag, hasParam := f.Tag.Lookup("param")
	if !hasParam {
		tag = f.Tag.Get("json")
	}
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "optional" || (!hasParam && opt == "omitempty") {
			optional = true
		}
	}
	if name == "" {
		name = f.Name
	}
	return name, optional, false
}

func setValue(dst reflect.Value, v any) {
	if v == nil {
		dst.SetZero()
		return
	}
	dst.Set(reflect.ValueOf(v))
}

// Copyright 2025 The hdl-org Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package params

import (
	"github.com/hdl-org/hdl/cerr"
	"go.uber.org/multierr"
)

// Record is an immutable value of a Spec. Records are frozen after
// construction: list values are copied in and out, and no mutator exists.
type Record struct {
	spec   *Spec
	values []any // one per spec field, in declaration order
}

// New builds a record from field values. Every field is type-checked,
// missing fields take their declared defaults, list values are copied into
// an immutable sequence. Unknown fields, missing required fields, and
// wrongly-typed values are all reported, accumulated.
func (s *Spec) New(values map[string]any) (*Record, error) {
	var errs error
	for name := range values {
		if _, ok := s.index[name]; !ok {
			errs = multierr.Append(errs, cerr.Configf("spec %s has no field %q", s.name, name))
		}
	}
	rec := &Record{spec: s, values: make([]any, len(s.fields))}
	for i, f := range s.fields {
		v, given := values[f.Name]
		switch {
		case given:
			checked, err := checkValue(f.Type, v, s.name, f.Name)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			rec.values[i] = checked
		case f.Default == Nil:
			rec.values[i] = nil
		case f.Default != nil:
			rec.values[i] = f.Default
		case f.DefaultFactory != nil:
			checked, err := checkValue(f.Type, f.DefaultFactory(), s.name, f.Name)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			rec.values[i] = checked
		default:
			errs = multierr.Append(errs, cerr.Configf(
				"spec %s: missing required field %q (%s)", s.name, f.Name, f.Type))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return rec, nil
}

// MustNew is New, panicking on error. For declarations and tests.
func (s *Spec) MustNew(values map[string]any) *Record {
	r, err := s.New(values)
	if err != nil {
		panic(err)
	}
	return r
}

// Spec returns the record's declaring spec.
func (r *Record) Spec() *Spec { return r.spec }

// Get returns a field value. List values are returned as copies.
func (r *Record) Get(name string) (any, bool) {
	i, ok := r.spec.index[name]
	if !ok {
		return nil, false
	}
	return copyOut(r.values[i]), true
}

// GetInt returns an int64 field value, or its zero when nil or absent.
func (r *Record) GetInt(name string) (int64, bool) {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// GetString returns a string field value (including enums),
// or "" when nil or absent.
func (r *Record) GetString(name string) (string, bool) {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetFloat returns a float64 field value, or its zero when nil or absent.
func (r *Record) GetFloat(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// ToMap returns the record as a field-name-keyed map. The result
// reconstructs an equal record through Spec.New.
func (r *Record) ToMap() map[string]any {
	out := make(map[string]any, len(r.spec.fields))
	for i, f := range r.spec.fields {
		out[f.Name] = copyOut(r.values[i])
	}
	return out
}

// Equal reports structural equality: same spec, all fields equal,
// including nested records.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.spec != o.spec {
		return false
	}
	for i := range r.values {
		if !valueEqual(r.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Record:
		bv, ok := b.(*Record)
		return ok && av.Equal(bv)
	case Pathed:
		bv, ok := b.(Pathed)
		return ok && av.QualPath() == bv.QualPath()
	default:
		return a == b
	}
}

func copyOut(v any) any {
	if l, ok := v.([]any); ok {
		out := make([]any, len(l))
		copy(out, l)
		return out
	}
	return v
}

// checkValue validates and normalizes one field value.
func checkValue(t Type, v any, specName, fieldName string) (any, error) {
	fail := func(format string, a ...any) (any, error) {
		prefix := []any{specName, fieldName}
		return nil, cerr.TypeMismatchf("spec %s: field %q: "+format, append(prefix, a...)...)
	}
	if v == nil {
		if !t.optional {
			return fail("nil value for non-optional %s", t)
		}
		return nil, nil
	}
	// A common mistake is passing the declaration where a value belongs.
	switch v.(type) {
	case *Spec:
		return fail("got a parameter spec, expected a value of type %s", t)
	case Type:
		return fail("got a parameter type, expected a value of type %s", t)
	}
	switch t.kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return fail("expected string, got %T", v)
		}
		return s, nil
	case KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		}
		return fail("expected int, got %T", v)
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
		return fail("expected float, got %T", v)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return fail("expected bool, got %T", v)
		}
		return b, nil
	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return fail("expected %s value, got %T", t.enumName, v)
		}
		for _, allowed := range t.enumValues {
			if s == allowed {
				return s, nil
			}
		}
		return fail("invalid %s value %q, must be one of %v", t.enumName, s, t.enumValues)
	case KindList:
		l, ok := v.([]any)
		if !ok {
			return fail("expected list, got %T", v)
		}
		out := make([]any, len(l))
		for i, e := range l {
			checked, err := checkValue(*t.elem, e, specName, fieldName)
			if err != nil {
				return nil, err
			}
			out[i] = checked
		}
		return out, nil
	case KindRecord:
		rec, ok := v.(*Record)
		if !ok {
			// Untyped maps round-trip through the nested spec.
			if m, isMap := v.(map[string]any); isMap {
				return t.rec.New(m)
			}
			return fail("expected a %s record, got %T", t.rec.Name(), v)
		}
		if rec.spec != t.rec {
			return fail("expected a %s record, got a %s record", t.rec.Name(), rec.spec.Name())
		}
		return rec, nil
	case KindRef:
		p, ok := v.(Pathed)
		if !ok {
			return fail("expected a path-named value (Module, ExternalModule, or Generator), got %T", v)
		}
		return p, nil
	}
	return fail("invalid field type")
}

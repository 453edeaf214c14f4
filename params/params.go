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

// Package params provides immutable, type-validated parameter records.
//
// A Spec declares a record type from a set of named, typed fields. Records
// built from a Spec are frozen after construction, compare structurally, and
// derive a deterministic unique name used as the memoization and naming key
// of the elaboration engine.
//
// There is no derivation between specs: a Nested-typed field embeds another
// spec's record, and composition is the only extension path.
package params

import (
	"fmt"
	"strings"

	"github.com/hdl-org/hdl/cerr"
	"go.uber.org/multierr"
)

// Pathed is implemented by domain values usable as Ref parameters:
// modules, external modules, and generators. In canonical serialization such
// values render as their qualified path name, never as their contents.
type Pathed interface {
	QualPath() string
}

// TypeKind enumerates field datatypes.
type TypeKind int

const (
	// KindInvalid is the zero TypeKind.
	KindInvalid TypeKind = iota
	// KindString fields hold string values.
	KindString
	// KindInt fields hold int64 values (plain ints are widened).
	KindInt
	// KindFloat fields hold float64 values (ints are widened).
	KindFloat
	// KindBool fields hold bool values.
	KindBool
	// KindEnum fields hold one of a closed set of string values.
	KindEnum
	// KindList fields hold an immutable sequence of element values.
	KindList
	// KindRecord fields nest a record of another spec.
	KindRecord
	// KindRef fields hold a domain value rendered by its qualified path.
	KindRef
)

// Type is a field datatype: a kind, an optional flag, and the kind's
// payload (element type, nested spec, or enum values).
type Type struct {
	kind       TypeKind
	optional   bool
	elem       *Type
	rec        *Spec
	enumName   string
	enumValues []string
}

// String returns a string type.
func String() Type { return Type{kind: KindString} }

// Int returns an integer type.
func Int() Type { return Type{kind: KindInt} }

// Float returns a floating-point type.
func Float() Type { return Type{kind: KindFloat} }

// Bool returns a boolean type.
func Bool() Type { return Type{kind: KindBool} }

// Enum returns a closed string-enumeration type.
func Enum(name string, values ...string) Type {
	return Type{kind: KindEnum, enumName: name, enumValues: values}
}

// List returns a sequence type with elements of type elem.
func List(elem Type) Type {
	e := elem
	return Type{kind: KindList, elem: &e}
}

// Nested returns a nested-record type over spec.
func Nested(spec *Spec) Type { return Type{kind: KindRecord, rec: spec} }

// Ref returns a domain-reference type. Values must implement Pathed.
func Ref() Type { return Type{kind: KindRef} }

// Optional returns t accepting nil as a value.
func Optional(t Type) Type {
	t.optional = true
	return t
}

// Kind returns the type kind.
func (t Type) Kind() TypeKind { return t.kind }

// IsOptional reports whether nil is a legal value.
func (t Type) IsOptional() bool { return t.optional }

// String describes the type.
func (t Type) String() string {
	var s string
	switch t.kind {
	case KindString:
		s = "string"
	case KindInt:
		s = "int"
	case KindFloat:
		s = "float"
	case KindBool:
		s = "bool"
	case KindEnum:
		s = fmt.Sprintf("enum %s(%s)", t.enumName, strings.Join(t.enumValues, "|"))
	case KindList:
		s = "list of " + t.elem.String()
	case KindRecord:
		s = "record " + t.rec.Name()
	case KindRef:
		s = "ref"
	default:
		s = "invalid"
	}
	if t.optional {
		s = "optional " + s
	}
	return s
}

// scalar reports whether the type renders in human-readable unique names:
// strings, ints, floats, and options thereof.
func (t Type) scalar() bool {
	switch t.kind {
	case KindString, KindInt, KindFloat:
		return true
	}
	return false
}

type nilDefault struct{}

// Nil is the explicit nil default for optional fields. A field whose Default
// is untyped nil has no default and is required; a field whose Default is Nil
// defaults to the nil value.
var Nil any = nilDefault{}

// Field declares one named, typed parameter.
// Default and DefaultFactory are mutually exclusive; a field with neither
// is required at record construction.
type Field struct {
	Name string
	Type Type
	Desc string
	// Default is the field value when omitted. Untyped nil means "no
	// default"; use Optional types with DefaultFactory to default to nil.
	Default any
	// DefaultFactory builds the default value when omitted. Used for values
	// that must not be shared between records, such as lists.
	DefaultFactory func() any
}

// Spec declares a parameter-record type: an ordered set of fields.
type Spec struct {
	name   string
	fields []Field
	index  map[string]int
}

// NewSpec declares a record type from its fields. Field names must be
// non-empty and unique; defaults must match their field's type.
func NewSpec(name string, fields ...Field) (*Spec, error) {
	s := &Spec{name: name, index: make(map[string]int, len(fields))}
	var errs error
	for _, f := range fields {
		if f.Name == "" {
			errs = multierr.Append(errs, cerr.Configf("spec %s: empty field name", name))
			continue
		}
		if _, ok := s.index[f.Name]; ok {
			errs = multierr.Append(errs, cerr.Configf("spec %s: duplicate field %q", name, f.Name))
			continue
		}
		if f.Type.kind == KindInvalid {
			errs = multierr.Append(errs, cerr.Configf("spec %s: field %q has no type", name, f.Name))
			continue
		}
		if f.Default != nil && f.DefaultFactory != nil {
			errs = multierr.Append(errs, cerr.Configf(
				"spec %s: field %q declares both a default and a default factory", name, f.Name))
			continue
		}
		if f.Default == Nil {
			if !f.Type.optional {
				errs = multierr.Append(errs, cerr.Configf(
					"spec %s: field %q defaults to nil but its type %s is not optional",
					name, f.Name, f.Type))
				continue
			}
		} else if f.Default != nil {
			v, err := checkValue(f.Type, f.Default, name, f.Name)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			f.Default = v
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	if errs != nil {
		return nil, errs
	}
	return s, nil
}

// MustSpec is NewSpec, panicking on declaration errors.
// For package-level spec declarations.
func MustSpec(name string, fields ...Field) *Spec {
	s, err := NewSpec(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the spec name.
func (s *Spec) Name() string { return s.name }

// NumFields returns the number of declared fields.
func (s *Spec) NumFields() int { return len(s.fields) }

// Fields returns a copy of the declared fields, in declaration order.
func (s *Spec) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns a declared field by name.
func (s *Spec) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Descriptions returns field names mapped to their descriptions.
func (s *Spec) Descriptions() map[string]string {
	out := make(map[string]string, len(s.fields))
	for _, f := range s.fields {
		out[f.Name] = f.Desc
	}
	return out
}

// Defaults returns field names mapped to their default values,
// for the fields that have one.
func (s *Spec) Defaults() map[string]any {
	out := make(map[string]any)
	for _, f := range s.fields {
		switch {
		case f.Default == Nil:
			out[f.Name] = nil
		case f.Default != nil:
			out[f.Name] = f.Default
		case f.DefaultFactory != nil:
			out[f.Name] = f.DefaultFactory()
		}
	}
	return out
}

// HasParams reports whether the spec declares any fields.
// The empty spec is the canonical "no parameters" sentinel.
func (s *Spec) HasParams() bool { return len(s.fields) > 0 }

// Empty is the canonical parameter spec for generators that take no
// parameters.
var Empty = MustSpec("NoParams")

// None is the one record of the Empty spec.
var None = Empty.MustNew(nil)

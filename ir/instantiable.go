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

package ir

import "github.com/hdl-org/hdl/cerr"

// Kind identifies the variant of an Instantiable.
type Kind int

const (
	// KindInvalid is the zero Kind.
	KindInvalid Kind = iota
	// KindModule is a *Module.
	KindModule
	// KindPrimitiveCall is a *PrimitiveCall.
	KindPrimitiveCall
	// KindExternalModuleCall is an *ExternalModuleCall.
	KindExternalModuleCall
	// KindGeneratorCall is a deferred generator invocation. It exists only
	// before elaboration; an elaborated tree contains none.
	KindGeneratorCall
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindModule:
		return "Module"
	case KindPrimitiveCall:
		return "PrimitiveCall"
	case KindExternalModuleCall:
		return "ExternalModuleCall"
	case KindGeneratorCall:
		return "GeneratorCall"
	}
	return "Invalid"
}

// Instantiable is the closed union of types an Instance may target:
// *Module, *PrimitiveCall, and *ExternalModuleCall, plus generator calls
// before elaboration.
type Instantiable interface {
	// Kind identifies the union variant.
	Kind() Kind
	// QualPath returns the target's path-qualified name: the flat builtin
	// name for primitives, the defining-context path joined with "." for
	// modules, the domain-qualified module path for external calls.
	QualPath() string
}

// Definition is a callable declaration: a Primitive, an ExternalModule, or a
// generator. Definitions are not instantiable; their calls are.
type Definition interface {
	DefName() string
}

// AsInstantiable checks that a value is a member of the Instantiable union,
// distinguishing the common mistakes in its diagnostics.
func AsInstantiable(v any) (Instantiable, error) {
	switch t := v.(type) {
	case nil:
		return nil, cerr.TypeMismatchf("nil is not instantiable")
	case Instantiable:
		return t, nil
	case Definition:
		return nil, cerr.TypeMismatchf(
			"%T %s is a declaration, not an instantiable; did you mean to call it?", v, t.DefName())
	case *Instance:
		return nil, cerr.TypeMismatchf(
			"instance %s is not instantiable; did you mean its `.Target()`?", t.Name())
	default:
		return nil, cerr.TypeMismatchf(
			"%T is not instantiable; expected a Module, PrimitiveCall, or ExternalModuleCall", v)
	}
}

// IsInstantiable reports membership in the Instantiable union.
func IsInstantiable(v any) bool {
	_, err := AsInstantiable(v)
	return err == nil
}

// QualName returns the path-qualified name of an instantiable value,
// with AsInstantiable's diagnostics for anything else.
func QualName(v any) (string, error) {
	i, err := AsInstantiable(v)
	if err != nil {
		return "", err
	}
	return i.QualPath(), nil
}

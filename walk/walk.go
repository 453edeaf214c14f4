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

// Package walk traverses an elaborated hierarchy depth-first with
// overridable per-variant hooks. Technology backends implement Visitor to
// substitute generic leaf primitives with their own external modules; the
// walker rebinds instance targets in place, consuming the input tree.
package walk

import (
	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/elab"
	"github.com/hdl-org/hdl/ir"
)

// Visitor rewrites the leaves of a hierarchy. Hooks return the replacement
// target; returning the call unchanged leaves the instance as-is.
type Visitor interface {
	VisitPrimitiveCall(call *ir.PrimitiveCall) (ir.Instantiable, error)
	VisitExternalModuleCall(call *ir.ExternalModuleCall) (ir.Instantiable, error)
}

// Passthrough implements Visitor leaving every leaf unchanged. Backends
// embed it and override the hooks they care about.
type Passthrough struct{}

// VisitPrimitiveCall returns the call unchanged.
func (Passthrough) VisitPrimitiveCall(call *ir.PrimitiveCall) (ir.Instantiable, error) {
	return call, nil
}

// VisitExternalModuleCall returns the call unchanged.
func (Passthrough) VisitExternalModuleCall(call *ir.ExternalModuleCall) (ir.Instantiable, error) {
	return call, nil
}

// Walker runs one depth-first traversal. Modules shared through memoization
// are visited once per run. A walker is owned by one run and never shared.
type Walker struct {
	visitor Visitor
	seen    map[*ir.Module]bool
}

// New returns a walker over a visitor.
func New(v Visitor) *Walker {
	return &Walker{visitor: v, seen: make(map[*ir.Module]bool)}
}

// Walk traverses the module, rewriting leaf targets in place.
func (w *Walker) Walk(m *ir.Module) error {
	return w.visitModule(m)
}

func (w *Walker) visitModule(m *ir.Module) error {
	if w.seen[m] {
		return nil
	}
	w.seen[m] = true
	for _, inst := range m.Instances() {
		if err := w.visitInstance(inst); err != nil {
			return cerr.InPath(err, "module "+m.Name())
		}
	}
	return nil
}

func (w *Walker) visitInstance(inst *ir.Instance) error {
	err := func() error {
		switch t := inst.Target().(type) {
		case *ir.Module:
			return w.visitModule(t)
		case *ir.PrimitiveCall:
			target, err := w.visitor.VisitPrimitiveCall(t)
			return w.rebind(inst, target, err)
		case *ir.ExternalModuleCall:
			target, err := w.visitor.VisitExternalModuleCall(t)
			return w.rebind(inst, target, err)
		case *elab.GeneratorCall:
			// A pre-substitution reference: resolve to the elaborated
			// module and keep walking.
			m := t.Result()
			if m == nil {
				return cerr.Configf("unelaborated generator call %s; run elaboration before walking", t.Name())
			}
			inst.SetTarget(m)
			return w.visitModule(m)
		case nil:
			return cerr.Configf("instance has no target")
		default:
			return cerr.TypeMismatchf("invalid instance target %T", t)
		}
	}()
	if err != nil {
		return cerr.InPath(err, "instance "+inst.Name())
	}
	return nil
}

func (w *Walker) rebind(inst *ir.Instance, target ir.Instantiable, err error) error {
	if err != nil {
		return err
	}
	if target == nil {
		return cerr.TypeMismatchf("visitor returned a nil replacement target")
	}
	if target != inst.Target() {
		inst.SetTarget(target)
	}
	return nil
}

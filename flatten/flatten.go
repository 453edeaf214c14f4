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

// Package flatten inlines a module hierarchy into one level of primitive and
// external-module instances with collision-free, path-qualified naming.
//
// Leaf instances are renamed to their colon-joined instance path; every
// non-port net reachable by a leaf becomes one signal of the flat module,
// path-qualified except where it coincides with a top-level port.
//
// Known limitation: signal slices and concatenations crossing a hierarchy
// boundary are not handled; connections must be whole signals, and anything
// else is rejected rather than silently miswired.
package flatten

import (
	"strings"

	"github.com/hdl-org/hdl/base/uname"
	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/elab"
	"github.com/hdl-org/hdl/ir"
)

// sep joins instance paths and qualifies hoisted signal names.
const sep = ":"

// IsFlat reports whether every direct instance of a module targets a
// primitive or an external module. It runs without the full algorithm.
func IsFlat(m *ir.Module) bool {
	for _, inst := range m.Instances() {
		switch inst.Target().(type) {
		case *ir.PrimitiveCall, *ir.ExternalModuleCall:
		default:
			return false
		}
	}
	return true
}

// leaf is one primitive or external-module instance found by the walk, with
// its instance path and its per-port connections resolved to global signals.
type leaf struct {
	inst  *ir.Instance
	path  []string
	ports []string             // connection order
	conns map[string]*ir.Signal // port name -> global signal
}

// Flatten inlines a hierarchy into one flat module. The input is elaborated
// first; an already-flat module is returned unchanged, making the transform
// idempotent.
func Flatten(m *ir.Module) (*ir.Module, error) {
	m, err := elab.Elaborate(m)
	if err != nil {
		return nil, err
	}
	if IsFlat(m) {
		return m, nil
	}

	leaves, err := walkLeaves(m, nil, nil)
	if err != nil {
		return nil, err
	}

	flat := ir.NewModule(flatName(m.Name()))
	flat.SetDefPath(m.DefPath())

	// Ports carry over unchanged; their names are reserved in the flat
	// namespace so no hoisted signal can collide with them.
	names := uname.New()
	topPorts := make(map[*ir.Signal]*ir.Signal)
	for name, port := range m.Ports() {
		cp, err := flat.AddPort(port.WithName(name))
		if err != nil {
			return nil, err
		}
		names.Claim(name)
		topPorts[port] = cp
	}

	// One signal per distinct non-port global net.
	hoisted := make(map[*ir.Signal]*ir.Signal)
	resolve := func(g *ir.Signal) (*ir.Signal, error) {
		if p, ok := topPorts[g]; ok {
			return p, nil
		}
		if s, ok := hoisted[g]; ok {
			return s, nil
		}
		s, err := flat.AddSignal(g.AsInternal().WithName(names.Name(g.Name())))
		if err != nil {
			return nil, err
		}
		hoisted[g] = s
		return s, nil
	}

	for _, l := range leaves {
		inst, err := ir.NewInstance(strings.Join(l.path, sep), l.inst.Target())
		if err != nil {
			return nil, err
		}
		for _, port := range l.ports {
			s, err := resolve(l.conns[port])
			if err != nil {
				return nil, err
			}
			inst.Connect(port, s)
		}
		if _, err := flat.AddInstance(inst); err != nil {
			return nil, err
		}
	}
	return flat, nil
}

func flatName(name string) string {
	if name == "" {
		name = "module"
	}
	return name + "_flat"
}

// walkLeaves walks depth-first from the root, carrying the instance-name
// path and a map from every name visible at the current level to its global
// signal. At each level the map is composed through the instance's own
// connection dictionary; names not connected above are hoisted under a
// path-qualified name.
func walkLeaves(m *ir.Module, path []string, visible map[string]*ir.Signal) ([]leaf, error) {
	if err := ir.ResolvePortRefs(m); err != nil {
		return nil, err
	}
	if visible == nil {
		// Root level: every port and signal is its own global.
		visible = make(map[string]*ir.Signal)
		for name, p := range m.Ports() {
			visible[name] = p
		}
		for name, s := range m.Signals() {
			visible[name] = s
		}
	} else {
		// Names never connected above stay local to this subtree, hoisted
		// under their path-qualified name.
		qualify := func(name string, s *ir.Signal) {
			if _, ok := visible[name]; ok {
				return
			}
			visible[name] = s.WithName(strings.Join(append(append([]string{}, path...), name), sep))
		}
		for name, p := range m.Ports() {
			qualify(name, p)
		}
		for name, s := range m.Signals() {
			qualify(name, s)
		}
	}

	var leaves []leaf
	for instName, inst := range m.Instances() {
		instPath := append(append([]string{}, path...), instName)
		childVisible := make(map[string]*ir.Signal, inst.NumConns())
		l := leaf{inst: inst, path: instPath, conns: make(map[string]*ir.Signal, inst.NumConns())}
		var connErr error
		for port, conn := range inst.Conns() {
			sig, ok := conn.(*ir.Signal)
			if !ok {
				connErr = cerr.Resolutionf(
					"instance %s port %s: unresolved connection %v", instName, port, conn)
				break
			}
			global, ok := visible[sig.Name()]
			if !ok {
				connErr = cerr.Resolutionf(
					"signal %q not found in module %s", sig.Name(), m.Name())
				break
			}
			childVisible[port] = global
			l.ports = append(l.ports, port)
			l.conns[port] = global
		}
		if connErr != nil {
			return nil, cerr.InPath(connErr, "module "+m.Name())
		}
		switch t := inst.Target().(type) {
		case *ir.PrimitiveCall, *ir.ExternalModuleCall:
			leaves = append(leaves, l)
		case *ir.Module:
			sub, err := walkLeaves(t, instPath, childVisible)
			if err != nil {
				return nil, cerr.InPath(err, "instance "+instName)
			}
			leaves = append(leaves, sub...)
		default:
			return nil, cerr.Consistencyf(
				"flattening found unelaborated target %T under instance %s", t, instName)
		}
	}
	return leaves, nil
}

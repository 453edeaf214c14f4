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

// resolvedCall is the part of a generator call visible after elaboration.
// Declared here so resolution does not depend on the elaboration package.
type resolvedCall interface {
	Result() *Module
}

// targetPorts returns the port namespace of an instance target.
func targetPorts(t Instantiable) (map[string]*Signal, []string, error) {
	switch v := t.(type) {
	case *Module:
		ports := make(map[string]*Signal, v.NumPorts())
		names := make([]string, 0, v.NumPorts())
		for name, p := range v.Ports() {
			ports[name] = p
			names = append(names, name)
		}
		return ports, names, nil
	case *PrimitiveCall:
		return nil, v.prim.ports, nil
	case *ExternalModuleCall:
		return nil, v.module.ports, nil
	case resolvedCall:
		m := v.Result()
		if m == nil {
			return nil, nil, cerr.Configf(
				"unelaborated generator call %s; run elaboration before resolving port references", t.QualPath())
		}
		return targetPorts(m)
	case nil:
		return nil, nil, cerr.Configf("instance has no target")
	default:
		return nil, nil, cerr.TypeMismatchf("invalid instance target %T", t)
	}
}

func hasPort(ports map[string]*Signal, names []string, port string) (*Signal, bool) {
	if ports != nil {
		s, ok := ports[port]
		return s, ok
	}
	for _, n := range names {
		if n == port {
			return nil, true
		}
	}
	return nil, false
}

// ResolvePortRefs replaces every symbolic (instance, port) connection in a
// module with a shared signal. Two instances connected to each other's
// not-yet-resolved ports resolve to one common signal, named
// "<instance>_<port>" after the referenced endpoint. This pass is separate
// from elaboration and never re-triggers it.
func ResolvePortRefs(m *Module) error {
	for instName, inst := range m.Instances() {
		var refs []struct {
			port string
			ref  PortRef
		}
		for port, conn := range inst.Conns() {
			if ref, ok := conn.(PortRef); ok {
				refs = append(refs, struct {
					port string
					ref  PortRef
				}{port, ref})
			}
		}
		for _, r := range refs {
			if err := m.resolveRef(inst, r.port, r.ref); err != nil {
				return cerr.InPath(err, "instance "+instName+" of module "+m.name)
			}
		}
	}
	return nil
}

func (m *Module) resolveRef(inst *Instance, port string, ref PortRef) error {
	target, ok := m.Instance(ref.Inst)
	if !ok {
		return cerr.Resolutionf("port reference %s: no instance %q in module %s", ref, ref.Inst, m.name)
	}
	ports, names, err := targetPorts(target.Target())
	if err != nil {
		return err
	}
	refPort, ok := hasPort(ports, names, ref.Port)
	if !ok {
		return cerr.Resolutionf("port reference %s: target %s has no port %q",
			ref, target.Target().QualPath(), ref.Port)
	}

	// Reuse the signal already tied to the referenced endpoint, if any.
	var sig *Signal
	if conn, ok := target.Conn(ref.Port); ok {
		if s, isSig := conn.(*Signal); isSig {
			sig = s
		}
	}
	if sig == nil {
		name := ref.Inst + "_" + ref.Port
		if existing, ok := m.Signal(name); ok {
			sig = existing
		} else {
			width := 1
			if refPort != nil {
				width = refPort.Width()
			}
			if sig, err = m.AddSignal(NewSignal(name, width)); err != nil {
				return err
			}
		}
	}
	inst.Connect(port, sig)
	target.Connect(ref.Port, sig)
	return nil
}

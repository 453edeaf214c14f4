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

// Package ir defines the circuit tree: modules, signals, instances, and the
// closed union of types an instance may target.
package ir

import (
	"github.com/hdl-org/hdl/base/ordered"
	"github.com/hdl-org/hdl/cerr"
)

// Module is a named circuit: ordered ports, internal signals, and named
// instances. A module may stay anonymous until elaboration names it from its
// generator; it is immutable once elaborated.
type Module struct {
	name      string
	defPath   string
	ports     *ordered.Map[string, *Signal]
	signals   *ordered.Map[string, *Signal]
	instances *ordered.Map[string, *Instance]
}

// NewModule returns an empty module. The name may be empty for modules
// returned by generators, which elaboration names.
func NewModule(name string) *Module {
	return &Module{
		name:      name,
		ports:     ordered.NewMap[string, *Signal](),
		signals:   ordered.NewMap[string, *Signal](),
		instances: ordered.NewMap[string, *Instance](),
	}
}

// Name returns the module name, empty if anonymous.
func (m *Module) Name() string { return m.name }

// SetName names the module. Elaboration uses this for anonymous generator
// results.
func (m *Module) SetName(name string) { m.name = name }

// DefPath returns the defining-context path used for qualified naming.
func (m *Module) DefPath() string { return m.defPath }

// SetDefPath records the defining context, e.g. a library path.
func (m *Module) SetDefPath(path string) { m.defPath = path }

// Kind returns KindModule.
func (m *Module) Kind() Kind { return KindModule }

// QualPath returns the defining-context path joined with the module name.
func (m *Module) QualPath() string {
	if m.defPath == "" {
		return m.name
	}
	return m.defPath + "." + m.name
}

func (m *Module) checkName(name string) error {
	if name == "" {
		return cerr.Configf("module %s: empty name", m.name)
	}
	if m.ports.Has(name) || m.signals.Has(name) || m.instances.Has(name) {
		return cerr.Configf("module %s already declares %q", m.name, name)
	}
	return nil
}

// AddPort declares a port. The signal must be exported.
func (m *Module) AddPort(s *Signal) (*Signal, error) {
	if !s.IsPort() {
		return nil, cerr.Configf("module %s: signal %s is not a port; use Input/Output/Inout/Port", m.name, s.Name())
	}
	if err := m.checkName(s.Name()); err != nil {
		return nil, err
	}
	m.ports.Store(s.Name(), s)
	return s, nil
}

// AddSignal declares an internal signal.
func (m *Module) AddSignal(s *Signal) (*Signal, error) {
	if s.IsPort() {
		return nil, cerr.Configf("module %s: port %s added as internal signal; use AddPort", m.name, s.Name())
	}
	if err := m.checkName(s.Name()); err != nil {
		return nil, err
	}
	m.signals.Store(s.Name(), s)
	return s, nil
}

// AddInstance declares a named instance.
func (m *Module) AddInstance(i *Instance) (*Instance, error) {
	if err := m.checkName(i.Name()); err != nil {
		return nil, err
	}
	m.instances.Store(i.Name(), i)
	return i, nil
}

// MustAddPort is AddPort, panicking on error. For builder-style authoring.
func (m *Module) MustAddPort(s *Signal) *Signal {
	p, err := m.AddPort(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MustAddSignal is AddSignal, panicking on error.
func (m *Module) MustAddSignal(s *Signal) *Signal {
	sig, err := m.AddSignal(s)
	if err != nil {
		panic(err)
	}
	return sig
}

// MustAddInstance is AddInstance, panicking on error.
func (m *Module) MustAddInstance(i *Instance) *Instance {
	inst, err := m.AddInstance(i)
	if err != nil {
		panic(err)
	}
	return inst
}

// Port returns a port by name.
func (m *Module) Port(name string) (*Signal, bool) { return m.ports.Load(name) }

// Signal returns an internal signal by name.
func (m *Module) Signal(name string) (*Signal, bool) { return m.signals.Load(name) }

// Instance returns an instance by name.
func (m *Module) Instance(name string) (*Instance, bool) { return m.instances.Load(name) }

// Ports iterates ports in declaration order.
func (m *Module) Ports() func(func(string, *Signal) bool) { return m.ports.Iter() }

// Signals iterates internal signals in declaration order.
func (m *Module) Signals() func(func(string, *Signal) bool) { return m.signals.Iter() }

// Instances iterates instances in declaration order.
func (m *Module) Instances() func(func(string, *Instance) bool) { return m.instances.Iter() }

// NumPorts returns the number of ports.
func (m *Module) NumPorts() int { return m.ports.Size() }

// NumSignals returns the number of internal signals.
func (m *Module) NumSignals() int { return m.signals.Size() }

// NumInstances returns the number of instances.
func (m *Module) NumInstances() int { return m.instances.Size() }

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

import "fmt"

// PortDir is the direction of a port signal.
type PortDir int

const (
	// DirNone marks a signal with no declared direction.
	DirNone PortDir = iota
	// DirInput marks an input port.
	DirInput
	// DirOutput marks an output port.
	DirOutput
	// DirInout marks a bidirectional port.
	DirInout
)

// String returns the direction name.
func (d PortDir) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInout:
		return "inout"
	}
	return "none"
}

// Visibility distinguishes ports from internal signals.
type Visibility int

const (
	// Internal signals are visible only inside their module.
	Internal Visibility = iota
	// Exported signals are ports of their module.
	Exported
)

// Signal is a net or bus. A signal is owned by exactly one module and
// referenced, not owned, by instance connection maps.
type Signal struct {
	name  string
	width int
	vis   Visibility
	dir   PortDir
}

// NewSignal returns an internal signal.
func NewSignal(name string, width int) *Signal {
	if width < 1 {
		width = 1
	}
	return &Signal{name: name, width: width, vis: Internal, dir: DirNone}
}

// Input returns an input-port signal.
func Input(name string, width int) *Signal {
	s := NewSignal(name, width)
	s.vis, s.dir = Exported, DirInput
	return s
}

// Output returns an output-port signal.
func Output(name string, width int) *Signal {
	s := NewSignal(name, width)
	s.vis, s.dir = Exported, DirOutput
	return s
}

// Inout returns a bidirectional port signal.
func Inout(name string, width int) *Signal {
	s := NewSignal(name, width)
	s.vis, s.dir = Exported, DirInout
	return s
}

// Port returns a direction-less port signal.
func Port(name string, width int) *Signal {
	s := NewSignal(name, width)
	s.vis = Exported
	return s
}

// Name returns the signal name.
func (s *Signal) Name() string { return s.name }

// Width returns the bus width.
func (s *Signal) Width() int { return s.width }

// Visibility returns whether the signal is a port.
func (s *Signal) Visibility() Visibility { return s.vis }

// Dir returns the port direction.
func (s *Signal) Dir() PortDir { return s.dir }

// IsPort reports whether the signal is exported as a port.
func (s *Signal) IsPort() bool { return s.vis == Exported }

// WithName returns a copy of the signal under a new name.
// Used by the flattening engine to path-qualify hoisted signals.
func (s *Signal) WithName(name string) *Signal {
	c := *s
	c.name = name
	return &c
}

// AsInternal returns a copy demoted to an internal signal.
func (s *Signal) AsInternal() *Signal {
	c := *s
	c.vis, c.dir = Internal, DirNone
	return &c
}

// String describes the signal.
func (s *Signal) String() string {
	if s.IsPort() {
		return fmt.Sprintf("port %s(width=%d, %s)", s.name, s.width, s.dir)
	}
	return fmt.Sprintf("signal %s(width=%d)", s.name, s.width)
}

func (s *Signal) connNode() {}

// Conn is a connection-map entry: either a *Signal or a PortRef.
type Conn interface {
	connNode()
}

// PortRef is a symbolic forward reference to (instance-name, port-name),
// used to connect to an instance whose target is not yet resolved. PortRefs
// are resolved by ResolvePortRefs in a pass separate from elaboration.
type PortRef struct {
	Inst string
	Port string
}

func (PortRef) connNode() {}

// String describes the reference.
func (r PortRef) String() string { return r.Inst + "." + r.Port }

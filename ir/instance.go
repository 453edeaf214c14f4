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

import (
	"github.com/hdl-org/hdl/base/ordered"
	"github.com/hdl-org/hdl/cerr"
)

// Instance references an Instantiable target with a named connection map.
// Elaboration and technology walkers rewrite the target in place.
type Instance struct {
	name   string
	target Instantiable
	conns  *ordered.Map[string, Conn]
	closed bool
}

// NewInstance returns an instance of a target, checking the target against
// the Instantiable union with full diagnostics.
func NewInstance(name string, target any) (*Instance, error) {
	t, err := AsInstantiable(target)
	if err != nil {
		return nil, cerr.InPath(err, "instance "+name)
	}
	return &Instance{name: name, target: t, conns: ordered.NewMap[string, Conn]()}, nil
}

// MustInstance is NewInstance, panicking on error.
func MustInstance(name string, target any) *Instance {
	i, err := NewInstance(name, target)
	if err != nil {
		panic(err)
	}
	return i
}

// Name returns the instance name.
func (i *Instance) Name() string { return i.name }

// Target returns the instantiated target.
func (i *Instance) Target() Instantiable { return i.target }

// SetTarget rebinds the target. Elaboration replaces generator calls with
// their modules; technology walkers replace primitives with external calls.
func (i *Instance) SetTarget(t Instantiable) { i.target = t }

// Connect binds one of the target's ports to a signal or port reference.
// Reconnecting a port overwrites the previous binding.
func (i *Instance) Connect(port string, c Conn) *Instance {
	i.conns.Store(port, c)
	return i
}

// Conn returns the connection bound to a port.
func (i *Instance) Conn(port string) (Conn, bool) {
	return i.conns.Load(port)
}

// Conns iterates the connection map in binding order.
func (i *Instance) Conns() func(func(string, Conn) bool) {
	return i.conns.Iter()
}

// NumConns returns the number of bound ports.
func (i *Instance) NumConns() int { return i.conns.Size() }

// Closed reports whether elaboration has visited this instance. Connection
// resolution never re-triggers elaboration on a closed instance.
func (i *Instance) Closed() bool { return i.closed }

// Close marks the instance as visited by elaboration.
func (i *Instance) Close() { i.closed = true }

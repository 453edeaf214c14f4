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

// Package pdk defines the process-technology backend interface and a
// registry of installed backends.
//
// A Registry is an owned value: build tools construct one, register the
// technologies they link in, and hand it to the compilation driver. Nothing
// here is process-global, so two drivers with different technology sets can
// coexist in one binary.
package pdk

import (
	"strings"

	"github.com/hdl-org/hdl/base/ordered"
	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/ir"
)

// PDK is a process-technology backend. Compile rewrites a generic elaborated
// module in place, substituting technology-specific devices for generic
// primitives, and returns the module it was given.
type PDK interface {
	// Name returns the technology's registry name.
	Name() string
	// Compile substitutes technology devices into the module's hierarchy.
	Compile(m *ir.Module) (*ir.Module, error)
}

// Registry holds the installed technologies of one compilation driver.
// The zero value is not usable; construct with NewRegistry.
type Registry struct {
	pdks       *ordered.Map[string, PDK]
	defaultPDK PDK
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pdks: ordered.NewMap[string, PDK]()}
}

// Register installs a technology under its own name. Re-registering the same
// value is a no-op; a different value under an installed name is a conflict.
func (r *Registry) Register(p PDK) error {
	if p == nil {
		return cerr.Configf("register nil technology")
	}
	name := p.Name()
	if name == "" {
		return cerr.Configf("register technology %T with empty name", p)
	}
	if prev, ok := r.pdks.Load(name); ok {
		if prev == p {
			return nil
		}
		return cerr.Configf("technology %s registered twice with different values", name)
	}
	r.pdks.Store(name, p)
	return nil
}

// MustRegister is Register, panicking on error.
func (r *Registry) MustRegister(p PDK) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// SetDefault marks a technology as the registry default, registering it if
// needed.
func (r *Registry) SetDefault(p PDK) error {
	if err := r.Register(p); err != nil {
		return err
	}
	r.defaultPDK = p
	return nil
}

// Names returns the installed technology names in registration order.
func (r *Registry) Names() []string {
	var names []string
	for name := range r.pdks.Keys() {
		names = append(names, name)
	}
	return names
}

// Lookup returns an installed technology by name.
func (r *Registry) Lookup(name string) (PDK, error) {
	p, ok := r.pdks.Load(name)
	if !ok {
		return nil, cerr.Resolutionf(
			"no technology %q registered (installed: %s)", name, r.nameList())
	}
	return p, nil
}

// Default returns the default technology: the one set by SetDefault, or the
// sole registrant. With zero or several candidates and no explicit default,
// there is no well-defined choice.
func (r *Registry) Default() (PDK, error) {
	if r.defaultPDK != nil {
		return r.defaultPDK, nil
	}
	switch r.pdks.Size() {
	case 0:
		return nil, cerr.Configf("no technology registered")
	case 1:
		for _, p := range r.pdks.Iter() {
			return p, nil
		}
	}
	return nil, cerr.Configf(
		"no default among %d registered technologies (installed: %s)",
		r.pdks.Size(), r.nameList())
}

// Compile rewrites the module with the named technology, or the default when
// name is empty.
func (r *Registry) Compile(m *ir.Module, name string) (*ir.Module, error) {
	var p PDK
	var err error
	if name == "" {
		p, err = r.Default()
	} else {
		p, err = r.Lookup(name)
	}
	if err != nil {
		return nil, err
	}
	return p.Compile(m)
}

func (r *Registry) nameList() string {
	names := r.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

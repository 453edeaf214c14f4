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
	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/params"
)

// ExternalModule declares a foreign, typically technology-specific, leaf
// device: a name in a domain, a port list, and a parameter spec. Backends
// declare these, often lazily, one per unique device choice.
type ExternalModule struct {
	domain string
	name   string
	desc   string
	ports  []string
	spec   *params.Spec
}

// NewExternalModule declares an external module.
func NewExternalModule(domain, name, desc string, ports []string, spec *params.Spec) (*ExternalModule, error) {
	if name == "" {
		return nil, cerr.Configf("external module in domain %q: empty name", domain)
	}
	if len(ports) == 0 {
		return nil, cerr.Configf("external module %s: no ports", name)
	}
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		if p == "" || seen[p] {
			return nil, cerr.Configf("external module %s: invalid or duplicate port %q", name, p)
		}
		seen[p] = true
	}
	if spec == nil {
		spec = params.Empty
	}
	return &ExternalModule{domain: domain, name: name, desc: desc, ports: ports, spec: spec}, nil
}

// MustExternalModule is NewExternalModule, panicking on error.
func MustExternalModule(domain, name, desc string, ports []string, spec *params.Spec) *ExternalModule {
	e, err := NewExternalModule(domain, name, desc, ports, spec)
	if err != nil {
		panic(err)
	}
	return e
}

// Domain returns the technology or tool domain.
func (e *ExternalModule) Domain() string { return e.domain }

// Name returns the module name within its domain.
func (e *ExternalModule) Name() string { return e.name }

// DefName implements Definition for diagnostics.
func (e *ExternalModule) DefName() string { return e.name }

// Desc returns the module description.
func (e *ExternalModule) Desc() string { return e.desc }

// Ports returns a copy of the port names, in declaration order.
func (e *ExternalModule) Ports() []string {
	out := make([]string, len(e.ports))
	copy(out, e.ports)
	return out
}

// Params returns the parameter spec.
func (e *ExternalModule) Params() *params.Spec { return e.spec }

// QualPath returns the domain-qualified module path.
func (e *ExternalModule) QualPath() string {
	if e.domain == "" {
		return e.name
	}
	return e.domain + "." + e.name
}

// Call type-checks a parameter record and returns the external-module call.
func (e *ExternalModule) Call(rec *params.Record) (*ExternalModuleCall, error) {
	if rec == nil {
		var err error
		if rec, err = e.spec.New(nil); err != nil {
			return nil, cerr.InPath(err, "external module "+e.QualPath())
		}
	}
	if rec.Spec() != e.spec {
		return nil, cerr.TypeMismatchf(
			"external module %s requires %s parameters, got %s",
			e.QualPath(), e.spec.Name(), rec.Spec().Name())
	}
	return &ExternalModuleCall{module: e, params: rec}, nil
}

// MustCall is Call, panicking on error.
func (e *ExternalModule) MustCall(rec *params.Record) *ExternalModuleCall {
	c, err := e.Call(rec)
	if err != nil {
		panic(err)
	}
	return c
}

// ExternalModuleCall is an external module with concrete parameters,
// instantiable as a leaf of the hierarchy.
type ExternalModuleCall struct {
	module *ExternalModule
	params *params.Record
}

// Module returns the called external module.
func (c *ExternalModuleCall) Module() *ExternalModule { return c.module }

// Params returns the concrete parameter record.
func (c *ExternalModuleCall) Params() *params.Record { return c.params }

// Kind returns KindExternalModuleCall.
func (c *ExternalModuleCall) Kind() Kind { return KindExternalModuleCall }

// QualPath returns the called module's domain-qualified path.
func (c *ExternalModuleCall) QualPath() string { return c.module.QualPath() }

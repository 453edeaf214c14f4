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

package elab

import (
	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/ir"
	"github.com/hdl-org/hdl/params"
)

// Func is a generator function: a pure function from a parameter record to a
// module. It may return another generator call, which elaboration unwinds.
//
// Purity is a caller obligation: a generator reading outside mutable state
// breaks memoization in ways this package cannot detect.
type Func func(p *params.Record) (ir.Instantiable, error)

// CtxFunc is a generator function that also consumes the shared elaboration
// context.
type CtxFunc func(ctx *Context, p *params.Record) (ir.Instantiable, error)

// Generator wraps a generator function with its declared parameter spec.
// Generators are declared once at load time; identity is equality.
type Generator struct {
	name    string
	spec    *params.Spec
	fn      Func
	ctxFn   CtxFunc
	defPath string
}

// NewGenerator declares a generator.
func NewGenerator(name string, spec *params.Spec, fn Func) (*Generator, error) {
	if name == "" {
		return nil, cerr.Configf("generator with empty name")
	}
	if spec == nil {
		return nil, cerr.Configf("generator %s: nil parameter spec (use params.Empty for none)", name)
	}
	if fn == nil {
		return nil, cerr.Configf("generator %s: nil function", name)
	}
	return &Generator{name: name, spec: spec, fn: fn}, nil
}

// NewContextGenerator declares a generator that consumes the elaboration
// context.
func NewContextGenerator(name string, spec *params.Spec, fn CtxFunc) (*Generator, error) {
	if name == "" {
		return nil, cerr.Configf("generator with empty name")
	}
	if spec == nil {
		return nil, cerr.Configf("generator %s: nil parameter spec (use params.Empty for none)", name)
	}
	if fn == nil {
		return nil, cerr.Configf("generator %s: nil function", name)
	}
	return &Generator{name: name, spec: spec, ctxFn: fn}, nil
}

// MustGenerator is NewGenerator, panicking on error. For package-level
// generator declarations.
func MustGenerator(name string, spec *params.Spec, fn Func) *Generator {
	g, err := NewGenerator(name, spec, fn)
	if err != nil {
		panic(err)
	}
	return g
}

// MustContextGenerator is NewContextGenerator, panicking on error.
func MustContextGenerator(name string, spec *params.Spec, fn CtxFunc) *Generator {
	g, err := NewContextGenerator(name, spec, fn)
	if err != nil {
		panic(err)
	}
	return g
}

// Name returns the declared generator name.
func (g *Generator) Name() string { return g.name }

// DefName implements ir.Definition for diagnostics.
func (g *Generator) DefName() string { return g.name }

// Params returns the declared parameter spec.
func (g *Generator) Params() *params.Spec { return g.spec }

// UsesContext reports whether the generator consumes the shared context.
func (g *Generator) UsesContext() bool { return g.ctxFn != nil }

// DefPath returns the defining-context path used for qualified naming.
func (g *Generator) DefPath() string { return g.defPath }

// SetDefPath records the defining context, e.g. a library path.
func (g *Generator) SetDefPath(path string) { g.defPath = path }

// QualPath returns the generator's path-qualified name.
func (g *Generator) QualPath() string {
	if g.defPath == "" {
		return g.name
	}
	return g.defPath + "." + g.name
}

// Call defers an invocation of the generator with concrete parameters.
// The parameters are type-checked by elaboration; a nil record takes the
// spec's defaults.
func (g *Generator) Call(p *params.Record) *GeneratorCall {
	return &GeneratorCall{gen: g, params: p}
}

// GeneratorCall is a deferred generator invocation: generator identity plus
// parameter value. Elaboration replaces every call with its module, and
// memoizes so equal calls share one result within a run.
type GeneratorCall struct {
	gen    *Generator
	params *params.Record
	result *ir.Module
}

// Generator returns the called generator.
func (c *GeneratorCall) Generator() *Generator { return c.gen }

// Params returns the call's parameter record.
func (c *GeneratorCall) Params() *params.Record { return c.params }

// Result returns the elaborated module, nil before elaboration.
func (c *GeneratorCall) Result() *ir.Module { return c.result }

// Kind returns ir.KindGeneratorCall.
func (c *GeneratorCall) Kind() ir.Kind { return ir.KindGeneratorCall }

// Name returns the call name: the generator's name, suffixed with the
// parameters' unique name when the generator takes parameters.
func (c *GeneratorCall) Name() string {
	name := c.gen.name
	if c.gen.spec.HasParams() && c.params != nil {
		u, err := params.UniqueName(c.params)
		if err != nil {
			u = "<invalid params>"
		}
		name += "(" + u + ")"
	}
	return name
}

// QualPath returns the call's path-qualified name.
func (c *GeneratorCall) QualPath() string {
	if c.gen.defPath == "" {
		return c.Name()
	}
	return c.gen.defPath + "." + c.Name()
}

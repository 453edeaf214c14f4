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

// Package elab expands parameterized circuit generators into concrete,
// memoized, deterministically-named modules.
//
// One Elaborate call is one run: a single call stack owning its memo table
// and diagnostic stack. Re-elaborating the same generator and parameters
// within a run returns the same module object; re-running the whole pipeline
// on identical input produces byte-identical names.
package elab

import (
	"fmt"
	"strings"

	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/ir"
	"github.com/hdl-org/hdl/params"
	"github.com/pkg/errors"
)

// DefaultMaxDepth bounds generator nesting: a generator returning generator
// calls deeper than this fails rather than overflowing the stack.
const DefaultMaxDepth = 512

// Option configures an elaboration run.
type Option func(*Elaborator)

// WithParams supplies the parameter record for a *Generator top.
func WithParams(p *params.Record) Option {
	return func(e *Elaborator) { e.topParams = p }
}

// WithContext supplies the shared context handed to context-declaring
// generators.
func WithContext(ctx *Context) Option {
	return func(e *Elaborator) { e.ctx = ctx }
}

// WithMaxDepth bounds generator-nesting depth.
func WithMaxDepth(n int) Option {
	return func(e *Elaborator) { e.maxDepth = n }
}

type memoKey struct {
	gen    *Generator
	digest string
}

// Elaborator is the state of one elaboration run: the memo table keyed by
// (generator identity, canonical parameter digest), the module visit set,
// and the diagnostic stack. It is owned by exactly one run and never shared.
type Elaborator struct {
	memo      map[memoKey]*ir.Module
	done      map[*ir.Module]bool
	stack     []string
	ctx       *Context
	maxDepth  int
	topParams *params.Record
}

// Elaborate expands every generator call reachable from top, returning the
// top module. Accepted tops: *ir.Module, *Generator (with WithParams or the
// generator's defaults), or *GeneratorCall. Anything else fails before any
// work begins.
func Elaborate(top any, opts ...Option) (*ir.Module, error) {
	e := &Elaborator{
		memo:     make(map[memoKey]*ir.Module),
		done:     make(map[*ir.Module]bool),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ctx == nil {
		e.ctx = NewContext()
	}
	switch t := top.(type) {
	case *ir.Module:
		if e.topParams != nil {
			return nil, cerr.Configf("WithParams requires a Generator top, got a Module")
		}
		if err := e.elabModule(t); err != nil {
			return nil, err
		}
		return t, nil
	case *GeneratorCall:
		if e.topParams != nil {
			return nil, cerr.Configf("WithParams requires a Generator top, got a GeneratorCall")
		}
		return e.elabGeneratorCall(t, 0)
	case *Generator:
		return e.elabGeneratorCall(t.Call(e.topParams), 0)
	case nil:
		return nil, cerr.Configf("invalid elaboration top: nil")
	default:
		return nil, cerr.Configf(
			"invalid elaboration top %T: must be a Module, Generator, or GeneratorCall", top)
	}
}

// Context returns the run's shared context.
func (e *Elaborator) Context() *Context { return e.ctx }

func (e *Elaborator) push(frame string) { e.stack = append(e.stack, frame) }

func (e *Elaborator) pop() { e.stack = e.stack[:len(e.stack)-1] }

func (e *Elaborator) elabModule(m *ir.Module) error {
	if e.done[m] {
		return nil
	}
	if m.Name() == "" {
		return cerr.Configf("anonymous module cannot be elaborated (did you forget to name it?)")
	}
	e.done[m] = true
	e.push("module " + m.Name())
	defer e.pop()
	for _, inst := range m.Instances() {
		if err := e.elabInstance(inst); err != nil {
			return cerr.InPath(err, "module "+m.Name())
		}
	}
	return nil
}

func (e *Elaborator) elabInstance(inst *ir.Instance) error {
	// Close before descending: connection resolution on a closed instance
	// never re-triggers elaboration.
	inst.Close()
	err := func() error {
		switch t := inst.Target().(type) {
		case *ir.Module:
			return e.elabModule(t)
		case *GeneratorCall:
			m, err := e.elabGeneratorCall(t, 0)
			if err != nil {
				return err
			}
			inst.SetTarget(m)
			return nil
		case *ir.PrimitiveCall, *ir.ExternalModuleCall:
			return nil
		case nil:
			return cerr.Configf("instance %s has no target", inst.Name())
		default:
			return cerr.TypeMismatchf("instance %s targets invalid %T", inst.Name(), t)
		}
	}()
	if err != nil {
		return cerr.InPath(err, "instance "+inst.Name())
	}
	return nil
}

func (e *Elaborator) elabGeneratorCall(call *GeneratorCall, depth int) (*ir.Module, error) {
	gen := call.gen

	// Normalize parameters first so the memo key is well-defined.
	if call.params == nil {
		p, err := gen.spec.New(nil)
		if err != nil {
			return nil, cerr.InPath(err, "generator "+gen.name)
		}
		call.params = p
	}
	if call.params.Spec() != gen.spec {
		return nil, cerr.TypeMismatchf(
			"invalid call to generator %s: %s parameters required, got %s",
			gen.QualPath(), gen.spec.Name(), call.params.Spec().Name())
	}
	digest, err := params.Digest(call.params)
	if err != nil {
		return nil, cerr.InPath(err, "generator "+gen.name)
	}

	// Memoization: equal generator and parameter value share one module. A
	// call carrying a different direct result is an internal bug, never
	// user-recoverable.
	key := memoKey{gen: gen, digest: digest}
	if cached, ok := e.memo[key]; ok {
		if call.result != nil && call.result != cached {
			return nil, cerr.Consistencyf(
				"generator call %s has two results: %s and %s",
				call.Name(), call.result.Name(), cached.Name())
		}
		call.result = cached
		return cached, nil
	}

	if depth > e.maxDepth {
		return nil, cerr.Configf(
			"generator %s did not terminate: %d nested generator calls (limit configurable via WithMaxDepth); call stack: %s",
			gen.QualPath(), depth, strings.Join(e.stack, " / "))
	}

	e.push("generator " + call.Name())
	defer e.pop()

	res, err := e.invoke(call)
	if err != nil {
		return nil, cerr.InPath(err, "generator "+call.Name())
	}

	var m *ir.Module
	switch r := res.(type) {
	case *ir.Module:
		m = r
	case *GeneratorCall:
		// Nested generators unwind until a module is produced.
		if m, err = e.elabGeneratorCall(r, depth+1); err != nil {
			return nil, cerr.InPath(err, "generator "+call.Name())
		}
	case nil:
		return nil, cerr.TypeMismatchf(
			"generator %s returned nil, must return a Module", gen.QualPath())
	default:
		return nil, cerr.TypeMismatchf(
			"generator %s returned %T, must return a Module", gen.QualPath(), res)
	}

	// Name anonymous results after the generator, disambiguating distinct
	// parameterizations. A generator that names its result keeps that name.
	if m.Name() == "" {
		name := gen.name
		if gen.spec.HasParams() {
			u, err := params.UniqueName(call.params)
			if err != nil {
				return nil, cerr.InPath(err, "generator "+gen.name)
			}
			name += "(" + u + ")"
		}
		m.SetName(name)
	}
	if m.DefPath() == "" {
		m.SetDefPath(gen.defPath)
	}

	// Store before recursing so diamond-shaped hierarchies share the result.
	call.result = m
	e.memo[key] = m

	if err := e.elabModule(m); err != nil {
		return nil, cerr.InPath(err, "generator "+call.Name())
	}
	return m, nil
}

// invoke runs the generator function, converting panics and returned errors
// into generator errors carrying the call identity and parameters.
func (e *Elaborator) invoke(call *GeneratorCall) (res ir.Instantiable, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = cerr.User(errors.Errorf("panic: %v", r), "generator %s%s",
				call.gen.QualPath(), e.paramNote(call))
		}
	}()
	if call.gen.ctxFn != nil {
		res, err = call.gen.ctxFn(e.ctx, call.params)
	} else {
		res, err = call.gen.fn(call.params)
	}
	if err != nil {
		return nil, cerr.User(err, "generator %s%s", call.gen.QualPath(), e.paramNote(call))
	}
	return res, nil
}

func (e *Elaborator) paramNote(call *GeneratorCall) string {
	if !call.gen.spec.HasParams() {
		return ""
	}
	u, err := params.UniqueName(call.params)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" (params %s)", u)
}

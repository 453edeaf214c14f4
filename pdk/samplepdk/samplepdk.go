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

// Package samplepdk is a demonstration process technology. It substitutes
// generic transistors, resistors, capacitors, and diodes with its own
// external modules, and documents the shape every real technology backend
// follows: a device table keyed by generic device attributes, lazily-declared
// external modules, and size defaults scaled per installation.
package samplepdk

import (
	"fmt"
	"strings"

	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/ir"
	"github.com/hdl-org/hdl/params"
	"github.com/hdl-org/hdl/pdk"
	"github.com/hdl-org/hdl/walk"
)

// Domain is the technology's module domain and registry name.
const Domain = "sample"

// SampleMosParams parameterizes the technology's transistor models:
// sized in foundry resolution units, multiplied by fingers.
var SampleMosParams = params.MustSpec("SampleMosParams",
	params.Field{Name: "w", Type: params.Int(), Desc: "Width in resolution units"},
	params.Field{Name: "l", Type: params.Int(), Desc: "Length in resolution units"},
	params.Field{Name: "nf", Type: params.Int(), Desc: "Number of fingers", Default: 1},
)

// SampleResistorParams parameterizes the technology's resistor model.
var SampleResistorParams = params.MustSpec("SampleResistorParams",
	params.Field{Name: "w", Type: params.Int(), Desc: "Width in resolution units"},
	params.Field{Name: "l", Type: params.Int(), Desc: "Length in resolution units"},
)

// SampleCapacitorParams parameterizes the technology's capacitor model.
var SampleCapacitorParams = params.MustSpec("SampleCapacitorParams",
	params.Field{Name: "w", Type: params.Int(), Desc: "Width in resolution units"},
	params.Field{Name: "l", Type: params.Int(), Desc: "Length in resolution units"},
)

// SampleDiodeParams parameterizes the technology's diode model.
var SampleDiodeParams = params.MustSpec("SampleDiodeParams",
	params.Field{Name: "w", Type: params.Int(), Desc: "Width in resolution units"},
	params.Field{Name: "l", Type: params.Int(), Desc: "Length in resolution units"},
)

// mosKey is the device-selection key: the generic transistor attributes a
// technology discriminates on.
type mosKey struct {
	tp     string
	family string
	vth    string
}

func (k mosKey) String() string {
	return fmt.Sprintf("tp=%s, family=%s, vth=%s", k.tp, k.family, k.vth)
}

type mosEntry struct {
	key  mosKey
	name string
}

// sizeDefaults are the per-model drawn dimensions applied when a generic
// device leaves w or l unset, before installation scaling.
type sizeDefaults struct {
	w, l int64
}

// Tech is the technology backend. One Tech serves many compilations; the
// per-run state lives in the converter.
type Tech struct {
	install *Install
	mos     []mosEntry
	sizes   map[string]sizeDefaults
	modules map[string]*ir.ExternalModule
}

// New returns the technology over an installation, with the built-in device
// table. A nil install takes the defaults.
func New(install *Install) *Tech {
	if install == nil {
		install = DefaultInstall()
	}
	return &Tech{
		install: install,
		mos: []mosEntry{
			{mosKey{ir.MosNMOS, ir.FamilyCore, ir.VthStd}, "sample_nmos"},
			{mosKey{ir.MosPMOS, ir.FamilyCore, ir.VthStd}, "sample_pmos"},
			{mosKey{ir.MosNMOS, ir.FamilyCore, ir.VthLow}, "sample_nmos_lvt"},
			{mosKey{ir.MosPMOS, ir.FamilyCore, ir.VthLow}, "sample_pmos_lvt"},
			{mosKey{ir.MosNMOS, ir.FamilyIO, ir.VthStd}, "sample_nmos_io"},
			{mosKey{ir.MosPMOS, ir.FamilyIO, ir.VthStd}, "sample_pmos_io"},
		},
		sizes: map[string]sizeDefaults{
			"sample_nmos_io": {w: 2000, l: 500},
			"sample_pmos_io": {w: 2000, l: 500},
		},
		modules: make(map[string]*ir.ExternalModule),
	}
}

// Name returns the registry name.
func (t *Tech) Name() string { return Domain }

// Install returns the site installation.
func (t *Tech) Install() *Install { return t.install }

// RegisterMos adds a transistor model under a device-selection key.
// Several models under one key make that key's choice ill-defined, which
// compilation reports when a device requires it.
func (t *Tech) RegisterMos(tp, family, vth, name string) {
	t.mos = append(t.mos, mosEntry{mosKey{tp: tp, family: family, vth: vth}, name})
}

// Register installs the technology into a registry.
func (t *Tech) Register(r *pdk.Registry) error { return r.Register(t) }

// Compile substitutes technology devices throughout the module's hierarchy,
// in place, returning the module.
func (t *Tech) Compile(m *ir.Module) (*ir.Module, error) {
	c := &converter{tech: t, calls: make(map[string]*ir.ExternalModuleCall)}
	if err := walk.New(c).Walk(m); err != nil {
		return nil, cerr.InPath(err, "technology "+Domain)
	}
	return m, nil
}

// mosModuleName selects the transistor model for a generic parameter record:
// an explicit model name wins, else the device table must hold exactly one
// entry for the record's selection key.
func (t *Tech) mosModuleName(p *params.Record) (string, error) {
	if model, ok := p.GetString("model"); ok && model != "" {
		return model, nil
	}
	tp, _ := p.GetString("tp")
	family, _ := p.GetString("family")
	vth, _ := p.GetString("vth")
	key := mosKey{tp: tp, family: family, vth: vth}
	var matches []string
	for _, e := range t.mos {
		if e.key == key {
			matches = append(matches, e.name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", cerr.Resolutionf("no mos module for (%s)", key)
	default:
		return "", cerr.Resolutionf(
			"mos module choice not well-defined given (%s): candidates %s",
			key, strings.Join(matches, ", "))
	}
}

// module lazily declares the external module for a model name. Every call
// for one name shares one declaration, so substituted instances compare
// equal by target identity.
func (t *Tech) module(name string, ports []string, spec *params.Spec) (*ir.ExternalModule, error) {
	if m, ok := t.modules[name]; ok {
		return m, nil
	}
	m, err := ir.NewExternalModule(Domain, name, "", ports, spec)
	if err != nil {
		return nil, err
	}
	t.modules[name] = m
	return m, nil
}

// size resolves a drawn dimension: the generic value when set, else the
// model's default, scaled by the installation.
func (t *Tech) size(p *params.Record, field, model string, fallback int64) int64 {
	v, ok := p.GetInt(field)
	if !ok {
		if d, has := t.sizes[model]; has {
			switch field {
			case "w":
				v = d.w
			case "l":
				v = d.l
			}
		}
		if v == 0 {
			v = fallback
		}
	}
	return v * t.install.SizeScale
}

// converter is the per-compilation walker visitor. Calls are cached by
// device and generic parameter digest, so equal generic leaves share one
// substituted call object.
type converter struct {
	walk.Passthrough
	tech  *Tech
	calls map[string]*ir.ExternalModuleCall
}

// VisitPrimitiveCall substitutes a technology device for a generic one.
// Devices the technology has no model for pass through unchanged.
func (c *converter) VisitPrimitiveCall(call *ir.PrimitiveCall) (ir.Instantiable, error) {
	switch call.Prim().PrimKind() {
	case ir.MosKind:
		return c.convert(call, c.mos)
	case ir.ResistorKind:
		return c.convert(call, c.twoTerminal("sample_res", SampleResistorParams))
	case ir.CapacitorKind:
		return c.convert(call, c.twoTerminal("sample_cap", SampleCapacitorParams))
	case ir.DiodeKind:
		return c.convert(call, c.twoTerminal("sample_diode", SampleDiodeParams))
	default:
		return call, nil
	}
}

// convert runs one cached device substitution.
func (c *converter) convert(call *ir.PrimitiveCall, f func(*ir.PrimitiveCall) (*ir.ExternalModuleCall, error)) (ir.Instantiable, error) {
	digest, err := params.Digest(call.Params())
	if err != nil {
		return nil, err
	}
	key := call.Prim().Name() + ":" + digest
	if cached, ok := c.calls[key]; ok {
		return cached, nil
	}
	out, err := f(call)
	if err != nil {
		return nil, cerr.InPath(err, "primitive "+call.Prim().Name())
	}
	c.calls[key] = out
	return out, nil
}

func (c *converter) mos(call *ir.PrimitiveCall) (*ir.ExternalModuleCall, error) {
	p := call.Params()
	name, err := c.tech.mosModuleName(p)
	if err != nil {
		return nil, err
	}
	if nser, ok := p.GetInt("nser"); ok && nser != 1 {
		return nil, cerr.Configf("series stacking (nser=%d) is not supported", nser)
	}
	nf, ok := p.GetInt("npar")
	if !ok {
		nf = 1
	}
	mod, err := c.tech.module(name, []string{"d", "g", "s", "b"}, SampleMosParams)
	if err != nil {
		return nil, err
	}
	rec, err := SampleMosParams.New(map[string]any{
		"w":  c.tech.size(p, "w", name, 1000),
		"l":  c.tech.size(p, "l", name, 150),
		"nf": nf,
	})
	if err != nil {
		return nil, err
	}
	return mod.Call(rec)
}

// twoTerminal builds the substitution for the p/n devices, which share one
// parameter shape.
func (c *converter) twoTerminal(name string, spec *params.Spec) func(*ir.PrimitiveCall) (*ir.ExternalModuleCall, error) {
	return func(call *ir.PrimitiveCall) (*ir.ExternalModuleCall, error) {
		p := call.Params()
		if model, ok := p.GetString("model"); ok && model != "" {
			name = model
		}
		mod, err := c.tech.module(name, []string{"p", "n"}, spec)
		if err != nil {
			return nil, err
		}
		rec, err := spec.New(map[string]any{
			"w": c.tech.size(p, "w", name, 1000),
			"l": c.tech.size(p, "l", name, 1000),
		})
		if err != nil {
			return nil, err
		}
		return mod.Call(rec)
	}
}

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

// PrimitiveKind enumerates the built-in, technology-independent leaf devices.
type PrimitiveKind int

const (
	// MosKind is a MOS transistor.
	MosKind PrimitiveKind = iota
	// ResistorKind is a resistor.
	ResistorKind
	// CapacitorKind is a capacitor.
	CapacitorKind
	// InductorKind is an inductor.
	InductorKind
	// DiodeKind is a diode.
	DiodeKind
	// ShortKind is a short-circuit tie between two signals.
	ShortKind
)

// Primitive is a built-in leaf device declaration. The set is closed;
// technology backends substitute primitives with their own external modules.
type Primitive struct {
	kind  PrimitiveKind
	name  string
	ports []string
	spec  *params.Spec
	desc  string
}

// PrimKind returns the device kind.
func (p *Primitive) PrimKind() PrimitiveKind { return p.kind }

// Name returns the flat builtin name.
func (p *Primitive) Name() string { return p.name }

// DefName implements Definition for diagnostics.
func (p *Primitive) DefName() string { return p.name }

// Ports returns a copy of the port names, in declaration order.
func (p *Primitive) Ports() []string {
	out := make([]string, len(p.ports))
	copy(out, p.ports)
	return out
}

// Params returns the generic parameter spec.
func (p *Primitive) Params() *params.Spec { return p.spec }

// Desc returns the device description.
func (p *Primitive) Desc() string { return p.desc }

// Call type-checks a parameter record and returns the primitive call.
func (p *Primitive) Call(rec *params.Record) (*PrimitiveCall, error) {
	if rec == nil {
		var err error
		if rec, err = p.spec.New(nil); err != nil {
			return nil, cerr.InPath(err, "primitive "+p.name)
		}
	}
	if rec.Spec() != p.spec {
		return nil, cerr.TypeMismatchf(
			"primitive %s requires %s parameters, got %s", p.name, p.spec.Name(), rec.Spec().Name())
	}
	return &PrimitiveCall{prim: p, params: rec}, nil
}

// MustCall is Call, panicking on error.
func (p *Primitive) MustCall(rec *params.Record) *PrimitiveCall {
	c, err := p.Call(rec)
	if err != nil {
		panic(err)
	}
	return c
}

// PrimitiveCall is a primitive with concrete parameters, instantiable as a
// leaf of the hierarchy.
type PrimitiveCall struct {
	prim   *Primitive
	params *params.Record
}

// Prim returns the called primitive.
func (c *PrimitiveCall) Prim() *Primitive { return c.prim }

// Params returns the concrete parameter record.
func (c *PrimitiveCall) Params() *params.Record { return c.params }

// Kind returns KindPrimitiveCall.
func (c *PrimitiveCall) Kind() Kind { return KindPrimitiveCall }

// QualPath returns the primitive's flat builtin name: primitives belong to
// no defining context.
func (c *PrimitiveCall) QualPath() string { return c.prim.name }

// MOS enum values.
const (
	MosNMOS = "nmos"
	MosPMOS = "pmos"

	VthStd      = "std"
	VthLow      = "low"
	VthHigh     = "high"
	VthUltraLow = "ultra_low"

	FamilyCore = "core"
	FamilyIO   = "io"
	FamilyHVT  = "hvt"
)

// MosParams is the generic MOS transistor parameter spec.
var MosParams = params.MustSpec("MosParams",
	params.Field{Name: "w", Type: params.Optional(params.Int()), Desc: "Width in resolution units", Default: params.Nil},
	params.Field{Name: "l", Type: params.Optional(params.Int()), Desc: "Length in resolution units", Default: params.Nil},
	params.Field{Name: "nser", Type: params.Int(), Desc: "Number of series fingers", Default: 1},
	params.Field{Name: "npar", Type: params.Int(), Desc: "Number of parallel fingers", Default: 1},
	params.Field{Name: "tp", Type: params.Enum("MosType", MosNMOS, MosPMOS), Desc: "MOS type (NMOS/PMOS)", Default: MosNMOS},
	params.Field{Name: "vth", Type: params.Enum("MosVth", VthStd, VthLow, VthHigh, VthUltraLow), Desc: "Threshold voltage class", Default: VthStd},
	params.Field{Name: "family", Type: params.Enum("MosFamily", FamilyCore, FamilyIO, FamilyHVT), Desc: "Device family", Default: FamilyCore},
	params.Field{Name: "model", Type: params.Optional(params.String()), Desc: "Explicit technology model name", Default: params.Nil},
)

// ResistorParams is the generic resistor parameter spec.
var ResistorParams = params.MustSpec("ResistorParams",
	params.Field{Name: "r", Type: params.Optional(params.Float()), Desc: "Resistance (ohms)", Default: params.Nil},
	params.Field{Name: "w", Type: params.Optional(params.Int()), Desc: "Width in resolution units", Default: params.Nil},
	params.Field{Name: "l", Type: params.Optional(params.Int()), Desc: "Length in resolution units", Default: params.Nil},
	params.Field{Name: "model", Type: params.Optional(params.String()), Desc: "Explicit technology model name", Default: params.Nil},
)

// CapacitorParams is the generic capacitor parameter spec.
var CapacitorParams = params.MustSpec("CapacitorParams",
	params.Field{Name: "c", Type: params.Optional(params.Float()), Desc: "Capacitance (F)", Default: params.Nil},
	params.Field{Name: "w", Type: params.Optional(params.Int()), Desc: "Width in resolution units", Default: params.Nil},
	params.Field{Name: "l", Type: params.Optional(params.Int()), Desc: "Length in resolution units", Default: params.Nil},
	params.Field{Name: "model", Type: params.Optional(params.String()), Desc: "Explicit technology model name", Default: params.Nil},
)

// InductorParams is the generic inductor parameter spec.
var InductorParams = params.MustSpec("InductorParams",
	params.Field{Name: "l", Type: params.Optional(params.Float()), Desc: "Inductance (H)", Default: params.Nil},
	params.Field{Name: "model", Type: params.Optional(params.String()), Desc: "Explicit technology model name", Default: params.Nil},
)

// DiodeParams is the generic diode parameter spec.
var DiodeParams = params.MustSpec("DiodeParams",
	params.Field{Name: "w", Type: params.Optional(params.Int()), Desc: "Width in resolution units", Default: params.Nil},
	params.Field{Name: "l", Type: params.Optional(params.Int()), Desc: "Length in resolution units", Default: params.Nil},
	params.Field{Name: "model", Type: params.Optional(params.String()), Desc: "Explicit technology model name", Default: params.Nil},
)

// ShortParams is the generic short-circuit tie parameter spec.
var ShortParams = params.MustSpec("ShortParams",
	params.Field{Name: "layer", Type: params.Optional(params.Int()), Desc: "Metal layer", Default: params.Nil},
	params.Field{Name: "w", Type: params.Optional(params.Int()), Desc: "Width in resolution units", Default: params.Nil},
	params.Field{Name: "l", Type: params.Optional(params.Int()), Desc: "Length in resolution units", Default: params.Nil},
)

// The closed builtin device set.
var (
	// Mos is the generic MOS transistor: ports d, g, s, b.
	Mos = &Primitive{kind: MosKind, name: "Mos", ports: []string{"d", "g", "s", "b"}, spec: MosParams, desc: "MOS transistor"}
	// Resistor is the generic two-terminal resistor.
	Resistor = &Primitive{kind: ResistorKind, name: "Resistor", ports: []string{"p", "n"}, spec: ResistorParams, desc: "Resistor"}
	// Capacitor is the generic two-terminal capacitor.
	Capacitor = &Primitive{kind: CapacitorKind, name: "Capacitor", ports: []string{"p", "n"}, spec: CapacitorParams, desc: "Capacitor"}
	// Inductor is the generic two-terminal inductor.
	Inductor = &Primitive{kind: InductorKind, name: "Inductor", ports: []string{"p", "n"}, spec: InductorParams, desc: "Inductor"}
	// Diode is the generic diode.
	Diode = &Primitive{kind: DiodeKind, name: "Diode", ports: []string{"p", "n"}, spec: DiodeParams, desc: "Diode"}
	// Short ties two signals together.
	Short = &Primitive{kind: ShortKind, name: "Short", ports: []string{"p", "n"}, spec: ShortParams, desc: "Short-circuit tie"}
)

// Primitives returns the closed builtin device set.
func Primitives() []*Primitive {
	return []*Primitive{Mos, Resistor, Capacitor, Inductor, Diode, Short}
}

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

package walk_test

import (
	"strings"
	"testing"

	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/elab"
	"github.com/hdl-org/hdl/ir"
	"github.com/hdl-org/hdl/params"
	"github.com/hdl-org/hdl/walk"
)

// mosSwapper replaces every generic MOS with one external module, counting
// hook invocations.
type mosSwapper struct {
	walk.Passthrough
	ext   *ir.ExternalModule
	seen  int
	calls map[string]*ir.ExternalModuleCall
}

func newMosSwapper() *mosSwapper {
	return &mosSwapper{
		ext:   ir.MustExternalModule("tech", "nfet", "", []string{"d", "g", "s", "b"}, nil),
		calls: make(map[string]*ir.ExternalModuleCall),
	}
}

func (s *mosSwapper) VisitPrimitiveCall(call *ir.PrimitiveCall) (ir.Instantiable, error) {
	if call.Prim() != ir.Mos {
		return call, nil
	}
	s.seen++
	digest, err := params.Digest(call.Params())
	if err != nil {
		return nil, err
	}
	if cached, ok := s.calls[digest]; ok {
		return cached, nil
	}
	out, err := s.ext.Call(nil)
	if err != nil {
		return nil, err
	}
	s.calls[digest] = out
	return out, nil
}

// stack builds Top{ pair: Pair{ mn, mp: Mos }, rn: Resistor }.
func stack(t *testing.T) (*ir.Module, *ir.Module) {
	t.Helper()
	pair := ir.NewModule("Pair")
	w1 := ir.MosParams.MustNew(map[string]any{"w": 100})
	pair.MustAddInstance(ir.MustInstance("mn", ir.Mos.MustCall(w1)))
	pair.MustAddInstance(ir.MustInstance("mp", ir.Mos.MustCall(w1)))
	top := ir.NewModule("Top")
	top.MustAddInstance(ir.MustInstance("pair", pair))
	top.MustAddInstance(ir.MustInstance("rn", ir.Resistor.MustCall(nil)))
	return top, pair
}

func TestWalkSubstitutes(t *testing.T) {
	top, pair := stack(t)
	s := newMosSwapper()
	if err := walk.New(s).Walk(top); err != nil {
		t.Fatal(err)
	}
	if s.seen != 2 {
		t.Errorf("hook ran %d times but want 2", s.seen)
	}
	mn, _ := pair.Instance("mn")
	mp, _ := pair.Instance("mp")
	mnCall, ok := mn.Target().(*ir.ExternalModuleCall)
	if !ok {
		t.Fatalf("mn targets %T, want an external module call", mn.Target())
	}
	// Equal generic leaves share one substituted call object.
	if mn.Target() != mp.Target() {
		t.Errorf("equal devices substituted with distinct calls")
	}
	if mnCall.Module().QualPath() != "tech.nfet" {
		t.Errorf("substituted with %q, want tech.nfet", mnCall.Module().QualPath())
	}
	// The untouched device kind passes through.
	rn, _ := top.Instance("rn")
	if _, ok := rn.Target().(*ir.PrimitiveCall); !ok {
		t.Errorf("resistor was rewritten to %T", rn.Target())
	}
}

func TestWalkTwiceIsStable(t *testing.T) {
	top, pair := stack(t)
	if err := walk.New(newMosSwapper()).Walk(top); err != nil {
		t.Fatal(err)
	}
	mn, _ := pair.Instance("mn")
	first := mn.Target()
	// A second run visits external calls, which pass through unchanged.
	if err := walk.New(newMosSwapper()).Walk(top); err != nil {
		t.Fatal(err)
	}
	if mn.Target() != first {
		t.Errorf("second walk rewrote an already-substituted target")
	}
}

func TestWalkUnelaboratedGeneratorCall(t *testing.T) {
	gen := elab.MustGenerator("Inner", params.Empty, func(p *params.Record) (ir.Instantiable, error) {
		return ir.NewModule(""), nil
	})
	top := ir.NewModule("Top")
	top.MustAddInstance(ir.MustInstance("u0", gen.Call(nil)))
	err := walk.New(newMosSwapper()).Walk(top)
	if err == nil {
		t.Fatal("walked an unelaborated tree without error")
	}
	if !strings.Contains(err.Error(), "run elaboration before walking") {
		t.Errorf("error %q lacks the elaboration hint", err)
	}
	if !cerr.IsKind(err, cerr.Configuration) {
		t.Errorf("error %q is not a configuration error", err)
	}
}

func TestWalkElaboratedGeneratorCall(t *testing.T) {
	gen := elab.MustGenerator("Inner", params.Empty, func(p *params.Record) (ir.Instantiable, error) {
		m := ir.NewModule("")
		m.MustAddInstance(ir.MustInstance("mn", ir.Mos.MustCall(nil)))
		return m, nil
	})
	top := ir.NewModule("Top")
	top.MustAddInstance(ir.MustInstance("u0", gen.Call(nil)))
	if _, err := elab.Elaborate(top); err != nil {
		t.Fatal(err)
	}
	s := newMosSwapper()
	if err := walk.New(s).Walk(top); err != nil {
		t.Fatal(err)
	}
	if s.seen != 1 {
		t.Errorf("hook ran %d times but want 1", s.seen)
	}
}

// nilVisitor returns a nil replacement, which the walker must reject.
type nilVisitor struct{ walk.Passthrough }

func (nilVisitor) VisitPrimitiveCall(*ir.PrimitiveCall) (ir.Instantiable, error) {
	return nil, nil
}

func TestWalkNilReplacement(t *testing.T) {
	top := ir.NewModule("Top")
	top.MustAddInstance(ir.MustInstance("mn", ir.Mos.MustCall(nil)))
	err := walk.New(nilVisitor{}).Walk(top)
	if err == nil {
		t.Fatal("nil replacement accepted")
	}
	if !strings.Contains(err.Error(), "nil replacement") {
		t.Errorf("error %q does not mention the nil replacement", err)
	}
}

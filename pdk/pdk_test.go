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

package pdk_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/ir"
	"github.com/hdl-org/hdl/pdk"
)

// fakePDK records which modules it compiled.
type fakePDK struct {
	name     string
	compiled []string
}

func (f *fakePDK) Name() string { return f.name }

func (f *fakePDK) Compile(m *ir.Module) (*ir.Module, error) {
	f.compiled = append(f.compiled, m.Name())
	return m, nil
}

func TestRegistry(t *testing.T) {
	r := pdk.NewRegistry()
	a := &fakePDK{name: "a"}
	b := &fakePDK{name: "b"}
	if err := r.Register(a); err != nil {
		t.Fatal(err)
	}
	// Re-registering the same value is a no-op.
	if err := r.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(b); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, r.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	got, err := r.Lookup("b")
	if err != nil {
		t.Fatal(err)
	}
	if got != pdk.PDK(b) {
		t.Errorf("Lookup(b) returned %v", got)
	}
}

func TestRegistryConflicts(t *testing.T) {
	r := pdk.NewRegistry()
	r.MustRegister(&fakePDK{name: "a"})
	err := r.Register(&fakePDK{name: "a"})
	if err == nil {
		t.Fatal("conflicting registration accepted")
	}
	if !strings.Contains(err.Error(), "registered twice") {
		t.Errorf("error %q does not mention the conflict", err)
	}
	if err := r.Register(nil); err == nil {
		t.Errorf("nil technology registered")
	}
	if err := r.Register(&fakePDK{}); err == nil {
		t.Errorf("empty-named technology registered")
	}
}

func TestRegistryDefault(t *testing.T) {
	r := pdk.NewRegistry()
	if _, err := r.Default(); err == nil {
		t.Errorf("empty registry has a default")
	}
	a := &fakePDK{name: "a"}
	r.MustRegister(a)
	got, err := r.Default()
	if err != nil {
		t.Fatal(err)
	}
	if got != pdk.PDK(a) {
		t.Errorf("sole registrant is not the default")
	}

	b := &fakePDK{name: "b"}
	r.MustRegister(b)
	if _, err := r.Default(); err == nil {
		t.Errorf("two registrants resolved a default without SetDefault")
	}
	if err := r.SetDefault(b); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.Default(); got != pdk.PDK(b) {
		t.Errorf("SetDefault not honored")
	}
}

func TestRegistryCompile(t *testing.T) {
	r := pdk.NewRegistry()
	a := &fakePDK{name: "a"}
	r.MustRegister(a)
	m := ir.NewModule("Top")
	if _, err := r.Compile(m, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Compile(m, "a"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Top", "Top"}, a.compiled); diff != "" {
		t.Errorf("compiled mismatch (-want +got):\n%s", diff)
	}
	_, err := r.Compile(m, "missing")
	if err == nil {
		t.Fatal("unknown technology compiled")
	}
	if !cerr.IsKind(err, cerr.Resolution) {
		t.Errorf("error %q is not a resolution error", err)
	}
	if !strings.Contains(err.Error(), `"missing"`) {
		t.Errorf("error %q does not name the missing technology", err)
	}
}

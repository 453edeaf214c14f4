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

package params_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hdl-org/hdl/cerr"
	"github.com/hdl-org/hdl/params"
)

var mosSpec = params.MustSpec("Mos",
	params.Field{Name: "w", Type: params.Int(), Desc: "width"},
	params.Field{Name: "l", Type: params.Int(), Desc: "length", Default: 150},
	params.Field{Name: "tp", Type: params.Enum("MosType", "nmos", "pmos"), Default: "nmos"},
	params.Field{Name: "model", Type: params.Optional(params.String()), Default: params.Nil},
)

func TestNewSpecErrors(t *testing.T) {
	tests := []struct {
		fields []params.Field
		want   string
	}{
		{
			fields: []params.Field{{Type: params.Int()}},
			want:   "empty field name",
		},
		{
			fields: []params.Field{
				{Name: "a", Type: params.Int()},
				{Name: "a", Type: params.Int()},
			},
			want: `duplicate field "a"`,
		},
		{
			fields: []params.Field{{Name: "a"}},
			want:   "has no type",
		},
		{
			fields: []params.Field{
				{Name: "a", Type: params.Int(), Default: 1, DefaultFactory: func() any { return 2 }},
			},
			want: "both a default and a default factory",
		},
		{
			fields: []params.Field{{Name: "a", Type: params.Int(), Default: params.Nil}},
			want:   "not optional",
		},
		{
			fields: []params.Field{{Name: "a", Type: params.Int(), Default: "x"}},
			want:   "expected int",
		},
	}
	for i, test := range tests {
		_, err := params.NewSpec("Bad", test.fields...)
		if err == nil {
			t.Errorf("test %d: spec declared without error", i)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("test %d: error %q does not mention %q", i, err, test.want)
		}
	}
}

func TestRecordDefaults(t *testing.T) {
	rec, err := mosSpec.New(map[string]any{"w": 1000})
	if err != nil {
		t.Fatalf("building record: %v", err)
	}
	want := map[string]any{
		"w":     int64(1000),
		"l":     int64(150),
		"tp":    "nmos",
		"model": nil,
	}
	if diff := cmp.Diff(want, rec.ToMap()); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordErrors(t *testing.T) {
	tests := []struct {
		values map[string]any
		want   string
		kind   cerr.Kind
	}{
		{
			values: nil,
			want:   `missing required field "w"`,
			kind:   cerr.Configuration,
		},
		{
			values: map[string]any{"w": 1000, "nf": 2},
			want:   `no field "nf"`,
			kind:   cerr.Configuration,
		},
		{
			values: map[string]any{"w": "wide"},
			want:   "expected int",
			kind:   cerr.TypeMismatch,
		},
		{
			values: map[string]any{"w": 1000, "tp": "npn"},
			want:   `invalid MosType value "npn"`,
			kind:   cerr.TypeMismatch,
		},
		{
			values: map[string]any{"w": mosSpec},
			want:   "got a parameter spec, expected a value",
			kind:   cerr.TypeMismatch,
		},
	}
	for i, test := range tests {
		_, err := mosSpec.New(test.values)
		if err == nil {
			t.Errorf("test %d: record built without error", i)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("test %d: error %q does not mention %q", i, err, test.want)
		}
		if !cerr.IsKind(err, test.kind) {
			t.Errorf("test %d: error %q is not a %v", i, err, test.kind)
		}
	}
}

func TestRecordEqual(t *testing.T) {
	a := mosSpec.MustNew(map[string]any{"w": 1000})
	b := mosSpec.MustNew(map[string]any{"w": 1000, "l": 150})
	c := mosSpec.MustNew(map[string]any{"w": 2000})
	if !a.Equal(b) {
		t.Errorf("records with equal values compare unequal")
	}
	if a.Equal(c) {
		t.Errorf("records with different values compare equal")
	}
	// Same shape under a different spec is a different type.
	other := params.MustSpec("Mos",
		params.Field{Name: "w", Type: params.Int()},
		params.Field{Name: "l", Type: params.Int(), Default: 150},
		params.Field{Name: "tp", Type: params.Enum("MosType", "nmos", "pmos"), Default: "nmos"},
		params.Field{Name: "model", Type: params.Optional(params.String()), Default: params.Nil},
	)
	if a.Equal(other.MustNew(map[string]any{"w": 1000})) {
		t.Errorf("records of distinct specs compare equal")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	rec := mosSpec.MustNew(map[string]any{"w": 1000, "tp": "pmos", "model": "mdl"})
	back, err := mosSpec.New(rec.ToMap())
	if err != nil {
		t.Fatalf("rebuilding record: %v", err)
	}
	if !rec.Equal(back) {
		t.Errorf("record does not round-trip through ToMap")
	}
}

func TestNestedRecord(t *testing.T) {
	inner := params.MustSpec("Size",
		params.Field{Name: "w", Type: params.Int()},
		params.Field{Name: "l", Type: params.Int()},
	)
	outer := params.MustSpec("Device",
		params.Field{Name: "size", Type: params.Nested(inner)},
		params.Field{Name: "name", Type: params.String(), Default: "dev"},
	)
	rec, err := outer.New(map[string]any{
		"size": map[string]any{"w": 10, "l": 2},
	})
	if err != nil {
		t.Fatalf("building nested record: %v", err)
	}
	size, _ := rec.Get("size")
	inRec, ok := size.(*params.Record)
	if !ok {
		t.Fatalf("nested field is %T, want *params.Record", size)
	}
	if w, _ := inRec.GetInt("w"); w != 10 {
		t.Errorf("nested w: got %d but want 10", w)
	}
	if _, err := outer.New(map[string]any{"size": 42}); err == nil {
		t.Errorf("non-record nested value built without error")
	}
}

func TestListCopies(t *testing.T) {
	spec := params.MustSpec("Taps",
		params.Field{Name: "taps", Type: params.List(params.Int())},
	)
	src := []any{1, 2, 3}
	rec := spec.MustNew(map[string]any{"taps": src})
	src[0] = 99
	got, _ := rec.Get("taps")
	taps := got.([]any)
	if taps[0] != int64(1) {
		t.Errorf("record shares its list with the caller: got %v", taps)
	}
	taps[1] = int64(99)
	again, _ := rec.Get("taps")
	if again.([]any)[1] != int64(2) {
		t.Errorf("Get exposes the record's internal list")
	}
}

func TestDefaultFactory(t *testing.T) {
	spec := params.MustSpec("Taps",
		params.Field{Name: "taps", Type: params.List(params.Int()),
			DefaultFactory: func() any { return []any{1, 2} }},
	)
	a := spec.MustNew(nil)
	b := spec.MustNew(nil)
	if !a.Equal(b) {
		t.Errorf("factory defaults compare unequal")
	}
	// Factory values are built per record, never shared.
	got, _ := a.Get("taps")
	got.([]any)[0] = int64(9)
	again, _ := b.Get("taps")
	if again.([]any)[0] != int64(1) {
		t.Errorf("factory default shared between records")
	}
}

func TestEmptySpec(t *testing.T) {
	if params.Empty.HasParams() {
		t.Errorf("the empty spec declares fields")
	}
	if params.None == nil {
		t.Errorf("None record is nil")
	}
	if !params.None.Equal(params.Empty.MustNew(nil)) {
		t.Errorf("empty records compare unequal")
	}
}

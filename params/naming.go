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

package params

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/hdl-org/hdl/cerr"
)

// nameLenLimit bounds human-readable unique names. Longer names fall back to
// the digest form, for the sake of netlist formats with modest name limits.
const nameLenLimit = 128

// UniqueName derives a deterministic name from a record's value.
//
// If every field is scalar (string, int, float, or options thereof) and the
// rendered "field=value field2=value2" string is under the length limit, that
// string is returned: human-readable, stable, fields in declaration order.
// All other records canonically serialize to JSON and return a fixed-length
// hex digest of the bytes. The result is a pure function of value: an equal
// record reached by any construction path yields an identical name.
func UniqueName(r *Record) (string, error) {
	if r == nil {
		return "", cerr.TypeMismatchf("unique name of nil parameter record")
	}
	if allScalar(r.spec) {
		name := renderScalar(r)
		if len(name) < nameLenLimit {
			return name, nil
		}
	}
	return Digest(r)
}

// Digest always returns the canonical-hash form of a record's unique name:
// a fixed-length lowercase hex string, stable across processes and runs.
// It serves as the memoization key of the elaboration engine.
func Digest(r *Record) (string, error) {
	if r == nil {
		return "", cerr.TypeMismatchf("digest of nil parameter record")
	}
	obj, err := canonical(r)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", cerr.TypeMismatchf("parameter record %s is not serializable: %v", r.spec.Name(), err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

func allScalar(s *Spec) bool {
	for _, f := range s.fields {
		if !f.Type.scalar() {
			return false
		}
	}
	return true
}

func renderScalar(r *Record) string {
	parts := make([]string, len(r.spec.fields))
	for i, f := range r.spec.fields {
		parts[i] = f.Name + "=" + scalarString(r.values[i])
	}
	return strings.Join(parts, " ")
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return "nil"
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// canonical converts a record to the JSON-serializable form hashed by Digest:
// objects keyed by field name, nested records as objects, domain values as
// their qualified paths. Maps marshal with sorted keys, so the bytes are a
// pure function of value.
func canonical(r *Record) (map[string]any, error) {
	obj := make(map[string]any, len(r.spec.fields))
	for i, f := range r.spec.fields {
		v, err := canonicalValue(r.values[i])
		if err != nil {
			return nil, cerr.Wrap(cerr.TypeMismatch,
				cerr.InPath(err, fmt.Sprintf("field %q of %s", f.Name, r.spec.Name())))
		}
		obj[f.Name] = v
	}
	return obj, nil
}

func canonicalValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, int64, float64, bool:
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			c, err := canonicalValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case *Record:
		return canonical(val)
	case Pathed:
		return val.QualPath(), nil
	default:
		return nil, cerr.TypeMismatchf("invalid parameter value %T in unique naming", v)
	}
}

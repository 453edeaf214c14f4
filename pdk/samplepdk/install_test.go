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

package samplepdk_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hdl-org/hdl/pdk/samplepdk"
)

func writeInstall(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "install.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadInstall(t *testing.T) {
	path := writeInstall(t, `
model_ref = "/pdk/sample/models.lib.spice"
size_scale = 5

[corners]
tt = "section_tt"
ff = "section_ff"
`)
	got, err := samplepdk.LoadInstall(path)
	if err != nil {
		t.Fatal(err)
	}
	want := &samplepdk.Install{
		ModelRef:  "/pdk/sample/models.lib.spice",
		Corners:   map[string]string{"tt": "section_tt", "ff": "section_ff"},
		SizeScale: 5,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("install mismatch (-want +got):\n%s", diff)
	}
	section, err := got.Corner("tt")
	if err != nil {
		t.Fatal(err)
	}
	if section != "section_tt" {
		t.Errorf("corner tt: got %q but want section_tt", section)
	}
	if _, err := got.Corner("fs"); err == nil {
		t.Errorf("undeclared corner resolved without error")
	}
}

func TestLoadInstallDefaults(t *testing.T) {
	// An empty file keeps every default.
	path := writeInstall(t, "")
	got, err := samplepdk.LoadInstall(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(samplepdk.DefaultInstall(), got); diff != "" {
		t.Errorf("install mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInstallErrors(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{
			content: `model_ref = ""`,
			want:    "empty model_ref",
		},
		{
			content: `size_scale = 0`,
			want:    "size_scale 0",
		},
		{
			content: `size_scale = "ten"`,
			want:    "parsing",
		},
	}
	for i, test := range tests {
		_, err := samplepdk.LoadInstall(writeInstall(t, test.content))
		if err == nil {
			t.Errorf("test %d: loaded without error", i)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("test %d: error %q does not mention %q", i, err, test.want)
		}
	}
	if _, err := samplepdk.LoadInstall(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("missing file loaded without error")
	}
}

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

package samplepdk

import (
	"strings"

	"github.com/hdl-org/hdl/cerr"
	toml "github.com/pelletier/go-toml"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Install describes a site-local installation of the technology: where the
// simulation models live and how drawn dimensions scale to the foundry grid.
// Installations differ per machine, so the values load from a TOML file
// rather than being compiled in.
type Install struct {
	// ModelRef is the path of the primary model include file.
	ModelRef string `toml:"model_ref"`
	// Corners maps corner names (tt, ff, ss) to model section names.
	Corners map[string]string `toml:"corners"`
	// SizeScale multiplies drawn w/l units into foundry resolution units.
	SizeScale int64 `toml:"size_scale"`
}

// DefaultInstall returns an installation with conventional corner names and
// unit scaling, usable without a site configuration file.
func DefaultInstall() *Install {
	return &Install{
		ModelRef:  "models/sample.lib.spice",
		Corners:   map[string]string{"tt": "tt", "ff": "ff", "ss": "ss"},
		SizeScale: 1,
	}
}

// LoadInstall reads an installation description from a TOML file. Absent
// fields keep their defaults.
func LoadInstall(path string) (*Install, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, cerr.Configf("loading technology install %s: %v", path, err)
	}
	inst := DefaultInstall()
	if err := tree.Unmarshal(inst); err != nil {
		return nil, cerr.Configf("parsing technology install %s: %v", path, err)
	}
	if err := inst.validate(); err != nil {
		return nil, cerr.InPath(err, "install "+path)
	}
	return inst, nil
}

func (i *Install) validate() error {
	if i.ModelRef == "" {
		return cerr.Configf("empty model_ref")
	}
	if i.SizeScale < 1 {
		return cerr.Configf("size_scale %d, must be at least 1", i.SizeScale)
	}
	return nil
}

// Corner returns the model section for a corner name.
func (i *Install) Corner(name string) (string, error) {
	section, ok := i.Corners[name]
	if !ok {
		known := maps.Keys(i.Corners)
		slices.Sort(known)
		return "", cerr.Resolutionf("install defines no corner %q (defined: %s)",
			name, strings.Join(known, ", "))
	}
	return section, nil
}

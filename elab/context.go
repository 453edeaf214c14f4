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
)

// Context carries elaboration-wide information to generators that declare it,
// passing values deep through design hierarchies without piping them through
// each layer: typically the supply, ground, and clock nets, plus arbitrary
// keyed values. One context is owned by one elaboration run.
type Context struct {
	supplies []*ir.Signal
	grounds  []*ir.Signal
	clocks   []*ir.Signal
	vals     map[string]any
}

// NewContext returns a context with the conventional VDD/VSS/clk nets.
func NewContext() *Context {
	return &Context{
		supplies: []*ir.Signal{ir.NewSignal("VDD", 1)},
		grounds:  []*ir.Signal{ir.NewSignal("VSS", 1)},
		clocks:   []*ir.Signal{ir.NewSignal("clk", 1)},
		vals:     make(map[string]any),
	}
}

// SetSupplies replaces the supply nets.
func (c *Context) SetSupplies(sigs ...*ir.Signal) { c.supplies = sigs }

// SetGrounds replaces the ground nets.
func (c *Context) SetGrounds(sigs ...*ir.Signal) { c.grounds = sigs }

// SetClocks replaces the clock nets.
func (c *Context) SetClocks(sigs ...*ir.Signal) { c.clocks = sigs }

func one(kind string, sigs []*ir.Signal) (*ir.Signal, error) {
	if len(sigs) != 1 {
		return nil, cerr.Configf("context declares %d %s nets, need exactly one", len(sigs), kind)
	}
	return sigs[0], nil
}

// Pwr returns the elaboration-wide supply net.
// Fails unless exactly one supply is configured.
func (c *Context) Pwr() (*ir.Signal, error) { return one("supply", c.supplies) }

// Gnd returns the elaboration-wide ground net.
func (c *Context) Gnd() (*ir.Signal, error) { return one("ground", c.grounds) }

// Clk returns the elaboration-wide clock net.
func (c *Context) Clk() (*ir.Signal, error) { return one("clock", c.clocks) }

// Set stores a keyed context value.
func (c *Context) Set(key string, v any) { c.vals[key] = v }

// Value returns a keyed context value.
func (c *Context) Value(key string) (any, bool) {
	v, ok := c.vals[key]
	return v, ok
}

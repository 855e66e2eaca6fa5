// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.mep) JSON file
package inp

import (
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"

	"github.com/Waisni/ase/band"
	"github.com/Waisni/ase/conf"
	"github.com/Waisni/ase/mcalc"
	"github.com/Waisni/ase/mep"
)

// CalcData selects the calculator model attached to every image
type CalcData struct {
	Name string   `json:"name"` // model name; e.g. "lj"
	Prms fun.Prms `json:"prms"` // model parameters
}

// EndpointData holds one endpoint configuration
type EndpointData struct {
	Znumbers []int       `json:"znumbers"` // atomic numbers
	Pos      [][]float64 `json:"pos"`      // positions (natoms x 3)
	Cell     [][]float64 `json:"cell"`     // 3x3 cell matrix; may be omitted
	Pbc      []bool      `json:"pbc"`      // periodicity mask; may be omitted
}

// Simulation holds all data for one minimum-energy-path search
type Simulation struct {

	// global information
	Desc   string `json:"desc"`   // description of simulation
	DirOut string `json:"dirout"` // directory for output; e.g. /tmp/ase

	// problem definition
	Nimages int          `json:"nimages"` // number of images along the band
	Interp  string       `json:"interp"`  // interpolation method: "linear" or "idpp"
	Mic     bool         `json:"mic"`     // use minimum-image convention
	Calc    CalcData     `json:"calculator"`
	Initial EndpointData `json:"initial"`
	Final   EndpointData `json:"final"`

	// solver options
	Neb     band.Input `json:"neb"`     // nudged elastic band options
	Precon  *mep.Input `json:"precon"`  // preconditioned driver; nil selects the plain band
	Fmax    float64    `json:"fmax"`    // convergence tolerance
	Steps   int        `json:"steps"`   // maximum number of steps
	StepSel string     `json:"stepsel"` // "ode" or "static" (preconditioned driver)
	Alpha   float64    `json:"alpha"`   // static step length
}

// ReadSim reads a simulation file and sets default values
func ReadSim(simfilepath string) (o *Simulation, err error) {
	b, err := io.ReadFile(simfilepath)
	if err != nil {
		return nil, chk.Err("inp: cannot read simulation file %q:\n%v", simfilepath, err)
	}
	o = new(Simulation)
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("inp: cannot parse simulation file %q:\n%v", simfilepath, err)
	}

	// default values
	if o.Nimages == 0 {
		o.Nimages = 5
	}
	if o.Interp == "" {
		o.Interp = "linear"
	}
	if o.Fmax == 0 {
		o.Fmax = 0.05
	}
	if o.Steps == 0 {
		o.Steps = 100
	}
	if o.StepSel == "" {
		o.StepSel = "ode"
	}
	if o.Alpha == 0 {
		o.Alpha = 0.01
	}
	if o.DirOut == "" {
		o.DirOut = "/tmp/ase"
	}

	// consistency
	if o.Nimages < 3 {
		return nil, chk.Err("inp: nimages must be at least 3; got %d", o.Nimages)
	}
	if o.Calc.Name == "" {
		return nil, chk.Err("inp: simulation file must name a calculator model")
	}
	if len(o.Initial.Znumbers) == 0 || len(o.Final.Znumbers) == 0 {
		return nil, chk.Err("inp: simulation file must define both endpoints")
	}
	return
}

// endpoint builds one endpoint configuration
func (o *EndpointData) endpoint() (*conf.Configuration, error) {
	return conf.New(o.Znumbers, o.Pos, o.Cell, o.Pbc)
}

// BuildImages allocates the band: the two endpoints, interior images cloned
// from the first endpoint and then interpolated, and one distinct calculator
// instance per image
func (o *Simulation) BuildImages() (images []*conf.Configuration, err error) {
	first, err := o.Initial.endpoint()
	if err != nil {
		return
	}
	last, err := o.Final.endpoint()
	if err != nil {
		return
	}
	images = make([]*conf.Configuration, o.Nimages)
	images[0] = first
	images[o.Nimages-1] = last
	for i := 1; i < o.Nimages-1; i++ {
		images[i] = first.Clone()
	}

	// one oracle per image; interior and endpoints alike
	for i := 0; i < o.Nimages; i++ {
		images[i].Calc, err = mcalc.New(o.Calc.Name, o.Calc.Prms)
		if err != nil {
			return nil, err
		}
	}

	chain, err := band.NewChain(images)
	if err != nil {
		return nil, err
	}
	err = chain.Interpolate(o.Interp, o.Mic)
	if err != nil {
		return nil, err
	}
	return
}

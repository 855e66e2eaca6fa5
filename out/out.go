// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements report assembly and emission for converged bands
package out

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/Waisni/ase/band"
)

// Report holds the results of one minimum-energy-path search
type Report struct {
	Desc        string        `json:"desc"`        // description of simulation
	Nimages     int           `json:"nimages"`     // number of images
	Natoms      int           `json:"natoms"`      // atoms per image
	Energies    []float64     `json:"energies"`    // per-image energies from the last step
	Emax        float64       `json:"emax"`        // band potential
	Imax        int           `json:"imax"`        // highest-energy interior image
	Positions   [][][]float64 `json:"positions"`   // per-image positions
	RealForces  [][][]float64 `json:"realforces"`  // per-image raw forces from the last step
	FmaxHistory []float64     `json:"fmaxhistory"` // residual maxima over the run
}

// Extract collects a report from a chain after at least one force
// evaluation
func Extract(desc string, chain *band.Chain, fmaxHistory []float64) (r *Report, err error) {
	images, err := chain.IterImages()
	if err != nil {
		return
	}
	r = new(Report)
	r.Desc = desc
	r.Nimages = chain.Nimages
	r.Natoms = chain.Natoms
	r.Energies = make([]float64, chain.Nimages)
	copy(r.Energies, chain.Energies)
	r.Emax = chain.Emax
	r.Imax = chain.Imax
	r.Positions = make([][][]float64, chain.Nimages)
	r.RealForces = make([][][]float64, chain.Nimages)
	for i, img := range images {
		r.Positions[i] = img.Pos
		r.RealForces[i] = chain.RealForces[i]
	}
	r.FmaxHistory = fmaxHistory
	return
}

// Save writes the report as a JSON file named <fnkey>.json under dirout
func (o *Report) Save(dirout, fnkey string) (err error) {
	err = os.MkdirAll(dirout, 0777)
	if err != nil {
		return chk.Err("out: cannot create output directory %q:\n%v", dirout, err)
	}
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return chk.Err("out: cannot encode report:\n%v", err)
	}
	fn := filepath.Join(dirout, fnkey+".json")
	err = os.WriteFile(fn, b, 0666)
	if err != nil {
		return chk.Err("out: cannot write report to %q:\n%v", fn, err)
	}
	return
}

// Print shows the band energies
func (o *Report) Print() {
	io.Pf("%4s %23s\n", "img", "energy")
	for i, e := range o.Energies {
		if i == o.Imax {
			io.Pfyel("%4d %23.15e  <- emax\n", i, e)
			continue
		}
		io.Pf("%4d %23.15e\n", i, e)
	}
}

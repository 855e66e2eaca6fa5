// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// System is a chain of states seen as an optimisation problem: flat degrees
// of freedom and effective forces
type System interface {
	Ndofs() int
	GetDofs() []float64
	SetDofs(x []float64)
	GetForces() ([][]float64, error)
}

// MDMin drives a system with quick-min damped dynamics: velocities follow
// the force direction and are reset whenever the power becomes negative
type MDMin struct {
	Sys     System  // system being relaxed
	Dt      float64 // pseudo time step
	Verbose bool    // print per-iteration residuals
}

// NewMDMin returns a quick-min driver; dt <= 0 selects the default step
func NewMDMin(sys System, dt float64) (o *MDMin) {
	o = new(MDMin)
	o.Sys = sys
	o.Dt = dt
	if o.Dt <= 0 {
		o.Dt = 0.05
	}
	return
}

// Run relaxes the system until the largest atomic force norm drops below
// fmax or the step budget is exhausted
func (o *MDMin) Run(fmax float64, steps int) (nit int, converged bool, err error) {
	nd := o.Sys.Ndofs()
	x := o.Sys.GetDofs()
	v := make([]float64, nd)
	f := make([]float64, nd)
	for nit = 0; nit < steps; nit++ {
		F, ferr := o.Sys.GetForces()
		if ferr != nil {
			return nit, false, ferr
		}
		flatten(f, F)
		fm := rowMaxNorm(F, 0, len(F))
		if o.Verbose {
			io.Pf("mdmin: %4d %23.15e\n", nit, fm)
		}
		if fm <= fmax {
			converged = true
			return
		}

		// quick-min: advance velocities, keep only the component along the
		// force, zero on negative power
		var p, ff float64
		for i := 0; i < nd; i++ {
			v[i] += o.Dt * f[i]
			p += v[i] * f[i]
			ff += f[i] * f[i]
		}
		if p > 0 && ff > 0 {
			for i := 0; i < nd; i++ {
				v[i] = f[i] * p / ff
			}
		} else {
			la.VecFill(v, 0)
		}
		for i := 0; i < nd; i++ {
			x[i] += o.Dt * v[i]
		}
		o.Sys.SetDofs(x)
	}
	return
}

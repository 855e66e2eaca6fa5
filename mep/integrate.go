// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mep

import (
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"

	"github.com/Waisni/ase/spline"
)

// IntegrateForces integrates the raw forces along the fitted path to recover
// the energy profile by virtual work: E(s) = -∫ F·(dx/ds) ds. The fit uses
// the Euclidean metric so the reported energies do not couple to the
// preconditioner.
//  Input:
//   points -- size of the evaluation grid; e.g. 1000
//  Output:
//   s -- reaction coordinate in [0, 1]
//   E -- integrated energy profile on the same grid
//   F -- projected forces along the path on the same grid
func (o *PreconMEP) IntegrateForces(points int) (s, E, F []float64, err error) {
	M, n := o.Nimages, o.Natoms
	nd := 3 * n

	sk, xsp, err := o.SplineFit(true)
	if err != nil {
		return
	}

	// raw forces of every image, endpoints included
	fmat := la.MatAlloc(M, nd)
	for i := 0; i < M; i++ {
		Fi, ferr := o.Images[i].Forces()
		if ferr != nil {
			return nil, nil, nil, ferr
		}
		flattenRows(fmat[i], Fi)
	}
	fsp, err := spline.NewCubic(sk, fmat)
	if err != nil {
		return
	}

	s = utl.LinSpace(0, 1, points)
	F = make([]float64, points)
	fv := make([]float64, nd)
	dx := make([]float64, nd)
	for j := 0; j < points; j++ {
		fsp.Eval(s[j], fv)
		xsp.Deriv1(s[j], dx)
		for k := 0; k < nd; k++ {
			F[j] += fv[k] * dx[k]
		}
	}

	// cumulative trapezoid of -F over s
	E = make([]float64, points)
	for j := 1; j < points; j++ {
		E[j] = E[j-1] - 0.5*(F[j]+F[j-1])*(s[j]-s[j-1])
	}
	return
}

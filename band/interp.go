// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/Waisni/ase/conf"
	"github.com/Waisni/ase/geo"
	"github.com/Waisni/ase/mcalc"
)

// Interpolate overwrites the interior images from the endpoints.
//  Input:
//   method -- "linear" or "idpp"
//   mic    -- use the minimum-image convention
func (o *Chain) Interpolate(method string, mic bool) (err error) {
	err = o.interpolateLinear(mic)
	if err != nil {
		return
	}
	switch method {
	case "linear":
	case "idpp":
		err = o.idppInterpolate(0.1, 100, mic)
	default:
		return chk.Err("band: unknown interpolation method %q", method)
	}
	return
}

// Interpolate pre-aligns the fixed endpoints when rotation removal is on and
// then interpolates the chain
func (o *NEB) Interpolate(method string, mic bool) (err error) {
	if o.RemoveRotation {
		err = geo.Align(o.Images[0].Pos, o.Images[o.Nimages-1].Pos)
		if err != nil {
			return
		}
	}
	return o.Chain.Interpolate(method, mic)
}

// interpolateLinear assigns interior positions along the straight segment
// between the endpoints
func (o *Chain) interpolateLinear(mic bool) (err error) {
	M, n := o.Nimages, o.Natoms
	Δ := la.MatAlloc(n, 3)
	for j := 0; j < n; j++ {
		for k := 0; k < 3; k++ {
			Δ[j][k] = o.Images[M-1].Pos[j][k] - o.Images[0].Pos[j][k]
		}
	}
	d := Δ
	if mic {
		d, _, err = geo.Mic(Δ, o.Images[0].Cell, o.Images[0].Pbc)
		if err != nil {
			return
		}
	}
	matScale(d, 1/float64(M-1))
	for i := 1; i < M-1; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < 3; k++ {
				o.Images[i].Pos[j][k] = o.Images[0].Pos[j][k] + float64(i)*d[j][k]
			}
		}
	}
	return
}

// idppInterpolate relaxes the interior images under image-dependent pair
// potentials built from per-image target distance matrices, then restores
// the original calculators
func (o *Chain) idppInterpolate(fmax float64, steps int, mic bool) (err error) {
	M := o.Nimages
	d1, err := o.Images[0].AllDistances(mic)
	if err != nil {
		return
	}
	d2, err := o.Images[M-1].AllDistances(mic)
	if err != nil {
		return
	}

	// install one oracle per image; restore the borrowed handles on exit
	saved := make([]conf.Calculator, M)
	for i := 0; i < M; i++ {
		saved[i] = o.Images[i].Calc
		target := la.MatAlloc(o.Natoms, o.Natoms)
		for r := 0; r < o.Natoms; r++ {
			for c := 0; c < o.Natoms; c++ {
				target[r][c] = d1[r][c] + float64(i)*(d2[r][c]-d1[r][c])/float64(M-1)
			}
		}
		o.Images[i].Calc = mcalc.NewIDPP(target, mic)
	}
	defer func() {
		for i := 0; i < M; i++ {
			o.Images[i].Calc = saved[i]
		}
	}()

	neb, err := NewNEB(o.Images, &Input{K: []float64{0.1}}, SerialWorld{})
	if err != nil {
		return
	}
	opt := NewMDMin(neb, 0.05)
	_, _, err = opt.Run(fmax, steps)
	return
}

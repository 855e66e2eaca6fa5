// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcalc

import (
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"

	"github.com/Waisni/ase/conf"
	"github.com/Waisni/ase/geo"
)

// IDPP is the image-dependent pair potential: a surrogate oracle whose energy
// is a sum of pairwise penalties against a target distance matrix. It is used
// to seed interpolated bands with physically reasonable bond lengths.
type IDPP struct {
	Target [][]float64 // target inter-atomic distance matrix (natoms x natoms)
	Mic    bool        // use minimum-image convention
}

// NewIDPP returns an IDPP oracle for one target distance matrix
func NewIDPP(target [][]float64, mic bool) *IDPP {
	return &IDPP{Target: target, Mic: mic}
}

// Init satisfies the Model interface. The target matrix cannot be expressed
// as scalar parameters and must be set via NewIDPP.
func (o *IDPP) Init(prms fun.Prms) error {
	return nil
}

// Provides returns the implemented properties
func (o *IDPP) Provides() []string {
	return []string{"energy", "forces"}
}

// pairs computes displacement rows D[i][j] = p[j] - p[i] and distances d,
// with the diagonal of d set to one to guard divisions
func (o *IDPP) pairs(c *conf.Configuration) (D [][][]float64, d [][]float64, err error) {
	n := c.Natoms()
	d = la.MatAlloc(n, n)
	D = make([][][]float64, n)
	Δ := la.MatAlloc(n, 3)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < 3; k++ {
				Δ[j][k] = c.Pos[j][k] - c.Pos[i][k]
			}
		}
		var rows [][]float64
		var lens []float64
		if o.Mic {
			rows, lens, err = geo.Mic(Δ, c.Cell, c.Pbc)
			if err != nil {
				return
			}
		} else {
			rows = la.MatAlloc(n, 3)
			lens = make([]float64, n)
			for j := 0; j < n; j++ {
				copy(rows[j], Δ[j])
				lens[j] = la.VecNorm(Δ[j])
			}
		}
		D[i] = rows
		copy(d[i], lens)
		d[i][i] = 1
	}
	return
}

// PotentialEnergy computes E = ½·Σ (d - target)² / d⁴
func (o *IDPP) PotentialEnergy(c *conf.Configuration) (E float64, err error) {
	_, d, err := o.pairs(c)
	if err != nil {
		return
	}
	n := c.Natoms()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			Δ := d[i][j] - o.Target[i][j]
			d4 := d[i][j] * d[i][j] * d[i][j] * d[i][j]
			E += 0.5 * Δ * Δ / d4
		}
	}
	return
}

// Forces computes the analytic gradient of the pair penalty
func (o *IDPP) Forces(c *conf.Configuration, F [][]float64) (err error) {
	D, d, err := o.pairs(c)
	if err != nil {
		return
	}
	n := c.Natoms()
	for i := 0; i < n; i++ {
		la.VecFill(F[i], 0)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			Δ := d[i][j] - o.Target[i][j]
			d5 := d[i][j] * d[i][j] * d[i][j] * d[i][j] * d[i][j]
			coef := 2 * Δ * (1 - 2*Δ/d[i][j]) / d5
			for k := 0; k < 3; k++ {
				F[i][k] += coef * D[i][j][k]
			}
		}
	}
	return
}

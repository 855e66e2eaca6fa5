// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package geo implements the geometry kernel: minimum-image displacements,
// distance matrices and rigid-body alignment of atomic configurations
package geo

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Inv3 inverts a 3x3 matrix
//  Input:
//   a -- 3x3 matrix
//  Output:
//   ai -- inverse of a
func Inv3(ai, a [][]float64) (err error) {
	det := a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
	if math.Abs(det) < 1e-14 {
		return chk.Err("geo: cannot invert cell matrix; zero determinant")
	}
	ai[0][0] = (a[1][1]*a[2][2] - a[1][2]*a[2][1]) / det
	ai[0][1] = (a[0][2]*a[2][1] - a[0][1]*a[2][2]) / det
	ai[0][2] = (a[0][1]*a[1][2] - a[0][2]*a[1][1]) / det
	ai[1][0] = (a[1][2]*a[2][0] - a[1][0]*a[2][2]) / det
	ai[1][1] = (a[0][0]*a[2][2] - a[0][2]*a[2][0]) / det
	ai[1][2] = (a[0][2]*a[1][0] - a[0][0]*a[1][2]) / det
	ai[2][0] = (a[1][0]*a[2][1] - a[1][1]*a[2][0]) / det
	ai[2][1] = (a[0][1]*a[2][0] - a[0][0]*a[2][1]) / det
	ai[2][2] = (a[0][0]*a[1][1] - a[0][1]*a[1][0]) / det
	return
}

// hasPbc tells whether any axis is periodic
func hasPbc(cell [][]float64, pbc []bool) bool {
	if cell == nil || pbc == nil {
		return false
	}
	return pbc[0] || pbc[1] || pbc[2]
}

// MicVec applies the minimum-image convention to one displacement vector.
// Cartesian vectors relate to fractional ones by x = f·cell, with the rows of
// cell holding the lattice vectors. Non-periodic axes pass through unchanged.
//  Input:
//   δ    -- raw displacement (3 components)
//   cell -- 3x3 cell matrix; may be nil for isolated systems
//   pbc  -- per-axis periodicity mask; may be nil
//  Output:
//   dmin   -- shortest-image displacement
//   length -- Euclidean length of dmin
func MicVec(δ []float64, cell [][]float64, pbc []bool) (dmin []float64, length float64, err error) {
	dmin = make([]float64, 3)
	copy(dmin, δ)
	if hasPbc(cell, pbc) {
		ci := la.MatAlloc(3, 3)
		err = Inv3(ci, cell)
		if err != nil {
			return
		}
		var f [3]float64
		for j := 0; j < 3; j++ {
			f[j] = δ[0]*ci[0][j] + δ[1]*ci[1][j] + δ[2]*ci[2][j]
			if pbc[j] {
				f[j] -= math.Round(f[j])
			}
		}
		for k := 0; k < 3; k++ {
			dmin[k] = f[0]*cell[0][k] + f[1]*cell[1][k] + f[2]*cell[2][k]
		}
	}
	length = math.Sqrt(dmin[0]*dmin[0] + dmin[1]*dmin[1] + dmin[2]*dmin[2])
	return
}

// Mic applies the minimum-image convention to a matrix of displacement
// vectors, one per row, returning per-row lengths
func Mic(Δ [][]float64, cell [][]float64, pbc []bool) (dmin [][]float64, lengths []float64, err error) {
	n := len(Δ)
	dmin = la.MatAlloc(n, 3)
	lengths = make([]float64, n)
	if !hasPbc(cell, pbc) {
		for i := 0; i < n; i++ {
			copy(dmin[i], Δ[i])
			lengths[i] = la.VecNorm(Δ[i])
		}
		return
	}
	ci := la.MatAlloc(3, 3)
	err = Inv3(ci, cell)
	if err != nil {
		return
	}
	var f [3]float64
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			f[j] = Δ[i][0]*ci[0][j] + Δ[i][1]*ci[1][j] + Δ[i][2]*ci[2][j]
			if pbc[j] {
				f[j] -= math.Round(f[j])
			}
		}
		for k := 0; k < 3; k++ {
			dmin[i][k] = f[0]*cell[0][k] + f[1]*cell[1][k] + f[2]*cell[2][k]
		}
		lengths[i] = la.VecNorm(dmin[i])
	}
	return
}

// MatNorm computes the Frobenius norm of a matrix of row vectors
func MatNorm(a [][]float64) (res float64) {
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(a[i]); j++ {
			res += a[i][j] * a[i][j]
		}
	}
	return math.Sqrt(res)
}

// DistMatrix computes the matrix of inter-atomic distances for a set of
// positions, optionally under the minimum-image convention
func DistMatrix(P [][]float64, cell [][]float64, pbc []bool, mic bool) (d [][]float64, err error) {
	n := len(P)
	d = la.MatAlloc(n, n)
	δ := make([]float64, 3)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := 0; k < 3; k++ {
				δ[k] = P[j][k] - P[i][k]
			}
			var l float64
			if mic {
				_, l, err = MicVec(δ, cell, pbc)
				if err != nil {
					return
				}
			} else {
				l = la.VecNorm(δ)
			}
			d[i][j] = l
			d[j][i] = l
		}
	}
	return
}

// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// jacobi4 computes eigenvalues and eigenvectors of a symmetric 4x4 matrix
// using cyclic Jacobi rotations. Eigenvectors are returned as the columns
// of v. The input matrix is destroyed.
func jacobi4(v [][]float64, λ []float64, a [][]float64) (err error) {
	const n = 4
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v[i][j] = 0
		}
		v[i][i] = 1
	}
	for sweep := 0; sweep < 50; sweep++ {
		var off float64
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				off += a[p][q] * a[p][q]
			}
		}
		if off < 1e-30 {
			for i := 0; i < n; i++ {
				λ[i] = a[i][i]
			}
			return
		}
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				if math.Abs(a[p][q]) < 1e-30 {
					continue
				}
				θ := (a[q][q] - a[p][p]) / (2 * a[p][q])
				t := 1 / (math.Abs(θ) + math.Sqrt(θ*θ+1))
				if θ < 0 {
					t = -t
				}
				c := 1 / math.Sqrt(t*t+1)
				s := t * c
				τ := s / (1 + c)
				h := t * a[p][q]
				a[p][p] -= h
				a[q][q] += h
				a[p][q] = 0
				for i := 0; i < n; i++ {
					if i != p && i != q {
						g := a[min(i, p)][max(i, p)]
						hh := a[min(i, q)][max(i, q)]
						a[min(i, p)][max(i, p)] = g - s*(hh+τ*g)
						a[min(i, q)][max(i, q)] = hh + s*(g-τ*hh)
					}
				}
				for i := 0; i < n; i++ {
					g := v[i][p]
					hh := v[i][q]
					v[i][p] = g - s*(hh+τ*g)
					v[i][q] = hh + s*(g-τ*hh)
				}
			}
		}
	}
	return chk.Err("geo: Jacobi iteration did not converge")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Align rigidly rotates and translates tgt, in place, to minimise the RMSD
// against ref. The rotation is found with Horn's quaternion method; internal
// coordinates of tgt are preserved. Position sets with fewer than two atoms
// are left unchanged: they are neither rotated nor translated.
//  Input:
//   ref -- reference positions (n x 3)
//   tgt -- positions to be aligned (n x 3); modified in place
func Align(ref, tgt [][]float64) (err error) {
	n := len(ref)
	if len(tgt) != n {
		return chk.Err("geo: cannot align position sets with different sizes: %d != %d", n, len(tgt))
	}
	if n < 2 {
		return // nothing to rotate
	}

	// centroids
	cr := make([]float64, 3)
	ct := make([]float64, 3)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			cr[k] += ref[i][k] / float64(n)
			ct[k] += tgt[i][k] / float64(n)
		}
	}

	// correlation matrix S = Σ a·bᵀ with a = tgt centred, b = ref centred
	S := la.MatAlloc(3, 3)
	for i := 0; i < n; i++ {
		for p := 0; p < 3; p++ {
			for q := 0; q < 3; q++ {
				S[p][q] += (tgt[i][p] - ct[p]) * (ref[i][q] - cr[q])
			}
		}
	}

	// Horn's 4x4 key matrix
	N := la.MatAlloc(4, 4)
	N[0][0] = S[0][0] + S[1][1] + S[2][2]
	N[1][1] = S[0][0] - S[1][1] - S[2][2]
	N[2][2] = -S[0][0] + S[1][1] - S[2][2]
	N[3][3] = -S[0][0] - S[1][1] + S[2][2]
	N[0][1] = S[1][2] - S[2][1]
	N[0][2] = S[2][0] - S[0][2]
	N[0][3] = S[0][1] - S[1][0]
	N[1][2] = S[0][1] + S[1][0]
	N[1][3] = S[2][0] + S[0][2]
	N[2][3] = S[1][2] + S[2][1]
	N[1][0], N[2][0], N[3][0] = N[0][1], N[0][2], N[0][3]
	N[2][1], N[3][1], N[3][2] = N[1][2], N[1][3], N[2][3]

	// largest-eigenvalue eigenvector is the optimal quaternion
	V := la.MatAlloc(4, 4)
	λ := make([]float64, 4)
	err = jacobi4(V, λ, N)
	if err != nil {
		return
	}
	best := 0
	for i := 1; i < 4; i++ {
		if λ[i] > λ[best] {
			best = i
		}
	}
	q0, q1, q2, q3 := V[0][best], V[1][best], V[2][best], V[3][best]

	// rotation matrix from quaternion
	R := la.MatAlloc(3, 3)
	R[0][0] = q0*q0 + q1*q1 - q2*q2 - q3*q3
	R[0][1] = 2 * (q1*q2 - q0*q3)
	R[0][2] = 2 * (q1*q3 + q0*q2)
	R[1][0] = 2 * (q1*q2 + q0*q3)
	R[1][1] = q0*q0 - q1*q1 + q2*q2 - q3*q3
	R[1][2] = 2 * (q2*q3 - q0*q1)
	R[2][0] = 2 * (q1*q3 - q0*q2)
	R[2][1] = 2 * (q2*q3 + q0*q1)
	R[2][2] = q0*q0 - q1*q1 - q2*q2 + q3*q3

	// rotate about target centroid and translate onto reference centroid
	a := make([]float64, 3)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			a[k] = tgt[i][k] - ct[k]
		}
		for k := 0; k < 3; k++ {
			tgt[i][k] = R[k][0]*a[0] + R[k][1]*a[1] + R[k][2]*a[2] + cr[k]
		}
	}
	return
}

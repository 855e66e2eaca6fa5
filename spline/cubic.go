// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package spline implements cubic splines with not-a-knot boundary
// conditions over vector-valued samples
package spline

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Cubic interpolates vector-valued samples y(x) with a C² piecewise cubic.
// The boundary condition is not-a-knot: the third derivative is continuous
// across the first and last interior knots. The spline is immutable after
// construction.
type Cubic struct {
	X []float64   // knots (strictly increasing)
	Y [][]float64 // samples (n x dims)
	S [][]float64 // slopes at knots (n x dims)

	n    int
	dims int
	h    []float64 // knot spacings
}

// NewCubic fits a not-a-knot cubic spline through the samples
func NewCubic(x []float64, y [][]float64) (o *Cubic, err error) {
	n := len(x)
	if n < 2 {
		return nil, chk.Err("spline: need at least 2 points; got %d", n)
	}
	if len(y) != n {
		return nil, chk.Err("spline: x and y must have the same length")
	}
	o = new(Cubic)
	o.n = n
	o.dims = len(y[0])
	o.X = make([]float64, n)
	copy(o.X, x)
	o.Y = la.MatAlloc(n, o.dims)
	for i := 0; i < n; i++ {
		copy(o.Y[i], y[i])
	}
	o.h = make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		o.h[i] = x[i+1] - x[i]
		if o.h[i] <= 0 {
			return nil, chk.Err("spline: knots must be strictly increasing; x[%d]=%g x[%d]=%g", i, x[i], i+1, x[i+1])
		}
	}
	err = o.solveSlopes()
	return
}

// slope returns (y[i+1]-y[i])/h[i] for one dimension
func (o *Cubic) slope(i, d int) float64 {
	return (o.Y[i+1][d] - o.Y[i][d]) / o.h[i]
}

// solveSlopes assembles and solves the not-a-knot system for the slopes at
// the knots; one tridiagonal factorisation shared by all dimensions
func (o *Cubic) solveSlopes() (err error) {
	n, h := o.n, o.h
	o.S = la.MatAlloc(n, o.dims)

	// two points: a straight segment
	if n == 2 {
		for d := 0; d < o.dims; d++ {
			s := o.slope(0, d)
			o.S[0][d] = s
			o.S[1][d] = s
		}
		return
	}

	// three points with not-a-knot on both sides: a single parabola
	if n == 3 {
		A := [3][3]float64{
			{1, 1, 0},
			{h[1], 2 * (h[0] + h[1]), h[0]},
			{0, 1, 1},
		}
		for d := 0; d < o.dims; d++ {
			b := [3]float64{
				2 * o.slope(0, d),
				3 * (h[1]*o.slope(0, d) + h[0]*o.slope(1, d)),
				2 * o.slope(1, d),
			}
			// small Gaussian elimination
			m10 := A[1][0] / A[0][0]
			a11 := A[1][1] - m10*A[0][1]
			a12 := A[1][2]
			b1 := b[1] - m10*b[0]
			m21 := A[2][1] / a11
			a22 := A[2][2] - m21*a12
			b2 := b[2] - m21*b1
			s2 := b2 / a22
			s1 := (b1 - a12*s2) / a11
			s0 := (b[0] - A[0][1]*s1) / A[0][0]
			o.S[0][d], o.S[1][d], o.S[2][d] = s0, s1, s2
		}
		return
	}

	// general case: tridiagonal (the not-a-knot rows stay tridiagonal in
	// the slope formulation)
	low := make([]float64, n)  // sub-diagonal
	dia := make([]float64, n)  // diagonal
	upp := make([]float64, n)  // super-diagonal
	dL := h[0] + h[1]
	dia[0] = h[1]
	upp[0] = dL
	for i := 1; i < n-1; i++ {
		low[i] = h[i]
		dia[i] = 2 * (h[i-1] + h[i])
		upp[i] = h[i-1]
	}
	dR := h[n-3] + h[n-2]
	low[n-1] = dR
	dia[n-1] = h[n-3]

	// factorise once (Thomas elimination)
	cp := make([]float64, n)
	cp[0] = upp[0] / dia[0]
	piv := make([]float64, n)
	piv[0] = dia[0]
	for i := 1; i < n; i++ {
		piv[i] = dia[i] - low[i]*cp[i-1]
		if piv[i] == 0 {
			return chk.Err("spline: singular not-a-knot system")
		}
		cp[i] = upp[i] / piv[i]
	}

	b := make([]float64, n)
	for d := 0; d < o.dims; d++ {
		b[0] = ((h[0]+2*dL)*h[1]*o.slope(0, d) + h[0]*h[0]*o.slope(1, d)) / dL
		for i := 1; i < n-1; i++ {
			b[i] = 3 * (h[i]*o.slope(i-1, d) + h[i-1]*o.slope(i, d))
		}
		b[n-1] = (h[n-2]*h[n-2]*o.slope(n-3, d) + (2*dR+h[n-2])*h[n-3]*o.slope(n-2, d)) / dR

		b[0] /= piv[0]
		for i := 1; i < n; i++ {
			b[i] = (b[i] - low[i]*b[i-1]) / piv[i]
		}
		o.S[n-1][d] = b[n-1]
		for i := n - 2; i >= 0; i-- {
			o.S[i][d] = b[i] - cp[i]*o.S[i+1][d]
		}
	}
	return
}

// interval finds the segment containing s; evaluations outside the knot
// range extrapolate with the end segments
func (o *Cubic) interval(s float64) int {
	lo, hi := 0, o.n-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s >= o.X[mid] {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Eval evaluates the spline at s, filling out (dims components)
func (o *Cubic) Eval(s float64, out []float64) {
	i := o.interval(s)
	t := s - o.X[i]
	h := o.h[i]
	for d := 0; d < o.dims; d++ {
		δ := o.slope(i, d)
		c2 := (3*δ - 2*o.S[i][d] - o.S[i+1][d]) / h
		c3 := (o.S[i][d] + o.S[i+1][d] - 2*δ) / (h * h)
		out[d] = o.Y[i][d] + t*(o.S[i][d]+t*(c2+t*c3))
	}
}

// Deriv1 evaluates the first derivative at s
func (o *Cubic) Deriv1(s float64, out []float64) {
	i := o.interval(s)
	t := s - o.X[i]
	h := o.h[i]
	for d := 0; d < o.dims; d++ {
		δ := o.slope(i, d)
		c2 := (3*δ - 2*o.S[i][d] - o.S[i+1][d]) / h
		c3 := (o.S[i][d] + o.S[i+1][d] - 2*δ) / (h * h)
		out[d] = o.S[i][d] + t*(2*c2+3*t*c3)
	}
}

// Deriv2 evaluates the second derivative at s
func (o *Cubic) Deriv2(s float64, out []float64) {
	i := o.interval(s)
	t := s - o.X[i]
	h := o.h[i]
	for d := 0; d < o.dims; d++ {
		δ := o.slope(i, d)
		c2 := (3*δ - 2*o.S[i][d] - o.S[i+1][d]) / h
		c3 := (o.S[i][d] + o.S[i+1][d] - 2*δ) / (h * h)
		out[d] = 2*c2 + 6*t*c3
	}
}

// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ode implements the adaptive first-order solver used to drive
// chains of states to a fixed point of ẋ = f(x)
package ode

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// hmin is the smallest acceptable step size
const hmin = 1e-10

// maxtol aborts the solve when the residual blows up beyond this value
const maxtol = 1e3

// ODE12r drives ẋ = f(x) to a fixed point with an adaptive explicit scheme:
// steps are accepted when the residual decreases sufficiently or the local
// error estimate stays within rtol, and the step size follows a linesearch
// extrapolation bounded by the error estimate.
//  Input:
//   force    -- computes f(x)
//   x0       -- initial degrees of freedom (relaxed in place)
//   fmax     -- residual tolerance for convergence
//   rtol     -- relative tolerance for the local error estimate
//   c1, c2   -- sufficient-decrease and residual-growth safety constants
//   steps    -- maximum number of force evaluations
//   verbose  -- print per-iteration residuals
//   callback -- invoked with x after every accepted step; may be nil
//   residual -- convergence probe; nil selects the largest component of f
//  Output:
//   x   -- the fixed point (or last iterate on error)
//   nit -- number of accepted steps
func ODE12r(force func(x []float64) ([]float64, error), x0 []float64,
	fmax, rtol, c1, c2 float64, steps int, verbose bool,
	callback func(x []float64) error,
	residual func(f, x []float64) float64) (x []float64, nit int, err error) {

	if residual == nil {
		residual = func(f, x []float64) float64 { return la.VecLargest(f, 1) }
	}
	nd := len(x0)
	x = x0

	fn, err := force(x)
	if err != nil {
		return
	}
	if callback != nil {
		err = callback(x)
		if err != nil {
			return
		}
	}
	rn := residual(fn, x)
	if verbose {
		io.Pf("ode12r: %4d %23.15e\n", 0, rn)
	}
	if rn <= fmax {
		return
	}
	if rn > maxtol {
		return x, 0, chk.Err("ode: initial residual %g exceeds maximum tolerance %g", rn, maxtol)
	}

	// initial step size from the first residual
	h := 0.5 * math.Sqrt(rtol) / rn
	if h < hmin {
		h = hmin
	}

	xnew := make([]float64, nd)
	for it := 1; it < steps; it++ {

		// trial Euler step
		for i := 0; i < nd; i++ {
			xnew[i] = x[i] + h*fn[i]
		}
		fnew, ferr := force(xnew)
		if ferr != nil {
			return x, nit, ferr
		}
		rnew := residual(fnew, xnew)
		if rnew > maxtol {
			return x, nit, chk.Err("ode: residual %g exceeds maximum tolerance %g", rnew, maxtol)
		}

		// local error estimate from the force increment
		var errest, fy, yy float64
		for i := 0; i < nd; i++ {
			y := fn[i] - fnew[i]
			e := 0.5 * h * y
			if math.Abs(e) > errest {
				errest = math.Abs(e)
			}
			fy += fn[i] * y
			yy += y * y
		}

		accept := rnew <= rn*(1-c1*h) || (rnew <= rn*c2 && errest <= rtol)

		// linesearch extrapolation and error-bound step estimates
		hls := h * fy / (yy + 1e-10)
		if math.IsNaN(hls) || hls < hmin {
			hls = math.Inf(1)
		}
		herr := math.Inf(1)
		if errest > 0 {
			herr = h * 0.5 * math.Sqrt(rtol/errest)
		}

		if accept {
			copy(x, xnew)
			fn = fnew
			rn = rnew
			nit++
			if callback != nil {
				err = callback(x)
				if err != nil {
					return
				}
			}
			if verbose {
				io.Pf("ode12r: %4d %23.15e\n", nit, rn)
			}
			if rn <= fmax {
				return
			}
			h = math.Max(0.25*h, math.Min(math.Min(4*h, hls), herr))
		} else {
			h = math.Max(0.1*h, math.Min(math.Min(0.25*h, hls), herr))
		}
		if math.Abs(h) <= hmin {
			return x, nit, chk.Err("ode: cannot find a reasonable step size; |h| = %g <= %g", h, hmin)
		}
	}
	return x, nit, chk.Err("ode: did not converge in %d steps; residual = %g", steps, rn)
}

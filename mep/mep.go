// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mep implements preconditioned minimum-energy-path finding: the
// NEB and String variants driven through a cubic-spline fit of the band in
// preconditioned arc-length
package mep

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"

	"github.com/Waisni/ase/band"
	"github.com/Waisni/ase/conf"
	"github.com/Waisni/ase/geo"
	"github.com/Waisni/ase/ode"
	"github.com/Waisni/ase/precon"
	"github.com/Waisni/ase/spline"
)

// AdaptSprings retunes the spring constants between steps (NEB variant)
type AdaptSprings func(k []float64, images []*conf.Configuration) []float64

// Input holds the options of a preconditioned MEP search
type Input struct {
	Variant string    `json:"variant"` // "neb" or "string"
	Precon  string    `json:"precon"`  // preconditioner name; e.g. "Exp"
	K       []float64 `json:"k"`       // spring constants; one value broadcasts
	Verbose bool      `json:"verbose"` // log residuals each step

	Adapt        AdaptSprings `json:"-"` // optional spring retuning (NEB variant)
	GetAllForces func(images []*conf.Configuration) ([][][]float64, error) `json:"-"` // optional batched evaluation
}

// PreconMEP finds minimum energy paths with per-image preconditioners
type PreconMEP struct {
	*band.Chain

	// options
	Variant    string
	PreconName string
	K          []float64
	Verbose    bool
	Adapt      AdaptSprings
	GetAll     func(images []*conf.Configuration) ([][][]float64, error)

	// per-step state
	Precons     []precon.Precon // one operator per image
	Residuals   []float64       // per-interior-image convergence residuals
	FmaxHistory []float64       // residual maxima, appended every logged step

	stepSelection string // saved for logging
}

// NewPreconMEP returns a new preconditioned MEP driver
func NewPreconMEP(images []*conf.Configuration, in *Input) (o *PreconMEP, err error) {
	o = new(PreconMEP)
	o.Chain, err = band.NewChain(images)
	if err != nil {
		return nil, err
	}
	if in == nil {
		in = new(Input)
	}

	o.Variant = in.Variant
	if o.Variant == "" {
		o.Variant = "string"
	}
	if o.Variant != "neb" && o.Variant != "string" {
		return nil, chk.Err("mep: variant must be \"neb\" or \"string\"; got %q", o.Variant)
	}

	o.PreconName = in.Precon
	if o.PreconName == "" {
		o.PreconName = "Exp"
	}
	p0, err := precon.New(o.PreconName)
	if err != nil {
		return nil, err
	}
	o.Precons = make([]precon.Precon, o.Nimages)
	o.Precons[0] = p0
	err = p0.MakePrecon(o.Images[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < o.Nimages; i++ {
		o.Precons[i] = p0.Copy()
		err = o.Precons[i].MakePrecon(o.Images[i])
		if err != nil {
			return nil, err
		}
	}

	nk := o.Nimages - 1
	switch len(in.K) {
	case 0:
		o.K = make([]float64, nk)
		la.VecFill(o.K, 0.1)
	case 1:
		o.K = make([]float64, nk)
		la.VecFill(o.K, in.K[0])
	case nk:
		o.K = make([]float64, nk)
		copy(o.K, in.K)
	default:
		return nil, chk.Err("mep: need %d spring constants (or one); got %d", nk, len(in.K))
	}

	o.Verbose = in.Verbose
	o.Adapt = in.Adapt
	o.GetAll = in.GetAllForces
	o.Residuals = make([]float64, o.Nimages-2)
	return
}

// SplineFit fits a cubic spline through the flattened image positions in
// normalised arc-length. The preconditioned metric is used unless euclid is
// true (virtual-work integration must not couple to the preconditioner).
func (o *PreconMEP) SplineFit(euclid bool) (s []float64, sp *spline.Cubic, err error) {
	M, n := o.Nimages, o.Natoms
	nd := 3 * n
	x := la.MatAlloc(M, nd)
	dP := make([]float64, M)
	dx := make([]float64, nd)
	for j := 0; j < n; j++ {
		copy(x[0][3*j:3*j+3], o.Images[0].Pos[j])
	}
	Δ := la.MatAlloc(n, 3)
	for i := 1; i < M; i++ {
		for j := 0; j < n; j++ {
			copy(x[i][3*j:3*j+3], o.Images[i].Pos[j])
			for k := 0; k < 3; k++ {
				Δ[j][k] = o.Images[i].Pos[j][k] - o.Images[i-1].Pos[j][k]
			}
		}
		dm, _, merr := geo.Mic(Δ, o.Images[i-1].Cell, o.Images[i-1].Pbc)
		if merr != nil {
			return nil, nil, merr
		}
		for j := 0; j < n; j++ {
			copy(dx[3*j:3*j+3], dm[j])
		}
		if euclid {
			dP[i] = la.VecNorm(dx)
		} else {
			dP[i] = math.Sqrt(0.5 * (o.Precons[i].Dot(dx, dx) + o.Precons[i-1].Dot(dx, dx)))
		}
	}
	var sum float64
	for i := 0; i < M; i++ {
		sum += dP[i]
	}
	if sum <= 0 {
		return nil, nil, chk.Err("mep: cannot fit spline; total arc length is zero")
	}
	s = make([]float64, M)
	var cum float64
	for i := 0; i < M; i++ {
		cum += dP[i]
		s[i] = cum / sum
	}
	sp, err = spline.NewCubic(s, x)
	return
}

// evaluate collects raw forces for the interior images
func (o *PreconMEP) evaluate(forces [][][]float64) (err error) {
	if o.GetAll != nil {
		res, gerr := o.GetAll(o.Images[1 : o.Nimages-1])
		if gerr != nil {
			return gerr
		}
		for i := 1; i < o.Nimages-1; i++ {
			for j := 0; j < o.Natoms; j++ {
				copy(forces[i][j], res[i-1][j])
			}
		}
		return
	}
	err = o.CheckCalculators()
	if err != nil {
		return
	}
	for i := 1; i < o.Nimages-1; i++ {
		if o.Images[i].Calc == nil {
			return chk.Err("mep: image %d has no calculator attached", i)
		}
		err = o.Images[i].Calc.Forces(o.Images[i], forces[i])
		if err != nil {
			return
		}
	}
	return
}

// GetForces evaluates the oracles, rebuilds the preconditioners, fits the
// spline and assembles the projected effective forces
func (o *PreconMEP) GetForces() (F [][]float64, err error) {
	M, n := o.Nimages, o.Natoms
	nd := 3 * n

	forces := make([][][]float64, M)
	for i := 1; i < M-1; i++ {
		forces[i] = la.MatAlloc(n, 3)
	}
	err = o.evaluate(forces)
	if err != nil {
		return
	}

	// retain raw results for emission
	o.RealForces = make([][][]float64, M)
	o.RealForces[0] = la.MatAlloc(n, 3)
	o.RealForces[M-1] = la.MatAlloc(n, 3)
	for i := 1; i < M-1; i++ {
		o.RealForces[i] = la.MatAlloc(n, 3)
		for j := 0; j < n; j++ {
			copy(o.RealForces[i][j], forces[i][j])
		}
	}

	// rebuild the per-image operators from the current geometries
	for i := 0; i < M; i++ {
		err = o.Precons[i].MakePrecon(o.Images[i])
		if err != nil {
			return
		}
	}

	s, sp, err := o.SplineFit(false)
	if err != nil {
		return
	}

	la.VecFill(o.Residuals, 0)
	fvec := make([]float64, nd)
	tP := make([]float64, nd)
	d2 := make([]float64, nd)
	F = la.MatAlloc((M-2)*n, 3)

	for i := 1; i < M-1; i++ {
		flattenRows(fvec, forces[i])

		// preconditioned force
		pf, perr := o.Precons[i].Apply(fvec, o.Images[i])
		if perr != nil {
			return nil, perr
		}

		// unit tangent in the preconditioned metric
		sp.Deriv1(s[i], tP)
		tn := o.Precons[i].Norm(tP)
		if tn <= 0 {
			return nil, chk.Err("mep: zero tangent at image %d", i)
		}
		la.VecScale(tP, 0, 1/tn, tP)

		// project out the component parallel to the band
		var ft float64
		for k := 0; k < nd; k++ {
			ft += tP[k] * fvec[k]
		}
		for k := 0; k < nd; k++ {
			pf[k] -= ft * tP[k]
		}

		// residual is the forward-multiplied projected force
		o.Residuals[i-1] = la.VecLargest(o.Precons[i].Pdot(pf), 1)

		// spring term proportional to the band curvature
		if o.Variant == "neb" {
			kbar := 0.5 * (o.K[i-1] + o.K[i]) / float64(M*M)
			sp.Deriv2(s[i], d2)
			η := kbar * o.Precons[i].Dot(d2, tP)
			for k := 0; k < nd; k++ {
				pf[k] += η * tP[k]
			}
		}

		for j := 0; j < n; j++ {
			copy(F[(i-1)*n+j], pf[3*j:3*j+3])
		}
	}
	return
}

// Residual returns the convergence measure: the largest per-image residual
func (o *PreconMEP) Residual() (res float64) {
	for _, r := range o.Residuals {
		if r > res {
			res = r
		}
	}
	return
}

// Energies evaluates the potential energy of every image and refreshes the
// band maximum
func (o *PreconMEP) Energies() (E []float64, err error) {
	E = make([]float64, o.Nimages)
	for i := 0; i < o.Nimages; i++ {
		E[i], err = o.Images[i].PotentialEnergy()
		if err != nil {
			return
		}
	}
	o.Chain.Energies = make([]float64, o.Nimages)
	copy(o.Chain.Energies, E)
	o.Imax = 1
	for i := 2; i < o.Nimages-1; i++ {
		if E[i] > E[o.Imax] {
			o.Imax = i
		}
	}
	o.Emax = E[o.Imax]
	return
}

// ForceFunction adapts the driver to a generic optimizer: set the degrees of
// freedom and return the flat effective forces
func (o *PreconMEP) ForceFunction(x []float64) (f []float64, err error) {
	o.SetDofs(x)
	F, err := o.GetForces()
	if err != nil {
		return
	}
	f = make([]float64, o.Ndofs())
	flattenRows(f, F)
	return
}

// Log appends the residual maximum to the history and prints a trace line
func (o *PreconMEP) Log() {
	fmax := o.Residual()
	o.FmaxHistory = append(o.FmaxHistory, fmax)
	if o.Verbose {
		if o.Nsteps == 0 {
			io.Pf("%-22s %4s %12s\n", "", "step", "fmax")
		}
		io.Pf("mep[%s,%s,%s]: %4d %12.6f\n", o.Variant, o.stepSelection, o.PreconName, o.Nsteps, fmax)
	}
}

// Callback runs after every accepted optimizer step: it logs, advances the
// step counter and, for the String variant, reparameterises the band by
// resampling the spline at equispaced arc-length
func (o *PreconMEP) Callback(x []float64) (err error) {
	o.Log()
	o.Nsteps++

	if o.Variant == "string" {
		o.SetDofs(x)
		_, sp, serr := o.SplineFit(false)
		if serr != nil {
			return serr
		}
		news := utl.LinSpace(0, 1, o.Nimages)
		nd := 3 * o.Natoms
		out := make([]float64, nd)
		for i := 1; i < o.Nimages-1; i++ {
			sp.Eval(news[i], out)
			copy(x[(i-1)*nd:i*nd], out)
		}
		o.SetDofs(x)
		return
	}
	if o.Adapt != nil {
		copy(o.K, o.Adapt(o.K, o.Images))
	}
	return
}

// Run relaxes the band until the largest residual drops below fmax.
//  Input:
//   fmax  -- residual tolerance
//   steps -- maximum number of steps
//   stepSelection -- "ode" for the adaptive solver or "static" for fixed steps
//   alpha -- step length for the static mode
//   rtol, c1, c2 -- adaptive-solver safety parameters
func (o *PreconMEP) Run(fmax float64, steps int, stepSelection string, alpha, rtol, c1, c2 float64) (err error) {
	switch stepSelection {
	case "ode", "static":
	default:
		return chk.Err("mep: step selection must be \"ode\" or \"static\"; got %q", stepSelection)
	}
	o.stepSelection = stepSelection

	if stepSelection == "ode" {
		_, _, err = ode.ODE12r(o.ForceFunction, o.GetDofs(), fmax, rtol, c1, c2, steps, o.Verbose,
			o.Callback, func(f, x []float64) float64 { return o.Residual() })
		return
	}

	x := o.GetDofs()
	for step := 0; step < steps; step++ {
		f, ferr := o.ForceFunction(x)
		if ferr != nil {
			return ferr
		}
		if o.Residual() <= fmax {
			return
		}
		la.VecAdd2(x, 1, x, alpha, f)
		err = o.Callback(x)
		if err != nil {
			return
		}
	}
	return
}

// flattenRows copies a matrix of row vectors into one long vector
func flattenRows(x []float64, P [][]float64) {
	for i := 0; i < len(P); i++ {
		copy(x[3*i:3*i+3], P[i])
	}
}

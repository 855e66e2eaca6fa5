// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

import (
	"math"
	"sync"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/Waisni/ase/conf"
	"github.com/Waisni/ase/geo"
)

// Input holds the options of a nudged elastic band
type Input struct {
	Method            string    `json:"method"`    // tangent method: "aseneb", "improvedtangent" or "eb"
	K                 []float64 `json:"k"`         // spring constants; one value broadcasts to all springs
	Fmax              float64   `json:"fmax"`      // per-image force tolerance used by dynamic relaxation
	Climb             bool      `json:"climb"`     // enable the climbing image
	Parallel          bool      `json:"parallel"`  // evaluate images in parallel
	RemoveRotation    bool      `json:"rmrot"`     // rigid-align each image to its predecessor before force evaluation
	DynamicRelaxation bool      `json:"dynrelax"`  // freeze locally converged images
	ScaleFmax         float64   `json:"scalefmax"` // distance-weighted slack for dynamic relaxation
}

// NEB implements the nudged elastic band method with three tangent variants
// and an optional climbing image
type NEB struct {
	*Chain

	// options
	Method            string
	K                 []float64 // nimages-1 spring constants
	Fmax              float64
	Climb             bool
	Parallel          bool
	RemoveRotation    bool
	DynamicRelaxation bool
	ScaleFmax         float64

	// communicator
	World World
}

// NewNEB returns a new NEB structure after validating the configuration
func NewNEB(images []*conf.Configuration, in *Input, world World) (o *NEB, err error) {
	o = new(NEB)
	o.Chain, err = NewChain(images)
	if err != nil {
		return nil, err
	}
	if in == nil {
		in = new(Input)
	}
	if world == nil {
		world = SerialWorld{}
	}
	o.World = world

	// method
	o.Method = in.Method
	if o.Method == "" {
		o.Method = "aseneb"
	}
	switch o.Method {
	case "aseneb", "improvedtangent", "eb":
	default:
		return nil, chk.Err("band: unknown method %q", o.Method)
	}

	// spring constants
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
		return nil, chk.Err("band: need %d spring constants (or one); got %d", nk, len(in.K))
	}

	// tolerances and flags
	o.Fmax = in.Fmax
	if o.Fmax == 0 {
		o.Fmax = 0.05
	}
	o.Climb = in.Climb
	o.Parallel = in.Parallel
	o.RemoveRotation = in.RemoveRotation
	o.DynamicRelaxation = in.DynamicRelaxation
	o.ScaleFmax = in.ScaleFmax
	if o.ScaleFmax != 0 && !o.DynamicRelaxation {
		return nil, chk.Err("band: scaled convergence criteria (scalefmax) requires dynamic relaxation")
	}
	if o.DynamicRelaxation && o.Parallel {
		return nil, chk.Err("band: dynamic relaxation does not work when parallelising over images")
	}
	if o.Parallel {
		W := o.World.Size()
		if W != 1 && W%(o.Nimages-2) != 0 {
			return nil, chk.Err("band: world size (%d) must be 1 or a multiple of the number of interior images (%d)", W, o.Nimages-2)
		}
	}
	return
}

// SetPositions overwrites interior positions. Under dynamic relaxation,
// images frozen by the last force evaluation keep their positions.
func (o *NEB) SetPositions(P [][]float64) {
	if !o.DynamicRelaxation {
		o.Chain.SetPositions(P)
		return
	}
	if o.RealForces == nil {
		chk.Panic("band: dynamic relaxation requires one force evaluation before SetPositions")
	}
	for i := 1; i < o.Nimages-1; i++ {
		if o.Frozen[i-1] {
			continue
		}
		for j := 0; j < o.Natoms; j++ {
			copy(o.Images[i].Pos[j], P[(i-1)*o.Natoms+j])
		}
	}
}

// SetDofs overwrites interior positions from one long vector
func (o *NEB) SetDofs(x []float64) {
	chk.IntAssert(len(x), o.Ndofs())
	P := la.MatAlloc((o.Nimages-2)*o.Natoms, 3)
	for i := 0; i < len(P); i++ {
		copy(P[i], x[3*i:3*i+3])
	}
	o.SetPositions(P)
}

// BandEnergy returns the band potential: the maximum energy over the
// interior images
func (o *NEB) BandEnergy() float64 {
	return o.Emax
}

// FmaxAll returns the per-interior-image maximum atomic force norms from the
// last force evaluation
func (o *NEB) FmaxAll() []float64 {
	res := make([]float64, len(o.FmaxImages))
	copy(res, o.FmaxImages)
	return res
}

// evaluate dispatches per-image energy/force evaluation according to the
// scheduling mode: serial, goroutine fork-join, or distributed
func (o *NEB) evaluate(energies []float64, forces [][][]float64) (err error) {
	M := o.Nimages

	// serial
	if !o.Parallel {
		for i := 1; i < M-1; i++ {
			energies[i], err = o.Images[i].PotentialEnergy()
			if err != nil {
				return
			}
			err = o.Images[i].Calc.Forces(o.Images[i], forces[i])
			if err != nil {
				return
			}
		}
		return
	}

	// one goroutine per interior image; workers write disjoint slots
	if o.World.Size() == 1 {
		var wg sync.WaitGroup
		errs := make([]error, M)
		for i := 1; i < M-1; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				e, ferr := o.Images[i].PotentialEnergy()
				if ferr != nil {
					errs[i] = ferr
					return
				}
				energies[i] = e
				errs[i] = o.Images[i].Calc.Forces(o.Images[i], forces[i])
			}(i)
		}
		wg.Wait()
		for i := 1; i < M-1; i++ {
			if errs[i] != nil {
				return errs[i]
			}
		}
		return
	}

	// distributed: each rank computes one interior image, then a scalar
	// error flag is sum-reduced so all ranks fail symmetrically before any
	// broadcast is entered
	W := o.World.Size()
	i := o.World.Rank()*(M-2)/W + 1
	flag := 0.0
	e, ferr := o.Images[i].PotentialEnergy()
	if ferr == nil {
		energies[i] = e
		ferr = o.Images[i].Calc.Forces(o.Images[i], forces[i])
	}
	if ferr != nil {
		flag = 1.0
	}
	if o.World.SumFloat(flag) > 0 {
		return chk.Err("band: parallel force evaluation failed (local error: %v)", ferr)
	}
	buf := make([]float64, 3*o.Natoms)
	ebuf := make([]float64, 1)
	for i := 1; i < M-1; i++ {
		root := (i - 1) * W / (M - 2)
		ebuf[0] = energies[i]
		o.World.Broadcast(ebuf, root)
		energies[i] = ebuf[0]
		flatten(buf, forces[i])
		o.World.Broadcast(buf, root)
		for j := 0; j < o.Natoms; j++ {
			copy(forces[i][j], buf[3*j:3*j+3])
		}
	}
	return
}

// GetForces evaluates the calculators and assembles the effective band
// forces as one (nimages-2)*natoms x 3 matrix
func (o *NEB) GetForces() (F [][]float64, err error) {
	err = o.CheckCalculators()
	if err != nil {
		return
	}
	M, n := o.Nimages, o.Natoms

	if o.RemoveRotation {
		for i := 1; i < M; i++ {
			err = geo.Align(o.Images[i-1].Pos, o.Images[i].Pos)
			if err != nil {
				return
			}
		}
	}

	energies := make([]float64, M)
	forces := make([][][]float64, M)
	for i := 1; i < M-1; i++ {
		forces[i] = la.MatAlloc(n, 3)
	}

	// endpoint energies are needed by the energy-weighted tangents
	if o.Method != "aseneb" {
		energies[0], err = o.Images[0].PotentialEnergy()
		if err != nil {
			return
		}
		energies[M-1], err = o.Images[M-1].PotentialEnergy()
		if err != nil {
			return
		}
	}

	err = o.evaluate(energies, forces)
	if err != nil {
		return
	}

	// retain raw results for emission
	o.Energies = energies
	o.RealForces = make([][][]float64, M)
	o.RealForces[0] = la.MatAlloc(n, 3)
	o.RealForces[M-1] = la.MatAlloc(n, 3)
	for i := 1; i < M-1; i++ {
		o.RealForces[i] = la.MatAlloc(n, 3)
		for j := 0; j < n; j++ {
			copy(o.RealForces[i][j], forces[i][j])
		}
	}

	// highest-energy interior image; ties resolve to the first index
	o.Imax = 1
	for i := 2; i < M-1; i++ {
		if energies[i] > energies[o.Imax] {
			o.Imax = i
		}
	}
	o.Emax = energies[o.Imax]

	// equilibrium spring length for the full-spring method
	var eqLength float64
	if o.Method == "eb" {
		beeline := la.MatAlloc(n, 3)
		for j := 0; j < n; j++ {
			for k := 0; k < 3; k++ {
				beeline[j][k] = o.Images[M-1].Pos[j][k] - o.Images[0].Pos[j][k]
			}
		}
		eqLength = geo.MatNorm(beeline) / float64(M-1)
	}

	if o.FmaxImages == nil {
		o.FmaxImages = make([]float64, M-2)
		o.Frozen = make([]bool, M-2)
	}

	t1, nt1, err := o.segment(1)
	if err != nil {
		return
	}
	F = la.MatAlloc((M-2)*n, 3)

	for i := 1; i < M-1; i++ {
		t2, nt2, serr := o.segment(i + 1)
		if serr != nil {
			return nil, serr
		}

		// tangent selection
		var tangent [][]float64
		var tt float64
		switch o.Method {
		case "eb":
			// bisection of the spring directions
			tangent = la.MatAlloc(n, 3)
			for j := 0; j < n; j++ {
				for k := 0; k < 3; k++ {
					tangent[j][k] = t1[j][k]/nt1 + t2[j][k]/nt2
				}
			}
			matScale(tangent, 1/geo.MatNorm(tangent))
		case "improvedtangent":
			switch {
			case energies[i+1] > energies[i] && energies[i] > energies[i-1]:
				tangent = matClone(t2)
			case energies[i+1] < energies[i] && energies[i] < energies[i-1]:
				tangent = matClone(t1)
			default:
				Δvmax := math.Max(math.Abs(energies[i+1]-energies[i]), math.Abs(energies[i-1]-energies[i]))
				Δvmin := math.Min(math.Abs(energies[i+1]-energies[i]), math.Abs(energies[i-1]-energies[i]))
				tangent = la.MatAlloc(n, 3)
				for j := 0; j < n; j++ {
					for k := 0; k < 3; k++ {
						if energies[i+1] > energies[i-1] {
							tangent[j][k] = t2[j][k]*Δvmax + t1[j][k]*Δvmin
						} else {
							tangent[j][k] = t2[j][k]*Δvmin + t1[j][k]*Δvmax
						}
					}
				}
			}
			matScale(tangent, 1/geo.MatNorm(tangent))
		default: // aseneb
			switch {
			case i < o.Imax:
				tangent = t2
			case i > o.Imax:
				tangent = t1
			default:
				tangent = la.MatAlloc(n, 3)
				for j := 0; j < n; j++ {
					for k := 0; k < 3; k++ {
						tangent[j][k] = t1[j][k] + t2[j][k]
					}
				}
			}
			tt = matDot(tangent, tangent)
		}

		// force projection
		f := forces[i]
		ft := matDot(f, tangent)
		switch {
		case i == o.Imax && o.Climb:
			// full force with the parallel component inverted
			if o.Method == "aseneb" {
				matAdd(f, -2*ft/tt, tangent)
			} else {
				matAdd(f, -2*ft, tangent)
			}
		case o.Method == "eb":
			matAdd(f, -ft, tangent)
			scale := 1.0
			if o.Climb && abs(i-o.Imax) == 1 {
				Δvmax := math.Max(math.Abs(energies[i+1]-energies[i]), math.Abs(energies[i-1]-energies[i]))
				Δvmin := math.Min(math.Abs(energies[i+1]-energies[i]), math.Abs(energies[i-1]-energies[i]))
				scale = 0
				if Δvmax > 0 {
					scale = Δvmin / Δvmax
				}
			}
			c1 := -(nt1 - eqLength) / nt1 * o.K[i-1] * scale
			c2 := (nt2 - eqLength) / nt2 * o.K[i] * scale
			matAdd(f, c1, t1)
			matAdd(f, c2, t2)
		case o.Method == "improvedtangent":
			matAdd(f, -ft, tangent)
			matAdd(f, nt2*o.K[i]-nt1*o.K[i-1], tangent)
		default: // aseneb
			matAdd(f, -ft/tt, tangent)
			var springdot float64
			for j := 0; j < n; j++ {
				for k := 0; k < 3; k++ {
					springdot += (t1[j][k]*o.K[i-1] - t2[j][k]*o.K[i]) * tangent[j][k]
				}
			}
			matAdd(f, -springdot/tt, tangent)
		}

		t1, nt1 = t2, nt2

		// dynamic relaxation: freeze locally converged images
		fm := rowMaxNorm(f, 0, n)
		o.FmaxImages[i-1] = fm
		o.Frozen[i-1] = false
		if o.DynamicRelaxation {
			var rel float64
			for j := 0; j < n; j++ {
				for k := 0; k < 3; k++ {
					d := o.Images[i].Pos[j][k] - o.Images[o.Imax].Pos[j][k]
					rel += d * d
				}
			}
			rel = math.Sqrt(rel)
			if fm < o.Fmax*(1+rel*o.ScaleFmax) && i != o.Imax {
				for j := 0; j < n; j++ {
					la.VecFill(f[j], 0)
				}
				o.Frozen[i-1] = true
			}
		}

		for j := 0; j < n; j++ {
			copy(F[(i-1)*n+j], f[j])
		}
	}
	return
}

// segment computes the minimum-image displacement from image i-1 to image i
// and its Euclidean length
func (o *NEB) segment(i int) (t [][]float64, nt float64, err error) {
	n := o.Natoms
	Δ := la.MatAlloc(n, 3)
	for j := 0; j < n; j++ {
		for k := 0; k < 3; k++ {
			Δ[j][k] = o.Images[i].Pos[j][k] - o.Images[i-1].Pos[j][k]
		}
	}
	t, _, err = geo.Mic(Δ, o.Images[i-1].Cell, o.Images[i-1].Pbc)
	if err != nil {
		return
	}
	nt = geo.MatNorm(t)
	return
}

// small dense helpers

func matDot(a, b [][]float64) (res float64) {
	for j := 0; j < len(a); j++ {
		for k := 0; k < 3; k++ {
			res += a[j][k] * b[j][k]
		}
	}
	return
}

func matAdd(a [][]float64, coef float64, b [][]float64) {
	for j := 0; j < len(a); j++ {
		for k := 0; k < 3; k++ {
			a[j][k] += coef * b[j][k]
		}
	}
}

func matScale(a [][]float64, coef float64) {
	for j := 0; j < len(a); j++ {
		for k := 0; k < 3; k++ {
			a[j][k] *= coef
		}
	}
}

func matClone(a [][]float64) (b [][]float64) {
	b = la.MatAlloc(len(a), 3)
	for j := 0; j < len(a); j++ {
		copy(b[j], a[j])
	}
	return
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

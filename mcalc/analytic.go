// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcalc

import (
	"math"

	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"

	"github.com/Waisni/ase/conf"
)

// add models to factory
func init() {
	allocators["zero"] = func() Model { return new(Zero) }
	allocators["uniform"] = func() Model { return new(Uniform) }
	allocators["quartic"] = func() Model { return new(Quartic) }
	allocators["cubicramp"] = func() Model { return new(CubicRamp) }
	allocators["lj"] = func() Model { return new(LennardJones) }
}

// Zero is a flat potential: zero energy and zero forces everywhere
type Zero struct{}

func (o *Zero) Init(prms fun.Prms) error { return nil }
func (o *Zero) Provides() []string       { return []string{"energy", "forces"} }

func (o *Zero) PotentialEnergy(c *conf.Configuration) (float64, error) {
	return 0, nil
}

func (o *Zero) Forces(c *conf.Configuration, F [][]float64) error {
	for i := 0; i < len(F); i++ {
		la.VecFill(F[i], 0)
	}
	return nil
}

// Uniform is a constant force field: E = e0 - Σ f·p with constant per-atom
// force f
type Uniform struct {
	E0 float64 // energy offset
	Fx float64 // force x-component
	Fy float64 // force y-component
	Fz float64 // force z-component
}

// Init initialises model
func (o *Uniform) Init(prms fun.Prms) error {
	for _, p := range prms {
		switch p.N {
		case "e0":
			o.E0 = p.V
		case "fx":
			o.Fx = p.V
		case "fy":
			o.Fy = p.V
		case "fz":
			o.Fz = p.V
		}
	}
	return nil
}

func (o *Uniform) Provides() []string { return []string{"energy", "forces"} }

func (o *Uniform) PotentialEnergy(c *conf.Configuration) (E float64, err error) {
	E = o.E0
	for i := 0; i < c.Natoms(); i++ {
		E -= o.Fx*c.Pos[i][0] + o.Fy*c.Pos[i][1] + o.Fz*c.Pos[i][2]
	}
	return
}

func (o *Uniform) Forces(c *conf.Configuration, F [][]float64) error {
	for i := 0; i < len(F); i++ {
		F[i][0], F[i][1], F[i][2] = o.Fx, o.Fy, o.Fz
	}
	return nil
}

// Quartic is a symmetric double well acting on the x-coordinate of every
// atom: E = a·Σ (x²-1)²
type Quartic struct {
	A float64 // well scale
}

// Init initialises model
func (o *Quartic) Init(prms fun.Prms) error {
	o.A = 1
	for _, p := range prms {
		switch p.N {
		case "a":
			o.A = p.V
		}
	}
	return nil
}

func (o *Quartic) Provides() []string { return []string{"energy", "forces"} }

func (o *Quartic) PotentialEnergy(c *conf.Configuration) (E float64, err error) {
	for i := 0; i < c.Natoms(); i++ {
		x := c.Pos[i][0]
		E += o.A * (x*x - 1) * (x*x - 1)
	}
	return
}

func (o *Quartic) Forces(c *conf.Configuration, F [][]float64) error {
	for i := 0; i < len(F); i++ {
		x := c.Pos[i][0]
		F[i][0] = -4 * o.A * x * (x*x - 1)
		F[i][1] = 0
		F[i][2] = 0
	}
	return nil
}

// CubicRamp is a tilted cubic acting on the x-coordinate of every atom:
// E = Σ (x³/3 - x)
type CubicRamp struct{}

func (o *CubicRamp) Init(prms fun.Prms) error { return nil }
func (o *CubicRamp) Provides() []string       { return []string{"energy", "forces"} }

func (o *CubicRamp) PotentialEnergy(c *conf.Configuration) (E float64, err error) {
	for i := 0; i < c.Natoms(); i++ {
		x := c.Pos[i][0]
		E += x*x*x/3 - x
	}
	return
}

func (o *CubicRamp) Forces(c *conf.Configuration, F [][]float64) error {
	for i := 0; i < len(F); i++ {
		x := c.Pos[i][0]
		F[i][0] = 1 - x*x
		F[i][1] = 0
		F[i][2] = 0
	}
	return nil
}

// LennardJones is a pairwise 12-6 cluster potential (no periodic images)
type LennardJones struct {
	Eps float64 // well depth
	Sig float64 // zero-crossing distance
}

// Init initialises model
func (o *LennardJones) Init(prms fun.Prms) error {
	o.Eps, o.Sig = 1, 1
	for _, p := range prms {
		switch p.N {
		case "eps":
			o.Eps = p.V
		case "sig":
			o.Sig = p.V
		}
	}
	return nil
}

func (o *LennardJones) Provides() []string { return []string{"energy", "forces"} }

func (o *LennardJones) PotentialEnergy(c *conf.Configuration) (E float64, err error) {
	n := c.Natoms()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := dist3(c.Pos[i], c.Pos[j])
			sr6 := math.Pow(o.Sig/r, 6)
			E += 4 * o.Eps * (sr6*sr6 - sr6)
		}
	}
	return
}

func (o *LennardJones) Forces(c *conf.Configuration, F [][]float64) error {
	n := c.Natoms()
	for i := 0; i < n; i++ {
		la.VecFill(F[i], 0)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := dist3(c.Pos[i], c.Pos[j])
			sr6 := math.Pow(o.Sig/r, 6)
			coef := 24 * o.Eps * (2*sr6*sr6 - sr6) / (r * r)
			for k := 0; k < 3; k++ {
				δ := c.Pos[i][k] - c.Pos[j][k]
				F[i][k] += coef * δ
				F[j][k] -= coef * δ
			}
		}
	}
	return nil
}

func dist3(a, b []float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

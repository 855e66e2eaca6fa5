// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package conf holds atomic configurations and the calculator capability
package conf

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/Waisni/ase/geo"
)

// Calculator defines the capability of an energy/force oracle acting on one
// configuration. Implementations must be deterministic: repeated calls with
// unchanged positions return identical results.
type Calculator interface {
	PotentialEnergy(c *Configuration) (E float64, err error)
	Forces(c *Configuration, F [][]float64) (err error)
	Provides() []string // implemented properties; e.g. {"energy", "forces"}
}

// Configuration holds one atomic configuration (an image)
type Configuration struct {
	Znumbers []int       // atomic numbers
	Pos      [][]float64 // positions (natoms x 3)
	Cell     [][]float64 // 3x3 cell matrix; rows are lattice vectors; nil for isolated systems
	Pbc      []bool      // periodicity mask (3 components); nil for isolated systems
	Calc     Calculator  // borrowed energy/force oracle; may be nil
}

// New returns a new configuration after checking shapes
func New(znumbers []int, pos [][]float64, cell [][]float64, pbc []bool) (o *Configuration, err error) {
	n := len(znumbers)
	if n < 1 {
		return nil, chk.Err("conf: configuration needs at least one atom")
	}
	if len(pos) != n {
		return nil, chk.Err("conf: number of positions (%d) must equal number of atoms (%d)", len(pos), n)
	}
	for i := 0; i < n; i++ {
		if len(pos[i]) != 3 {
			return nil, chk.Err("conf: position %d must have 3 components", i)
		}
	}
	if (cell == nil) != (pbc == nil) {
		return nil, chk.Err("conf: cell and pbc must be given together")
	}
	if cell != nil {
		if len(cell) != 3 || len(pbc) != 3 {
			return nil, chk.Err("conf: cell must be 3x3 and pbc must have 3 components")
		}
	}
	o = &Configuration{Znumbers: znumbers, Pos: pos, Cell: cell, Pbc: pbc}
	return
}

// Natoms returns the number of atoms
func (o *Configuration) Natoms() int {
	return len(o.Znumbers)
}

// Clone returns a deep copy of this configuration. The calculator handle is
// not carried over.
func (o *Configuration) Clone() (c *Configuration) {
	c = new(Configuration)
	c.Znumbers = make([]int, len(o.Znumbers))
	copy(c.Znumbers, o.Znumbers)
	c.Pos = la.MatAlloc(len(o.Pos), 3)
	for i := 0; i < len(o.Pos); i++ {
		copy(c.Pos[i], o.Pos[i])
	}
	if o.Cell != nil {
		c.Cell = la.MatAlloc(3, 3)
		for i := 0; i < 3; i++ {
			copy(c.Cell[i], o.Cell[i])
		}
		c.Pbc = make([]bool, 3)
		copy(c.Pbc, o.Pbc)
	}
	return
}

// SetPositions overwrites the positions of this configuration
func (o *Configuration) SetPositions(P [][]float64) {
	for i := 0; i < len(o.Pos); i++ {
		copy(o.Pos[i], P[i])
	}
}

// AllDistances computes the matrix of inter-atomic distances
func (o *Configuration) AllDistances(mic bool) (d [][]float64, err error) {
	return geo.DistMatrix(o.Pos, o.Cell, o.Pbc, mic)
}

// PotentialEnergy dispatches to the attached calculator
func (o *Configuration) PotentialEnergy() (E float64, err error) {
	if o.Calc == nil {
		return 0, chk.Err("conf: configuration has no calculator attached")
	}
	return o.Calc.PotentialEnergy(o)
}

// Forces dispatches to the attached calculator, returning a new natoms x 3
// matrix
func (o *Configuration) Forces() (F [][]float64, err error) {
	if o.Calc == nil {
		return nil, chk.Err("conf: configuration has no calculator attached")
	}
	F = la.MatAlloc(o.Natoms(), 3)
	err = o.Calc.Forces(o, F)
	return
}

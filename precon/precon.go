// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package precon implements per-image preconditioners: positive-definite
// operators applied to forces to equalise convergence across stiff and soft
// modes
package precon

import (
	"github.com/cpmech/gosl/chk"

	"github.com/Waisni/ase/conf"
)

// Precon defines the preconditioner capability. Vectors are flat, with
// 3*natoms components.
type Precon interface {
	MakePrecon(c *conf.Configuration) error              // rebuilds the operator from the current geometry
	Dot(u, v []float64) float64                          // preconditioned inner product ⟨u, P·v⟩
	Norm(v []float64) float64                            // induced norm √⟨v, P·v⟩
	Apply(g []float64, c *conf.Configuration) ([]float64, error) // solves P·x = g
	Pdot(v []float64) []float64                          // forward multiply P·v
	Copy() Precon                                        // fresh operator with the same settings
}

// allocators holds all available preconditioners; name => allocator
var allocators = map[string]func() Precon{}

// New returns a new preconditioner selected by name; e.g. "Exp" or "Id"
func New(name string) (p Precon, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("precon: cannot find preconditioner named %q", name)
	}
	return allocator(), nil
}

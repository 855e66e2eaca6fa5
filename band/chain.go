// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package band implements chains of states and the nudged elastic band method
package band

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/Waisni/ase/conf"
)

// Chain holds an ordered sequence of images. Endpoint images are fixed; the
// interior images are the optimisation variables.
type Chain struct {

	// input
	Images  []*conf.Configuration // all images, in path order
	Natoms  int                   // number of atoms per image
	Nimages int                   // number of images
	Nsteps  int                   // optimisation step counter

	// latest per-step state
	Energies   []float64     // energies of all images; endpoints only set when the method needs them
	RealForces [][][]float64 // raw calculator forces of all images; endpoints zero
	FmaxImages []float64     // per-interior-image maximum atomic force norm (effective forces)
	Frozen     []bool        // per-interior-image dynamic-relaxation freeze flags
	Imax       int           // index of the highest-energy interior image
	Emax       float64       // energy of image Imax; the band potential
}

// NewChain returns a new chain after enforcing the shape invariants
func NewChain(images []*conf.Configuration) (o *Chain, err error) {
	if len(images) < 3 {
		return nil, chk.Err("band: a chain needs at least 3 images; got %d", len(images))
	}
	o = new(Chain)
	o.Images = images
	o.Nimages = len(images)
	o.Natoms = images[0].Natoms()
	for _, img := range images {
		if img.Natoms() != o.Natoms {
			return nil, chk.Err("band: images have different numbers of atoms")
		}
		if !samePbc(img, images[0]) {
			return nil, chk.Err("band: images have different boundary conditions")
		}
		for i := 0; i < o.Natoms; i++ {
			if img.Znumbers[i] != images[0].Znumbers[i] {
				return nil, chk.Err("band: images have atoms in different orders")
			}
		}
	}
	o.Emax = math.Inf(-1)
	return
}

func samePbc(a, b *conf.Configuration) bool {
	if (a.Pbc == nil) != (b.Pbc == nil) {
		return false
	}
	if a.Pbc == nil {
		return true
	}
	for k := 0; k < 3; k++ {
		if a.Pbc[k] != b.Pbc[k] {
			return false
		}
	}
	return true
}

// Ndofs returns the total number of degrees of freedom
func (o *Chain) Ndofs() int {
	return 3 * o.Natoms * (o.Nimages - 2)
}

// GetPositions collects interior-image positions into one
// (nimages-2)*natoms x 3 matrix
func (o *Chain) GetPositions() (P [][]float64) {
	P = la.MatAlloc((o.Nimages-2)*o.Natoms, 3)
	for i := 1; i < o.Nimages-1; i++ {
		for j := 0; j < o.Natoms; j++ {
			copy(P[(i-1)*o.Natoms+j], o.Images[i].Pos[j])
		}
	}
	return
}

// SetPositions overwrites interior-image positions from one
// (nimages-2)*natoms x 3 matrix. Endpoints are never touched.
func (o *Chain) SetPositions(P [][]float64) {
	for i := 1; i < o.Nimages-1; i++ {
		for j := 0; j < o.Natoms; j++ {
			copy(o.Images[i].Pos[j], P[(i-1)*o.Natoms+j])
		}
	}
}

// GetDofs returns the interior positions as one long vector
func (o *Chain) GetDofs() (x []float64) {
	x = make([]float64, o.Ndofs())
	for i := 1; i < o.Nimages-1; i++ {
		for j := 0; j < o.Natoms; j++ {
			n := ((i-1)*o.Natoms + j) * 3
			copy(x[n:n+3], o.Images[i].Pos[j])
		}
	}
	return
}

// SetDofs overwrites interior positions from one long vector
func (o *Chain) SetDofs(x []float64) {
	chk.IntAssert(len(x), o.Ndofs())
	for i := 1; i < o.Nimages-1; i++ {
		for j := 0; j < o.Natoms; j++ {
			n := ((i-1)*o.Natoms + j) * 3
			copy(o.Images[i].Pos[j], x[n:n+3])
		}
	}
}

// CheckCalculators makes sure every image with a calculator has its own
// instance; two images must not share one oracle
func (o *Chain) CheckCalculators() (err error) {
	for i := 0; i < o.Nimages; i++ {
		if o.Images[i].Calc == nil {
			continue
		}
		for j := i + 1; j < o.Nimages; j++ {
			if o.Images[j].Calc == nil {
				continue
			}
			if o.Images[i].Calc == o.Images[j].Calc {
				return chk.Err("band: images %d and %d share the same calculator; each image must have its own", i, j)
			}
		}
	}
	return
}

// IterImages returns the band for emission: endpoints unchanged, interior
// images cloned with a single-point calculator holding the latest energies
// and raw forces
func (o *Chain) IterImages() (images []*conf.Configuration, err error) {
	if o.RealForces == nil {
		return nil, chk.Err("band: forces must be evaluated before iterating images")
	}
	images = make([]*conf.Configuration, o.Nimages)
	for i := 0; i < o.Nimages; i++ {
		if i == 0 || i == o.Nimages-1 {
			images[i] = o.Images[i]
			continue
		}
		img := o.Images[i].Clone()
		F := la.MatAlloc(o.Natoms, 3)
		for j := 0; j < o.Natoms; j++ {
			copy(F[j], o.RealForces[i][j])
		}
		img.Calc = &conf.SinglePoint{E: o.Energies[i], F: F}
		images[i] = img
	}
	return
}

// flatten copies a matrix of row vectors into one long vector
func flatten(x []float64, P [][]float64) {
	for i := 0; i < len(P); i++ {
		copy(x[3*i:3*i+3], P[i])
	}
}

// rowMaxNorm returns the maximum Euclidean row norm within rows lo..hi-1
func rowMaxNorm(F [][]float64, lo, hi int) (res float64) {
	for i := lo; i < hi; i++ {
		r := la.VecNorm(F[i])
		if r > res {
			res = r
		}
	}
	return
}

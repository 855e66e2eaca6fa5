// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package precon

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/Waisni/ase/conf"
	"github.com/Waisni/ase/geo"
)

// add preconditioners to factory
func init() {
	allocators["Exp"] = func() Precon { return NewExp() }
	allocators["Id"] = func() Precon { return new(Id) }
}

// Exp is the exponential preconditioner: pair couplings decay exponentially
// with distance relative to the nearest-neighbour scale, stabilised on the
// diagonal so the operator stays positive definite.
type Exp struct {
	A     float64 // decay rate
	Mu    float64 // energy-scale prefactor
	CStab float64 // diagonal stabilisation
	Rcut  float64 // coupling cutoff; zero selects twice the nearest-neighbour distance

	p [][]float64 // dense operator (3n x 3n)
	l [][]float64 // Cholesky factor of p
}

// NewExp returns an exponential preconditioner with default settings
func NewExp() (o *Exp) {
	o = new(Exp)
	o.A = 3.0
	o.Mu = 1.0
	o.CStab = 0.1
	return
}

// Copy returns a fresh operator with the same settings
func (o *Exp) Copy() Precon {
	c := NewExp()
	c.A, c.Mu, c.CStab, c.Rcut = o.A, o.Mu, o.CStab, o.Rcut
	return c
}

// MakePrecon rebuilds the operator from the current geometry
func (o *Exp) MakePrecon(c *conf.Configuration) (err error) {
	n := c.Natoms()
	nd := 3 * n
	o.p = la.MatAlloc(nd, nd)

	if n < 2 {
		for i := 0; i < nd; i++ {
			o.p[i][i] = o.Mu * (1 + o.CStab)
		}
		return o.factorise()
	}

	// nearest-neighbour distance sets the decay scale
	δ := make([]float64, 3)
	rnn := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := 0; k < 3; k++ {
				δ[k] = c.Pos[j][k] - c.Pos[i][k]
			}
			_, r, merr := geo.MicVec(δ, c.Cell, c.Pbc)
			if merr != nil {
				return merr
			}
			if r < rnn {
				rnn = r
			}
		}
	}
	if rnn <= 0 {
		return chk.Err("precon: cannot build Exp preconditioner; coincident atoms")
	}
	rcut := o.Rcut
	if rcut == 0 {
		rcut = 2 * rnn
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := 0; k < 3; k++ {
				δ[k] = c.Pos[j][k] - c.Pos[i][k]
			}
			_, r, merr := geo.MicVec(δ, c.Cell, c.Pbc)
			if merr != nil {
				return merr
			}
			if r > rcut {
				continue
			}
			coef := o.Mu * math.Exp(-o.A*(r/rnn-1))
			for k := 0; k < 3; k++ {
				o.p[3*i+k][3*j+k] -= coef
				o.p[3*j+k][3*i+k] -= coef
				o.p[3*i+k][3*i+k] += coef
				o.p[3*j+k][3*j+k] += coef
			}
		}
	}
	for i := 0; i < nd; i++ {
		o.p[i][i] += o.Mu * o.CStab
	}
	return o.factorise()
}

// factorise computes the Cholesky decomposition of the operator
func (o *Exp) factorise() (err error) {
	nd := len(o.p)
	o.l = la.MatAlloc(nd, nd)
	for i := 0; i < nd; i++ {
		for j := 0; j <= i; j++ {
			sum := o.p[i][j]
			for k := 0; k < j; k++ {
				sum -= o.l[i][k] * o.l[j][k]
			}
			if i == j {
				if sum <= 0 {
					return chk.Err("precon: Exp operator is not positive definite")
				}
				o.l[i][j] = math.Sqrt(sum)
			} else {
				o.l[i][j] = sum / o.l[j][j]
			}
		}
	}
	return
}

// Pdot computes the forward multiply P·v
func (o *Exp) Pdot(v []float64) (res []float64) {
	nd := len(o.p)
	res = make([]float64, nd)
	for i := 0; i < nd; i++ {
		for j := 0; j < nd; j++ {
			res[i] += o.p[i][j] * v[j]
		}
	}
	return
}

// Dot computes the preconditioned inner product ⟨u, P·v⟩
func (o *Exp) Dot(u, v []float64) (res float64) {
	pv := o.Pdot(v)
	for i := 0; i < len(u); i++ {
		res += u[i] * pv[i]
	}
	return
}

// Norm computes the induced norm √⟨v, P·v⟩
func (o *Exp) Norm(v []float64) float64 {
	return math.Sqrt(o.Dot(v, v))
}

// Apply solves P·x = g for the preconditioned residual. The operator is
// rebuilt first if it has never been assembled for this image.
func (o *Exp) Apply(g []float64, c *conf.Configuration) (x []float64, err error) {
	if o.p == nil {
		err = o.MakePrecon(c)
		if err != nil {
			return
		}
	}
	nd := len(o.p)
	if len(g) != nd {
		return nil, chk.Err("precon: vector size %d does not match operator size %d", len(g), nd)
	}
	// forward then backward substitution on the Cholesky factor
	y := make([]float64, nd)
	for i := 0; i < nd; i++ {
		sum := g[i]
		for k := 0; k < i; k++ {
			sum -= o.l[i][k] * y[k]
		}
		y[i] = sum / o.l[i][i]
	}
	x = make([]float64, nd)
	for i := nd - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < nd; k++ {
			sum -= o.l[k][i] * x[k]
		}
		x[i] = sum / o.l[i][i]
	}
	return
}

// Id is the identity preconditioner
type Id struct{}

func (o *Id) MakePrecon(c *conf.Configuration) error { return nil }
func (o *Id) Copy() Precon                           { return new(Id) }

func (o *Id) Dot(u, v []float64) (res float64) {
	for i := 0; i < len(u); i++ {
		res += u[i] * v[i]
	}
	return
}

func (o *Id) Norm(v []float64) float64 {
	return la.VecNorm(v)
}

func (o *Id) Pdot(v []float64) (res []float64) {
	res = make([]float64, len(v))
	copy(res, v)
	return
}

func (o *Id) Apply(g []float64, c *conf.Configuration) ([]float64, error) {
	res := make([]float64, len(g))
	copy(res, g)
	return res, nil
}

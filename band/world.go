// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

import (
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/mpi"
)

// World abstracts the communicator used for distributed force evaluation.
// It is passed explicitly; there is no global communicator state.
type World interface {
	Rank() int
	Size() int
	SumFloat(x float64) float64       // collective sum of one scalar
	Broadcast(v []float64, root int)  // share v from the computing root with all ranks
}

// SerialWorld is the single-process world
type SerialWorld struct{}

func (o SerialWorld) Rank() int { return 0 }
func (o SerialWorld) Size() int { return 1 }

func (o SerialWorld) SumFloat(x float64) float64 { return x }

func (o SerialWorld) Broadcast(v []float64, root int) {}

// MpiWorld is the MPI-backed world. Broadcast is expressed as an all-reduce
// of zero-elsewhere contributions, which is equivalent for disjoint roots and
// keeps every rank inside the same collective when a step fails.
type MpiWorld struct{}

func (o MpiWorld) Rank() int { return mpi.Rank() }
func (o MpiWorld) Size() int { return mpi.Size() }

func (o MpiWorld) SumFloat(x float64) float64 {
	buf := []float64{x}
	w := make([]float64, 1)
	mpi.AllReduceSum(buf, w)
	return buf[0]
}

func (o MpiWorld) Broadcast(v []float64, root int) {
	if mpi.Rank() != root {
		la.VecFill(v, 0)
	}
	w := make([]float64, len(v))
	mpi.AllReduceSum(v, w)
}

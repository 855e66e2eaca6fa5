// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcalc

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/num"

	"github.com/Waisni/ase/conf"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// idppSetup builds a 4-atom configuration and a slightly offset target
// distance matrix
func idppSetup(tst *testing.T) (c *conf.Configuration, oracle *IDPP) {
	c, err := conf.New([]int{1, 1, 1, 1}, [][]float64{
		{0, 0, 0},
		{0.9, 0.1, 0},
		{0.2, 1.1, 0.3},
		{1.0, 0.8, 0.9},
	}, nil, nil)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return nil, nil
	}
	target, err := c.AllDistances(false)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return nil, nil
	}
	// offset the targets so the oracle is not at its minimum
	offs := []float64{0.013, -0.021, 0.008, 0.017, -0.011, 0.005}
	k := 0
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			target[i][j] += offs[k]
			target[j][i] = target[i][j]
			k++
		}
	}
	oracle = NewIDPP(target, false)
	c.Calc = oracle
	return
}

func Test_idpp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("idpp01. analytic forces vs finite differences")

	c, oracle := idppSetup(tst)
	if c == nil {
		return
	}

	F := la.MatAlloc(4, 3)
	err := oracle.Forces(c, F)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	for i := 0; i < 4; i++ {
		for k := 0; k < 3; k++ {
			dnum := num.DerivCen(func(x float64, args ...interface{}) (res float64) {
				old := c.Pos[i][k]
				c.Pos[i][k] = x
				res, _ = oracle.PotentialEnergy(c)
				c.Pos[i][k] = old
				return
			}, c.Pos[i][k])
			chk.Scalar(tst, io.Sf("F[%d][%d]", i, k), 1e-6, F[i][k], -dnum)
		}
	}
}

func Test_idpp02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("idpp02. oracle is stateless and deterministic")

	c, oracle := idppSetup(tst)
	if c == nil {
		return
	}

	e1, err := oracle.PotentialEnergy(c)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	e2, err := oracle.PotentialEnergy(c)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "energy repeats", 1e-17, e1, e2)

	F1 := la.MatAlloc(4, 3)
	F2 := la.MatAlloc(4, 3)
	oracle.Forces(c, F1)
	oracle.Forces(c, F2)
	chk.Matrix(tst, "forces repeat", 1e-17, F1, F2)

	// the oracle vanishes when the targets are met exactly
	target, _ := c.AllDistances(false)
	exact := NewIDPP(target, false)
	e, err := exact.PotentialEnergy(c)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "E at target", 1e-15, e, 0)
}

// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package precon

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/Waisni/ase/conf"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func trimer(tst *testing.T) *conf.Configuration {
	c, err := conf.New([]int{18, 18, 18}, [][]float64{
		{0, 0, 0},
		{1.12, 0, 0},
		{0.56, 0.97, 0},
	}, nil, nil)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return nil
	}
	return c
}

func Test_precon01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("precon01. registry")

	_, err := New("nope")
	if err == nil {
		tst.Errorf("test failed: unknown preconditioner must be an error\n")
		return
	}
	p, err := New("Exp")
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	if _, ok := p.(*Exp); !ok {
		tst.Errorf("test failed: \"Exp\" must select the exponential preconditioner\n")
		return
	}
	q, err := New("Id")
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	if _, ok := q.(*Id); !ok {
		tst.Errorf("test failed: \"Id\" must select the identity preconditioner\n")
		return
	}
}

func Test_precon02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("precon02. Exp operator is positive definite and invertible")

	c := trimer(tst)
	if c == nil {
		return
	}
	p := NewExp()
	err := p.MakePrecon(c)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	g := []float64{0.3, -0.1, 0.2, 0.05, 0.8, -0.5, -0.3, 0.2, 0.1}

	// the induced norm is positive
	if p.Norm(g) <= 0 {
		tst.Errorf("test failed: norm must be positive\n")
		return
	}

	// apply followed by the forward multiply is the identity
	x, err := p.Apply(g, c)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Vector(tst, "P·(P⁻¹·g)", 1e-10, p.Pdot(x), g)

	// dot agrees with the forward multiply
	u := []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	pv := p.Pdot(g)
	var want float64
	for i := range u {
		want += u[i] * pv[i]
	}
	chk.Scalar(tst, "dot", 1e-12, p.Dot(u, g), want)
}

func Test_precon03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("precon03. identity variant and copies")

	c := trimer(tst)
	if c == nil {
		return
	}
	var q Precon = new(Id)
	err := q.MakePrecon(c)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	g := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	x, err := q.Apply(g, c)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Vector(tst, "apply", 1e-17, x, g)
	chk.Vector(tst, "pdot", 1e-17, q.Pdot(g), g)
	chk.Scalar(tst, "dot", 1e-17, q.Dot(g, g), 285)

	// copies keep settings but not state
	p := NewExp()
	p.A = 4.5
	cp := p.Copy().(*Exp)
	chk.Scalar(tst, "copied A", 1e-15, cp.A, 4.5)
	if cp.p != nil {
		tst.Errorf("test failed: copies must start unassembled\n")
		return
	}
}

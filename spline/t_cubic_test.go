// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spline

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_spline01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("spline01. not-a-knot reproduces a cubic exactly")

	// with data from one cubic polynomial, the not-a-knot spline IS that
	// polynomial everywhere, derivatives included
	p := func(x float64) float64 { return 2 + x - 3*x*x + 0.5*x*x*x }
	dp := func(x float64) float64 { return 1 - 6*x + 1.5*x*x }
	ddp := func(x float64) float64 { return -6 + 3*x }

	knots := []float64{0, 0.3, 0.7, 1.4, 2.0}
	y := make([][]float64, len(knots))
	for i, x := range knots {
		y[i] = []float64{p(x)}
	}
	sp, err := NewCubic(knots, y)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	out := make([]float64, 1)
	for _, x := range utl.LinSpace(0, 2, 21) {
		sp.Eval(x, out)
		chk.Scalar(tst, io.Sf("p(%g)", x), 1e-10, out[0], p(x))
		sp.Deriv1(x, out)
		chk.Scalar(tst, io.Sf("p'(%g)", x), 1e-10, out[0], dp(x))
		sp.Deriv2(x, out)
		chk.Scalar(tst, io.Sf("p''(%g)", x), 1e-9, out[0], ddp(x))
	}
}

func Test_spline02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("spline02. small sample counts")

	// three points with not-a-knot on both sides: a single parabola
	q := func(x float64) float64 { return 1 + 2*x - x*x }
	knots := []float64{0, 0.6, 1.5}
	y := [][]float64{{q(0)}, {q(0.6)}, {q(1.5)}}
	sp, err := NewCubic(knots, y)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	out := make([]float64, 1)
	for _, x := range []float64{0.1, 0.45, 0.8, 1.2} {
		sp.Eval(x, out)
		chk.Scalar(tst, io.Sf("q(%g)", x), 1e-12, out[0], q(x))
	}

	// two points: a straight segment
	sp, err = NewCubic([]float64{0, 2}, [][]float64{{1, 5}, {3, 1}})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	out = make([]float64, 2)
	sp.Eval(1, out)
	chk.Vector(tst, "midpoint", 1e-14, out, []float64{2, 3})
	sp.Deriv2(1, out)
	chk.Vector(tst, "line curvature", 1e-14, out, []float64{0, 0})
}

func Test_spline03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("spline03. interpolation and error conditions")

	// the spline passes through every knot
	knots := []float64{0, 0.25, 0.5, 0.75, 1}
	y := [][]float64{{0, 1}, {0.2, 0.5}, {-0.3, 0.25}, {0.6, -0.4}, {0, 0}}
	sp, err := NewCubic(knots, y)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	out := make([]float64, 2)
	for i, x := range knots {
		sp.Eval(x, out)
		chk.Vector(tst, io.Sf("knot %d", i), 1e-12, out, y[i])
	}

	// non-increasing knots must fail
	_, err = NewCubic([]float64{0, 0.5, 0.5, 1}, [][]float64{{0}, {1}, {2}, {3}})
	if err == nil {
		tst.Errorf("test failed: repeated knots must be an error\n")
		return
	}
	_, err = NewCubic([]float64{0}, [][]float64{{0}})
	if err == nil {
		tst.Errorf("test failed: a single point must be an error\n")
		return
	}
}

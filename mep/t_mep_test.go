// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mep

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"

	"github.com/Waisni/ase/conf"
	"github.com/Waisni/ase/mcalc"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// oneAtomImages builds a chain of single-atom images along the x-axis
func oneAtomImages(tst *testing.T, xs ...float64) (images []*conf.Configuration) {
	images = make([]*conf.Configuration, len(xs))
	for i, x := range xs {
		c, err := conf.New([]int{1}, [][]float64{{x, 0, 0}}, nil, nil)
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return nil
		}
		images[i] = c
	}
	return
}

// attach gives every image its own calculator instance
func attach(tst *testing.T, images []*conf.Configuration, name string, prms fun.Prms) bool {
	for _, img := range images {
		calc, err := mcalc.New(name, prms)
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return false
		}
		img.Calc = calc
	}
	return true
}

func Test_mep01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mep01. construction and spline fit")

	images := oneAtomImages(tst, 0, 1, 2, 4)
	if !attach(tst, images, "zero", nil) {
		return
	}

	// unknown variants and preconditioners are rejected
	_, err := NewPreconMEP(images, &Input{Variant: "bogus"})
	if err == nil {
		tst.Errorf("test failed: unknown variant must be an error\n")
		return
	}
	_, err = NewPreconMEP(images, &Input{Precon: "bogus"})
	if err == nil {
		tst.Errorf("test failed: unknown preconditioner must be an error\n")
		return
	}

	mp, err := NewPreconMEP(images, &Input{Precon: "Id", K: []float64{1}})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// normalised arc length: 0, 1/4, 2/4, 1 for spacings 1,1,2
	s, sp, err := mp.SplineFit(true)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Vector(tst, "s", 1e-14, s, []float64{0, 0.25, 0.5, 1})
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			tst.Errorf("test failed: s must be strictly increasing\n")
			return
		}
	}

	// the spline passes through the image positions
	out := make([]float64, 3)
	sp.Eval(0.5, out)
	chk.Vector(tst, "x(s2)", 1e-12, out, []float64{2, 0, 0})

	// with the identity metric both fits agree
	sP, _, err := mp.SplineFit(false)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Vector(tst, "precon s", 1e-14, sP, s)
}

func Test_mep02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mep02. degenerate chain cannot be fitted")

	images := oneAtomImages(tst, 1, 1, 1, 1)
	if !attach(tst, images, "zero", nil) {
		return
	}
	mp, err := NewPreconMEP(images, &Input{Precon: "Id"})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	_, _, err = mp.SplineFit(false)
	if err == nil {
		tst.Errorf("test failed: zero arc length must be an error\n")
		return
	}
}

func Test_mep03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mep03. string reparameterisation is idempotent")

	// unevenly spaced straight band: the first callback equalises the
	// spacing, the second must not move anything
	images := oneAtomImages(tst, 0, 0.2, 0.5, 2.1, 3)
	if !attach(tst, images, "zero", nil) {
		return
	}
	mp, err := NewPreconMEP(images, &Input{Variant: "string", Precon: "Id"})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	x := mp.GetDofs()
	err = mp.Callback(x)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	once := make([]float64, len(x))
	copy(once, x)

	err = mp.Callback(x)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Vector(tst, "idempotent", 1e-10, x, once)

	// equalised spacing along the straight segment
	for i, want := range []float64{0.75, 1.5, 2.25} {
		chk.Scalar(tst, io.Sf("x%d", i+1), 1e-10, once[3*i], want)
	}
}

func Test_mep04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mep04. preconditioned string on a Lennard-Jones trimer")

	// one vertex of the trimer retreats radially; seven images
	d := math.Pow(2, 1.0/6.0)
	h := d * math.Sin(math.Pi/3)
	M := 7
	images := make([]*conf.Configuration, M)
	for i := 0; i < M; i++ {
		frac := float64(i) / float64(M-1)
		pos := [][]float64{
			{0, 0, 0},
			{d, 0, 0},
			{d / 2, h + 0.8*frac, 0},
		}
		c, err := conf.New([]int{18, 18, 18}, pos, nil, nil)
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return
		}
		images[i] = c
	}
	if !attach(tst, images, "lj", nil) {
		return
	}

	mp, err := NewPreconMEP(images, &Input{Variant: "string", Precon: "Exp", K: []float64{0.1}})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	err = mp.Run(1e-3, 200, "ode", 0.01, 0.1, 1e-2, 2.0)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	if mp.Residual() > 1e-3 {
		tst.Errorf("test failed: residual %g above tolerance\n", mp.Residual())
		return
	}

	// reparameterisation keeps the arc length strictly increasing
	s, _, err := mp.SplineFit(false)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "s first", 1e-15, s[0], 0)
	chk.Scalar(tst, "s last", 1e-15, s[M-1], 1)
	for i := 1; i < M; i++ {
		if s[i] <= s[i-1] {
			tst.Errorf("test failed: s must be strictly increasing\n")
			return
		}
	}
	if len(mp.FmaxHistory) == 0 {
		tst.Errorf("test failed: residual history must be recorded\n")
		return
	}
}

func Test_mep05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mep05. static stepping and adaptive springs")

	images := oneAtomImages(tst, 0, 0.5, 1.2, 2)
	if !attach(tst, images, "quartic", nil) {
		return
	}
	ncalls := 0
	adapt := func(k []float64, imgs []*conf.Configuration) []float64 {
		ncalls++
		res := make([]float64, len(k))
		for i := range k {
			res[i] = 2 * k[i]
		}
		return res
	}
	mp, err := NewPreconMEP(images, &Input{Variant: "neb", Precon: "Id", K: []float64{1}, Adapt: adapt})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// bad step selection
	err = mp.Run(1e-3, 3, "bogus", 0.01, 0.1, 1e-2, 2.0)
	if err == nil {
		tst.Errorf("test failed: unknown step selection must be an error\n")
		return
	}

	err = mp.Run(1e-12, 3, "static", 0.05, 0.1, 1e-2, 2.0)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	if ncalls == 0 {
		tst.Errorf("test failed: the spring callback must have run\n")
		return
	}
	chk.Scalar(tst, "k adapted", 1e-14, mp.K[0], math.Pow(2, float64(ncalls)))
}

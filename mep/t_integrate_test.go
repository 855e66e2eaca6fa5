// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mep

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_virt01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("virt01. virtual work recovers the energy difference")

	// five images on the x-axis under E(x) = x³/3 - x; the band is the
	// exact path, so the integrated force profile must reproduce the
	// endpoint-to-endpoint energy difference
	images := oneAtomImages(tst, 0, 0.25, 0.5, 0.75, 1)
	if !attach(tst, images, "cubicramp", nil) {
		return
	}
	mp, err := NewPreconMEP(images, &Input{Precon: "Id"})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	s, E, F, err := mp.IntegrateForces(1000)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.IntAssert(len(s), 1000)
	chk.IntAssert(len(E), 1000)
	chk.IntAssert(len(F), 1000)
	chk.Scalar(tst, "s start", 1e-15, s[0], 0)
	chk.Scalar(tst, "s end", 1e-15, s[len(s)-1], 1)
	chk.Scalar(tst, "E start", 1e-15, E[0], 0)

	// E(1) - E(0) = (1/3 - 1) - 0 = -2/3
	chk.Scalar(tst, "ΔE", 1e-3, E[len(E)-1], -2.0/3.0)

	// the profile midpoint agrees with the analytic energy as well
	Emid := math.Pow(0.5, 3)/3 - 0.5
	chk.Scalar(tst, "E mid", 1e-3, E[len(E)/2], Emid)
}

func Test_virt02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("virt02. energies refresh the band maximum")

	images := oneAtomImages(tst, -1, -0.4, 0.1, 0.6, 1)
	if !attach(tst, images, "quartic", nil) {
		return
	}
	mp, err := NewPreconMEP(images, &Input{Precon: "Id"})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	E, err := mp.Energies()
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.IntAssert(len(E), 5)

	// the highest interior image is at x = 0.1
	chk.IntAssert(mp.Imax, 2)
	chk.Scalar(tst, "emax", 1e-14, mp.Emax, math.Pow(0.1*0.1-1, 2))
}

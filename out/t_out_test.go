// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/Waisni/ase/band"
	"github.com/Waisni/ase/conf"
	"github.com/Waisni/ase/mcalc"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_out01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("out01. extract and save a report")

	images := make([]*conf.Configuration, 5)
	for i := range images {
		c, err := conf.New([]int{1}, [][]float64{{float64(i)/2 - 1, 0, 0}}, nil, nil)
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return
		}
		calc, err := mcalc.New("quartic", nil)
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return
		}
		c.Calc = calc
		images[i] = c
	}
	neb, err := band.NewNEB(images, nil, nil)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// reports need at least one force evaluation
	_, err = Extract("test", neb.Chain, nil)
	if err == nil {
		tst.Errorf("test failed: extracting before forces must be an error\n")
		return
	}

	_, err = neb.GetForces()
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	r, err := Extract("test", neb.Chain, []float64{0.5, 0.1})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.IntAssert(r.Nimages, 5)
	chk.IntAssert(r.Imax, neb.Imax)
	chk.Scalar(tst, "emax", 1e-15, r.Emax, neb.Emax)
	chk.Scalar(tst, "x2", 1e-15, r.Positions[2][0][0], 0)
	chk.Vector(tst, "history", 1e-15, r.FmaxHistory, []float64{0.5, 0.1})

	// round trip through the saved file
	dir := filepath.Join(os.TempDir(), "ase_test_out")
	err = r.Save(dir, "out01")
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	b, err := os.ReadFile(filepath.Join(dir, "out01.json"))
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	var rr Report
	err = json.Unmarshal(b, &rr)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.IntAssert(rr.Nimages, r.Nimages)
	chk.Vector(tst, "energies", 1e-15, rr.Energies, r.Energies)
}

// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"

	"github.com/Waisni/ase/band"
	"github.com/Waisni/ase/conf"
	"github.com/Waisni/ase/inp"
	"github.com/Waisni/ase/mep"
	"github.com/Waisni/ase/out"
)

func main() {

	// options
	verbose := true

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	// message
	if mpi.Rank() == 0 {
		io.PfWhite("\nase -- minimum energy path finder\n\n")
	}

	// simulation filenamepath
	flag.Parse()
	var fnamepath string
	if len(flag.Args()) > 0 {
		fnamepath = flag.Arg(0)
	} else {
		chk.Panic("Please, provide a filename. Ex.: dwell5.mep")
	}
	if io.FnExt(fnamepath) == "" {
		fnamepath += ".mep"
	}
	if len(flag.Args()) > 1 {
		verbose = io.Atob(flag.Arg(1))
	}

	// profiling?
	defer utl.DoProf(false)()

	// read input data
	sim, err := inp.ReadSim(fnamepath)
	if err != nil {
		chk.Panic("cannot read simulation file:\n%v", err)
	}
	images, err := sim.BuildImages()
	if err != nil {
		chk.Panic("cannot build images:\n%v", err)
	}

	// run
	fnkey := io.FnKey(fnamepath)
	if sim.Precon != nil {
		runPrecon(sim, images, fnkey, verbose)
		return
	}
	runBand(sim, images, fnkey, verbose)
}

// runBand relaxes a plain nudged elastic band with quick-min dynamics
func runBand(sim *inp.Simulation, images []*conf.Configuration, fnkey string, verbose bool) {
	var world band.World = band.SerialWorld{}
	if mpi.IsOn() && sim.Neb.Parallel {
		world = band.MpiWorld{}
	}
	neb, err := band.NewNEB(images, &sim.Neb, world)
	if err != nil {
		chk.Panic("cannot allocate band:\n%v", err)
	}
	opt := band.NewMDMin(neb, 0)
	opt.Verbose = verbose && mpi.Rank() == 0
	nit, converged, err := opt.Run(sim.Fmax, sim.Steps)
	if err != nil {
		chk.Panic("band relaxation failed:\n%v", err)
	}
	if verbose && mpi.Rank() == 0 {
		if converged {
			io.Pf("> Converged in %d steps\n", nit)
		} else {
			io.Pfyel("> Not converged after %d steps\n", nit)
		}
	}
	report(sim, neb.Chain, nil, fnkey, verbose)
}

// runPrecon relaxes a preconditioned band
func runPrecon(sim *inp.Simulation, images []*conf.Configuration, fnkey string, verbose bool) {
	sim.Precon.Verbose = verbose && mpi.Rank() == 0
	mp, err := mep.NewPreconMEP(images, sim.Precon)
	if err != nil {
		chk.Panic("cannot allocate preconditioned driver:\n%v", err)
	}
	err = mp.Run(sim.Fmax, sim.Steps, sim.StepSel, sim.Alpha, 0.1, 1e-2, 2.0)
	if err != nil {
		chk.Panic("preconditioned relaxation failed:\n%v", err)
	}
	_, err = mp.Energies()
	if err != nil {
		chk.Panic("cannot evaluate band energies:\n%v", err)
	}
	report(sim, mp.Chain, mp.FmaxHistory, fnkey, verbose)
}

// report extracts and saves the results
func report(sim *inp.Simulation, chain *band.Chain, history []float64, fnkey string, verbose bool) {
	r, err := out.Extract(sim.Desc, chain, history)
	if err != nil {
		chk.Panic("cannot extract report:\n%v", err)
	}
	if verbose && mpi.Rank() == 0 {
		r.Print()
	}
	err = r.Save(sim.DirOut, fnkey)
	if err != nil {
		chk.Panic("cannot save report:\n%v", err)
	}
	if verbose && mpi.Rank() == 0 {
		io.PfGreen("> Success\n")
		io.Pf("> Report saved to %s\n", sim.DirOut)
	}
}

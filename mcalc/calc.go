// Copyright 2016 The Ase Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mcalc implements calculator models: energy/force oracles attached
// to atomic configurations
package mcalc

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"

	"github.com/Waisni/ase/conf"
)

// Model extends the calculator capability with parameter initialisation
type Model interface {
	conf.Calculator
	Init(prms fun.Prms) error // initialises model
}

// allocators holds all available calculator models; name => allocator
var allocators = map[string]func() Model{}

// New allocates and initialises a calculator model. Every call returns a
// distinct instance; images must not share calculators.
func New(name string, prms fun.Prms) (model Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("mcalc: cannot find calculator model named %q", name)
	}
	model = allocator()
	err = model.Init(prms)
	if err != nil {
		return nil, err
	}
	return
}

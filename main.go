// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mbsim simulates the demonstration four-bar linkage under gravity and
// reports the constraint drift and mechanical energy along the motion
package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/AmirSamanMirjalili/multibody-state-estimation/dynamics"
	"github.com/AmirSamanMirjalili/multibody-state-estimation/mbs"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v", err)
			io.Pf("See location of error below:\n")
			chk.Verbose = true
			for i := 5; i > 3; i-- {
				chk.CallerInfo(i)
			}
		}
	}()

	// read input parameters
	nsteps := io.ArgToInt(0, 1000)
	nout := io.ArgToInt(1, 10)
	project := io.ArgToBool(2, true)
	verbose := io.ArgToBool(3, true)

	if verbose {
		io.PfWhite("\nmbsim -- planar multibody simulation. four-bar linkage\n")
		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"number of time steps (dt = 1 ms)", "nsteps", nsteps,
			"number of report lines", "nout", nout,
			"project coordinates after each step", "project", project,
			"show messages", "verbose", verbose,
		))
	}

	// model
	arm, err := mbs.FourBarsModel().Assemble(nil)
	if err != nil {
		chk.Panic("assembly failed:\n%v", err)
	}
	if verbose {
		io.Pf("%v\n", arm)
	}

	// simulation
	sim := dynamics.NewSimulator(arm)
	sim.Dt = 1e-3
	sim.Project = project
	sim.Prepare()

	every := nsteps / nout
	if every < 1 {
		every = 1
	}
	io.Pf("%8s%14s%14s%14s%14s\n", "t", "Ekin", "Epot", "Etotal", "|Phi|")
	report := func() {
		if err := arm.UpdateNumericPhiAndJacobians(); err != nil {
			chk.Panic("update failed:\n%v", err)
		}
		e, err := arm.EvaluateEnergy()
		if err != nil {
			chk.Panic("energy evaluation failed:\n%v", err)
		}
		io.Pf("%8.3f%14.6f%14.6f%14.6f%14.2e\n", sim.Time, e.Kin, e.Pot, e.Total, la.VecNorm(arm.Phi))
	}
	report()
	for i := 1; i <= nsteps; i++ {
		if err := sim.Step(); err != nil {
			chk.Panic("step %d failed:\n%v", i, err)
		}
		if i%every == 0 || i == nsteps {
			report()
		}
	}
}

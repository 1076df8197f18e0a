// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamics

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/num"
	"github.com/cpmech/gosl/utl"

	"github.com/AmirSamanMirjalili/multibody-state-estimation/factors"
	"github.com/AmirSamanMirjalili/multibody-state-estimation/mbs"
)

func Test_sim01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim01. pendulum released from horizontal")

	arm, err := mbs.PendulumModel(1, 1).Assemble(nil)
	if err != nil {
		tst.Errorf("assembly failed: %v\n", err)
		return
	}
	e0, err := arm.EvaluateEnergy()
	if err != nil {
		tst.Errorf("energy evaluation failed: %v\n", err)
		return
	}

	sim := NewSimulator(arm)
	sim.Dt = 1e-3
	sim.Prepare()

	// energy is conserved and the free end stays on the unit circle at
	// every checkpoint along the swing
	for _, tf := range utl.LinSpace(0.1, 0.5, 5) {
		err = sim.Run(tf)
		if err != nil {
			tst.Errorf("simulation failed: %v\n", err)
			return
		}
		err = arm.UpdateNumericPhiAndJacobians()
		if err != nil {
			tst.Errorf("update failed: %v\n", err)
			return
		}
		drift := la.VecNorm(arm.Phi)
		e1, err := arm.EvaluateEnergy()
		if err != nil {
			tst.Errorf("energy evaluation failed: %v\n", err)
			return
		}
		io.Pforan("t=%v  |Phi|=%v  E=%v\n", sim.Time, drift, e1.Total)
		if drift > 1e-8 {
			tst.Errorf("constraint drift too large: |Phi|=%g\n", drift)
			return
		}
		chk.Scalar(tst, io.Sf("E(%.1f)", tf), 1e-6, e1.Total, e0.Total)
	}
	chk.Scalar(tst, "t", 1e-12, sim.Time, 0.5)
	if arm.Q[1] >= 0 {
		tst.Errorf("pendulum did not fall: y=%g\n", arm.Q[1])
	}
}

func Test_sim02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim02. four-bar linkage. driven crank, one second")

	arm, err := mbs.FourBarsModel().Assemble(nil)
	if err != nil {
		tst.Errorf("assembly failed: %v\n", err)
		return
	}

	sim := NewSimulator(arm)
	sim.Dt = 1e-3
	sim.Forcing = map[int]dbf.T{
		1: &dbf.Cte{C: 2.0}, // constant push on y1
	}
	sim.Prepare()
	err = sim.Run(1.0)
	if err != nil {
		tst.Errorf("simulation failed: %v\n", err)
		return
	}

	err = arm.UpdateNumericPhiAndJacobians()
	if err != nil {
		tst.Errorf("update failed: %v\n", err)
		return
	}
	drift := la.VecNorm(arm.Phi)
	io.Pforan("|Phi| = %v\n", drift)
	if drift > 1e-8 {
		tst.Errorf("constraint drift too large: |Phi|=%g\n", drift)
		return
	}

	// the bars keep their lengths through the motion
	x1, y1 := arm.PointCurrentCoords(1)
	chk.Scalar(tst, "|p1|", 1e-8, math.Sqrt(x1*x1+y1*y1), 1.0)

	// velocities remain on the constraint tangent space
	dot := make([]float64, arm.NumConstraints())
	arm.Phiq.MatVecMul(dot, arm.Dotq)
	chk.Vector(tst, "Phiq·dq", 1e-8, dot, []float64{0, 0, 0})
}

// checkJacobian compares a dense Jacobian block against central differences,
// perturbing x in place
func checkJacobian(tst *testing.T, label string, eval func() ([]float64, error), ana [][]float64, x []float64, tol, h float64) {
	var tmp float64
	for i := 0; i < len(ana); i++ {
		for j := 0; j < len(x); j++ {
			dnum, _ := num.DerivCentral(func(v float64, args ...interface{}) (res float64) {
				tmp, x[j] = x[j], v
				r, e := eval()
				if e != nil {
					chk.Panic("cannot evaluate factor: %v", e)
				}
				res = r[i]
				x[j] = tmp
				return
			}, x[j], h)
			chk.AnaNum(tst, io.Sf(label+"[%d][%d]", i, j), tol, ana[i][j], dnum, chk.Verbose)
		}
	}
}

func Test_sim03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim03. factor Jacobians at a simulated state")

	arm, err := mbs.FourBarsModel().Assemble(nil)
	if err != nil {
		tst.Errorf("assembly failed: %v\n", err)
		return
	}
	e0, err := arm.EvaluateEnergy()
	if err != nil {
		tst.Errorf("energy evaluation failed: %v\n", err)
		return
	}
	sim := NewSimulator(arm)
	sim.Dt = 1e-3
	sim.Prepare()
	err = sim.Run(1.0)
	if err != nil {
		tst.Errorf("simulation failed: %v\n", err)
		return
	}

	// unforced motion conserves mechanical energy
	e1, err := arm.EvaluateEnergy()
	if err != nil {
		tst.Errorf("energy evaluation failed: %v\n", err)
		return
	}
	io.Pforan("E(0) = %v  E(1) = %v\n", e0.Total, e1.Total)
	chk.Scalar(tst, "E(1)", 1e-6, e1.Total, e0.Total)

	n := arm.NumDOFs()
	q := make([]float64, n)
	dq := make([]float64, n)
	la.VecCopy(q, 1, arm.Q)
	la.VecCopy(dq, 1, arm.Dotq)

	// position-constraint factor
	fp := factors.NewPosConstraints(arm, factors.Sym('q', 0))
	_, Hp, err := fp.EvaluateError(q, true)
	if err != nil {
		tst.Errorf("evaluation failed: %v\n", err)
		return
	}
	evalp := func() ([]float64, error) {
		r, _, e := fp.EvaluateError(q, false)
		return r, e
	}
	checkJacobian(tst, "pos: Hq ", evalp, Hp, q, 1e-6, 1e-6)

	// velocity-constraint factor
	fv := factors.NewVelConstraints(arm, factors.Sym('q', 0), factors.Sym('v', 0))
	_, Hq, Hdq, err := fv.EvaluateError(q, dq, true)
	if err != nil {
		tst.Errorf("evaluation failed: %v\n", err)
		return
	}
	evalv := func() ([]float64, error) {
		r, _, _, e := fv.EvaluateError(q, dq, false)
		return r, e
	}
	checkJacobian(tst, "vel: Hq ", evalv, Hq, q, 1e-6, 1e-6)
	checkJacobian(tst, "vel: Hdq", evalv, Hdq, dq, 1e-6, 1e-6)

	// gyroscope on the coupler
	fg := factors.NewGyroscope(arm, 1, 0.1, factors.Sym('q', 0), factors.Sym('v', 0))
	_, Hq, Hdq, err = fg.EvaluateError(q, dq, true)
	if err != nil {
		tst.Errorf("evaluation failed: %v\n", err)
		return
	}
	evalg := func() ([]float64, error) {
		r, _, _, e := fg.EvaluateError(q, dq, false)
		return r, e
	}
	checkJacobian(tst, "gyro: Hq ", evalg, Hq, q, 1e-6, 1e-6)
	checkJacobian(tst, "gyro: Hdq", evalg, Hdq, dq, 1e-6, 1e-6)
}

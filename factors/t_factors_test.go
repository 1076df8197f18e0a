// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package factors

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/num"

	"github.com/AmirSamanMirjalili/multibody-state-estimation/mbs"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// fourBarState returns the four-bar model assembled at a generic state: the
// coordinates nudged off the reference configuration and nonzero velocities
func fourBarState() (arm *mbs.AssembledModel, q, dq []float64, err error) {
	arm, err = mbs.FourBarsModel().Assemble(nil)
	if err != nil {
		return
	}
	n := arm.NumDOFs()
	q = make([]float64, n)
	dq = make([]float64, n)
	la.VecCopy(q, 1, arm.Q)
	for j := 0; j < n; j++ {
		q[j] += 0.013 * float64(j+1)
		dq[j] = 0.4 - 0.15*float64(j)
	}
	return
}

// checkFactorJacobian compares one dense Jacobian block of a two-key factor
// against central differences, perturbing the vector x in place
func checkFactorJacobian(tst *testing.T, label string, eval func() ([]float64, error), ana [][]float64, x []float64, tol, h float64) {
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

func Test_poscons01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("poscons01. position-constraint factor")

	arm, q, dq, err := fourBarState()
	if err != nil {
		tst.Errorf("assembly failed: %v\n", err)
		return
	}
	_ = dq
	f := NewPosConstraints(arm, Sym('q', 0))
	chk.IntAssert(f.Dim(), 3)
	chk.IntAssert(len(f.Keys()), 1)

	// at the reference configuration the residual vanishes
	res, _, err := f.EvaluateError(arm.Q, false)
	if err != nil {
		tst.Errorf("evaluation failed: %v\n", err)
		return
	}
	chk.Vector(tst, "res(q0)", 1e-14, res, []float64{0, 0, 0})

	// Jacobian at a generic state
	_, Hq, err := f.EvaluateError(q, true)
	if err != nil {
		tst.Errorf("evaluation failed: %v\n", err)
		return
	}
	checkFactorJacobian(tst, "Hq", func() ([]float64, error) {
		r, _, e := f.EvaluateError(q, false)
		return r, e
	}, Hq, q, 1e-8, 1e-6)

	// the Values interface resolves keys
	vals := Values{Sym('q', 0): q}
	res2, jacs, err := f.Evaluate(vals, true)
	if err != nil {
		tst.Errorf("evaluation failed: %v\n", err)
		return
	}
	chk.IntAssert(len(jacs), 1)
	chk.Matrix(tst, "jacs[0]", 1e-15, jacs[0], Hq)
	res3, _, err := f.EvaluateError(q, false)
	if err != nil {
		tst.Errorf("evaluation failed: %v\n", err)
		return
	}
	chk.Vector(tst, "res", 1e-15, res2, res3)

	// missing key
	_, _, err = f.Evaluate(Values{Sym('v', 0): q}, false)
	if err == nil {
		tst.Errorf("evaluation with missing key must fail\n")
	}
}

func Test_velcons01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("velcons01. velocity-constraint factor")

	arm, q, dq, err := fourBarState()
	if err != nil {
		tst.Errorf("assembly failed: %v\n", err)
		return
	}
	f := NewVelConstraints(arm, Sym('q', 0), Sym('v', 0))
	chk.IntAssert(f.Dim(), 3)
	chk.IntAssert(len(f.Keys()), 2)

	res, Hq, Hdq, err := f.EvaluateError(q, dq, true)
	if err != nil {
		tst.Errorf("evaluation failed: %v\n", err)
		return
	}

	// residual is Phi_q·dq
	err = arm.UpdateNumericPhiAndJacobians()
	if err != nil {
		tst.Errorf("update failed: %v\n", err)
		return
	}
	ref := make([]float64, arm.NumConstraints())
	arm.Phiq.MatVecMul(ref, dq)
	chk.Vector(tst, "res", 1e-14, res, ref)

	eval := func() ([]float64, error) {
		r, _, _, e := f.EvaluateError(q, dq, false)
		return r, e
	}
	checkFactorJacobian(tst, "Hq ", eval, Hq, q, 1e-8, 1e-6)
	checkFactorJacobian(tst, "Hdq", eval, Hdq, dq, 1e-8, 1e-6)
}

func Test_gyro01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("gyro01. gyroscope factor. residual value")

	arm, err := mbs.FourBarsModel().Assemble(nil)
	if err != nil {
		tst.Errorf("assembly failed: %v\n", err)
		return
	}
	n := arm.NumDOFs()
	q := make([]float64, n)
	dq := make([]float64, n)
	la.VecCopy(q, 1, arm.Q)

	// crank along +x, free end moving upwards at 2 ⇒ ω = 2 rad/s
	dq[1] = 2.0
	f := NewGyroscope(arm, 0, 1.5, Sym('q', 0), Sym('v', 0))
	res, _, _, err := f.EvaluateError(q, dq, false)
	if err != nil {
		tst.Errorf("evaluation failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "res", 1e-14, res[0], 2.0-1.5)
}

func Test_gyro02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("gyro02. gyroscope factor. Jacobians for all anchorings")

	arm, q, dq, err := fourBarState()
	if err != nil {
		tst.Errorf("assembly failed: %v\n", err)
		return
	}

	// body 0 pins the first point, body 1 is fully free, body 2 pins the second
	for bodyIdx := 0; bodyIdx < 3; bodyIdx++ {
		f := NewGyroscope(arm, bodyIdx, 0.25, Sym('q', 0), Sym('v', 0))
		_, Hq, Hdq, err := f.EvaluateError(q, dq, true)
		if err != nil {
			tst.Errorf("evaluation failed: %v\n", err)
			return
		}
		eval := func() ([]float64, error) {
			r, _, _, e := f.EvaluateError(q, dq, false)
			return r, e
		}
		checkFactorJacobian(tst, io.Sf("body%d: Hq ", bodyIdx), eval, Hq, q, 1e-7, 1e-6)
		checkFactorJacobian(tst, io.Sf("body%d: Hdq", bodyIdx), eval, Hdq, dq, 1e-7, 1e-6)
	}
}

func Test_gyro03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("gyro03. gyroscope factor. input validation")

	arm, q, dq, err := fourBarState()
	if err != nil {
		tst.Errorf("assembly failed: %v\n", err)
		return
	}

	f := NewGyroscope(arm, 0, 0, Sym('q', 0), Sym('v', 0))
	if _, _, _, err = f.EvaluateError(q, dq[:2], false); err == nil {
		tst.Errorf("inconsistent vector lengths must fail\n")
		return
	}
	if _, _, _, err = f.EvaluateError(nil, nil, false); err == nil {
		tst.Errorf("empty state must fail\n")
		return
	}
	if _, _, _, err = f.EvaluateError(q[:2], dq[:2], false); err == nil {
		tst.Errorf("wrong DOF count must fail\n")
		return
	}
	bad := NewGyroscope(arm, 7, 0, Sym('q', 0), Sym('v', 0))
	if _, _, _, err = bad.EvaluateError(q, dq, false); err == nil {
		tst.Errorf("out-of-range body index must fail\n")
	}
}

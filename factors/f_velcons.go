// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package factors

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/AmirSamanMirjalili/multibody-state-estimation/mbs"
)

// VelConstraints is the velocity-constraint factor. Its residual is the
// product Phi_q(q)·dq — computed as an explicit sparse mat-vec, not read
// from the stored dotPhi — so that it depends on both q and dq for
// differentiation purposes:
//
//	∂res/∂q  = d(Phi_q·dq)/dq   (the DPhiqdqDq block)
//	∂res/∂dq = Phi_q
type VelConstraints struct {
	Arm   *mbs.AssembledModel // shared assembled model (exclusive during evaluation)
	KeyQ  Key                 // key of the coordinates vector
	KeyDq Key                 // key of the velocities vector
}

// NewVelConstraints returns the velocity-constraint factor
func NewVelConstraints(arm *mbs.AssembledModel, keyQ, keyDq Key) *VelConstraints {
	return &VelConstraints{Arm: arm, KeyQ: keyQ, KeyDq: keyDq}
}

// Keys returns the state keys this factor connects
func (o *VelConstraints) Keys() []Key { return []Key{o.KeyQ, o.KeyDq} }

// Dim returns the number of constraint equations
func (o *VelConstraints) Dim() int { return o.Arm.NumConstraints() }

// EvaluateError writes (q, dq) into the model, refreshes the Jacobians and
// returns Phi_q·dq with the two Jacobian blocks
func (o *VelConstraints) EvaluateError(q, dq []float64, wantJacobians bool) (res []float64, Hq, Hdq [][]float64, err error) {
	n := o.Arm.NumDOFs()
	if len(q) != n || len(dq) != n {
		err = chk.Err("vector length mismatch: |q|=%d |dq|=%d but model has %d DOFs", len(q), len(dq), n)
		return
	}
	la.VecCopy(o.Arm.Q, 1, q)
	la.VecCopy(o.Arm.Dotq, 1, dq)
	err = o.Arm.UpdateNumericPhiAndJacobians()
	if err != nil {
		return
	}
	res = make([]float64, o.Arm.NumConstraints())
	o.Arm.Phiq.MatVecMul(res, dq)
	if wantJacobians {
		Hq = o.Arm.DPhiqdqDq.Dense()
		Hdq = o.Arm.Phiq.Dense()
	}
	return
}

// Evaluate implements Factor
func (o *VelConstraints) Evaluate(vals Values, wantJacobians bool) (res []float64, jacs [][][]float64, err error) {
	q, err := vals.Vector(o.KeyQ)
	if err != nil {
		return
	}
	dq, err := vals.Vector(o.KeyDq)
	if err != nil {
		return
	}
	var Hq, Hdq [][]float64
	res, Hq, Hdq, err = o.EvaluateError(q, dq, wantJacobians)
	if err != nil {
		return
	}
	if wantJacobians {
		jacs = [][][]float64{Hq, Hdq}
	}
	return
}

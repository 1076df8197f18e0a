// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package factors

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/AmirSamanMirjalili/multibody-state-estimation/mbs"
)

// PosConstraints is the position-constraint factor: its residual is the full
// constraint vector Phi evaluated at a candidate q, and its Jacobian is the
// sparse block Phi_q in dense form
type PosConstraints struct {
	Arm  *mbs.AssembledModel // shared assembled model (exclusive during evaluation)
	KeyQ Key                 // key of the coordinates vector
}

// NewPosConstraints returns the position-constraint factor
func NewPosConstraints(arm *mbs.AssembledModel, keyQ Key) *PosConstraints {
	return &PosConstraints{Arm: arm, KeyQ: keyQ}
}

// Keys returns the state keys this factor connects
func (o *PosConstraints) Keys() []Key { return []Key{o.KeyQ} }

// Dim returns the number of constraint equations
func (o *PosConstraints) Dim() int { return o.Arm.NumConstraints() }

// EvaluateError writes q into the model, refreshes the Jacobians and returns
// the residual Phi(q) and, if wanted, Hq = Phi_q
func (o *PosConstraints) EvaluateError(q []float64, wantJacobians bool) (res []float64, Hq [][]float64, err error) {
	n := o.Arm.NumDOFs()
	if len(q) != n {
		err = chk.Err("vector length mismatch: |q|=%d but model has %d DOFs", len(q), n)
		return
	}
	la.VecCopy(o.Arm.Q, 1, q)
	err = o.Arm.UpdateNumericPhiAndJacobians()
	if err != nil {
		return
	}
	res = make([]float64, o.Arm.NumConstraints())
	la.VecCopy(res, 1, o.Arm.Phi)
	if wantJacobians {
		Hq = o.Arm.Phiq.Dense()
	}
	return
}

// Evaluate implements Factor
func (o *PosConstraints) Evaluate(vals Values, wantJacobians bool) (res []float64, jacs [][][]float64, err error) {
	q, err := vals.Vector(o.KeyQ)
	if err != nil {
		return
	}
	var Hq [][]float64
	res, Hq, err = o.EvaluateError(q, wantJacobians)
	if err != nil {
		return
	}
	if wantJacobians {
		jacs = [][][]float64{Hq}
	}
	return
}

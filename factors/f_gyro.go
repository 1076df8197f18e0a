// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package factors

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/AmirSamanMirjalili/multibody-state-estimation/mbs"
)

// Gyroscope is the rate-observation factor for one body: the measured scalar
// rate is modelled as the projection of the relative velocity of the body's
// two reference points onto the direction orthogonal to their segment,
// normalized by the segment length:
//
//	w = ((p1vel - p0vel)·v) / |p1 - p0|,   v = perp(unit(p1 - p0))
//
// residual = w - Reading. The Jacobians w.r.t. q and dq are closed-form and
// populated only into the free DOF columns; any of the four endpoint
// coordinates may independently be fixed.
type Gyroscope struct {
	Arm     *mbs.AssembledModel // shared assembled model (exclusive during evaluation)
	Body    int                 // index of the observed body
	Reading float64             // measured angular rate
	KeyQ    Key                 // key of the coordinates vector
	KeyDq   Key                 // key of the velocities vector
}

// NewGyroscope returns the rate-observation factor for the given body
func NewGyroscope(arm *mbs.AssembledModel, bodyIdx int, reading float64, keyQ, keyDq Key) *Gyroscope {
	return &Gyroscope{Arm: arm, Body: bodyIdx, Reading: reading, KeyQ: keyQ, KeyDq: keyDq}
}

// Keys returns the state keys this factor connects
func (o *Gyroscope) Keys() []Key { return []Key{o.KeyQ, o.KeyDq} }

// Dim returns 1 (scalar rate)
func (o *Gyroscope) Dim() int { return 1 }

// EvaluateError writes (q, dq) into the model and returns the residual and,
// if wanted, the 1×n Jacobian blocks w.r.t. q and dq
func (o *Gyroscope) EvaluateError(q, dq []float64, wantJacobians bool) (res []float64, Hq, Hdq [][]float64, err error) {
	n := len(q)
	if len(dq) != n {
		err = chk.Err("inconsistent vector lengths: |q|=%d |dq|=%d", n, len(dq))
		return
	}
	if n < 1 {
		err = chk.Err("empty state vector")
		return
	}
	if n != o.Arm.NumDOFs() {
		err = chk.Err("vector length mismatch: |q|=%d but model has %d DOFs", n, o.Arm.NumDOFs())
		return
	}
	bodies := o.Arm.Parent.Bodies()
	if o.Body < 0 || o.Body >= len(bodies) {
		err = chk.Err("body index %d out of range [0,%d)", o.Body, len(bodies))
		return
	}

	la.VecCopy(o.Arm.Q, 1, q)
	la.VecCopy(o.Arm.Dotq, 1, dq)

	body := bodies[o.Body]
	pt0 := body.Points[0]
	pt1 := body.Points[1]
	x0, y0 := o.Arm.PointCurrentCoords(pt0)
	x1, y1 := o.Arm.PointCurrentCoords(pt1)
	vx0, vy0 := o.Arm.PointCurrentVelocity(pt0)
	vx1, vy1 := o.Arm.PointCurrentVelocity(pt1)

	len2 := (x1-x0)*(x1-x0) + (y1-y0)*(y1-y0)
	if len2 < 1e-28 {
		err = chk.Err("body %q: reference segment has zero length", body.Name)
		return
	}
	li := 1.0 / math.Sqrt(len2) // 1/len

	// u: unit director from pt0 to pt1; v: u rotated +90°
	ux, uy := (x1-x0)*li, (y1-y0)*li
	vx, vy := -uy, ux

	// rate = projection of the relative velocity on v, over the length
	w := ((vx1-vx0)*vx + (vy1-vy0)*vy) * li

	res = []float64{w - o.Reading}
	if !wantJacobians {
		return
	}

	d0 := o.Arm.Points2DOFs[pt0]
	d1 := o.Arm.Points2DOFs[pt1]
	Hq = la.MatAlloc(1, n)
	Hdq = la.MatAlloc(1, n)

	li2 := li * li
	li4 := li2 * li2
	// cross = (p0-p1) × (p0vel-p1vel), reused by all four position columns
	cross := (x0-x1)*(vy0-vy1) - (y0-y1)*(vx0-vx1)

	if i := d0.DofX; i != mbs.InvalidDOF {
		Hq[0][i] = li2*(vy0-vy1) - 2.0*li4*(x0-x1)*cross
	}
	if i := d0.DofY; i != mbs.InvalidDOF {
		Hq[0][i] = -li2*(vx0-vx1) - 2.0*li4*(y0-y1)*cross
	}
	if i := d1.DofX; i != mbs.InvalidDOF {
		Hq[0][i] = -li2*(vy0-vy1) + 2.0*li4*(x0-x1)*cross
	}
	if i := d1.DofY; i != mbs.InvalidDOF {
		Hq[0][i] = li2*(vx0-vx1) + 2.0*li4*(y0-y1)*cross
	}

	if i := d0.DofX; i != mbs.InvalidDOF {
		Hdq[0][i] = li2 * (y1 - y0)
	}
	if i := d0.DofY; i != mbs.InvalidDOF {
		Hdq[0][i] = li2 * (x0 - x1)
	}
	if i := d1.DofX; i != mbs.InvalidDOF {
		Hdq[0][i] = li2 * (y0 - y1)
	}
	if i := d1.DofY; i != mbs.InvalidDOF {
		Hdq[0][i] = li2 * (x1 - x0)
	}
	return
}

// Evaluate implements Factor
func (o *Gyroscope) Evaluate(vals Values, wantJacobians bool) (res []float64, jacs [][][]float64, err error) {
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

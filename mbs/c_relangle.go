// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

import "math"

// RelativeAngle ties a relative coordinate θ to the angle formed at p0
// between the rays towards p1 and p2. With u = p1-p0 and w = p2-p0:
//
//	Phi = (u × w)·cosθ - (u · w)·sinθ
//
// which vanishes exactly when tanθ = (u × w)/(u · w), i.e. when θ is the
// angle from u to w. Smooth in all coordinates.
type RelativeAngle struct {
	P0, P1, P2 int // point indices; the angle is measured at P0
	ThetaCol   int // column in q of the relative coordinate

	// fixed at assembly
	row        int
	d0, d1, d2 Point2DOFs
}

// NewRelativeAngle returns the three-point relative angle constraint bound to
// the relative coordinate at column thetaCol
func NewRelativeAngle(p0, p1, p2, thetaCol int) *RelativeAngle {
	return &RelativeAngle{P0: p0, P1: p1, P2: p2, ThetaCol: thetaCol}
}

// Clone returns a copy bound to no assembled model
func (o *RelativeAngle) Clone() Constraint {
	return NewRelativeAngle(o.P0, o.P1, o.P2, o.ThetaCol)
}

// BuildSparseStructure appends one row and registers entries at the free
// coordinates of the three points plus the θ column
func (o *RelativeAngle) BuildSparseStructure(m *AssembledModel) {
	o.row = m.AddNewRowToConstraints()
	o.d0 = m.Points2DOFs[o.P0]
	o.d1 = m.Points2DOFs[o.P1]
	o.d2 = m.Points2DOFs[o.P2]
	for _, j := range []int{o.d0.DofX, o.d0.DofY, o.d1.DofX, o.d1.DofY, o.d2.DofX, o.d2.DofY, o.ThetaCol} {
		if j != InvalidDOF {
			m.Phiq.Register(o.row, j)
			registerVelEntry(m, o.row, j)
		}
	}
}

// Update recomputes the residual and Jacobian entries
func (o *RelativeAngle) Update(m *AssembledModel) error {
	x0, y0 := m.PointCurrentCoords(o.P0)
	x1, y1 := m.PointCurrentCoords(o.P1)
	x2, y2 := m.PointCurrentCoords(o.P2)
	vx0, vy0 := m.PointCurrentVelocity(o.P0)
	vx1, vy1 := m.PointCurrentVelocity(o.P1)
	vx2, vy2 := m.PointCurrentVelocity(o.P2)

	ux, uy := x1-x0, y1-y0
	wx, wy := x2-x0, y2-y0
	vux, vuy := vx1-vx0, vy1-vy0
	vwx, vwy := vx2-vx0, vy2-vy0

	C := ux*wy - uy*wx // u × w
	D := ux*wx + uy*wy // u · w
	Ct := vux*wy - vuy*wx + ux*vwy - uy*vwx
	Dt := vux*wx + vuy*wy + ux*vwx + uy*vwy

	θ := m.Q[o.ThetaCol]
	dθ := m.Dotq[o.ThetaCol]
	s, c := math.Sin(θ), math.Cos(θ)

	m.Phi[o.row] = C*c - D*s
	m.DotPhi[o.row] = Ct*c - Dt*s - dθ*(C*s+D*c)

	// partials of C, D and their time-derivatives w.r.t. the six point
	// coordinates, in the order x0 y0 x1 y1 x2 y2
	cols := [6]int{o.d0.DofX, o.d0.DofY, o.d1.DofX, o.d1.DofY, o.d2.DofX, o.d2.DofY}
	dC := [6]float64{uy - wy, wx - ux, wy, -wx, -uy, ux}
	dD := [6]float64{-wx - ux, -wy - uy, wx, wy, ux, uy}
	dCt := [6]float64{vuy - vwy, vwx - vux, vwy, -vwx, -vuy, vux}
	dDt := [6]float64{-vwx - vux, -vwy - vuy, vwx, vwy, vux, vuy}

	for k, j := range cols {
		if j == InvalidDOF {
			continue
		}
		m.Phiq.Put(o.row, j, dC[k]*c-dD[k]*s)
		putVelEntry(m, o.row, j, dCt[k]*c-dDt[k]*s-dθ*(dC[k]*s+dD[k]*c))
	}
	m.Phiq.Put(o.row, o.ThetaCol, -C*s-D*c)
	putVelEntry(m, o.row, o.ThetaCol, -Ct*s-Dt*c-dθ*(C*c-D*s))
	return nil
}

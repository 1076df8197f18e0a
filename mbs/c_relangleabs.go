// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

import "math"

// RelativeAngleAbsolute ties a relative coordinate θ to the absolute
// orientation of the segment p0→p1 with respect to the ground frame:
//
//	Phi = (x1-x0)·sinθ - (y1-y0)·cosθ
//
// which vanishes exactly when θ is the segment orientation. The residual is
// smooth in all coordinates; no axis branching is involved.
type RelativeAngleAbsolute struct {
	P0, P1   int // point indices
	ThetaCol int // column in q of the relative coordinate

	// fixed at assembly
	row    int
	d0, d1 Point2DOFs
}

// NewRelativeAngleAbsolute returns the ground-relative angle constraint for
// the segment p0→p1, bound to the relative coordinate at column thetaCol
func NewRelativeAngleAbsolute(p0, p1, thetaCol int) *RelativeAngleAbsolute {
	return &RelativeAngleAbsolute{P0: p0, P1: p1, ThetaCol: thetaCol}
}

// Clone returns a copy bound to no assembled model
func (o *RelativeAngleAbsolute) Clone() Constraint {
	return NewRelativeAngleAbsolute(o.P0, o.P1, o.ThetaCol)
}

// BuildSparseStructure appends one row and registers entries at the free
// coordinates of the two points plus the θ column
func (o *RelativeAngleAbsolute) BuildSparseStructure(m *AssembledModel) {
	o.row = m.AddNewRowToConstraints()
	o.d0 = m.Points2DOFs[o.P0]
	o.d1 = m.Points2DOFs[o.P1]
	for _, j := range []int{o.d0.DofX, o.d0.DofY, o.d1.DofX, o.d1.DofY, o.ThetaCol} {
		if j != InvalidDOF {
			m.Phiq.Register(o.row, j)
			registerVelEntry(m, o.row, j)
		}
	}
}

// Update recomputes the residual and Jacobian entries
func (o *RelativeAngleAbsolute) Update(m *AssembledModel) error {
	x0, y0 := m.PointCurrentCoords(o.P0)
	x1, y1 := m.PointCurrentCoords(o.P1)
	vx0, vy0 := m.PointCurrentVelocity(o.P0)
	vx1, vy1 := m.PointCurrentVelocity(o.P1)
	dx, dy := x1-x0, y1-y0
	ddx, ddy := vx1-vx0, vy1-vy0
	θ := m.Q[o.ThetaCol]
	dθ := m.Dotq[o.ThetaCol]
	s, c := math.Sin(θ), math.Cos(θ)

	m.Phi[o.row] = dx*s - dy*c
	m.DotPhi[o.row] = ddx*s - ddy*c + dθ*(dx*c+dy*s)

	put := func(j int, phiq, vel float64) {
		if j != InvalidDOF {
			m.Phiq.Put(o.row, j, phiq)
			putVelEntry(m, o.row, j, vel)
		}
	}
	put(o.d0.DofX, -s, -dθ*c)
	put(o.d0.DofY, c, -dθ*s)
	put(o.d1.DofX, s, dθ*c)
	put(o.d1.DofY, -c, dθ*s)
	put(o.ThetaCol, dx*c+dy*s, ddx*c+ddy*s+dθ*(dy*c-dx*s))
	return nil
}

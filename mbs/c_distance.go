// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

// ConstantDistance keeps two points at a fixed distance L:
//
//	Phi = (x1-x0)² + (y1-y0)² - L²
//
// This is the closure constraint generated automatically for rigid bodies.
type ConstantDistance struct {
	P0, P1 int     // point indices
	L      float64 // imposed distance

	// fixed at assembly
	row    int
	d0, d1 Point2DOFs
}

// NewConstantDistance returns a constant-distance constraint between points
// p0 and p1
func NewConstantDistance(p0, p1 int, L float64) *ConstantDistance {
	return &ConstantDistance{P0: p0, P1: p1, L: L}
}

// Clone returns a copy bound to no assembled model
func (o *ConstantDistance) Clone() Constraint {
	return NewConstantDistance(o.P0, o.P1, o.L)
}

// BuildSparseStructure appends one row and registers entries at the free
// coordinates of the two points
func (o *ConstantDistance) BuildSparseStructure(m *AssembledModel) {
	o.row = m.AddNewRowToConstraints()
	o.d0 = m.Points2DOFs[o.P0]
	o.d1 = m.Points2DOFs[o.P1]
	for _, j := range []int{o.d0.DofX, o.d0.DofY, o.d1.DofX, o.d1.DofY} {
		if j != InvalidDOF {
			m.Phiq.Register(o.row, j)
			registerVelEntry(m, o.row, j)
		}
	}
}

// Update recomputes the residual and Jacobian entries
func (o *ConstantDistance) Update(m *AssembledModel) error {
	x0, y0 := m.PointCurrentCoords(o.P0)
	x1, y1 := m.PointCurrentCoords(o.P1)
	vx0, vy0 := m.PointCurrentVelocity(o.P0)
	vx1, vy1 := m.PointCurrentVelocity(o.P1)
	dx, dy := x1-x0, y1-y0
	ddx, ddy := vx1-vx0, vy1-vy0

	m.Phi[o.row] = dx*dx + dy*dy - o.L*o.L
	m.DotPhi[o.row] = 2.0 * (dx*ddx + dy*ddy)

	put := func(j int, phiq, vel float64) {
		if j != InvalidDOF {
			m.Phiq.Put(o.row, j, phiq)
			putVelEntry(m, o.row, j, vel)
		}
	}
	put(o.d0.DofX, -2.0*dx, -2.0*ddx)
	put(o.d0.DofY, -2.0*dy, -2.0*ddy)
	put(o.d1.DofX, 2.0*dx, 2.0*ddx)
	put(o.d1.DofY, 2.0*dy, 2.0*ddy)
	return nil
}

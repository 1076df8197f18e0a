// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

import "github.com/cpmech/gosl/chk"

// RelativePosition welds a fourth point to the affine frame spanned by three
// points: with u = p1-p0 and w = p2-p0, it imposes
//
//	p3 = p0 + α·u + β·w
//
// where α and β are computed once from the static coordinates. The residual
// has two rows (x and y); the Jacobian is constant and the velocity-level
// blocks are structurally zero.
type RelativePosition struct {
	P0, P1, P2, P3 int     // point indices
	Alpha, Beta    float64 // barycentric coefficients of p3 in frame (p0; u, w)

	// fixed at assembly
	rowX, rowY     int
	d0, d1, d2, d3 Point2DOFs
}

// NewRelativePosition computes α,β from the static coordinates of the four
// points and returns the constraint. Fails if p0, p1, p2 are collinear.
func NewRelativePosition(d *ModelDefinition, p0, p1, p2, p3 int) (*RelativePosition, error) {
	a := d.PointInfo(p0)
	b := d.PointInfo(p1)
	c := d.PointInfo(p2)
	e := d.PointInfo(p3)
	ux, uy := b.X-a.X, b.Y-a.Y
	wx, wy := c.X-a.X, c.Y-a.Y
	det := ux*wy - uy*wx
	if det < 1e-12 && det > -1e-12 {
		return nil, chk.Err("points %d, %d, %d are collinear; they cannot span a body frame", p0, p1, p2)
	}
	tx, ty := e.X-a.X, e.Y-a.Y
	return &RelativePosition{
		P0: p0, P1: p1, P2: p2, P3: p3,
		Alpha: (tx*wy - ty*wx) / det,
		Beta:  (ux*ty - uy*tx) / det,
	}, nil
}

// Clone returns a copy bound to no assembled model
func (o *RelativePosition) Clone() Constraint {
	c := *o
	return &c
}

// BuildSparseStructure appends two rows (x and y) and registers the constant
// Jacobian entries at the free coordinates of the four points
func (o *RelativePosition) BuildSparseStructure(m *AssembledModel) {
	o.rowX = m.AddNewRowToConstraints()
	o.rowY = m.AddNewRowToConstraints()
	o.d0 = m.Points2DOFs[o.P0]
	o.d1 = m.Points2DOFs[o.P1]
	o.d2 = m.Points2DOFs[o.P2]
	o.d3 = m.Points2DOFs[o.P3]
	for _, j := range []int{o.d0.DofX, o.d1.DofX, o.d2.DofX, o.d3.DofX} {
		if j != InvalidDOF {
			m.Phiq.Register(o.rowX, j)
		}
	}
	for _, j := range []int{o.d0.DofY, o.d1.DofY, o.d2.DofY, o.d3.DofY} {
		if j != InvalidDOF {
			m.Phiq.Register(o.rowY, j)
		}
	}
}

// Update recomputes the residual; the Jacobian entries are constant
func (o *RelativePosition) Update(m *AssembledModel) error {
	x0, y0 := m.PointCurrentCoords(o.P0)
	x1, y1 := m.PointCurrentCoords(o.P1)
	x2, y2 := m.PointCurrentCoords(o.P2)
	x3, y3 := m.PointCurrentCoords(o.P3)
	vx0, vy0 := m.PointCurrentVelocity(o.P0)
	vx1, vy1 := m.PointCurrentVelocity(o.P1)
	vx2, vy2 := m.PointCurrentVelocity(o.P2)
	vx3, vy3 := m.PointCurrentVelocity(o.P3)

	α, β := o.Alpha, o.Beta
	c0 := 1.0 - α - β
	m.Phi[o.rowX] = c0*x0 + α*x1 + β*x2 - x3
	m.Phi[o.rowY] = c0*y0 + α*y1 + β*y2 - y3
	m.DotPhi[o.rowX] = c0*vx0 + α*vx1 + β*vx2 - vx3
	m.DotPhi[o.rowY] = c0*vy0 + α*vy1 + β*vy2 - vy3

	put := func(row, j int, v float64) {
		if j != InvalidDOF {
			m.Phiq.Put(row, j, v)
		}
	}
	put(o.rowX, o.d0.DofX, c0)
	put(o.rowX, o.d1.DofX, α)
	put(o.rowX, o.d2.DofX, β)
	put(o.rowX, o.d3.DofX, -1)
	put(o.rowY, o.d0.DofY, c0)
	put(o.rowY, o.d1.DofY, α)
	put(o.rowY, o.d2.DofY, β)
	put(o.rowY, o.d3.DofY, -1)
	return nil
}

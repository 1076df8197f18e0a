// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Body represents one planar rigid body attached to two or more points.
// The first two points define the body-fixed reference frame: origin at the
// first point, x axis towards the second. Cog and LocalPoints are expressed
// in that frame.
type Body struct {

	// input
	Name   string     // optional label
	Points []int      // ≥2 indices into the model's point table
	Length float64    // distance between the first two points
	Mass   float64    // total mass
	Icog   float64    // rotational inertia about the center of gravity
	Cog    [2]float64 // center of gravity, in body-local coordinates

	// derived at model-definition time
	LocalPoints [][2]float64 // local coordinates of all points of this body

	// mass partition blocks. computed on first use
	m00, m01, m11 [][]float64
}

// MassBlocks returns the three 2x2 blocks M00, M01 and M11 of this body's
// constant mass matrix in natural coordinates:
//
//	M = | M00  M01 |      E_kin = ½ [dq0 dq1] M [dq0 dq1]'
//	    | M01' M11 |
//
// The blocks follow the classical planar natural-coordinate element, with the
// inertia transferred from the cog to the first reference point.
func (o *Body) MassBlocks() (M00, M01, M11 [][]float64) {
	if o.m00 == nil {
		a, b := o.Cog[0], o.Cog[1]
		L := o.Length
		if L < 1e-14 {
			chk.Panic("body %q has zero reference length", o.Name)
		}
		i0 := o.Icog + o.Mass*(a*a+b*b) // inertia about the first point
		L2 := L * L
		o.m00 = la.MatAlloc(2, 2)
		o.m01 = la.MatAlloc(2, 2)
		o.m11 = la.MatAlloc(2, 2)
		o.m00[0][0] = o.Mass + (i0-2.0*L*o.Mass*a)/L2
		o.m00[1][1] = o.m00[0][0]
		o.m01[0][0] = (L*o.Mass*a - i0) / L2
		o.m01[1][1] = o.m01[0][0]
		o.m01[0][1] = -o.Mass * b / L
		o.m01[1][0] = o.Mass * b / L
		o.m11[0][0] = i0 / L2
		o.m11[1][1] = o.m11[0][0]
	}
	return o.m00, o.m01, o.m11
}

// GravityLoad returns the generalized forces that gravity g=(gx,gy) applies
// on the two reference points of this body. The two contributions sum to m·g.
func (o *Body) GravityLoad(gx, gy float64) (f0, f1 [2]float64) {
	a, b := o.Cog[0], o.Cog[1]
	m := o.Mass
	L := o.Length
	f1[0] = m / L * (a*gx + b*gy)
	f1[1] = m / L * (a*gy - b*gx)
	f0[0] = m*gx - f1[0]
	f0[1] = m*gy - f1[1]
	return
}

// distance between two static points
func dist(p, q Point) float64 {
	return math.Sqrt((p.X-q.X)*(p.X-q.X) + (p.Y-q.Y)*(p.Y-q.Y))
}

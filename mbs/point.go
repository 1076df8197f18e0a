// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mbs implements the model substrate for planar rigid multibody
// mechanisms in natural (Cartesian point) coordinates: points, bodies,
// degrees of freedom, constraint equations and the assembled model with its
// sparse constraint Jacobians
package mbs

// PointDOF distinguishes the two scalar coordinates of a planar point
type PointDOF int

const (
	DofX PointDOF = iota // x coordinate
	DofY                 // y coordinate
)

// InvalidDOF marks a point coordinate that is not part of the state vector q
// (i.e. the coordinate belongs to a fixed point)
const InvalidDOF = -1

// Point holds the static description of one point of the mechanism.
// For free points, the coordinates stored here are only the initial values;
// the current ones live in the assembled model's q vector.
type Point struct {
	X, Y  float64 // coordinates
	Fixed bool    // point is welded to ground
}

// EuclideanDOF maps one scalar unknown in q to a coordinate of a point
type EuclideanDOF struct {
	Point int      // index into the model's point table
	Dof   PointDOF // which coordinate
}

// Point2DOFs gives, for one point, the columns in q of its two coordinates.
// A column equal to InvalidDOF means the coordinate is fixed and must be read
// from the static Point data instead.
type Point2DOFs struct {
	DofX int // column of the x coordinate, or InvalidDOF
	DofY int // column of the y coordinate, or InvalidDOF
}

// RelativeDOF is one additional scalar unknown constrained algebraically to
// the natural coordinates. The set of kinds is closed: RelativeAngleDOF and
// RelativeAngleAbsoluteDOF.
type RelativeDOF interface {
	relativeDOF()
}

// RelativeAngleDOF is the angle formed at Point0 between the rays towards
// Point1 and Point2
type RelativeAngleDOF struct {
	Point0, Point1, Point2 int
}

// RelativeAngleAbsoluteDOF is the absolute orientation of the segment
// Point0→Point1 with respect to the ground frame
type RelativeAngleAbsoluteDOF struct {
	Point0, Point1 int
}

func (RelativeAngleDOF) relativeDOF()         {}
func (RelativeAngleAbsoluteDOF) relativeDOF() {}

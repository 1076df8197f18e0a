// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// ModelDefinition is the mutable symbolic description of a mechanism:
// the point table, the rigid bodies and the constraint equations.
// Once a model has been assembled its structure must not change anymore.
type ModelDefinition struct {
	points      []Point
	bodies      []*Body
	constraints []Constraint

	// the automatic rigid-body closure constraints are generated only once
	addedLenConstraints bool
}

// NewModelDefinition returns a new, empty model definition
func NewModelDefinition() *ModelDefinition {
	return new(ModelDefinition)
}

// SetPointCount allocates the point table with n points
func (o *ModelDefinition) SetPointCount(n int) {
	o.points = make([]Point, n)
}

// SetPointCoords sets the static coordinates and the fixed flag of point i
func (o *ModelDefinition) SetPointCoords(i int, x, y float64, fixed bool) {
	if o.addedLenConstraints {
		chk.Panic("cannot modify model after assembling")
	}
	if i < 0 || i >= len(o.points) {
		chk.Panic("point index %d out of range [0,%d)", i, len(o.points))
	}
	o.points[i].X = x
	o.points[i].Y = y
	o.points[i].Fixed = fixed
}

// PointCount returns the number of points in the table
func (o *ModelDefinition) PointCount() int { return len(o.points) }

// PointInfo returns the static data of point i
func (o *ModelDefinition) PointInfo(i int) Point { return o.points[i] }

// Bodies returns the list of rigid bodies
func (o *ModelDefinition) Bodies() []*Body { return o.bodies }

// Constraints returns the structural constraints added so far
func (o *ModelDefinition) Constraints() []Constraint { return o.constraints }

// AddBody appends a rigid body. The body must reference ≥2 valid points; its
// Length, when zero, is derived from the static distance between the first
// two points, and the local coordinates of all its points are precomputed in
// the frame defined by those two points.
func (o *ModelDefinition) AddBody(b *Body) (err error) {
	if o.addedLenConstraints {
		chk.Panic("cannot modify model after assembling")
	}
	if len(b.Points) < 2 {
		return chk.Err("body %q has an invalid number of points (=%d), valid are >=2", b.Name, len(b.Points))
	}
	for _, ip := range b.Points {
		if ip < 0 || ip >= len(o.points) {
			return chk.Err("body %q references point %d out of range [0,%d)", b.Name, ip, len(o.points))
		}
	}
	p0 := o.points[b.Points[0]]
	p1 := o.points[b.Points[1]]
	L01 := dist(p0, p1)
	if L01 < 1e-14 {
		return chk.Err("body %q: points %d and %d coincide; cannot define reference frame", b.Name, b.Points[0], b.Points[1])
	}
	if b.Length == 0 {
		b.Length = L01
	}
	if b.Length <= 0 {
		return chk.Err("body %q has non-positive length = %g", b.Name, b.Length)
	}

	// local coordinates in the frame origin=p0, x-axis towards p1
	c := (p1.X - p0.X) / L01
	s := (p1.Y - p0.Y) / L01
	b.LocalPoints = make([][2]float64, len(b.Points))
	for k, ip := range b.Points {
		dx := o.points[ip].X - p0.X
		dy := o.points[ip].Y - p0.Y
		b.LocalPoints[k][0] = c*dx + s*dy
		b.LocalPoints[k][1] = -s*dx + c*dy
	}

	o.bodies = append(o.bodies, b)
	return
}

// AddConstraint appends one structural constraint equation
func (o *ModelDefinition) AddConstraint(c Constraint) {
	if o.addedLenConstraints {
		chk.Panic("cannot modify model after assembling")
	}
	o.constraints = append(o.constraints, c)
}

// SymbolicAssembledModel is the result of the symbolic assembly: the chosen
// Euclidean DOF set plus any relative coordinates, before numeric allocation
type SymbolicAssembledModel struct {
	Model *ModelDefinition // parent definition
	DOFs  []EuclideanDOF   // x/y unknowns of the free points, in point order
	RDOFs []RelativeDOF    // relative coordinates, appended after the Euclidean block
}

// AssembleSymbolic builds the symbolic assembled model: every free point
// contributes its x and y DOFs, and each rigid body contributes its
// constant-distance closure constraints. For bodies with more than three
// points the pairing is (0,1), then (0,j) and (1,j) for j≥2; downstream
// Jacobian sparsity depends on this exact pairing.
func (o *ModelDefinition) AssembleSymbolic() (armi *SymbolicAssembledModel, err error) {

	armi = &SymbolicAssembledModel{Model: o}

	// 1) natural-coordinate unknowns
	for i, pt := range o.points {
		if !pt.Fixed {
			armi.DOFs = append(armi.DOFs, EuclideanDOF{i, DofX})
			armi.DOFs = append(armi.DOFs, EuclideanDOF{i, DofY})
		}
	}

	// 2) one constant-distance constraint per rigid pair
	if !o.addedLenConstraints {
		for _, b := range o.bodies {
			n := len(b.Points)
			var pairs [][2]int
			switch {
			case n < 2:
				return nil, chk.Err("body %q has an invalid number of points (=%d), valid are >=2", b.Name, n)
			case n == 2:
				pairs = [][2]int{{0, 1}}
			case n == 3:
				pairs = [][2]int{{0, 1}, {0, 2}, {1, 2}}
			default:
				pairs = [][2]int{{0, 1}}
				for j := 2; j < n; j++ {
					pairs = append(pairs, [2]int{0, j}, [2]int{1, j})
				}
			}
			for _, p := range pairs {
				i, j := b.Points[p[0]], b.Points[p[1]]
				L := dist(o.points[i], o.points[j])
				o.constraints = append(o.constraints, NewConstantDistance(i, j, L))
			}
		}
		o.addedLenConstraints = true
	}
	return
}

// Assemble performs the symbolic assembly and instantiates the numeric
// assembled model, optionally with relative coordinates
func (o *ModelDefinition) Assemble(relativeCoords []RelativeDOF) (arm *AssembledModel, err error) {
	armi, err := o.AssembleSymbolic()
	if err != nil {
		return
	}
	armi.RDOFs = append(armi.RDOFs, relativeCoords...)
	return NewAssembledModel(armi)
}

// angleOf returns the orientation of the segment i→j from static coordinates
func (o *ModelDefinition) angleOf(i, j int) float64 {
	return math.Atan2(o.points[j].Y-o.points[i].Y, o.points[j].X-o.points[i].X)
}

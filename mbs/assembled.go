// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// EarthGravity is the default gravity vector (x, y)
var EarthGravity = [2]float64{0, -9.81}

// AssembledModel is the numeric instantiation of a symbolic model for a
// chosen DOF set. It owns the state vectors, the point→DOF reverse map, the
// constraint objects and the sparse Jacobian storage, and is the single
// source of truth for current point positions and velocities.
//
// All vectors are allocated once here and never reallocated; callers may
// keep references into them across CopyStateFrom calls. The structure is
// single-threaded: a factor/simulator evaluation sequence (write q/dq, call
// UpdateNumericPhiAndJacobians, read residuals/Jacobians) must be serialized
// externally.
type AssembledModel struct {

	// parent and DOF tables
	Parent         *ModelDefinition // symbolic model definition
	DOFs           []EuclideanDOF   // Euclidean unknowns, first block of q
	RDOFs          []RelativeDOF    // relative unknowns, second block of q
	Points2DOFs    []Point2DOFs     // per-point columns in q, InvalidDOF where fixed
	RelCoord2Index []int            // per relative DOF, its column in q

	// state. mutated in place by simulators/optimizers between evaluations
	Q     []float64 // generalized coordinates q
	Dotq  []float64 // velocities dq/dt
	Ddotq []float64 // accelerations d²q/dt²
	Qext  []float64 // applied generalized forces

	// constraints and their numeric storage. rows appended during assembly
	Constraints []Constraint
	Phi         []float64 // constraint residuals
	DotPhi      []float64 // time-derivative of Phi at current (q,dq)

	// sparse Jacobian blocks; structure fixed at assembly
	Phiq              *SparseMat // ∂Phi/∂q
	DotPhiq           *SparseMat // ∂(dotPhi)/∂q
	DPhiqdqDq         *SparseMat // ∂(Phi_q·dq)/∂q
	PhiqqTimesDq      *SparseMat // (∂Phi_q/∂q)·dq
	DotPhiqDdqTimesDq *SparseMat // (∂dotPhi_q/∂dq)·dq

	// environment
	Gravity [2]float64 // gravity vector; defaults to EarthGravity
}

// NewAssembledModel assembles the numeric model from a symbolic one.
// Fails if there are zero Euclidean DOFs or an unrecognized relative-DOF
// variant; no partially assembled model is returned.
func NewAssembledModel(armi *SymbolicAssembledModel) (o *AssembledModel, err error) {

	nE := len(armi.DOFs)
	nR := len(armi.RDOFs)
	n := nE + nR
	if nE == 0 {
		return nil, chk.Err("trying to assemble model with 0 natural-coordinate DOFs")
	}

	o = &AssembledModel{
		Parent:         armi.Model,
		DOFs:           armi.DOFs,
		RDOFs:          armi.RDOFs,
		RelCoord2Index: make([]int, nR),
		Q:              make([]float64, n),
		Dotq:           make([]float64, n),
		Ddotq:          make([]float64, n),
		Qext:           make([]float64, n),
		Gravity:        EarthGravity,
	}

	// point → DOF reverse map, and initial q from the free points
	o.Points2DOFs = make([]Point2DOFs, armi.Model.PointCount())
	for i := range o.Points2DOFs {
		o.Points2DOFs[i] = Point2DOFs{InvalidDOF, InvalidDOF}
	}
	for i, dof := range armi.DOFs {
		pt := armi.Model.PointInfo(dof.Point)
		switch dof.Dof {
		case DofX:
			o.Q[i] = pt.X
			o.Points2DOFs[dof.Point].DofX = i
		case DofY:
			o.Q[i] = pt.Y
			o.Points2DOFs[dof.Point].DofY = i
		default:
			return nil, chk.Err("unexpected point DOF variant %v", dof.Dof)
		}
	}

	// sparse blocks: column count fixed now, rows appended by constraints
	o.Phiq = NewSparseMat(n)
	o.DotPhiq = NewSparseMat(n)
	o.DPhiqdqDq = NewSparseMat(n)
	o.PhiqqTimesDq = NewSparseMat(n)
	o.DotPhiqDdqTimesDq = NewSparseMat(n)

	// constraints: clone the structural ones, then one extra per relative DOF
	for _, c := range armi.Model.Constraints() {
		o.Constraints = append(o.Constraints, c.Clone())
	}
	for i, rdof := range armi.RDOFs {
		col := nE + i
		switch r := rdof.(type) {
		case RelativeAngleDOF:
			o.Constraints = append(o.Constraints, NewRelativeAngle(r.Point0, r.Point1, r.Point2, col))
			o.Q[col] = armi.Model.angleOf(r.Point0, r.Point2) - armi.Model.angleOf(r.Point0, r.Point1)
		case RelativeAngleAbsoluteDOF:
			o.Constraints = append(o.Constraints, NewRelativeAngleAbsolute(r.Point0, r.Point1, col))
			o.Q[col] = armi.Model.angleOf(r.Point0, r.Point1)
		default:
			return nil, chk.Err("unknown type of relative coordinate: %v", rdof)
		}
		o.RelCoord2Index[i] = col
	}

	// fix the sparse structures
	for _, c := range o.Constraints {
		c.BuildSparseStructure(o)
	}
	o.Phiq.Freeze()
	o.DotPhiq.Freeze()
	o.DPhiqdqDq.Freeze()
	o.PhiqqTimesDq.Freeze()
	o.DotPhiqDdqTimesDq.Freeze()
	return
}

// NumDOFs returns the length of q
func (o *AssembledModel) NumDOFs() int { return len(o.Q) }

// NumConstraints returns the number of constraint equations (rows of Phi)
func (o *AssembledModel) NumConstraints() int { return len(o.Phi) }

// SetGravity sets the gravity vector
func (o *AssembledModel) SetGravity(gx, gy float64) {
	o.Gravity[0] = gx
	o.Gravity[1] = gy
}

// AddNewRowToConstraints appends one row to every constraint-sized vector
// and matrix, returning the new row's index. Only to be called while
// constraints are building their sparse structure.
func (o *AssembledModel) AddNewRowToConstraints() int {
	idx := len(o.Phi)
	o.Phi = append(o.Phi, 0)
	o.DotPhi = append(o.DotPhi, 0)
	o.Phiq.AddRow()
	o.DotPhiq.AddRow()
	o.DPhiqdqDq.AddRow()
	o.PhiqqTimesDq.AddRow()
	o.DotPhiqDdqTimesDq.AddRow()
	return idx
}

// UpdateNumericPhiAndJacobians commands every constraint to refresh its rows
// of Phi, dotPhi and the sparse Jacobian blocks at the current (q, dq).
// Must be called before any evaluation that reads those structures.
func (o *AssembledModel) UpdateNumericPhiAndJacobians() (err error) {
	for _, c := range o.Constraints {
		err = c.Update(o)
		if err != nil {
			return
		}
	}
	return
}

// PointCurrentCoords returns the current coordinates of a point, reading q
// for free coordinates and the static point data for fixed ones. O(1), no
// allocation.
func (o *AssembledModel) PointCurrentCoords(ptIdx int) (x, y float64) {
	pt := o.Parent.PointInfo(ptIdx)
	d := o.Points2DOFs[ptIdx]
	x, y = pt.X, pt.Y
	if d.DofX != InvalidDOF {
		x = o.Q[d.DofX]
	}
	if d.DofY != InvalidDOF {
		y = o.Q[d.DofY]
	}
	return
}

// PointCurrentVelocity returns the current velocity of a point; fixed
// coordinates have zero velocity by construction
func (o *AssembledModel) PointCurrentVelocity(ptIdx int) (vx, vy float64) {
	d := o.Points2DOFs[ptIdx]
	if d.DofX != InvalidDOF {
		vx = o.Dotq[d.DofX]
	}
	if d.DofY != InvalidDOF {
		vy = o.Dotq[d.DofY]
	}
	return
}

// PointOnBodyCurrentCoords reconstructs the global coordinates of a point
// rigidly attached to a body, given its coordinates (lx,ly) in the body
// frame defined by the body's two reference points. Fails if the reference
// segment currently has zero length.
func (o *AssembledModel) PointOnBodyCurrentCoords(bodyIdx int, lx, ly float64) (x, y float64, err error) {
	b := o.Parent.Bodies()[bodyIdx]
	x0, y0 := o.PointCurrentCoords(b.Points[0])
	x1, y1 := o.PointCurrentCoords(b.Points[1])
	L := math.Sqrt((x1-x0)*(x1-x0) + (y1-y0)*(y1-y0))
	if L < 1e-14 {
		return 0, 0, chk.Err("body %q: reference segment has zero length", b.Name)
	}
	ux, uy := (x1-x0)/L, (y1-y0)/L
	// v is u rotated +90°
	x = x0 + ux*lx - uy*ly
	y = y0 + uy*lx + ux*ly
	return
}

// CopyStateFrom bulk-replaces this instance's q and dq with another's.
// Both models must come from the same symbolic model; the backing arrays are
// written in place, so externally held references into q/dq remain valid.
func (o *AssembledModel) CopyStateFrom(other *AssembledModel) (err error) {
	if len(o.Q) != len(other.Q) || len(o.Dotq) != len(other.Dotq) {
		return chk.Err("cannot copy state: DOF count mismatch (%d != %d)", len(o.Q), len(other.Q))
	}
	if len(o.DOFs) != len(other.DOFs) || len(o.Phi) != len(other.Phi) {
		return chk.Err("cannot copy state between models with different DOF/constraint layouts")
	}
	la.VecCopy(o.Q, 1, other.Q)
	la.VecCopy(o.Dotq, 1, other.Dotq)
	return
}

// MassMatrix assembles the dense global mass matrix from the bodies' 2x2
// partition blocks, mapped through the point→DOF tables. The matrix is
// constant in natural coordinates.
func (o *AssembledModel) MassMatrix() [][]float64 {
	n := o.NumDOFs()
	M := la.MatAlloc(n, n)
	for _, b := range o.Parent.Bodies() {
		M00, M01, M11 := b.MassBlocks()
		d0 := o.Points2DOFs[b.Points[0]]
		d1 := o.Points2DOFs[b.Points[1]]
		c0 := [2]int{d0.DofX, d0.DofY}
		c1 := [2]int{d1.DofX, d1.DofY}
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				if c0[i] != InvalidDOF && c0[j] != InvalidDOF {
					M[c0[i]][c0[j]] += M00[i][j]
				}
				if c1[i] != InvalidDOF && c1[j] != InvalidDOF {
					M[c1[i]][c1[j]] += M11[i][j]
				}
				if c0[i] != InvalidDOF && c1[j] != InvalidDOF {
					M[c0[i]][c1[j]] += M01[i][j]
				}
				if c1[i] != InvalidDOF && c0[j] != InvalidDOF {
					M[c1[i]][c0[j]] += M01[j][i]
				}
			}
		}
	}
	return M
}

// AddGravityLoads accumulates the generalized gravity forces of all bodies
// into res (length = NumDOFs)
func (o *AssembledModel) AddGravityLoads(res []float64) {
	for _, b := range o.Parent.Bodies() {
		f0, f1 := b.GravityLoad(o.Gravity[0], o.Gravity[1])
		d0 := o.Points2DOFs[b.Points[0]]
		d1 := o.Points2DOFs[b.Points[1]]
		if d0.DofX != InvalidDOF {
			res[d0.DofX] += f0[0]
		}
		if d0.DofY != InvalidDOF {
			res[d0.DofY] += f0[1]
		}
		if d1.DofX != InvalidDOF {
			res[d1.DofX] += f1[0]
		}
		if d1.DofY != InvalidDOF {
			res[d1.DofY] += f1[1]
		}
	}
}

// String lists the coordinates of this model
func (o *AssembledModel) String() (l string) {
	l = io.Sf("AssembledModel: |q|=%d, %d natural, %d relative coordinates\n", len(o.Q), len(o.DOFs), len(o.RDOFs))
	for i, dof := range o.DOFs {
		axis := "x"
		if dof.Dof == DofY {
			axis = "y"
		}
		l += io.Sf("  q[%d]: %s%d\n", i, axis, dof.Point)
	}
	for i, rdof := range o.RDOFs {
		switch r := rdof.(type) {
		case RelativeAngleDOF:
			l += io.Sf("  q[%d]: relativeAngle(%d; %d, %d)\n", o.RelCoord2Index[i], r.Point0, r.Point1, r.Point2)
		case RelativeAngleAbsoluteDOF:
			l += io.Sf("  q[%d]: relativeAngleWrtGround(%d - %d)\n", o.RelCoord2Index[i], r.Point0, r.Point1)
		}
	}
	return
}

// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

// Constraint is one algebraic constraint equation relating the natural (and
// possibly relative) coordinates. Implementations are stateless transformers:
// BuildSparseStructure runs once per assembled model and fixes which rows of
// Phi and which (row,column) Jacobian entries this constraint owns; Update
// recomputes the numeric values into those fixed slots.
//
// The set of kinds is closed: ConstantDistance, RelativeAngle,
// RelativeAngleAbsolute and RelativePosition.
type Constraint interface {

	// Clone returns a copy bound to no assembled model yet
	Clone() Constraint

	// BuildSparseStructure appends this constraint's rows to the assembled
	// model and registers its structurally non-zero Jacobian entries
	BuildSparseStructure(m *AssembledModel)

	// Update recomputes Phi, dotPhi and all Jacobian entries at the model's
	// current q and dq
	Update(m *AssembledModel) error
}

// registerVelEntry declares entry (i,j) in the four velocity-level blocks.
// Their structural patterns coincide for every constraint kind here.
func registerVelEntry(m *AssembledModel, i, j int) {
	m.DotPhiq.Register(i, j)
	m.DPhiqdqDq.Register(i, j)
	m.PhiqqTimesDq.Register(i, j)
	m.DotPhiqDdqTimesDq.Register(i, j)
}

// putVelEntry writes the same value into the four velocity-level blocks.
// For constraints with no explicit time dependence the four matrices carry
// identical numeric values; they are kept as separate structures because
// their consumers differ.
func putVelEntry(m *AssembledModel, i, j int, v float64) {
	m.DotPhiq.Put(i, j, v)
	m.DPhiqdqDq.Put(i, j, v)
	m.PhiqqTimesDq.Put(i, j, v)
	m.DotPhiqDdqTimesDq.Put(i, j, v)
}

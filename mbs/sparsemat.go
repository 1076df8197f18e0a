// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// SparseMat is a row-major sparse matrix whose non-zero structure is fixed
// during assembly: entries are declared with Register and only those entries
// may later receive values with Put. Rows are appended one at a time while
// constraints are being assembled; the column count is set once. The backing
// storage never moves after assembly, so callers may cache row references.
type SparseMat struct {
	ncols int
	rows  []map[int]float64

	// after Freeze, Register and AddRow become invalid
	frozen bool
}

// NewSparseMat returns a sparse matrix with zero rows and ncols columns
func NewSparseMat(ncols int) *SparseMat {
	return &SparseMat{ncols: ncols}
}

// Nrows returns the number of rows
func (o *SparseMat) Nrows() int { return len(o.rows) }

// Ncols returns the number of columns
func (o *SparseMat) Ncols() int { return o.ncols }

// AddRow appends one (empty) row and returns its index
func (o *SparseMat) AddRow() int {
	if o.frozen {
		chk.Panic("sparse structure is frozen; cannot append rows")
	}
	o.rows = append(o.rows, make(map[int]float64))
	return len(o.rows) - 1
}

// Register declares entry (i,j) as structurally non-zero. Must be called
// during assembly, before Freeze.
func (o *SparseMat) Register(i, j int) {
	if o.frozen {
		chk.Panic("sparse structure is frozen; cannot register (%d,%d)", i, j)
	}
	if i < 0 || i >= len(o.rows) || j < 0 || j >= o.ncols {
		chk.Panic("cannot register entry (%d,%d) in %d×%d sparse matrix", i, j, len(o.rows), o.ncols)
	}
	o.rows[i][j] = 0
}

// Freeze fixes the structure permanently
func (o *SparseMat) Freeze() { o.frozen = true }

// Put overwrites the value of a registered entry
func (o *SparseMat) Put(i, j int, v float64) {
	if i < 0 || i >= len(o.rows) {
		chk.Panic("row %d out of range [0,%d)", i, len(o.rows))
	}
	if _, ok := o.rows[i][j]; !ok {
		chk.Panic("entry (%d,%d) is not part of the sparse structure", i, j)
	}
	o.rows[i][j] = v
}

// Get returns the value at (i,j); structural zeros read as 0
func (o *SparseMat) Get(i, j int) float64 { return o.rows[i][j] }

// Dense returns a newly allocated dense copy
func (o *SparseMat) Dense() [][]float64 {
	res := la.MatAlloc(len(o.rows), o.ncols)
	for i, row := range o.rows {
		for j, v := range row {
			res[i][j] = v
		}
	}
	return res
}

// DenseInto writes the dense form into res, which must be Nrows×Ncols
func (o *SparseMat) DenseInto(res [][]float64) {
	la.MatFill(res, 0)
	for i, row := range o.rows {
		for j, v := range row {
			res[i][j] = v
		}
	}
}

// ToTriplet exports the registered entries into a gosl triplet
func (o *SparseMat) ToTriplet(tri *la.Triplet) {
	nnz := 0
	for _, row := range o.rows {
		nnz += len(row)
	}
	tri.Init(len(o.rows), o.ncols, nnz)
	for i, row := range o.rows {
		for j, v := range row {
			tri.Put(i, j, v)
		}
	}
}

// MatVecMul computes res = o * v
func (o *SparseMat) MatVecMul(res, v []float64) {
	if len(res) != len(o.rows) || len(v) != o.ncols {
		chk.Panic("MatVecMul size mismatch: res=%d v=%d for %d×%d matrix", len(res), len(v), len(o.rows), o.ncols)
	}
	for i, row := range o.rows {
		res[i] = 0
		for j, val := range row {
			res[i] += val * v[j]
		}
	}
}

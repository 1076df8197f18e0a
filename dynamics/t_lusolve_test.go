// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamics

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_lusolve01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("lusolve01. dense LU with partial pivoting")

	// requires pivoting: leading zero
	A := [][]float64{
		{0, 2, 1},
		{1, 1, 1},
		{2, 0, 1},
	}
	b := []float64{7, 6, 5}
	err := LUSolve(A, b)
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	chk.Vector(tst, "x", 1e-14, b, []float64{1, 2, 3})

	// singular matrix is rejected
	A = [][]float64{
		{1, 2},
		{2, 4},
	}
	b = []float64{1, 2}
	err = LUSolve(A, b)
	if err == nil {
		tst.Errorf("singular system must fail\n")
	}
}

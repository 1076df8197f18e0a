// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package dynamics implements forward dynamic simulation on top of the
// assembled multibody model: constrained accelerations from the dense KKT
// system, RK4 time stepping and position/velocity projection
package dynamics

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// LUSolve solves the dense linear system A·x = b by Gaussian elimination
// with partial pivoting. A and b are overwritten; on return b holds x.
// The KKT and projection systems here are small and dense, hence no call
// into an external sparse solver.
func LUSolve(A [][]float64, b []float64) (err error) {
	n := len(A)
	if n == 0 || len(b) != n {
		return chk.Err("LUSolve: invalid system size: |A|=%d |b|=%d", n, len(b))
	}
	for k := 0; k < n; k++ {

		// pivot
		p := k
		big := math.Abs(A[k][k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(A[i][k]); v > big {
				big, p = v, i
			}
		}
		if big < 1e-14 {
			return chk.Err("LUSolve: singular matrix (pivot %d)", k)
		}
		if p != k {
			A[k], A[p] = A[p], A[k]
			b[k], b[p] = b[p], b[k]
		}

		// eliminate
		for i := k + 1; i < n; i++ {
			f := A[i][k] / A[k][k]
			if f == 0 {
				continue
			}
			for j := k; j < n; j++ {
				A[i][j] -= f * A[k][j]
			}
			b[i] -= f * b[k]
		}
	}

	// back substitution
	for i := n - 1; i >= 0; i-- {
		s := b[i]
		for j := i + 1; j < n; j++ {
			s -= A[i][j] * b[j]
		}
		b[i] = s / A[i][i]
	}
	return
}

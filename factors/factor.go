// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package factors implements differentiable residual functions over the
// assembled multibody model: position-constraint, velocity-constraint and
// gyroscope rate factors, for consumption by a nonlinear least-squares /
// factor-graph solver
package factors

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Key identifies one named state vector in a factor graph, e.g. Sym('q', 1)
// for the coordinates at timestep 1
type Key struct {
	Chr byte // variable kind, e.g. 'q', 'v', 'a'
	Idx int  // timestep or instance index
}

// Sym builds a Key
func Sym(chr byte, idx int) Key { return Key{chr, idx} }

// String returns e.g. "q1"
func (o Key) String() string { return io.Sf("%c%d", o.Chr, o.Idx) }

// Values maps keys to state vectors
type Values map[Key][]float64

// Vector returns the state vector stored under k
func (o Values) Vector(k Key) ([]float64, error) {
	v, ok := o[k]
	if !ok {
		return nil, chk.Err("values: no vector under key %v", k)
	}
	return v, nil
}

// Factor is one residual function plus its derivatives. Evaluate returns the
// error vector and, if wantJacobians, one dense Jacobian block per key, in
// key order.
type Factor interface {
	Keys() []Key
	Dim() int
	Evaluate(vals Values, wantJacobians bool) (res []float64, jacs [][][]float64, err error)
}

// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

// EnergyValues holds the mechanical energy of the system at one state
type EnergyValues struct {
	Kin   float64 // kinetic energy
	Pot   float64 // potential (gravity) energy
	Total float64 // Kin + Pot
}

// EvaluateEnergy computes the current energy of the system. Kinetic energy
// comes from each body's mass partition blocks applied to its endpoint
// velocities; potential energy is the negative of gravity·cog, per body.
func (o *AssembledModel) EvaluateEnergy() (e EnergyValues, err error) {
	for i, b := range o.Parent.Bodies() {

		vx0, vy0 := o.PointCurrentVelocity(b.Points[0])
		vx1, vy1 := o.PointCurrentVelocity(b.Points[1])
		M00, M01, M11 := b.MassBlocks()

		// E_kin = ½ dq0'·M00·dq0 + ½ dq1'·M11·dq1 + dq0'·M01·dq1
		e.Kin += 0.5 * (vx0*(M00[0][0]*vx0+M00[0][1]*vy0) + vy0*(M00[1][0]*vx0+M00[1][1]*vy0))
		e.Kin += 0.5 * (vx1*(M11[0][0]*vx1+M11[0][1]*vy1) + vy1*(M11[1][0]*vx1+M11[1][1]*vy1))
		e.Kin += vx0*(M01[0][0]*vx1+M01[0][1]*vy1) + vy0*(M01[1][0]*vx1+M01[1][1]*vy1)

		var cx, cy float64
		cx, cy, err = o.PointOnBodyCurrentCoords(i, b.Cog[0], b.Cog[1])
		if err != nil {
			return
		}
		e.Pot -= b.Mass * (o.Gravity[0]*cx + o.Gravity[1]*cy)
	}
	e.Total = e.Kin + e.Pot
	return
}

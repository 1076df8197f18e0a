// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mbs

import "github.com/cpmech/gosl/chk"

// FourBarsModel returns the classic planar four-bar linkage:
//
//	p2 (1,2)
//	 o-----------__
//	 |             \
//	 |              \  rocker
//	 | coupler       \
//	 o p1 (1,0)       \
//	 | crank           \
//	 ▣ p0 (0,0)         ▣ p3 (4,0)
//
// Two fixed ground points (p0, p3), three two-point bodies, four Euclidean
// DOFs (p1, p2) and three closure constraints: one net degree of freedom.
// Bars are uniform, so Icog = m·L²/12 and the cog is at midlength.
func FourBarsModel() (d *ModelDefinition) {
	d = NewModelDefinition()
	d.SetPointCount(4)
	d.SetPointCoords(0, 0, 0, true)
	d.SetPointCoords(1, 1, 0, false)
	d.SetPointCoords(2, 1, 2, false)
	d.SetPointCoords(3, 4, 0, true)
	bars := []struct {
		name   string
		p0, p1 int
		mass   float64
	}{
		{"crank", 0, 1, 1},
		{"coupler", 1, 2, 2},
		{"rocker", 2, 3, 4},
	}
	for _, bar := range bars {
		L := dist(d.PointInfo(bar.p0), d.PointInfo(bar.p1))
		err := d.AddBody(&Body{
			Name:   bar.name,
			Points: []int{bar.p0, bar.p1},
			Mass:   bar.mass,
			Icog:   bar.mass * L * L / 12.0,
			Cog:    [2]float64{L / 2.0, 0},
		})
		if err != nil {
			chk.Panic("%v", err)
		}
	}
	return
}

// PendulumModel returns a single rigid pendulum: one fixed pivot at the
// origin and one free point at (L, 0), one uniform bar body
func PendulumModel(length, mass float64) (d *ModelDefinition) {
	d = NewModelDefinition()
	d.SetPointCount(2)
	d.SetPointCoords(0, 0, 0, true)
	d.SetPointCoords(1, length, 0, false)
	err := d.AddBody(&Body{
		Name:   "rod",
		Points: []int{0, 1},
		Mass:   mass,
		Icog:   mass * length * length / 12.0,
		Cog:    [2]float64{length / 2.0, 0},
	})
	if err != nil {
		chk.Panic("%v", err)
	}
	return
}

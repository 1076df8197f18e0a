// Copyright 2020 The Mbse Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamics

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/la"

	"github.com/AmirSamanMirjalili/multibody-state-estimation/mbs"
)

// Simulator advances an assembled model forward in time. Accelerations come
// from the dense KKT system
//
//	| M     Phi_q' | |ddq|   | Q            |
//	| Phi_q   0    | | λ | = | -dotPhi_q·dq |
//
// integrated with fixed-step RK4 over (q, dq). With Project enabled, each
// step ends with Newton projection of q onto Phi(q)=0 and of dq onto
// Phi_q·dq=0, keeping constraint drift at solver tolerance.
type Simulator struct {

	// input
	Arm     *mbs.AssembledModel // the mechanism; its q/dq are the simulator state
	Dt      float64             // time step
	Project bool                // post-step position/velocity projection
	Forcing map[int]dbf.T    // optional generalized force per DOF column, function of time
	ProjTol float64             // projection tolerance on |Phi|
	ProjIts int                 // maximum Newton iterations per projection

	// derived
	Time     float64
	prepared bool
	nq, nc   int
	mass     [][]float64 // constant global mass matrix

	// scratch. allocated once by Prepare
	kkt                [][]float64
	rhs                []float64
	velrhs             []float64
	qa, dqa            []float64
	k1q, k2q, k3q, k4q []float64
	k1v, k2v, k3v, k4v []float64
	proj               [][]float64
	lam                []float64
}

// NewSimulator returns a simulator with default settings
func NewSimulator(arm *mbs.AssembledModel) *Simulator {
	return &Simulator{
		Arm:     arm,
		Dt:      1e-3,
		Project: true,
		ProjTol: 1e-10,
		ProjIts: 10,
	}
}

// Prepare caches the mass matrix and allocates the scratch arrays.
// Must be called before Step, Run or SolveDdotq.
func (o *Simulator) Prepare() {
	o.nq = o.Arm.NumDOFs()
	o.nc = o.Arm.NumConstraints()
	o.mass = o.Arm.MassMatrix()
	N := o.nq + o.nc
	o.kkt = la.MatAlloc(N, N)
	o.rhs = make([]float64, N)
	o.velrhs = make([]float64, o.nc)
	o.qa = make([]float64, o.nq)
	o.dqa = make([]float64, o.nq)
	o.k1q = make([]float64, o.nq)
	o.k2q = make([]float64, o.nq)
	o.k3q = make([]float64, o.nq)
	o.k4q = make([]float64, o.nq)
	o.k1v = make([]float64, o.nq)
	o.k2v = make([]float64, o.nq)
	o.k3v = make([]float64, o.nq)
	o.k4v = make([]float64, o.nq)
	o.proj = la.MatAlloc(o.nc, o.nc)
	o.lam = make([]float64, o.nc)
	o.prepared = true
}

// SolveDdotq computes the constrained accelerations at the model's current
// (q, dq) and writes them into Arm.Ddotq
func (o *Simulator) SolveDdotq(t float64) (err error) {
	if !o.prepared {
		return chk.Err("simulator is not prepared; call Prepare first")
	}
	err = o.Arm.UpdateNumericPhiAndJacobians()
	if err != nil {
		return
	}

	// applied generalized forces
	la.VecFill(o.Arm.Qext, 0)
	o.Arm.AddGravityLoads(o.Arm.Qext)
	for j, f := range o.Forcing {
		o.Arm.Qext[j] += f.F(t, nil)
	}

	// KKT matrix and right-hand side
	la.MatFill(o.kkt, 0)
	for i := 0; i < o.nq; i++ {
		copy(o.kkt[i][:o.nq], o.mass[i])
		o.rhs[i] = o.Arm.Qext[i]
	}
	pq := o.Arm.Phiq.Dense()
	for i := 0; i < o.nc; i++ {
		for j := 0; j < o.nq; j++ {
			o.kkt[o.nq+i][j] = pq[i][j]
			o.kkt[j][o.nq+i] = pq[i][j]
		}
	}
	o.Arm.DotPhiq.MatVecMul(o.velrhs, o.Arm.Dotq)
	for i := 0; i < o.nc; i++ {
		o.rhs[o.nq+i] = -o.velrhs[i]
	}

	err = LUSolve(o.kkt, o.rhs)
	if err != nil {
		return chk.Err("cannot solve for accelerations:\n%v", err)
	}
	copy(o.Arm.Ddotq, o.rhs[:o.nq])
	return
}

// Step advances the model state by one RK4 step of size Dt
func (o *Simulator) Step() (err error) {
	if !o.prepared {
		return chk.Err("simulator is not prepared; call Prepare first")
	}
	h := o.Dt
	t := o.Time
	la.VecCopy(o.qa, 1, o.Arm.Q)
	la.VecCopy(o.dqa, 1, o.Arm.Dotq)

	// k1
	err = o.SolveDdotq(t)
	if err != nil {
		return
	}
	la.VecCopy(o.k1q, 1, o.Arm.Dotq)
	la.VecCopy(o.k1v, 1, o.Arm.Ddotq)

	// k2
	for i := 0; i < o.nq; i++ {
		o.Arm.Q[i] = o.qa[i] + 0.5*h*o.k1q[i]
		o.Arm.Dotq[i] = o.dqa[i] + 0.5*h*o.k1v[i]
	}
	err = o.SolveDdotq(t + 0.5*h)
	if err != nil {
		return
	}
	la.VecCopy(o.k2q, 1, o.Arm.Dotq)
	la.VecCopy(o.k2v, 1, o.Arm.Ddotq)

	// k3
	for i := 0; i < o.nq; i++ {
		o.Arm.Q[i] = o.qa[i] + 0.5*h*o.k2q[i]
		o.Arm.Dotq[i] = o.dqa[i] + 0.5*h*o.k2v[i]
	}
	err = o.SolveDdotq(t + 0.5*h)
	if err != nil {
		return
	}
	la.VecCopy(o.k3q, 1, o.Arm.Dotq)
	la.VecCopy(o.k3v, 1, o.Arm.Ddotq)

	// k4
	for i := 0; i < o.nq; i++ {
		o.Arm.Q[i] = o.qa[i] + h*o.k3q[i]
		o.Arm.Dotq[i] = o.dqa[i] + h*o.k3v[i]
	}
	err = o.SolveDdotq(t + h)
	if err != nil {
		return
	}
	la.VecCopy(o.k4q, 1, o.Arm.Dotq)
	la.VecCopy(o.k4v, 1, o.Arm.Ddotq)

	for i := 0; i < o.nq; i++ {
		o.Arm.Q[i] = o.qa[i] + h/6.0*(o.k1q[i]+2.0*o.k2q[i]+2.0*o.k3q[i]+o.k4q[i])
		o.Arm.Dotq[i] = o.dqa[i] + h/6.0*(o.k1v[i]+2.0*o.k2v[i]+2.0*o.k3v[i]+o.k4v[i])
	}
	o.Time = t + h

	if o.Project {
		err = o.ProjectPositions()
		if err != nil {
			return
		}
		err = o.ProjectVelocities()
	}
	return
}

// Run advances the model from the current time to tf. The last step is
// truncated to land on tf exactly; Dt is left untouched.
func (o *Simulator) Run(tf float64) (err error) {
	if o.Dt <= 0 {
		return chk.Err("invalid time step Dt=%g", o.Dt)
	}
	h := o.Dt
	defer func() { o.Dt = h }()
	for o.Time < tf-1e-12 {
		if o.Time+o.Dt > tf {
			o.Dt = tf - o.Time
		}
		err = o.Step()
		if err != nil {
			return
		}
	}
	o.Time = tf
	return
}

// ProjectPositions refines q with Newton iterations so that |Phi| ≤ ProjTol,
// applying the minimum-norm correction q -= Phi_q'·λ with
// (Phi_q·Phi_q')·λ = Phi
func (o *Simulator) ProjectPositions() (err error) {
	for it := 0; it < o.ProjIts; it++ {
		err = o.Arm.UpdateNumericPhiAndJacobians()
		if err != nil {
			return
		}
		if la.VecNorm(o.Arm.Phi) <= o.ProjTol {
			return
		}
		pq := o.Arm.Phiq.Dense()
		o.gram(pq)
		copy(o.lam, o.Arm.Phi)
		err = LUSolve(o.proj, o.lam)
		if err != nil {
			return chk.Err("position projection failed:\n%v", err)
		}
		for j := 0; j < o.nq; j++ {
			for i := 0; i < o.nc; i++ {
				o.Arm.Q[j] -= pq[i][j] * o.lam[i]
			}
		}
	}
	return
}

// ProjectVelocities refines dq onto Phi_q·dq = 0 with a single minimum-norm
// correction (the system is linear in dq)
func (o *Simulator) ProjectVelocities() (err error) {
	err = o.Arm.UpdateNumericPhiAndJacobians()
	if err != nil {
		return
	}
	pq := o.Arm.Phiq.Dense()
	o.Arm.Phiq.MatVecMul(o.lam, o.Arm.Dotq)
	o.gram(pq)
	err = LUSolve(o.proj, o.lam)
	if err != nil {
		return chk.Err("velocity projection failed:\n%v", err)
	}
	for j := 0; j < o.nq; j++ {
		for i := 0; i < o.nc; i++ {
			o.Arm.Dotq[j] -= pq[i][j] * o.lam[i]
		}
	}
	return
}

// gram computes proj = pq·pq'
func (o *Simulator) gram(pq [][]float64) {
	for i := 0; i < o.nc; i++ {
		for j := 0; j < o.nc; j++ {
			s := 0.0
			for k := 0; k < o.nq; k++ {
				s += pq[i][k] * pq[j][k]
			}
			o.proj[i][j] = s
		}
	}
}

package integrators

import "gonum.org/v1/gonum/spatial/r2"

// Verlet is the velocity Verlet scheme for a single body in a static field.
type Verlet struct {
	prevAcc r2.Vec
	primed  bool
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

// Reset forgets the cached acceleration, used when the body teleports or the
// field changes.
func (v *Verlet) Reset() {
	v.primed = false
}

func (v *Verlet) Step(acc AccelerationFunc, b Body, dt float64) Body {
	a0 := v.prevAcc
	if !v.primed {
		a0 = acc(b.Pos)
	}
	dt2 := dt * dt

	var out Body
	out.Pos = r2.Add(b.Pos, r2.Add(r2.Scale(dt, b.Vel), r2.Scale(0.5*dt2, a0)))

	a1 := acc(out.Pos)
	out.Vel = r2.Add(b.Vel, r2.Scale(0.5*dt, r2.Add(a0, a1)))

	v.prevAcc = a1
	v.primed = true
	return out
}

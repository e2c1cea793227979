package integrators

import "gonum.org/v1/gonum/spatial/r2"

// RK4 advances a point along the streamline of a direction field with the
// classical fourth-order Runge-Kutta scheme. The stage slopes are kept on the
// struct so a tracer can inspect the last step.
type RK4 struct {
	k1, k2, k3, k4 r2.Vec
}

func NewRK4() *RK4 {
	return &RK4{}
}

// Step advances p by h along f. h may be negative to integrate against the
// field. ok is false when any stage lands where the field vanishes; p is then
// returned unchanged.
func (r *RK4) Step(f DirectionField, p r2.Vec, h float64) (next r2.Vec, ok bool) {
	if r.k1, ok = f.Direction(p); !ok {
		return p, false
	}
	if r.k2, ok = f.Direction(r2.Add(p, r2.Scale(0.5*h, r.k1))); !ok {
		return p, false
	}
	if r.k3, ok = f.Direction(r2.Add(p, r2.Scale(0.5*h, r.k2))); !ok {
		return p, false
	}
	if r.k4, ok = f.Direction(r2.Add(p, r2.Scale(h, r.k3))); !ok {
		return p, false
	}

	h6 := h / 6.0
	return r2.Vec{
		X: p.X + h6*(r.k1.X+2*r.k2.X+2*r.k3.X+r.k4.X),
		Y: p.Y + h6*(r.k1.Y+2*r.k2.Y+2*r.k3.Y+r.k4.Y),
	}, true
}

// Slope returns the weighted average slope of the last successful step.
func (r *RK4) Slope() r2.Vec {
	return r2.Scale(1.0/6.0, r2.Add(r2.Add(r.k1, r2.Scale(2, r.k2)), r2.Add(r2.Scale(2, r.k3), r.k4)))
}

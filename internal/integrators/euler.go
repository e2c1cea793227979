package integrators

import "gonum.org/v1/gonum/spatial/r2"

// Euler is the explicit first-order step used for cheap per-frame advection
// (flow particles, test charges) where visual smoothness matters more than
// accuracy.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

// Step moves p by h along f; ok is false where f has no direction.
func (e *Euler) Step(f DirectionField, p r2.Vec, h float64) (r2.Vec, bool) {
	d, ok := f.Direction(p)
	if !ok {
		return p, false
	}
	return r2.Add(p, r2.Scale(h, d)), true
}

package integrators

import "gonum.org/v1/gonum/spatial/r2"

// DirectionField is a normalized 2D vector field. ok is false where the
// field vanishes and no direction exists.
type DirectionField interface {
	Direction(p r2.Vec) (d r2.Vec, ok bool)
}

// AccelerationFunc returns the acceleration of a body at p.
type AccelerationFunc func(p r2.Vec) r2.Vec

// Body is a point mass with position and velocity in world units.
type Body struct {
	Pos r2.Vec
	Vel r2.Vec
}

// Speed returns |Vel|.
func (b Body) Speed() float64 {
	return r2.Norm(b.Vel)
}

// LimitSpeed rescales Vel so that |Vel| <= max.
func (b Body) LimitSpeed(max float64) Body {
	s := r2.Norm(b.Vel)
	if s > max && s > 0 {
		b.Vel = r2.Scale(max/s, b.Vel)
	}
	return b
}

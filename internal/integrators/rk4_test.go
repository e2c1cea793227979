package integrators

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// swirl is the unit tangent field of concentric circles around the origin.
type swirl struct{}

func (swirl) Direction(p r2.Vec) (r2.Vec, bool) {
	n := r2.Norm(p)
	if n < 1e-12 {
		return r2.Vec{}, false
	}
	return r2.Vec{X: -p.Y / n, Y: p.X / n}, true
}

type uniform struct{ d r2.Vec }

func (u uniform) Direction(r2.Vec) (r2.Vec, bool) { return u.d, true }

type dead struct{}

func (dead) Direction(r2.Vec) (r2.Vec, bool) { return r2.Vec{}, false }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()
	p := r2.Vec{X: 1, Y: 0}
	h := 0.015
	steps := 200

	for i := 0; i < steps; i++ {
		var ok bool
		p, ok = integ.Step(swirl{}, p, h)
		if !ok {
			t.Fatalf("step %d: field vanished", i)
		}
	}

	angle := float64(steps) * h
	if math.Abs(p.X-math.Cos(angle)) > 1e-6 {
		t.Errorf("x error too large: got %.8f, expected %.8f", p.X, math.Cos(angle))
	}
	if math.Abs(p.Y-math.Sin(angle)) > 1e-6 {
		t.Errorf("y error too large: got %.8f, expected %.8f", p.Y, math.Sin(angle))
	}
}

func TestRK4Backward(t *testing.T) {
	integ := NewRK4()
	start := r2.Vec{X: 0.2, Y: -0.3}
	f := uniform{d: r2.Vec{X: 0.6, Y: 0.8}}

	fwd, _ := integ.Step(f, start, 0.5)
	back, _ := integ.Step(f, fwd, -0.5)
	if r2.Norm(r2.Sub(back, start)) > 1e-12 {
		t.Errorf("forward then backward step drifted to %v", back)
	}
	if s := integ.Slope(); math.Abs(s.X-0.6) > 1e-12 || math.Abs(s.Y-0.8) > 1e-12 {
		t.Errorf("slope = %v, want (0.6, 0.8)", s)
	}
}

func TestRK4StopsOnNullField(t *testing.T) {
	p := r2.Vec{X: 1, Y: 1}
	got, ok := NewRK4().Step(dead{}, p, 0.1)
	if ok {
		t.Fatal("expected step to fail on a null field")
	}
	if got != p {
		t.Errorf("failed step moved point to %v", got)
	}
}

func TestEulerStep(t *testing.T) {
	got, ok := NewEuler().Step(uniform{d: r2.Vec{X: 1}}, r2.Vec{}, 0.25)
	if !ok || got != (r2.Vec{X: 0.25}) {
		t.Errorf("Euler step = %v, %v", got, ok)
	}
	if _, ok := NewEuler().Step(dead{}, r2.Vec{}, 1); ok {
		t.Error("Euler should fail on a null field")
	}
}

func TestVerletHarmonic(t *testing.T) {
	integ := NewVerlet()
	spring := func(p r2.Vec) r2.Vec { return r2.Scale(-1, p) }
	b := Body{Pos: r2.Vec{X: 1}}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		b = integ.Step(spring, b, dt)
	}

	tEnd := float64(steps) * dt
	if math.Abs(b.Pos.X-math.Cos(tEnd)) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", b.Pos.X, math.Cos(tEnd))
	}
	if math.Abs(b.Vel.X+math.Sin(tEnd)) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", b.Vel.X, -math.Sin(tEnd))
	}
}

func TestLimitSpeed(t *testing.T) {
	b := Body{Vel: r2.Vec{X: 30, Y: 40}}.LimitSpeed(10)
	if math.Abs(b.Speed()-10) > 1e-12 {
		t.Errorf("speed = %g, want 10", b.Speed())
	}
	slow := Body{Vel: r2.Vec{X: 1}}.LimitSpeed(10)
	if slow.Vel.X != 1 {
		t.Errorf("slow body was rescaled to %v", slow.Vel)
	}
}

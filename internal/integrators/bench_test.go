package integrators

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	p := r2.Vec{X: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, _ = integrator.Step(swirl{}, p, 0.015)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	p := r2.Vec{X: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, _ = integrator.Step(swirl{}, p, 0.015)
	}
}

func BenchmarkVerlet(b *testing.B) {
	integrator := NewVerlet()
	spring := func(p r2.Vec) r2.Vec { return r2.Scale(-1, p) }
	body := Body{Pos: r2.Vec{X: 1}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		body = integrator.Step(spring, body, 0.01)
	}
}

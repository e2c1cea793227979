package physics

import (
	"math"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"gonum.org/v1/gonum/spatial/r2"
)

// FieldAt returns the electric field at p in N/C.
func FieldAt(p r2.Vec, charges []core.Charge) r2.Vec {
	var ex, ey float64
	for i := range charges {
		c := &charges[i]
		dx, dy := p.X-c.X, p.Y-c.Y
		d2 := dx*dx + dy*dy
		if d2 == 0 {
			continue
		}
		d := math.Sqrt(d2)
		r := d
		if r < MinRadius {
			r = MinRadius
		}
		e := K * c.Q * MicroCoulomb / (r * r)
		ex += e * dx / d
		ey += e * dy / d
	}
	return r2.Vec{X: ex, Y: ey}
}

// PotentialAt returns the electric potential at p in volts.
func PotentialAt(p r2.Vec, charges []core.Charge) float64 {
	v := 0.0
	for i := range charges {
		c := &charges[i]
		dx, dy := p.X-c.X, p.Y-c.Y
		r := math.Sqrt(dx*dx + dy*dy)
		if r < MinRadius {
			r = MinRadius
		}
		v += K * c.Q * MicroCoulomb / r
	}
	return v
}

// SampleAt evaluates potential and field together.
func SampleAt(p r2.Vec, charges []core.Charge) core.Sample {
	var ex, ey, v float64
	for i := range charges {
		c := &charges[i]
		dx, dy := p.X-c.X, p.Y-c.Y
		d := math.Sqrt(dx*dx + dy*dy)
		r := d
		if r < MinRadius {
			r = MinRadius
		}
		kq := K * c.Q * MicroCoulomb
		v += kq / r
		if d == 0 {
			continue
		}
		e := kq / (r * r)
		ex += e * dx / d
		ey += e * dy / d
	}
	return core.Sample{
		Potential: v,
		Field:     r2.Vec{X: ex, Y: ey},
		Magnitude: math.Hypot(ex, ey),
	}
}

// SystemEnergy sums the interaction energy of every unordered pair in joules.
// Pairs closer than MinRadius contribute nothing.
func SystemEnergy(charges []core.Charge) float64 {
	u := 0.0
	for i := 0; i < len(charges); i++ {
		a := &charges[i]
		for j := i + 1; j < len(charges); j++ {
			b := &charges[j]
			r := math.Hypot(a.X-b.X, a.Y-b.Y)
			if r > MinRadius {
				u += K * a.Q * MicroCoulomb * b.Q * MicroCoulomb / r
			}
		}
	}
	return u
}

// PotentialEnergy is the energy of a point charge q (coulombs) at p in the
// field of charges, skipping sources closer than MinRadius.
func PotentialEnergy(p r2.Vec, q float64, charges []core.Charge) float64 {
	u := 0.0
	for i := range charges {
		c := &charges[i]
		r := math.Hypot(p.X-c.X, p.Y-c.Y)
		if r > MinRadius {
			u += K * q * c.Q * MicroCoulomb / r
		}
	}
	return u
}

// Field adapts a charge set to the streamline integrators: Direction returns
// the unit field vector, or false where the field vanishes.
type Field struct {
	Charges  []core.Charge
	MinField float64
}

func NewField(charges []core.Charge) *Field {
	return &Field{Charges: charges, MinField: 1e-3}
}

func (f *Field) Direction(p r2.Vec) (r2.Vec, bool) {
	e := FieldAt(p, f.Charges)
	m := math.Hypot(e.X, e.Y)
	if m < f.MinField {
		return r2.Vec{}, false
	}
	return r2.Vec{X: e.X / m, Y: e.Y / m}, true
}

// Acceleration returns qE/m for a point charge q (coulombs) of mass m (kg).
func (f *Field) Acceleration(p r2.Vec, q, m float64) r2.Vec {
	return r2.Scale(q/m, FieldAt(p, f.Charges))
}

// NearestWithin reports whether p lies within radius of a charge accepted by
// match. A nil match accepts every charge.
func NearestWithin(p r2.Vec, charges []core.Charge, radius float64, match func(core.Charge) bool) bool {
	r2lim := radius * radius
	for i := range charges {
		c := &charges[i]
		if match != nil && !match(*c) {
			continue
		}
		dx, dy := p.X-c.X, p.Y-c.Y
		if dx*dx+dy*dy < r2lim {
			return true
		}
	}
	return false
}

// IsNegative matches sink charges.
func IsNegative(c core.Charge) bool { return c.Q < 0 }

package physics

import (
	"math"
	"sort"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"gonum.org/v1/gonum/spatial/r2"
)

// PairForce is the Coulomb force between charges I and J. Magnitude is
// signed: negative means attraction.
type PairForce struct {
	I, J      int
	Magnitude float64
	Distance  float64
}

func (f PairForce) Attractive() bool { return f.Magnitude < 0 }

// CoulombForce returns the signed force between a and b in newtons, zero when
// they are closer than MinRadius.
func CoulombForce(a, b core.Charge) float64 {
	r := math.Hypot(b.X-a.X, b.Y-a.Y)
	if r < MinRadius {
		return 0
	}
	return K * a.Q * MicroCoulomb * b.Q * MicroCoulomb / (r * r)
}

// PairForces lists every unordered pair farther apart than MinRadius.
func PairForces(charges []core.Charge) []PairForce {
	var out []PairForce
	for i := 0; i < len(charges); i++ {
		for j := i + 1; j < len(charges); j++ {
			a, b := charges[i], charges[j]
			r := math.Hypot(b.X-a.X, b.Y-a.Y)
			if r < MinRadius {
				continue
			}
			out = append(out, PairForce{I: i, J: j, Magnitude: CoulombForce(a, b), Distance: r})
		}
	}
	return out
}

// GaussResult compares the flux through a circle with the enclosed charge.
type GaussResult struct {
	Flux             float64 // N·m²/C per unit depth
	Enclosed         float64 // µC
	EnclosedOverEps0 float64 // N·m²/C
	ErrorPct         float64
}

// Verified reports agreement within 5 percent.
func (g GaussResult) Verified() bool { return g.ErrorPct < 5 }

// GaussFlux integrates E·n around a circle of the given radius with samples
// evenly spaced points.
func GaussFlux(center r2.Vec, radius float64, samples int, charges []core.Charge) GaussResult {
	if samples < 1 {
		samples = 1
	}
	ds := 2 * math.Pi * radius / float64(samples)
	flux := 0.0
	for _, n := range core.UnitRing(samples) {
		e := FieldAt(r2.Add(center, r2.Scale(radius, n)), charges)
		flux += r2.Dot(e, n) * ds
	}

	qenc := 0.0
	for _, c := range charges {
		if math.Hypot(c.X-center.X, c.Y-center.Y) < radius {
			qenc += c.Q
		}
	}
	res := GaussResult{Flux: flux, Enclosed: qenc, EnclosedOverEps0: qenc * MicroCoulomb / Eps0}
	switch {
	case res.EnclosedOverEps0 != 0:
		res.ErrorPct = math.Abs((flux - res.EnclosedOverEps0) / res.EnclosedOverEps0 * 100)
	case math.Abs(flux) < 1:
		res.ErrorPct = 0
	default:
		res.ErrorPct = 100
	}
	return res
}

// WorkResult is the work done moving a probe charge from A to B.
type WorkResult struct {
	VA, VB, DeltaV, Work float64
}

// Work computes W = q·(V(b) - V(a)) for a probe charge q in coulombs.
func Work(a, b r2.Vec, q float64, charges []core.Charge) WorkResult {
	va, vb := PotentialAt(a, charges), PotentialAt(b, charges)
	dv := vb - va
	return WorkResult{VA: va, VB: vb, DeltaV: dv, Work: q * dv}
}

// CapacitorResult describes two plates of charges separated along x.
type CapacitorResult struct {
	DeltaV     float64
	Separation float64
	Field      float64
}

// Capacitor detects a parallel-plate arrangement: at least four charges,
// split at the midpoint of their x extent into two groups of two or more.
func Capacitor(charges []core.Charge) (CapacitorResult, bool) {
	if len(charges) < 4 {
		return CapacitorResult{}, false
	}
	xs := make([]float64, len(charges))
	for i, c := range charges {
		xs[i] = c.X
	}
	sort.Float64s(xs)
	xMin, xMax := xs[0], xs[len(xs)-1]
	if xMax-xMin <= 0.5 {
		return CapacitorResult{}, false
	}
	mid := (xMin + xMax) / 2

	var left, right []float64
	for _, c := range charges {
		if c.X < mid {
			left = append(left, c.X)
		} else {
			right = append(right, c.X)
		}
	}
	if len(left) < 2 || len(right) < 2 {
		return CapacitorResult{}, false
	}
	lx, rx := mean(left), mean(right)
	d := math.Abs(rx - lx)
	dv := math.Abs(PotentialAt(r2.Vec{X: rx}, charges) - PotentialAt(r2.Vec{X: lx}, charges))
	return CapacitorResult{DeltaV: dv, Separation: d, Field: dv / d}, true
}

func mean(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

// Contributions returns the field of each charge at p and their resultant.
func Contributions(p r2.Vec, charges []core.Charge) ([]r2.Vec, r2.Vec) {
	parts := make([]r2.Vec, len(charges))
	var total r2.Vec
	for i := range charges {
		parts[i] = FieldAt(p, charges[i:i+1])
		total = r2.Add(total, parts[i])
	}
	return parts, total
}

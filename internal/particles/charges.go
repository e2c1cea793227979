package particles

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/integrators"
	"github.com/semo00000/champ-electrostatique/internal/physics"
)

const (
	// TestChargeTrail is the trail length of a test charge.
	TestChargeTrail = 500
	// TestChargeMaxStep caps the distance a test charge moves per frame.
	TestChargeMaxStep = 0.015
	testChargeGain    = 1e-7

	FreeMass       = 1e-9 // kg
	FreeChargeQ    = 1.0  // µC
	FreeMaxDt      = 0.02 // s
	FreeSpeedLimit = 50.0
	FreeEscape     = 10.0
	FreeTrail      = 500
)

// TestCharge is a massless probe that creeps along the field.
type TestCharge struct {
	Pos   r2.Vec
	Trail Trail
}

// TestCharges holds every placed test charge.
type TestCharges struct {
	items []TestCharge
}

func (t *TestCharges) Add(p r2.Vec) {
	t.items = append(t.items, TestCharge{Pos: p, Trail: NewTrail(TestChargeTrail)})
}

func (t *TestCharges) Clear()            { t.items = t.items[:0] }
func (t *TestCharges) Len() int          { return len(t.items) }
func (t *TestCharges) All() []TestCharge { return t.items }

// Step moves each test charge along Ê by min(0.015, |E|·1e-7)·speed and
// removes the ones that reached a negative charge.
func (t *TestCharges) Step(speed float64, charges []core.Charge) {
	kept := t.items[:0]
	for _, tc := range t.items {
		e := physics.FieldAt(tc.Pos, charges)
		if m := math.Hypot(e.X, e.Y); m > 1e-3 {
			d := math.Min(TestChargeMaxStep, m*testChargeGain) * speed
			tc.Pos = r2.Add(tc.Pos, r2.Scale(d/m, e))
		}
		tc.Trail.Push(tc.Pos)
		if physics.NearestWithin(tc.Pos, charges, physics.TestChargeKillRadius, physics.IsNegative) {
			continue
		}
		kept = append(kept, tc)
	}
	t.items = kept
}

// Energy is the mechanical energy readout of the free charge, in joules.
type Energy struct {
	Kinetic, Potential, Total float64
}

// Free is a single massive charge released from rest and integrated with
// velocity Verlet under qE/m.
type Free struct {
	body   integrators.Body
	q      float64 // µC
	t      float64
	frame  int
	active bool
	trail  Trail
	verlet *integrators.Verlet
}

func NewFree() *Free {
	return &Free{verlet: integrators.NewVerlet(), trail: NewTrail(FreeTrail)}
}

// Place releases a +1 µC charge at p from rest.
func (f *Free) Place(p r2.Vec) {
	f.body = integrators.Body{Pos: p}
	f.q = FreeChargeQ
	f.t, f.frame = 0, 0
	f.active = true
	f.trail.Reset()
	f.verlet.Reset()
}

func (f *Free) Remove() {
	f.active = false
	f.trail.Reset()
}

func (f *Free) Active() bool           { return f.active }
func (f *Free) Body() integrators.Body { return f.body }
func (f *Free) Elapsed() float64       { return f.t }
func (f *Free) Trail() []r2.Vec        { return f.trail.Points() }

// Step integrates dt seconds of wall time (capped at FreeMaxDt) scaled by
// speed. It returns false once the charge has escaped and been removed.
func (f *Free) Step(dt, speed float64, charges []core.Charge) bool {
	if !f.active {
		return false
	}
	h := math.Min(dt, FreeMaxDt) * speed
	if h <= 0 {
		return true
	}
	q := f.q * physics.MicroCoulomb
	acc := func(p r2.Vec) r2.Vec {
		return r2.Scale(q/FreeMass, physics.FieldAt(p, charges))
	}
	f.body = f.verlet.Step(acc, f.body, h).LimitSpeed(FreeSpeedLimit)
	f.t += h
	f.frame++
	if f.frame%2 == 0 {
		f.trail.Push(f.body.Pos)
	}
	if math.Abs(f.body.Pos.X) > FreeEscape || math.Abs(f.body.Pos.Y) > FreeEscape {
		f.Remove()
		return false
	}
	return true
}

// Energy reports kinetic, potential (qV) and total energy.
func (f *Free) Energy(charges []core.Charge) Energy {
	v := f.body.Speed()
	ke := 0.5 * FreeMass * v * v
	pe := f.q * physics.MicroCoulomb * physics.PotentialAt(f.body.Pos, charges)
	return Energy{Kinetic: ke, Potential: pe, Total: ke + pe}
}

// Package particles animates the dynamic overlays: flow particles drifting
// along field lines, test charges that follow the field, and a single free
// charge integrated with its real mass.
package particles

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/integrators"
	"github.com/semo00000/champ-electrostatique/internal/perf"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

const (
	// FlowStep is the world distance per frame at unit particle speed.
	FlowStep = 0.0075
	// SourceFraction of particles spawn around positive charges.
	SourceFraction = 0.7
	spawnMin       = 0.12
	spawnSpread    = 0.2
	boundsMargin   = 1.0
)

// Particle is one flow tracer.
type Particle struct {
	Pos     r2.Vec
	Life    float64
	MaxLife float64
	Speed   float64
	Trail   Trail
}

// Alpha fades a particle in over the first tenth of its life and out over
// the last fifth.
func (p *Particle) Alpha() float64 {
	lr := p.Life / p.MaxLife
	switch {
	case lr < .1:
		return lr * 10
	case lr > .8:
		return math.Max(0, (1-lr)*5)
	}
	return 1
}

// FlowCount is the particle count for a requested density and tier.
func FlowCount(requested, quality int) int {
	return int(math.Round(float64(requested) * perf.QualMult(quality)))
}

// Flow is the flow-particle system.
type Flow struct {
	rng      *rand.Rand
	parts    []Particle
	charges  []core.Charge
	field    *physics.Field
	euler    *integrators.Euler
	viewport view.Transform
	trailLen int
}

func NewFlow(seed int64) *Flow {
	return &Flow{
		rng:   rand.New(rand.NewSource(seed)),
		euler: integrators.NewEuler(),
		field: physics.NewField(nil),
	}
}

// Init discards every particle and spawns n fresh ones for the charges and
// viewport. trailLen 0 disables trails.
func (f *Flow) Init(n int, charges []core.Charge, t view.Transform, trailLen int) {
	f.SetCharges(charges)
	f.viewport = t
	f.trailLen = trailLen
	f.parts = f.parts[:0]
	for i := 0; i < n; i++ {
		f.parts = append(f.parts, f.spawn())
	}
}

// SetCharges swaps the field without respawning.
func (f *Flow) SetCharges(charges []core.Charge) {
	f.charges = charges
	f.field.Charges = charges
}

// SetView updates the spawn and escape bounds.
func (f *Flow) SetView(t view.Transform) { f.viewport = t }

func (f *Flow) Particles() []Particle { return f.parts }
func (f *Flow) Len() int              { return len(f.parts) }

func (f *Flow) bounds() view.Rect {
	return f.viewport.WorldBounds().Expand(boundsMargin)
}

func (f *Flow) spawn() Particle {
	p := Particle{
		MaxLife: 120 + f.rng.Float64()*200,
		Speed:   .6 + f.rng.Float64()*1.4,
		Trail:   NewTrail(f.trailLen),
	}
	var pos []core.Charge
	for _, c := range f.charges {
		if c.Q > 0 {
			pos = append(pos, c)
		}
	}
	if len(pos) > 0 && f.rng.Float64() < SourceFraction {
		c := pos[f.rng.Intn(len(pos))]
		a := f.rng.Float64() * 2 * math.Pi
		r := spawnMin + f.rng.Float64()*spawnSpread
		p.Pos = r2.Vec{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
		return p
	}
	w, h := float64(f.viewport.Width), float64(f.viewport.Height)
	p.Pos = f.viewport.ScreenToWorld(r2.Vec{X: f.rng.Float64() * w, Y: f.rng.Float64() * h})
	p.Life = f.rng.Float64() * 180
	return p
}

// Step advances every particle by one frame at the given speed multiplier.
// Particles past their life, swallowed by a sink or out of bounds respawn.
func (f *Flow) Step(speed float64) {
	b := f.bounds()
	for i := range f.parts {
		p := &f.parts[i]
		p.Life += speed
		if next, ok := f.euler.Step(f.field, p.Pos, p.Speed*FlowStep*speed); ok {
			p.Pos = next
		}
		p.Trail.Push(p.Pos)
		sink := physics.NearestWithin(p.Pos, f.charges, physics.SinkRadius, physics.IsNegative)
		if p.Life > p.MaxLife || sink || !b.Contains(p.Pos) {
			f.parts[i] = f.spawn()
		}
	}
}

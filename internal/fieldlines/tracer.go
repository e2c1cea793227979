// Package fieldlines traces streamlines of the electric field with fixed-step
// RK4 on the normalized field direction.
package fieldlines

import (
	"fmt"
	"math"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/integrators"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/view"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultStepSize = 0.015
	DefaultMinField = 1e-3
	// BoundsMargin extends the viewport so lines leave the screen cleanly.
	BoundsMargin = 2.0
	// LowQualityStepCap bounds MaxSteps at quality tiers 0 and 1.
	LowQualityStepCap = 420
)

// Termination records which rule ended a trace.
type Termination int

const (
	MaxSteps Termination = iota
	NullField
	Absorbed
	OutOfBounds
)

func (t Termination) String() string {
	switch t {
	case MaxSteps:
		return "max-steps"
	case NullField:
		return "null-field"
	case Absorbed:
		return "absorbed"
	case OutOfBounds:
		return "out-of-bounds"
	}
	return fmt.Sprintf("Termination(%d)", int(t))
}

type Params struct {
	StepSize     float64
	MaxSteps     int
	Bounds       view.Rect
	AbsorbRadius float64
	MinField     float64
}

// DefaultParams bounds tracing to the viewport plus BoundsMargin.
func DefaultParams(viewport view.Rect, maxSteps int) Params {
	return Params{
		StepSize:     DefaultStepSize,
		MaxSteps:     maxSteps,
		Bounds:       viewport.Expand(BoundsMargin),
		AbsorbRadius: physics.AbsorbRadius,
		MinField:     DefaultMinField,
	}
}

// StepBudget is the per-line step cap for a profile's field steps at the
// given quality tier.
func StepBudget(fieldSteps, quality int) int {
	if quality <= 1 && fieldSteps > LowQualityStepCap {
		return LowQualityStepCap
	}
	return fieldSteps
}

// Trace is one integrated field line.
type Trace struct {
	Path   core.Path
	Reason Termination
	// Source is the index of the seeding charge, or -1.
	Source int
}

// Tracer integrates field lines for a fixed charge snapshot. It is not safe
// for concurrent use.
type Tracer struct {
	charges []core.Charge
	field   *physics.Field
	rk4     *integrators.RK4
	params  Params
	inside  []bool
}

func NewTracer(charges []core.Charge, p Params) *Tracer {
	if p.StepSize == 0 {
		p.StepSize = DefaultStepSize
	}
	if p.MinField == 0 {
		p.MinField = DefaultMinField
	}
	if p.AbsorbRadius == 0 {
		p.AbsorbRadius = physics.AbsorbRadius
	}
	f := physics.NewField(charges)
	f.MinField = p.MinField
	return &Tracer{
		charges: charges,
		field:   f,
		rk4:     integrators.NewRK4(),
		params:  p,
		inside:  make([]bool, len(charges)),
	}
}

func (t *Tracer) Params() Params { return t.params }

// Trace integrates from seed with h = StepSize·dir. dir must be +1 (along E)
// or -1 (against E).
//
// Rules are checked in order after every step: the field vanished, the point
// entered the absorption radius of a charge (the point is kept), the point
// left the bounds, MaxSteps was reached. A line that starts inside a charge's
// absorption radius is only absorbed by that charge after leaving it.
//
// The path holds the seed plus every accepted step, so it has 2..MaxSteps+1
// points except when the field already vanishes at the seed: then Reason is
// NullField and the path is the seed alone. TraceAll drops such paths;
// other callers must handle them.
func (t *Tracer) Trace(seed r2.Vec, dir int) Trace {
	h := t.params.StepSize
	if dir < 0 {
		h = -h
	}
	path := make(core.Path, 1, min(t.params.MaxSteps+1, 512))
	path[0] = seed
	res := Trace{Reason: MaxSteps, Source: -1}

	lim := t.params.AbsorbRadius * t.params.AbsorbRadius
	for i, c := range t.charges {
		dx, dy := seed.X-c.X, seed.Y-c.Y
		t.inside[i] = dx*dx+dy*dy < lim
	}

	p := seed
	for step := 0; step < t.params.MaxSteps; step++ {
		next, ok := t.rk4.Step(t.field, p, h)
		if !ok {
			res.Reason = NullField
			break
		}
		p = next
		if t.entered(p, lim) {
			path = append(path, p)
			res.Reason = Absorbed
			break
		}
		if !t.params.Bounds.Contains(p) {
			res.Reason = OutOfBounds
			break
		}
		path = append(path, p)
	}
	res.Path = path
	return res
}

func (t *Tracer) entered(p r2.Vec, lim float64) bool {
	hit := false
	for i, c := range t.charges {
		dx, dy := p.X-c.X, p.Y-c.Y
		in := dx*dx+dy*dy < lim
		if in && !t.inside[i] {
			hit = true
		}
		t.inside[i] = in
	}
	return hit
}

// TraceLine is the stateless form of Tracer.Trace for one-off callers.
func TraceLine(seed r2.Vec, dir int, charges []core.Charge, maxSteps int, stepSize float64, bounds view.Rect) core.Path {
	p := DefaultParams(bounds, maxSteps)
	p.Bounds = bounds
	if stepSize > 0 {
		p.StepSize = stepSize
	}
	return NewTracer(charges, p).Trace(seed, dir).Path
}

// distance helper for callers checking outflow.
func dist(a, b r2.Vec) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

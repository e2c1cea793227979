package particles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/surface"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

var dipole = []core.Charge{{X: -1, Q: 2}, {X: 1, Q: -2}}

func TestTrailKeepsNewest(t *testing.T) {
	tr := NewTrail(3)
	for i := 0; i < 5; i++ {
		tr.Push(r2.Vec{X: float64(i)})
	}
	require.Equal(t, 3, tr.Len())
	assert.Equal(t, []r2.Vec{{X: 2}, {X: 3}, {X: 4}}, tr.Points())

	off := NewTrail(0)
	off.Push(r2.Vec{})
	assert.Zero(t, off.Len())
}

func TestFlowCount(t *testing.T) {
	assert.Equal(t, 90, FlowCount(300, 0))
	assert.Equal(t, 300, FlowCount(300, 2))
	assert.Equal(t, 450, FlowCount(300, 3))
	assert.Equal(t, 450, FlowCount(300, 9), "quality clamps to the top tier")
}

func TestFlowInitSpawnsNearSources(t *testing.T) {
	f := NewFlow(1)
	f.Init(400, dipole, view.New(800, 600), 10)
	require.Equal(t, 400, f.Len())

	near := 0
	for _, p := range f.Particles() {
		d := r2.Norm(r2.Sub(p.Pos, dipole[0].Pos()))
		if d >= spawnMin-1e-9 && d <= spawnMin+spawnSpread+1e-9 {
			near++
		}
	}
	// 70% expected; allow sampling noise
	assert.InDelta(t, 0.7, float64(near)/400, 0.08)
}

func TestFlowStepMovesDownstream(t *testing.T) {
	f := NewFlow(2)
	f.Init(0, dipole, view.New(800, 600), 4)
	f.parts = append(f.parts, Particle{Pos: r2.Vec{X: 0, Y: 0.5}, MaxLife: 1000, Speed: 1, Trail: NewTrail(4)})

	before := f.parts[0].Pos
	f.Step(1)
	after := f.parts[0].Pos
	assert.InDelta(t, FlowStep, r2.Norm(r2.Sub(after, before)), 1e-9)
	assert.Greater(t, after.X, before.X, "dipole field points from + to -")
	assert.Equal(t, 1, f.parts[0].Trail.Len())
}

func TestFlowRespawnsInSink(t *testing.T) {
	f := NewFlow(3)
	f.Init(0, dipole, view.New(800, 600), 0)
	f.parts = append(f.parts, Particle{Pos: r2.Vec{X: 1.01}, MaxLife: 1000, Speed: 1})
	f.Step(1)
	p := f.parts[0]
	assert.False(t, physics.NearestWithin(p.Pos, dipole, physics.SinkRadius, physics.IsNegative))
	assert.NotEqual(t, 1000.0, p.MaxLife, "respawned with a fresh lifetime")
}

func TestFlowRespawnsOutOfBounds(t *testing.T) {
	f := NewFlow(4)
	f.Init(0, nil, view.New(800, 600), 0)
	f.parts = append(f.parts, Particle{Pos: r2.Vec{X: 50}, MaxLife: 1000, Speed: 1})
	f.Step(1)
	assert.True(t, f.bounds().Contains(f.parts[0].Pos))
}

func TestParticleAlpha(t *testing.T) {
	p := Particle{MaxLife: 100}
	for _, tc := range []struct{ life, want float64 }{
		{0, 0}, {5, .5}, {50, 1}, {90, .5}, {100, 0}, {120, 0},
	} {
		p.Life = tc.life
		assert.InDelta(t, tc.want, p.Alpha(), 1e-9, "life %v", tc.life)
	}
}

func TestTestChargeFollowsField(t *testing.T) {
	var tcs TestCharges
	tcs.Add(r2.Vec{X: -0.5, Y: 0})
	tcs.Step(1, dipole)
	require.Equal(t, 1, tcs.Len())
	got := tcs.All()[0].Pos
	e := physics.FieldAt(r2.Vec{X: -0.5}, dipole)
	step := math.Min(TestChargeMaxStep, e.X*testChargeGain)
	assert.InDelta(t, -0.5+step, got.X, 1e-12)
	assert.InDelta(t, 0, got.Y, 1e-12)

	tcs.Clear()
	tcs.Add(r2.Vec{X: -0.9})
	tcs.Step(2, dipole)
	assert.InDelta(t, -0.9+2*TestChargeMaxStep, tcs.All()[0].Pos.X, 1e-12, "strong field saturates the step")
}

func TestTestChargeAbsorbed(t *testing.T) {
	var tcs TestCharges
	tcs.Add(r2.Vec{X: 0.95})
	tcs.Add(r2.Vec{X: -3, Y: 2})
	tcs.Step(1, dipole)
	assert.Equal(t, 1, tcs.Len(), "the charge next to the sink is removed")

	tcs.Clear()
	assert.Zero(t, tcs.Len())
}

func TestFreeChargeAccelerates(t *testing.T) {
	f := NewFree()
	assert.False(t, f.Step(0.016, 1, dipole), "inactive until placed")

	f.Place(r2.Vec{X: 0, Y: 3})
	require.True(t, f.Active())
	one := []core.Charge{{Q: 1}}
	for i := 0; i < 5; i++ {
		require.True(t, f.Step(0.001, 1, one))
	}
	b := f.Body()
	assert.Greater(t, b.Vel.Y, 0.0, "like charges repel")
	assert.InDelta(t, 0, b.Vel.X, 1e-9)
	assert.LessOrEqual(t, b.Speed(), FreeSpeedLimit+1e-9)
	assert.InDelta(t, 0.005, f.Elapsed(), 1e-12)
}

func TestFreeChargeDtCapped(t *testing.T) {
	f := NewFree()
	f.Place(r2.Vec{X: 0, Y: 3})
	f.Step(1, 1, nil)
	assert.InDelta(t, FreeMaxDt, f.Elapsed(), 1e-12)
}

func TestFreeChargeEscapes(t *testing.T) {
	f := NewFree()
	f.Place(r2.Vec{X: 9.999})
	f.body.Vel = r2.Vec{X: 40}
	assert.False(t, f.Step(0.02, 1, nil))
	assert.False(t, f.Active())
	assert.Empty(t, f.Trail())
}

func TestFreeChargeEnergyConserved(t *testing.T) {
	f := NewFree()
	f.Place(r2.Vec{X: 1.5, Y: 0.3})
	// a weak source keeps the charge below the speed limit
	weak := []core.Charge{{Q: 1e-6}}
	e0 := f.Energy(weak)
	assert.Zero(t, e0.Kinetic)

	for i := 0; i < 20; i++ {
		f.Step(0.0005, 1, weak)
	}
	e1 := f.Energy(weak)
	require.Greater(t, e1.Kinetic, 0.0)
	require.Less(t, f.Body().Speed(), FreeSpeedLimit)
	assert.InDelta(t, e1.Kinetic, e0.Potential-e1.Potential, e1.Kinetic*0.01)
}

func TestPaintersDraw(t *testing.T) {
	tr := view.New(200, 200)
	s := surface.New(200, 200)

	f := NewFlow(5)
	f.Init(50, []core.Charge{{Q: 1}}, tr, 6)
	for i := 0; i < 10; i++ {
		f.Step(1)
	}
	PaintFlow(s, tr, f.Particles(), FlowStyle{Trails: true, Glow: true, Core: true})

	var tcs TestCharges
	tcs.Add(r2.Vec{X: 0.3})
	for i := 0; i < 5; i++ {
		tcs.Step(1, []core.Charge{{Q: 1}})
	}
	PaintTestCharges(s, tr, tcs.All(), 7)

	fc := NewFree()
	fc.Place(r2.Vec{X: 0.4})
	fc.Step(0.01, 1, []core.Charge{{Q: 1}})
	PaintFree(s, tr, fc, true)

	painted := 0
	img := s.Image()
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			painted++
		}
	}
	assert.Greater(t, painted, 100)
}

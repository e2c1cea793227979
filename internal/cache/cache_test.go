package cache

import (
	"errors"
	"image/color"
	"testing"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/surface"
	"github.com/semo00000/champ-electrostatique/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func inputs() Inputs {
	return Inputs{
		Charges:    []core.Charge{{X: -.8, Q: 2}, {X: .8, Q: -2}},
		View:       view.New(320, 240),
		Quality:    2,
		Density:    16,
		ArrowGrid:  20,
		FieldSteps: 600,
	}
}

func allOn(Layer) bool { return true }

func newManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(nil)
	for _, l := range Layers {
		m.Register(l, func(dst *surface.Surface, in *Inputs) (Artifacts, error) {
			dst.FillCircle(r2.Vec{X: 10, Y: 10}, 4, surfaceColor)
			return Artifacts{Paths: [][]r2.Vec{{{X: 1}, {X: 2}}}}, nil
		})
	}
	return m
}

func TestCoherence(t *testing.T) {
	m := newManager(t)
	in := inputs()

	first := m.InvalidateIfStale(in, allOn)
	assert.ElementsMatch(t, Layers, first)
	second := m.InvalidateIfStale(in, allOn)
	assert.Empty(t, second)

	for _, l := range Layers {
		assert.Equal(t, 1, m.Regenerations(l), "layer %s", l)
		s, fresh := m.Layer(l)
		require.NotNil(t, s)
		assert.True(t, fresh)
		assert.Equal(t, 320, s.Width())
	}
}

func TestDisabledLayerStaysStale(t *testing.T) {
	m := newManager(t)
	in := inputs()
	m.InvalidateIfStale(in, allOn)

	in.Charges[0].X = -.5
	noVectors := func(l Layer) bool { return l != Vectors }
	rebuilt := m.InvalidateIfStale(in, noVectors)
	assert.NotContains(t, rebuilt, Vectors)
	assert.Equal(t, 1, m.Regenerations(Vectors))
	_, fresh := m.Layer(Vectors)
	assert.False(t, fresh, "vectors should be stale")

	rebuilt = m.InvalidateIfStale(in, noVectors)
	assert.Empty(t, rebuilt)

	rebuilt = m.InvalidateIfStale(in, allOn)
	assert.Equal(t, []Layer{Vectors}, rebuilt)
	assert.Equal(t, 2, m.Regenerations(Vectors))
}

func TestMarkDirty(t *testing.T) {
	m := newManager(t)
	in := inputs()
	m.InvalidateIfStale(in, allOn)
	m.MarkDirty()
	assert.Len(t, m.InvalidateIfStale(in, allOn), len(Layers))
	assert.Equal(t, 2, m.Regenerations(FieldLines))
}

func TestBuildFailureDoesNotThrash(t *testing.T) {
	m := NewManager(nil)
	calls := 0
	m.Register(Vectors, func(*surface.Surface, *Inputs) (Artifacts, error) {
		calls++
		return Artifacts{}, errors.New("boom")
	})
	in := inputs()
	m.InvalidateIfStale(in, allOn)
	m.InvalidateIfStale(in, allOn)
	assert.Equal(t, 1, calls)
}

func TestArtifacts(t *testing.T) {
	m := newManager(t)
	assert.Empty(t, m.Artifacts(FieldLines).Paths)
	m.InvalidateIfStale(inputs(), allOn)
	assert.Len(t, m.Artifacts(FieldLines).Paths, 1)
	assert.Empty(t, m.Artifacts(Layer("nope")).Paths)
}

func TestKeyChangesWithCharge(t *testing.T) {
	base := inputs()
	k0 := NewKey(base)

	for _, dq := range []float64{1e-12, 1e-6, .5, -4} {
		in := inputs()
		in.Charges[1].Q += dq
		assert.NotEqual(t, k0, NewKey(in), "dq=%g", dq)
	}
}

func TestKeyCoversEveryInput(t *testing.T) {
	k0 := NewKey(inputs())
	mutations := map[string]func(*Inputs){
		"mirror":     func(in *Inputs) { in.Mirror = true },
		"zoom":       func(in *Inputs) { in.View.Zoom = 1.25 },
		"pan":        func(in *Inputs) { in.View.Pan = r2.Vec{X: 3} },
		"viewport":   func(in *Inputs) { in.View.Width = 640 },
		"quality":    func(in *Inputs) { in.Quality = 1 },
		"density":    func(in *Inputs) { in.Density = 14 },
		"arrowGrid":  func(in *Inputs) { in.ArrowGrid = 16 },
		"fieldSteps": func(in *Inputs) { in.FieldSteps = 380 },
		"position":   func(in *Inputs) { in.Charges[0].Y = .001 },
		"added":      func(in *Inputs) { in.Charges = append(in.Charges, core.Charge{Q: 1}) },
	}
	for name, mutate := range mutations {
		in := inputs()
		mutate(&in)
		assert.NotEqual(t, k0, NewKey(in), name)
	}
}

func TestKeyIgnoresOrderAndIdentity(t *testing.T) {
	a := inputs()
	b := inputs()
	b.Charges[0], b.Charges[1] = b.Charges[1], b.Charges[0]
	b.Charges[0].ID = "x"
	b.Charges[1].Locked = true
	assert.Equal(t, NewKey(a), NewKey(b))
}

func TestShort(t *testing.T) {
	k := NewKey(inputs())
	assert.Len(t, k.Short(), 16)
	assert.Equal(t, k.Short(), k.Short())
	assert.NotEqual(t, k.Short(), Key("other").Short())
}

var surfaceColor = color.NRGBA{R: 255, A: 255}

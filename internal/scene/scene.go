// Package scene is the simulation context: the charge list and every piece of
// interactive state the render pipeline reads once per frame. All mutations
// go through methods that record undo history and mark the render cache
// dirty; nothing else writes the charge list.
package scene

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/perf"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

const (
	// SnapStep is the placement grid in world units when snapping is on.
	SnapStep = 0.25

	ZoomMin = 0.2
	ZoomMax = 5.0

	// HitSlackPx widens the pick radius around a charge glyph.
	HitSlackPx = 4.0
)

// Change tells listeners which part of the scene moved.
type Change int

const (
	ChangeCharges Change = iota
	ChangeView
	ChangeToggles
	ChangeSettings
	ChangeTool
)

func (c Change) String() string {
	switch c {
	case ChangeCharges:
		return "charges"
	case ChangeView:
		return "view"
	case ChangeToggles:
		return "toggles"
	case ChangeSettings:
		return "settings"
	case ChangeTool:
		return "tool"
	}
	return fmt.Sprintf("Change(%d)", int(c))
}

// Listener is notified after every mutation.
type Listener func(Change)

// Gauss is a circular Gaussian surface in world units.
type Gauss struct {
	Center r2.Vec
	Radius float64
}

// Scene owns the charge list. It is not safe for concurrent use; the host
// mutates it between frames only.
type Scene struct {
	charges  []core.Charge
	toggles  Toggles
	settings Settings
	view     view.Transform
	tool     Tool

	probe   r2.Vec
	probeOn bool
	gauss   *Gauss
	workA   *r2.Vec
	workB   *r2.Vec

	history   *History
	dirty     bool
	version   uint64
	listeners []Listener
}

// New returns an empty scene for a viewport and start-up tier.
func New(width, height, tier int) *Scene {
	tier, _ = clampTier(tier)
	prof := perf.ForTier(tier)
	s := &Scene{
		toggles: DefaultToggles(tier),
		settings: Settings{
			Density:   prof.Density,
			Particles: prof.Particles,
			ArrowGrid: prof.ArrowGrid,
			Speed:     1,
			Quality:   tier,
			AutoAdapt: true,
		},
		view:    view.New(width, height),
		history: NewHistory(HistoryLimit),
		dirty:   true,
	}
	s.history.Record(s.charges)
	return s
}

func clampTier(t int) (int, bool) {
	switch {
	case t < 0:
		return 0, false
	case t > 3:
		return 3, false
	}
	return t, true
}

// OnChange registers a listener.
func (s *Scene) OnChange(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *Scene) notify(c Change) {
	if c == ChangeCharges {
		s.dirty = true
		s.version++
	}
	for _, l := range s.listeners {
		l(c)
	}
}

// Dirty reports whether charges changed since the last TakeDirty.
func (s *Scene) Dirty() bool { return s.dirty }

// TakeDirty returns the dirty flag and clears it.
func (s *Scene) TakeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// MarkDirty forces the next frame to treat the scene as changed.
func (s *Scene) MarkDirty() { s.dirty = true }

// Version increments on every charge mutation.
func (s *Scene) Version() uint64 { return s.version }

// Charges returns a copy of the user charges.
func (s *Scene) Charges() []core.Charge {
	return core.CloneCharges(s.charges)
}

// Effective is the charge set every field computation uses: the user charges
// plus their images when the grounded mirror plane is on.
func (s *Scene) Effective() []core.Charge {
	return physics.Effective(s.Charges(), s.toggles.Mirror)
}

func (s *Scene) Len() int { return len(s.charges) }

// Charge looks up a charge by id.
func (s *Scene) Charge(id string) (core.Charge, bool) {
	if i := s.index(id); i >= 0 {
		return s.charges[i], true
	}
	return core.Charge{}, false
}

func (s *Scene) index(id string) int {
	for i := range s.charges {
		if s.charges[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Scene) snap(v float64) float64 {
	if !s.toggles.Snap {
		return v
	}
	return math.Round(v/SnapStep) * SnapStep
}

// AddCharge places a charge of q microcoulombs and returns its id.
func (s *Scene) AddCharge(x, y, q float64) string {
	c := core.Charge{ID: uuid.NewString(), X: s.snap(x), Y: s.snap(y), Q: q}
	s.charges = append(s.charges, c)
	s.commit()
	return c.ID
}

// MoveCharge repositions a charge. Dragging calls it many times per gesture,
// so it does not record history; call Commit when the gesture ends.
func (s *Scene) MoveCharge(id string, x, y float64) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("move %q: %w", id, core.ErrUnknownCharge)
	}
	if s.charges[i].Locked {
		return fmt.Errorf("move %q: %w", id, core.ErrChargeLocked)
	}
	s.charges[i].X, s.charges[i].Y = s.snap(x), s.snap(y)
	s.notify(ChangeCharges)
	return nil
}

// SetChargeValue changes q. Zero is rejected since a zero charge has no
// field, no seeds and no glyph colour.
func (s *Scene) SetChargeValue(id string, q float64) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("set value %q: %w", id, core.ErrUnknownCharge)
	}
	if q == 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return fmt.Errorf("set value %q: %w: q=%g", id, core.ErrInvalidSettings, q)
	}
	s.charges[i].Q = q
	s.commit()
	return nil
}

// RemoveCharge deletes an unlocked charge.
func (s *Scene) RemoveCharge(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, core.ErrUnknownCharge)
	}
	if s.charges[i].Locked {
		return fmt.Errorf("remove %q: %w", id, core.ErrChargeLocked)
	}
	s.charges = append(s.charges[:i], s.charges[i+1:]...)
	s.commit()
	return nil
}

// LockCharge pins or releases a charge.
func (s *Scene) LockCharge(id string, locked bool) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("lock %q: %w", id, core.ErrUnknownCharge)
	}
	s.charges[i].Locked = locked
	s.commit()
	return nil
}

// ReplaceCharges swaps in a whole configuration (preset, file import).
// Missing ids are generated.
func (s *Scene) ReplaceCharges(cs []core.Charge) {
	s.charges = core.CloneCharges(cs)
	for i := range s.charges {
		if s.charges[i].ID == "" {
			s.charges[i].ID = uuid.NewString()
		}
	}
	s.gauss, s.workA, s.workB = nil, nil, nil
	s.commit()
}

// Clear removes every charge, locked ones included.
func (s *Scene) Clear() {
	s.ReplaceCharges(nil)
}

// Commit records the current charges as an undo step.
func (s *Scene) Commit() {
	s.history.Record(s.charges)
}

func (s *Scene) commit() {
	s.Commit()
	s.notify(ChangeCharges)
}

func (s *Scene) Undo() error {
	cs, err := s.history.Undo()
	if err != nil {
		return err
	}
	s.charges = cs
	s.notify(ChangeCharges)
	return nil
}

func (s *Scene) Redo() error {
	cs, err := s.history.Redo()
	if err != nil {
		return err
	}
	s.charges = cs
	s.notify(ChangeCharges)
	return nil
}

func (s *Scene) History() *History { return s.history }

// HitTest returns the topmost charge whose glyph covers screen point p.
func (s *Scene) HitTest(p r2.Vec) (string, bool) {
	r := physics.ChargeRadiusPx*math.Sqrt(s.view.Zoom) + HitSlackPx
	for i := len(s.charges) - 1; i >= 0; i-- {
		sp := s.view.WorldToScreen(s.charges[i].Pos())
		if math.Hypot(sp.X-p.X, sp.Y-p.Y) <= r {
			return s.charges[i].ID, true
		}
	}
	return "", false
}

func (s *Scene) Toggles() Toggles { return s.toggles }

func (s *Scene) SetToggles(t Toggles) {
	mirror := s.toggles.Mirror != t.Mirror
	s.toggles = t
	s.notify(ChangeToggles)
	if mirror {
		s.dirty = true
	}
}

// SetToggle flips one named toggle.
func (s *Scene) SetToggle(name string, on bool) error {
	t := s.toggles
	if err := t.Set(name, on); err != nil {
		return err
	}
	s.SetToggles(t)
	return nil
}

// SetHeatmap selects the scalar layer mode.
func (s *Scene) SetHeatmap(m core.HeatmapMode) {
	t := s.toggles
	t.Heatmap = m
	s.SetToggles(t)
}

func (s *Scene) Settings() Settings { return s.settings }

// SetSettings validates and applies a full settings block.
func (s *Scene) SetSettings(st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.settings = st
	s.notify(ChangeSettings)
	return nil
}

// SetQuality stores the active tier, clamping out-of-range values. ok is
// false when q had to be clamped.
func (s *Scene) SetQuality(q int) (ok bool) {
	s.settings.Quality, ok = clampTier(q)
	s.notify(ChangeSettings)
	return ok
}

func (s *Scene) View() view.Transform { return s.view }

func (s *Scene) SetView(t view.Transform) {
	s.view = t
	s.notify(ChangeView)
}

// Resize keeps pan and zoom and changes the viewport.
func (s *Scene) Resize(width, height int) {
	if width == s.view.Width && height == s.view.Height {
		return
	}
	s.view.Width, s.view.Height = width, height
	s.notify(ChangeView)
}

// PanBy moves the view by a screen-space delta.
func (s *Scene) PanBy(dx, dy float64) {
	s.view.Pan = r2.Add(s.view.Pan, r2.Vec{X: dx, Y: dy})
	s.notify(ChangeView)
}

// ZoomAt zooms around a screen anchor within [ZoomMin, ZoomMax].
func (s *Scene) ZoomAt(anchor r2.Vec, factor float64) {
	s.view = s.view.ZoomAt(anchor, factor, ZoomMin, ZoomMax)
	s.notify(ChangeView)
}

// ResetView recentres at zoom 1.
func (s *Scene) ResetView() {
	s.view.Pan = r2.Vec{}
	s.view.Zoom = 1
	s.notify(ChangeView)
}

// ScreenToWorld converts a pointer position, snapping when enabled.
func (s *Scene) ScreenToWorld(p r2.Vec) r2.Vec {
	w := s.view.ScreenToWorld(p)
	return r2.Vec{X: s.snap(w.X), Y: s.snap(w.Y)}
}

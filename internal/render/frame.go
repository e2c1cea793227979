// Package render composes one frame of the field view. Layers are drawn by an
// ordered stage list; post-render hooks run after it, each isolated so a
// failing hook is logged and skipped.
package render

import (
	"context"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/cache"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/perf"
	"github.com/semo00000/champ-electrostatique/internal/scene"
	"github.com/semo00000/champ-electrostatique/internal/surface"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

// Frame is the snapshot every stage and hook of one render reads. Nothing in
// it changes while the frame is drawn.
type Frame struct {
	Ctx   context.Context
	Index uint64
	Now   time.Time
	// Dt is the wall time since the previous frame in seconds.
	Dt float64

	Surface *surface.Surface
	View    view.Transform

	// Charges are the user's charges; Effective adds the mirror images when
	// the grounded plane is on.
	Charges   []core.Charge
	Effective []core.Charge

	Toggles  scene.Toggles
	Settings scene.Settings
	Tool     scene.Tool
	Profile  perf.Profile
	Effects  perf.Effects

	// OverBudget is set when the previous frame ran past the frame budget.
	OverBudget bool

	// FieldPaths are the screen-space field lines of the cached layer.
	FieldPaths [][]r2.Vec

	drawn []string
}

// Drawn lists the stages that ran so far, in order.
func (f *Frame) Drawn() []string { return f.drawn }

// Empty reports whether the scene has no charges.
func (f *Frame) Empty() bool { return len(f.Charges) == 0 }

// Stage is one layer of the fixed z-order.
type Stage struct {
	Name string
	// Enabled gates the stage for this frame. Nil means always.
	Enabled func(f *Frame) bool
	Draw    func(f *Frame) error
}

// Hook runs after every stage. Hooks may panic; the orchestrator recovers,
// logs and moves on to the next one.
type Hook struct {
	Name string
	Run  func(f *Frame) error
}

// Stats summarises the last frame.
type Stats struct {
	Frame      uint64
	Elapsed    time.Duration
	OverBudget bool
	Stages     []string
	Rebuilt    []cache.Layer
	HookErrors int
	Evaluator  string
	Tier       int
	FPS        float64
}

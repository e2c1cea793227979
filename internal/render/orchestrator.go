package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/cache"
	"github.com/semo00000/champ-electrostatique/internal/compute"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/effects"
	"github.com/semo00000/champ-electrostatique/internal/fieldlines"
	"github.com/semo00000/champ-electrostatique/internal/particles"
	"github.com/semo00000/champ-electrostatique/internal/perf"
	"github.com/semo00000/champ-electrostatique/internal/scene"
	"github.com/semo00000/champ-electrostatique/internal/surface"
)

const (
	// DefaultBudget is the frame time above which the next frame drops bloom
	// and arc regeneration.
	DefaultBudget = 20 * time.Millisecond

	defaultDt = 1.0 / 60
	maxDt     = 0.1
)

var background = color.NRGBA{R: 7, G: 10, B: 20, A: 255}

// Orchestrator owns the per-frame pipeline: the scene snapshot, the layer
// cache, the heatmap evaluator, the animated overlays and the governor. It
// is driven from a single goroutine, one Render per display refresh.
type Orchestrator struct {
	log   *zap.Logger
	scene *scene.Scene
	gov   *perf.Governor
	eval  compute.Evaluator

	packer *compute.Packer
	cache  *cache.Manager
	flow   *particles.Flow
	tests  particles.TestCharges
	free   *particles.Free
	arcs   *effects.Arcs
	bloom  *effects.Bloom

	out  *surface.Surface
	heat *image.RGBA

	stages []Stage
	hooks  []Hook

	budget     time.Duration
	clock      func() time.Time
	overBudget bool
	frame      uint64
	last       time.Time

	reinit       bool
	settingsSeen scene.Settings
	cursor       r2.Vec
	cursorOn     bool
	selected     string

	evalWarn rate.Sometimes
	stats    Stats
}

// New wires an orchestrator to a scene and governor. A nil evaluator falls
// back to the CPU one.
func New(sc *scene.Scene, gov *perf.Governor, eval compute.Evaluator, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if eval == nil {
		eval = compute.NewCPUEvaluator()
	}
	log = log.Named("render")
	o := &Orchestrator{
		log:      log,
		scene:    sc,
		gov:      gov,
		eval:     eval,
		packer:   compute.NewPacker(gov.Profile().GPUCharges, log),
		cache:    cache.NewManager(log),
		flow:     particles.NewFlow(1),
		free:     particles.NewFree(),
		arcs:     effects.NewArcs(1),
		bloom:    effects.NewBloom(),
		out:      surface.New(1, 1),
		budget:   DefaultBudget,
		clock:    time.Now,
		reinit:   true,
		evalWarn: rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
	o.registerLayers()
	o.stages = o.defaultStages()
	o.hooks = o.defaultHooks()

	st := sc.Settings()
	o.settingsSeen = st
	gov.SetAuto(st.AutoAdapt)
	gov.SetParticles(st.Particles)
	if st.Quality != gov.Tier() {
		if err := gov.SetTier(st.Quality); err != nil {
			log.Warn("start-up quality clamped", zap.Error(err))
		}
	}
	o.packer.SetLimit(gov.Profile().GPUCharges)

	gov.OnTierChange(o.onTier)
	sc.OnChange(o.onScene)
	return o
}

// SetBudget changes the frame-budget threshold.
func (o *Orchestrator) SetBudget(d time.Duration) { o.budget = d }

// SetClock replaces the wall clock, for deterministic rendering.
func (o *Orchestrator) SetClock(fn func() time.Time) { o.clock = fn }

// SetSeed reseeds the particle and arc generators.
func (o *Orchestrator) SetSeed(seed int64) {
	o.flow = particles.NewFlow(seed)
	o.arcs = effects.NewArcs(seed)
	o.reinit = true
}

// AddHook appends a post-render hook.
func (o *Orchestrator) AddHook(h Hook) { o.hooks = append(o.hooks, h) }

// Hooks lists the registered hook names in run order.
func (o *Orchestrator) Hooks() []string {
	names := make([]string, len(o.hooks))
	for i, h := range o.hooks {
		names[i] = h.Name
	}
	return names
}

// Stages lists the stage names in z-order.
func (o *Orchestrator) Stages() []string {
	names := make([]string, len(o.stages))
	for i, s := range o.stages {
		names[i] = s.Name
	}
	return names
}

// SetCursor places the superposition cursor at a screen position.
func (o *Orchestrator) SetCursor(p r2.Vec) { o.cursor, o.cursorOn = p, true }

func (o *Orchestrator) ClearCursor() { o.cursorOn = false }

// Select highlights one charge; an empty id clears the selection.
func (o *Orchestrator) Select(id string) { o.selected = id }

func (o *Orchestrator) Selected() string { return o.selected }

func (o *Orchestrator) TestCharges() *particles.TestCharges { return &o.tests }
func (o *Orchestrator) Free() *particles.Free               { return o.free }
func (o *Orchestrator) Flow() *particles.Flow               { return o.flow }
func (o *Orchestrator) Cache() *cache.Manager               { return o.cache }
func (o *Orchestrator) Evaluator() compute.Evaluator        { return o.eval }
func (o *Orchestrator) Stats() Stats                        { return o.stats }
func (o *Orchestrator) Image() *image.RGBA                  { return o.out.Image() }

// SetEvaluator swaps the heatmap evaluator, releasing the previous one.
func (o *Orchestrator) SetEvaluator(e compute.Evaluator) {
	if e == nil || e == o.eval {
		return
	}
	o.eval.Cleanup()
	o.eval = e
}

// Close releases the evaluator.
func (o *Orchestrator) Close() { o.eval.Cleanup() }

// onTier runs inside Governor.Frame, before the frame snapshot is taken.
func (o *Orchestrator) onTier(from, to int, p perf.Profile) {
	o.scene.SetQuality(to)
	o.cache.MarkDirty()
	o.packer.SetLimit(p.GPUCharges)
	o.reinit = true
	o.log.Debug("tier applied", zap.Int("from", from), zap.Int("to", to))
}

func (o *Orchestrator) onScene(c scene.Change) {
	switch c {
	case scene.ChangeView:
		o.flow.SetView(o.scene.View())
	case scene.ChangeSettings:
		o.applySettings()
	}
}

func (o *Orchestrator) applySettings() {
	st := o.scene.Settings()
	prev := o.settingsSeen
	o.settingsSeen = st
	o.gov.SetAuto(st.AutoAdapt)
	if st.Particles != prev.Particles {
		o.gov.SetParticles(st.Particles)
		o.reinit = true
	}
	if st.Quality != o.gov.Tier() {
		// Manual override; the tier listener writes it back unchanged.
		_ = o.gov.SetTier(st.Quality)
	}
}

// Render draws one frame and returns the composed image. The image is owned
// by the orchestrator and overwritten by the next call.
func (o *Orchestrator) Render(ctx context.Context) (*image.RGBA, error) {
	start := o.clock()
	o.frame++
	if err := ctx.Err(); err != nil {
		return o.out.Image(), err
	}

	action := o.gov.Frame(start)
	if action == perf.Degrade {
		o.applyDegrade()
	}

	f := o.snapshot(ctx, start)
	o.out.Resize(f.View.Width, f.View.Height)
	o.out.Fill(background)

	if o.scene.TakeDirty() {
		o.cache.MarkDirty()
		o.flow.SetCharges(f.Effective)
	}
	if o.reinit {
		o.resetParticles(f)
	}

	var rebuilt []cache.Layer
	if !f.Empty() {
		rebuilt = o.cache.InvalidateIfStale(o.cacheInputs(f), o.layerEnabled(f))
		f.FieldPaths = o.cache.Artifacts(cache.FieldLines).Paths
	}

	for _, s := range o.stages {
		if err := ctx.Err(); err != nil {
			return o.out.Image(), err
		}
		if s.Enabled != nil && !s.Enabled(f) {
			continue
		}
		f.drawn = append(f.drawn, s.Name)
		if err := s.Draw(f); err != nil {
			o.log.Warn("stage failed", zap.Error(&core.FrameError{Frame: f.Index, Stage: s.Name, Wrapped: err}))
		}
	}

	elapsed := o.clock().Sub(start)
	o.overBudget = elapsed > o.budget

	hookErrs := 0
	if !f.Empty() {
		for _, h := range o.hooks {
			if err := o.runHook(h, f); err != nil {
				hookErrs++
				o.log.Warn("post-render hook failed", zap.Error(err))
			}
		}
	}

	o.last = start
	o.stats = Stats{
		Frame:      f.Index,
		Elapsed:    elapsed,
		OverBudget: o.overBudget,
		Stages:     f.drawn,
		Rebuilt:    rebuilt,
		HookErrors: hookErrs,
		Evaluator:  o.eval.Name(),
		Tier:       o.gov.Tier(),
		FPS:        o.gov.FPS(),
	}
	return o.out.Image(), nil
}

func (o *Orchestrator) runHook(h Hook, f *Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.FrameError{Frame: f.Index, Stage: h.Name, Wrapped: fmt.Errorf("panic: %v", r)}
		}
	}()
	if herr := h.Run(f); herr != nil {
		return &core.FrameError{Frame: f.Index, Stage: h.Name, Wrapped: herr}
	}
	return nil
}

func (o *Orchestrator) snapshot(ctx context.Context, now time.Time) *Frame {
	dt := defaultDt
	if !o.last.IsZero() {
		dt = math.Min(maxDt, math.Max(0, now.Sub(o.last).Seconds()))
	}
	return &Frame{
		Ctx:        ctx,
		Index:      o.frame,
		Now:        now,
		Dt:         dt,
		Surface:    o.out,
		View:       o.scene.View(),
		Charges:    o.scene.Charges(),
		Effective:  o.scene.Effective(),
		Toggles:    o.scene.Toggles(),
		Settings:   o.scene.Settings(),
		Tool:       o.scene.Tool(),
		Profile:    o.gov.Profile(),
		Effects:    o.gov.Effects(),
		OverBudget: o.overBudget,
	}
}

// applyDegrade mirrors the governor's effect cascade into the user toggles so
// the host shows them switched off. The user may turn them back on.
func (o *Orchestrator) applyDegrade() {
	e := o.gov.Effects()
	t := o.scene.Toggles()
	changed := false
	if !e.Bloom && t.Bloom {
		t.Bloom, changed = false, true
	}
	if !e.Arcs && t.Arcs {
		t.Arcs, changed = false, true
		o.arcs.Clear()
	}
	if changed {
		o.scene.SetToggles(t)
	}
	o.reinit = true
}

func (o *Orchestrator) resetParticles(f *Frame) {
	o.reinit = false
	trail := f.Profile.TrailLength
	if f.Profile.SkipTrails {
		trail = 0
	}
	n := particles.FlowCount(f.Effects.Particles, f.Settings.Quality)
	o.flow.Init(n, f.Effective, f.View, trail)
}

func (o *Orchestrator) cacheInputs(f *Frame) cache.Inputs {
	q := f.Settings.Quality
	return cache.Inputs{
		Charges:    f.Effective,
		Mirror:     f.Toggles.Mirror,
		View:       f.View,
		Quality:    q,
		Density:    math.Round(float64(f.Settings.Density) * perf.QualMult(q)),
		ArrowGrid:  f.Settings.ArrowGrid,
		FieldSteps: fieldlines.StepBudget(f.Profile.FieldSteps, q),
	}
}

// layerEnabled ties cache rebuilds to the toggles. The field-line layer also
// feeds the flow animation, and the landscape replaces the 2D layers.
func (o *Orchestrator) layerEnabled(f *Frame) func(cache.Layer) bool {
	t := f.Toggles
	return func(l cache.Layer) bool {
		switch l {
		case cache.Landscape:
			return t.Landscape
		case cache.FieldLines:
			return !t.Landscape && (t.FieldLines || t.FieldFlow)
		case cache.Equipotentials:
			return !t.Landscape && t.Equipotentials
		case cache.Vectors:
			return !t.Landscape && t.Vectors
		}
		return false
	}
}

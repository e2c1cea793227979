package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/cache"
	"github.com/semo00000/champ-electrostatique/internal/colormap"
	"github.com/semo00000/champ-electrostatique/internal/compute"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/effects"
	"github.com/semo00000/champ-electrostatique/internal/particles"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/scene"
	"github.com/semo00000/champ-electrostatique/internal/surface"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

var (
	gridMinor  = color.NRGBA{255, 255, 255, 6}
	gridMajor  = color.NRGBA{255, 255, 255, 10}
	gridAxis   = color.NRGBA{0, 229, 255, 15}
	gridOrigin = color.NRGBA{0, 229, 255, 31}
	hintText   = color.NRGBA{255, 255, 255, 26}

	forceLine  = color.NRGBA{255, 136, 0, 153}
	forceHead  = color.NRGBA{255, 136, 0, 179}
	forceLabel = color.NRGBA{255, 136, 0, 128}

	chargeRim   = color.NRGBA{255, 255, 255, 46}
	chargeShine = color.NRGBA{255, 255, 255, 51}
	chargeSign  = color.NRGBA{255, 255, 255, 255}
	chargeMark  = color.NRGBA{255, 255, 255, 77}
	chargeValue = color.NRGBA{255, 255, 255, 153}

	probeCross = color.NRGBA{255, 255, 255, 31}
	probeRing  = color.NRGBA{0, 229, 255, 153}
	probeText  = color.NRGBA{255, 255, 255, 179}
	probeHead  = colorful.Color{R: 170.0 / 255, G: 0, B: 1}

	resultant = color.NRGBA{255, 255, 255, 230}

	gaussFill    = color.NRGBA{118, 255, 3, 10}
	gaussRing    = color.NRGBA{118, 255, 3, 128}
	gaussOut     = color.NRGBA{118, 255, 3, 153}
	gaussIn      = color.NRGBA{255, 100, 100, 153}
	gaussReadout = color.NRGBA{118, 255, 3, 204}

	workFill  = color.NRGBA{255, 171, 0, 255}
	workRim   = color.NRGBA{255, 171, 0, 102}
	workLine  = color.NRGBA{255, 171, 0, 128}
	workLabel = color.NRGBA{255, 171, 0, 230}
)

// superpositionPalette colours the per-charge contributions in order.
var superpositionPalette = []string{"#ff6b6b", "#4ecdc4", "#ffe66d", "#a29bfe", "#fd79a8", "#00cec9", "#fab1a0", "#6c5ce7"}

const gaussArrows = 16

func (o *Orchestrator) defaultStages() []Stage {
	plain := func(f *Frame) bool { return !f.Empty() && !f.Toggles.Landscape }
	return []Stage{
		{Name: "grid", Enabled: func(f *Frame) bool { return f.Empty() || !f.Toggles.Landscape }, Draw: o.drawGrid},
		{Name: "heatmap", Enabled: o.heatmapEnabled, Draw: o.drawHeatmap},
		{Name: "landscape", Enabled: func(f *Frame) bool { return !f.Empty() && f.Toggles.Landscape }, Draw: o.layer(cache.Landscape)},
		{Name: "equipotentials", Enabled: func(f *Frame) bool { return plain(f) && f.Toggles.Equipotentials }, Draw: o.layer(cache.Equipotentials)},
		{Name: "fieldlines", Enabled: func(f *Frame) bool { return plain(f) && f.Toggles.FieldLines }, Draw: o.layer(cache.FieldLines)},
		{Name: "vectors", Enabled: func(f *Frame) bool { return plain(f) && f.Toggles.Vectors }, Draw: o.layer(cache.Vectors)},
		{Name: "arcs", Enabled: func(f *Frame) bool { return plain(f) && f.Toggles.Arcs && f.Effects.Arcs }, Draw: o.drawArcs},
		{Name: "particles", Enabled: func(f *Frame) bool { return plain(f) && f.Toggles.Particles }, Draw: o.drawParticles},
		{Name: "testcharges", Enabled: func(f *Frame) bool { return plain(f) && o.tests.Len() > 0 }, Draw: o.drawTestCharges},
		{Name: "freecharge", Enabled: func(f *Frame) bool { return plain(f) && o.free.Active() }, Draw: o.drawFree},
		{Name: "forces", Enabled: func(f *Frame) bool { return plain(f) && f.Toggles.Forces && len(f.Charges) > 1 }, Draw: drawForces},
		{Name: "charges", Enabled: plain, Draw: o.drawCharges},
		{Name: "probe", Enabled: func(f *Frame) bool { _, ok := o.scene.Probe(); return plain(f) && ok }, Draw: o.drawProbe},
		{Name: "superposition", Enabled: func(f *Frame) bool {
			return plain(f) && f.Toggles.Superposition && f.Tool != scene.ToolProbe && o.cursorOn
		}, Draw: o.drawSuperposition},
		{Name: "gauss", Enabled: func(f *Frame) bool { _, ok := o.scene.Gauss(); return plain(f) && ok }, Draw: o.drawGauss},
		{Name: "work", Enabled: func(f *Frame) bool { a, _ := o.scene.WorkPoints(); return plain(f) && a != nil }, Draw: o.drawWork},
		{Name: "bloom", Enabled: func(f *Frame) bool {
			return plain(f) && f.Toggles.Bloom && f.Effects.Bloom && !f.Profile.SkipBloom &&
				f.Settings.Quality >= 1 && !f.OverBudget
		}, Draw: o.drawBloom},
	}
}

func (o *Orchestrator) layer(l cache.Layer) func(f *Frame) error {
	return func(f *Frame) error {
		s, _ := o.cache.Layer(l)
		if s == nil {
			return fmt.Errorf("layer %s not registered", l)
		}
		s.Composite(f.Surface.Image(), 1, false)
		return nil
	}
}

func (o *Orchestrator) drawGrid(f *Frame) error {
	s, t := f.Surface, f.View
	w, h := float64(t.Width), float64(t.Height)
	gs := view.DefaultPixelsPerUnit * t.Zoom
	c := t.Center()

	lines := func(step, width float64, col color.NRGBA) {
		if step < 4 {
			return
		}
		for x := view.GridOffset(c.X, step); x < w; x += step {
			s.StrokeLine(r2.Vec{X: x}, r2.Vec{X: x, Y: h}, width, col)
		}
		for y := view.GridOffset(c.Y, step); y < h; y += step {
			s.StrokeLine(r2.Vec{Y: y}, r2.Vec{X: w, Y: y}, width, col)
		}
	}
	if f.Settings.Quality >= 2 && !f.Profile.SkipMinorGrid {
		lines(gs/2, .5, gridMinor)
	}
	lines(gs, 1, gridMajor)
	s.StrokeLine(r2.Vec{X: c.X}, r2.Vec{X: c.X, Y: h}, 1.5, gridAxis)
	s.StrokeLine(r2.Vec{Y: c.Y}, r2.Vec{X: w, Y: c.Y}, 1.5, gridAxis)
	s.FillCircle(c, 3, gridOrigin)

	if f.Empty() {
		pulse := .5 + .5*math.Sin(float64(f.Index)*.02)
		mid := r2.Vec{X: w / 2, Y: h / 2}
		ring := colormap.WithAlpha(colormap.PositiveCharge, .04+.03*pulse)
		s.StrokeDashedCircle(mid, 50+10*pulse, 8, 6, -float64(f.Index)*.3, 1.5, ring)
		msg := "Click to place charges"
		s.DrawText(int(mid.X)-surface.TextWidth(msg)/2, int(mid.Y)+44, msg, hintText)
	}
	return nil
}

func (o *Orchestrator) heatmapEnabled(f *Frame) bool {
	if f.Empty() || compute.EffectiveMode(f.Toggles.Heatmap, f.Toggles.Chromatic) == core.HeatmapOff {
		return false
	}
	if !o.eval.Available() {
		o.evalWarn.Do(func() {
			o.log.Warn("heatmap skipped", zap.String("evaluator", o.eval.Name()), zap.Error(core.ErrEvaluatorUnavailable))
		})
		return false
	}
	return true
}

func (o *Orchestrator) drawHeatmap(f *Frame) error {
	u := o.packer.Pack(f.Toggles.Heatmap, f.Toggles.Chromatic, f.Effective, f.View)
	u.Time = float64(f.Index) * .016
	if u.Empty() {
		return nil
	}
	img := f.Surface.Image()
	if o.heat == nil || !o.heat.Rect.Eq(img.Rect) {
		o.heat = image.NewRGBA(img.Rect)
	}
	if err := o.eval.Evaluate(f.Ctx, o.heat, &u); err != nil {
		return err
	}
	surface.DrawOver(img, o.heat, 1)
	return nil
}

func (o *Orchestrator) drawArcs(f *Frame) error {
	// Over budget: keep the previous bolts instead of regenerating.
	if !f.OverBudget {
		o.arcs.Update(f.Charges, f.View, f.Profile.ArcDepth, f.Profile.ArcFreq)
	}
	effects.PaintArcs(f.Surface, o.arcs.Arcs())
	return nil
}

func (o *Orchestrator) drawParticles(f *Frame) error {
	o.flow.Step(f.Settings.Speed)
	particles.PaintFlow(f.Surface, f.View, o.flow.Particles(), particles.FlowStyle{
		Trails: !f.Profile.SkipTrails,
		Glow:   !f.Profile.SkipGlow,
		Core:   f.Settings.Quality >= 2,
	})
	return nil
}

func (o *Orchestrator) drawTestCharges(f *Frame) error {
	o.tests.Step(f.Settings.Speed, f.Effective)
	particles.PaintTestCharges(f.Surface, f.View, o.tests.All(), f.Index)
	return nil
}

func (o *Orchestrator) drawFree(f *Frame) error {
	o.free.Step(f.Dt, f.Settings.Speed, f.Effective)
	particles.PaintFree(f.Surface, f.View, o.free, !f.Profile.SkipGlow)
	return nil
}

// forceLength maps a force in newtons to an arrow length in pixels on a log
// scale in micronewtons.
func forceLength(fn float64) float64 {
	return math.Min(35, math.Log10(math.Abs(fn)*1e6+1)*6)
}

func drawForces(f *Frame) error {
	s, t := f.Surface, f.View
	for _, pf := range physics.PairForces(f.Charges) {
		pa := t.WorldToScreen(f.Charges[pf.I].Pos())
		pb := t.WorldToScreen(f.Charges[pf.J].Pos())
		ang := math.Atan2(pb.Y-pa.Y, pb.X-pa.X)
		l := forceLength(pf.Magnitude)
		// attraction points each arrow at the partner, repulsion away from it
		aa, ab := ang+math.Pi, ang
		if pf.Attractive() {
			aa, ab = ang, ang+math.Pi
		}
		for _, a := range [...]struct {
			at  r2.Vec
			ang float64
		}{{pa, aa}, {pb, ab}} {
			tip := r2.Vec{X: a.at.X + l*math.Cos(a.ang), Y: a.at.Y + l*math.Sin(a.ang)}
			s.StrokeLine(a.at, tip, 2, forceLine)
			s.ArrowHead(tip, a.ang, 5, forceHead)
		}
		label := physics.FormatSI(math.Abs(pf.Magnitude), "N")
		mid := r2.Scale(.5, r2.Add(pa, pb))
		s.DrawText(int(mid.X)-surface.TextWidth(label)/2, int(mid.Y)-6, label, forceLabel)
	}
	return nil
}

func (o *Orchestrator) drawCharges(f *Frame) error {
	s, t := f.Surface, f.View
	for i, c := range f.Charges {
		p := t.WorldToScreen(c.Pos())
		col := colormap.ChargeColor(c.Q)
		sc := math.Min(2, .6+math.Abs(c.Q)*.15)
		rad := physics.ChargeRadiusPx * sc
		pulse := .5 + .5*math.Sin(float64(f.Index)*.03+float64(i)*1.5)

		if !f.Profile.SkipGlow {
			s.Glow(p, rad*5, col, .15+.08*pulse)
			s.Glow(p, rad*3, col, .4+.2*pulse)
		}
		if c.ID != "" && c.ID == o.selected {
			s.StrokeCircle(p, rad+8, 6, colormap.WithAlpha(col, .15))
			s.StrokeDashedCircle(p, rad+8, 4, 4, -float64(f.Index)*.5, 2, colormap.WithAlpha(col, 1))
		}
		s.FillCircle(p, rad, colormap.WithAlpha(col, 1))
		s.FillCircle(r2.Vec{X: p.X - rad*.25, Y: p.Y - rad*.3}, rad*.45, chargeShine)
		s.StrokeCircle(p, rad, 1, chargeRim)

		sign := "-"
		if c.Positive() {
			sign = "+"
		}
		s.DrawText(int(p.X)-surface.TextWidth(sign)/2, int(p.Y)+4, sign, chargeSign)

		// shape markers keep the sign readable without colour
		if c.Positive() {
			top := p.Y - rad
			s.StrokePolyline([]r2.Vec{
				{X: p.X, Y: top - 2}, {X: p.X + 4, Y: top - 6},
				{X: p.X, Y: top - 10}, {X: p.X - 4, Y: top - 6}, {X: p.X, Y: top - 2},
			}, 1.5, chargeMark)
		} else {
			x0, y0 := p.X-3, p.Y-rad-9
			s.StrokePolyline([]r2.Vec{
				{X: x0, Y: y0}, {X: x0 + 6, Y: y0}, {X: x0 + 6, Y: y0 + 6}, {X: x0, Y: y0 + 6}, {X: x0, Y: y0},
			}, 1.5, chargeMark)
		}

		label := fmt.Sprintf("%+.1f uC", c.Q)
		s.DrawText(int(p.X)-surface.TextWidth(label)/2, int(p.Y+rad)+14, label, chargeValue)
	}
	return nil
}

func (o *Orchestrator) drawProbe(f *Frame) error {
	wp, _ := o.scene.Probe()
	s, t := f.Surface, f.View
	p := t.WorldToScreen(wp)
	w, h := float64(t.Width), float64(t.Height)

	s.StrokeDashed([]r2.Vec{{X: p.X}, {X: p.X, Y: h}}, 4, 6, 0, 1, probeCross)
	s.StrokeDashed([]r2.Vec{{Y: p.Y}, {X: w, Y: p.Y}}, 4, 6, 0, 1, probeCross)
	s.StrokeCircle(p, 8, 1.5, probeRing)

	smp := physics.SampleAt(wp, f.Effective)
	if smp.Magnitude > 10 {
		ang := math.Atan2(-smp.Field.Y, smp.Field.X)
		l := math.Min(60, math.Log10(smp.Magnitude)*12)
		tip := r2.Vec{X: p.X + l*math.Cos(ang), Y: p.Y + l*math.Sin(ang)}
		mid := colormap.PositiveCharge.BlendRgb(probeHead, .5)
		s.StrokeLine(p, tip, 2.5, colormap.WithAlpha(mid, .8))
		s.ArrowHead(tip, ang, 8, colormap.WithAlpha(probeHead, .9))
	}
	s.DrawText(int(p.X)+12, int(p.Y)-12, physics.FormatSI(smp.Magnitude, "N/C"), probeText)
	s.DrawText(int(p.X)+12, int(p.Y)+2, physics.FormatSI(smp.Potential, "V"), probeText)
	return nil
}

func (o *Orchestrator) drawSuperposition(f *Frame) error {
	s, t := f.Surface, f.View
	p := o.cursor
	parts, total := physics.Contributions(t.ScreenToWorld(p), f.Effective)
	for i, e := range parts {
		m := r2.Norm(e)
		if m < 1 {
			continue
		}
		col, err := colorful.Hex(superpositionPalette[i%len(superpositionPalette)])
		if err != nil {
			return err
		}
		l := math.Min(40, math.Log10(m)*10)
		tip := r2.Vec{X: p.X + l*e.X/m, Y: p.Y - l*e.Y/m}
		s.Arrow(p, tip, 1.5, 5, colormap.WithAlpha(col, .8))
		s.DrawText(int(tip.X)+3, int(tip.Y)-3, fmt.Sprintf("q%d", i+1), colormap.WithAlpha(col, .9))
	}
	if m := r2.Norm(total); m >= 1 {
		l := math.Min(50, math.Log10(m)*12)
		tip := r2.Vec{X: p.X + l*total.X/m, Y: p.Y - l*total.Y/m}
		s.Arrow(p, tip, 3, 7, resultant)
		s.DrawText(int(tip.X)+4, int(tip.Y)-4, "E", resultant)
	}
	return nil
}

func (o *Orchestrator) drawGauss(f *Frame) error {
	g, _ := o.scene.Gauss()
	s, t := f.Surface, f.View
	c := t.WorldToScreen(g.Center)
	r := g.Radius * t.Scale()

	s.FillCircle(c, r, gaussFill)
	s.StrokeDashedCircle(c, r, 6, 4, -float64(f.Index)*.5, 2, gaussRing)
	for _, n := range core.UnitRing(gaussArrows) {
		wp := r2.Add(g.Center, r2.Scale(g.Radius, n))
		en := r2.Dot(physics.FieldAt(wp, f.Effective), n)
		l := math.Min(18, math.Abs(en)*1e-4)
		if l < 1 {
			continue
		}
		dir := r2.Vec{X: n.X, Y: -n.Y}
		col := gaussOut
		if en < 0 {
			dir, col = r2.Scale(-1, dir), gaussIn
		}
		at := t.WorldToScreen(wp)
		s.Arrow(at, r2.Add(at, r2.Scale(l, dir)), 1.5, 4, col)
	}
	res := physics.GaussFlux(g.Center, g.Radius, f.Profile.GaussN, f.Effective)
	txt := fmt.Sprintf("flux %s  q/e0 %s  err %.1f%%",
		physics.FormatSI(res.Flux, "Nm2/C"), physics.FormatSI(res.EnclosedOverEps0, "Nm2/C"), res.ErrorPct)
	s.DrawText(int(c.X)-surface.TextWidth(txt)/2, int(c.Y+r)+16, txt, gaussReadout)
	return nil
}

func (o *Orchestrator) drawWork(f *Frame) error {
	a, b := o.scene.WorkPoints()
	s, t := f.Surface, f.View
	marker := func(w r2.Vec, name string) r2.Vec {
		p := t.WorldToScreen(w)
		s.FillCircle(p, 6, workFill)
		s.StrokeCircle(p, 6, 2, workRim)
		s.DrawText(int(p.X)-surface.TextWidth(name)/2, int(p.Y)-10, name, workLabel)
		return p
	}
	pa := marker(*a, "A")
	if b == nil {
		return nil
	}
	pb := marker(*b, "B")
	s.StrokeDashed([]r2.Vec{pa, pb}, 6, 4, 0, 1.5, workLine)
	d := r2.Sub(pb, pa)
	if l := r2.Norm(d); l > 14 {
		head := r2.Sub(pb, r2.Scale(8/l, d))
		s.ArrowHead(head, math.Atan2(d.Y, d.X), 7, workLine)
	}
	if res, ok := o.scene.WorkResult(); ok {
		txt := "W = " + physics.FormatSI(res.Work, "J")
		mid := r2.Scale(.5, r2.Add(pa, pb))
		s.DrawText(int(mid.X)-surface.TextWidth(txt)/2, int(mid.Y)-8, txt, workLabel)
	}
	return nil
}

func (o *Orchestrator) drawBloom(f *Frame) error {
	img := f.Surface.Image()
	div := effects.BloomDiv(f.Profile.BloomDiv, f.Settings.Quality)
	if img.Rect.Dx()/div < 4 || img.Rect.Dy()/div < 4 {
		return nil
	}
	o.bloom.Apply(img, div, effects.BloomBlur(f.Settings.Quality))
	return nil
}

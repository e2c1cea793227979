package render

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/colormap"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/scene"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

var (
	mirrorPlane = color.NRGBA{118, 255, 3, 89}
	mirrorHatch = color.NRGBA{118, 255, 3, 31}
	mirrorLabel = color.NRGBA{255, 255, 255, 64}
	snapLine    = color.NRGBA{118, 255, 3, 38}
	flowDash    = color.NRGBA{0, 229, 255, 77}
	lockColour  = color.NRGBA{255, 214, 0, 179}
)

const minSnapSpacing = 10.0 // px

func (o *Orchestrator) defaultHooks() []Hook {
	return []Hook{
		{Name: "mirror", Run: drawMirror},
		{Name: "snap-grid", Run: drawSnapGrid},
		{Name: "field-flow", Run: drawFieldFlow},
		{Name: "lock-icons", Run: drawLocks},
	}
}

// drawMirror shows the grounded plane at y = 0 and the image charges as
// faint ghosts.
func drawMirror(f *Frame) error {
	if !f.Toggles.Mirror {
		return nil
	}
	s, t := f.Surface, f.View
	w := float64(t.Width)
	y0 := t.WorldToScreen(r2.Vec{}).Y
	s.StrokeDashed([]r2.Vec{{Y: y0}, {X: w, Y: y0}}, 8, 4, 0, 2, mirrorPlane)
	for x := 0.0; x < w; x += 15 {
		s.StrokeLine(r2.Vec{X: x, Y: y0}, r2.Vec{X: x - 8, Y: y0 + 10}, 1, mirrorHatch)
	}
	r := physics.ChargeRadiusPx * .8
	for _, c := range physics.MirrorCharges(f.Charges) {
		p := t.WorldToScreen(c.Pos())
		col := colormap.ChargeColor(c.Q)
		s.FillCircle(p, r, colormap.WithAlpha(col, .09))
		s.StrokeDashedCircle(p, r, 3, 3, 0, 1, colormap.WithAlpha(col, .3))
		s.DrawText(int(p.X)-3, int(p.Y)+4, "'", mirrorLabel)
	}
	return nil
}

// drawSnapGrid marks the snapping lattice when it is coarse enough to read.
func drawSnapGrid(f *Frame) error {
	if !f.Toggles.Snap {
		return nil
	}
	s, t := f.Surface, f.View
	step := scene.SnapStep * t.Scale()
	if step < minSnapSpacing {
		return nil
	}
	c := t.Center()
	w, h := float64(t.Width), float64(t.Height)
	for x := view.GridOffset(c.X, step); x < w; x += step {
		s.StrokeLine(r2.Vec{X: x}, r2.Vec{X: x, Y: h}, .5, snapLine)
	}
	for y := view.GridOffset(c.Y, step); y < h; y += step {
		s.StrokeLine(r2.Vec{Y: y}, r2.Vec{X: w, Y: y}, .5, snapLine)
	}
	return nil
}

// drawFieldFlow animates dashes along the cached field lines. Reduced tiers
// animate every other line.
func drawFieldFlow(f *Frame) error {
	if !f.Toggles.FieldFlow || f.Toggles.Landscape || len(f.FieldPaths) == 0 {
		return nil
	}
	every := 1
	if f.Profile.ReducedFieldFlow {
		every = 2
	}
	off := -float64(f.Index) * .8
	for i := 0; i < len(f.FieldPaths); i += every {
		if p := f.FieldPaths[i]; len(p) > 1 {
			f.Surface.StrokeDashed(p, 8, 12, off, 2.5, flowDash)
		}
	}
	return nil
}

// drawLocks puts a small padlock beside every locked charge.
func drawLocks(f *Frame) error {
	if f.Toggles.Landscape {
		return nil
	}
	s, t := f.Surface, f.View
	d := physics.ChargeRadiusPx * .6
	for _, c := range f.Charges {
		if !c.Locked {
			continue
		}
		p := t.WorldToScreen(c.Pos())
		x, y := p.X+d, p.Y-d
		s.FillPolygon([]r2.Vec{{X: x - 3, Y: y}, {X: x + 3, Y: y}, {X: x + 3, Y: y + 5}, {X: x - 3, Y: y + 5}}, lockColour)
		s.StrokeCircle(r2.Vec{X: x, Y: y}, 2, 1.2, lockColour)
	}
	return nil
}

package raster

import (
	"fmt"
	"image/color"
	"math"

	"github.com/semo00000/champ-electrostatique/internal/colormap"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/fieldlines"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/surface"
	"github.com/semo00000/champ-electrostatique/internal/view"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	fieldLineWidth = 1.5
	fieldArrowSize = 6.0
)

// ScreenPaths converts traced world paths to pixel polylines.
func ScreenPaths(t view.Transform, traces []fieldlines.Trace) [][]r2.Vec {
	out := make([][]r2.Vec, len(traces))
	for i, tr := range traces {
		pts := make([]r2.Vec, len(tr.Path))
		for j, p := range tr.Path {
			pts[j] = t.WorldToScreen(p)
		}
		out[i] = pts
	}
	return out
}

// PaintFieldLines strokes each path. Lines traced forward also get direction
// arrows every quarter of their length.
func PaintFieldLines(s *surface.Surface, paths [][]r2.Vec, dirs []int) {
	for k, pts := range paths {
		if len(pts) < 2 {
			continue
		}
		s.StrokePolyline(pts, fieldLineWidth, colormap.FieldLine)
		if k < len(dirs) && dirs[k] < 0 {
			continue
		}
		step := len(pts) / 4
		if step <= 2 {
			continue
		}
		for j := step; j < len(pts)-2; j += step {
			d := r2.Sub(pts[j+1], pts[j])
			s.ArrowHead(pts[j], math.Atan2(d.Y, d.X), fieldArrowSize, colormap.FieldLineArrow)
		}
	}
}

// PaintEquipotentials strokes contour segments in gold, fading weak levels.
func PaintEquipotentials(s *surface.Surface, contours []Contour) {
	for _, c := range contours {
		col := colormap.Equipotential(c.Level)
		for _, seg := range c.Segments {
			s.StrokeLine(seg.A, seg.B, 1, col)
		}
	}
}

// PaintVectors draws each arrow centered on its lattice point.
func PaintVectors(s *surface.Surface, arrows []Arrow) {
	for _, a := range arrows {
		sin, cos := math.Sincos(a.Angle)
		at := func(x, y float64) r2.Vec {
			return r2.Vec{X: a.At.X + x*cos - y*sin, Y: a.At.Y + x*sin + y*cos}
		}
		half := a.Length / 2
		s.StrokeLine(at(-half, 0), at(half-4, 0), 1.5, a.Color)
		head := a.Color
		head.A = uint8(math.Min(255, (a.Alpha+.1)*255+.5))
		s.FillPolygon([]r2.Vec{at(half, 0), at(half-5, -3), at(half-5, 3)}, head)
	}
}

var (
	landscapeTitle = color.NRGBA{R: 255, G: 255, B: 255, A: 64}
	landscapeHint  = color.NRGBA{R: 255, G: 255, B: 255, A: 38}
	markerLabel    = color.NRGBA{R: 255, G: 255, B: 255, A: 179}
	markerRing     = color.NRGBA{R: 255, G: 255, B: 255, A: 153}
)

// PaintLandscape fills the mesh back to front with a faint wireframe, then
// marks each charge on the surface.
func PaintLandscape(s *surface.Surface, l *Landscape, charges []core.Charge) {
	for _, q := range l.Quads() {
		fill := colormap.Landscape(q.V)
		poly := q.Corners[:]
		s.FillPolygon(poly, fill)
		wire := colormap.Wireframe(fill)
		for k := range 4 {
			s.StrokeLine(poly[k], poly[(k+1)%4], .5, wire)
		}
	}
	for _, c := range charges {
		v := physics.PotentialAt(c.Pos(), charges)
		p := l.Iso.Project(c.Pos(), LandscapeHeight(v))
		col := colormap.ChargeColor(c.Q)
		s.Glow(p, 25, col, .4)
		s.FillCircle(p, 6, colormap.NRGBA(col, 1))
		s.StrokeCircle(p, 6, 1.5, markerRing)
		label := fmt.Sprintf("%+.1f uC", c.Q)
		s.DrawText(int(p.X)-surface.TextWidth(label)/2, int(p.Y)-12, label, markerLabel)
	}
	s.DrawText(16, 24, "Potential landscape V(x,y)", landscapeTitle)
	s.DrawText(16, 40, "up: V > 0 (hills)   down: V < 0 (wells)", landscapeHint)
}

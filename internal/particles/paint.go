package particles

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/colormap"
	"github.com/semo00000/champ-electrostatique/internal/surface"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

var (
	flowTrail  = colorful.Color{R: 0, G: 200.0 / 255, B: 1}
	flowDot    = color.NRGBA{0, 220, 255, 191}
	flowGlow   = color.NRGBA{0, 200, 255, 13}
	flowCore   = color.NRGBA{180, 240, 255, 89}
	testTrail  = color.NRGBA{255, 200, 0, 77}
	testRing   = color.NRGBA{255, 200, 0, 204}
	testDot    = color.NRGBA{255, 200, 0, 153}
	freeColour = colorful.Color{R: 105.0 / 255, G: 240.0 / 255, B: 174.0 / 255}
	freeRim    = color.NRGBA{255, 255, 255, 153}
)

// FlowStyle picks the per-tier extras of the particle pass.
type FlowStyle struct {
	Trails bool
	Glow   bool
	Core   bool
}

func screen(t view.Transform, pts []r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(pts))
	for i, p := range pts {
		out[i] = t.WorldToScreen(p)
	}
	return out
}

// PaintFlow draws flow particles with optional trails, glow and bright
// cores.
func PaintFlow(s *surface.Surface, t view.Transform, parts []Particle, st FlowStyle) {
	for i := range parts {
		p := &parts[i]
		al := p.Alpha()
		if al < 0.02 {
			continue
		}
		if st.Trails && p.Trail.Len() > 2 {
			s.StrokePolyline(screen(t, p.Trail.Points()), 1.5+al, colormap.WithAlpha(flowTrail, 0.06+0.12*al))
		}
		at := t.WorldToScreen(p.Pos)
		s.FillCircle(at, 2, flowDot)
		if st.Glow && al > .4 {
			s.FillCircle(at, 5, flowGlow)
		}
		if st.Core && al > .6 {
			s.FillCircle(at, 1, flowCore)
		}
	}
}

// PaintTestCharges draws each test charge with its trail and a dashed ring
// that rotates with the frame counter.
func PaintTestCharges(s *surface.Surface, t view.Transform, tcs []TestCharge, frame uint64) {
	for i := range tcs {
		tc := &tcs[i]
		if tc.Trail.Len() > 2 {
			s.StrokePolyline(screen(t, tc.Trail.Points()), 2, testTrail)
		}
		at := t.WorldToScreen(tc.Pos)
		s.StrokeDashedCircle(at, 8, 3, 3, -float64(frame), 2, testRing)
		s.FillCircle(at, 4, testDot)
	}
}

// PaintFree draws the free charge, its fading trail and a velocity arrow.
func PaintFree(s *surface.Surface, t view.Transform, f *Free, glow bool) {
	if !f.Active() {
		return
	}
	trail := f.Trail()
	for i := 1; i < len(trail); i++ {
		a := 0.05 + 0.5*float64(i)/float64(len(trail))
		s.StrokeLine(t.WorldToScreen(trail[i-1]), t.WorldToScreen(trail[i]), 2, colormap.WithAlpha(freeColour, a))
	}
	b := f.Body()
	at := t.WorldToScreen(b.Pos)
	if glow {
		s.Glow(at, 18, freeColour, 0.4)
	}
	s.FillCircle(at, 5, colormap.WithAlpha(freeColour, 1))
	s.StrokeCircle(at, 5, 1.5, freeRim)

	if l := math.Min(30, b.Speed()*0.5); l > 2 {
		ang := math.Atan2(b.Vel.Y, b.Vel.X)
		tip := r2.Vec{X: at.X + l*math.Cos(ang), Y: at.Y - l*math.Sin(ang)}
		s.Arrow(at, tip, 2, 5, colormap.WithAlpha(freeColour, 0.65))
	}
}

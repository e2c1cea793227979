package raster

import (
	"image/color"
	"math"

	"github.com/semo00000/champ-electrostatique/internal/colormap"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/view"
	"gonum.org/v1/gonum/spatial/r2"
)

// MinArrowField hides arrows where |E| is below this many V/m.
const MinArrowField = 10.0

// Arrow is one glyph of the vector grid in pixel coordinates. Angle is the
// screen-space direction (y down).
type Arrow struct {
	At        r2.Vec
	Angle     float64
	Length    float64
	Magnitude float64
	Color     color.NRGBA
	Alpha     float64
}

// VectorGrid samples E on an (n+1)×(n+1) lattice spanning the viewport.
// Arrow length grows with log10(|E|+1) up to 45% of the lattice spacing.
func VectorGrid(t view.Transform, n int, charges []core.Charge) []Arrow {
	if n <= 0 || len(charges) == 0 {
		return nil
	}
	sx := float64(t.Width) / float64(n)
	sy := float64(t.Height) / float64(n)
	arrows := make([]Arrow, 0, (n+1)*(n+1))
	for gx := 0; gx <= n; gx++ {
		for gy := 0; gy <= n; gy++ {
			px := r2.Vec{X: float64(gx) * sx, Y: float64(gy) * sy}
			e := physics.FieldAt(t.ScreenToWorld(px), charges)
			m := math.Hypot(e.X, e.Y)
			if m < MinArrowField {
				continue
			}
			lm := math.Log10(m + 1)
			c, alpha := colormap.Arrow(m)
			arrows = append(arrows, Arrow{
				At:        px,
				Angle:     math.Atan2(-e.Y, e.X),
				Length:    math.Min(sx*.45, lm*5),
				Magnitude: m,
				Color:     c,
				Alpha:     alpha,
			})
		}
	}
	return arrows
}

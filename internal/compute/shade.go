package compute

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/semo00000/champ-electrostatique/internal/colormap"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// baseColor maps one field sample under modes 1..4.
func baseColor(u *Uniforms, s core.Sample) colorful.Color {
	switch u.Mode {
	case core.HeatmapPotential:
		return colormap.Potential(s.Potential, u.VScale)
	case core.HeatmapMagnitude:
		return colormap.Magnitude(s.Magnitude)
	case core.HeatmapDirection:
		return colormap.Direction(s.Field.X, s.Field.Y)
	case core.HeatmapEnergy:
		return colormap.Energy(s.Magnitude)
	}
	return colorful.Color{}
}

func unit(e r2.Vec, m float64) r2.Vec {
	if m <= .001 {
		return r2.Vec{}
	}
	return r2.Scale(1/m, e)
}

// Shade is the per-pixel program: the color at world point wp.
func Shade(u *Uniforms, wp r2.Vec) color.NRGBA {
	if u.Empty() || u.Mode > core.HeatmapChromatic {
		return color.NRGBA{}
	}
	s := physics.SampleAt(wp, u.Charges)

	var col colorful.Color
	switch {
	case u.Mode == core.HeatmapChromatic:
		off := r2.Scale(colormap.ChromaticOffset(s.Magnitude), unit(s.Field, s.Magnitude))
		r := physics.SampleAt(r2.Add(wp, off), u.Charges)
		b := physics.SampleAt(r2.Sub(wp, off), u.Charges)
		col = colormap.Chromatic(r.Magnitude, s.Magnitude, b.Magnitude, r2.Norm(off))
	case u.Chromatic:
		// Split channels of the selected mode, with a smaller offset.
		shift := math.Min(1, math.Log(s.Magnitude+1)/12) * .02
		off := r2.Scale(shift, unit(s.Field, s.Magnitude))
		r := baseColor(u, physics.SampleAt(r2.Add(wp, off), u.Charges))
		b := baseColor(u, physics.SampleAt(r2.Sub(wp, off), u.Charges))
		g := baseColor(u, s)
		glow := smoothstep(.3, 1, shift/.02) * .12
		col = colorful.Color{R: r.R + glow*.5, G: g.G + glow*.3, B: b.B + glow}
	default:
		col = baseColor(u, s)
	}
	return colormap.NRGBA(col, colormap.HeatmapAlpha)
}

func smoothstep(e0, e1, x float64) float64 {
	t := math.Max(0, math.Min(1, (x-e0)/(e1-e0)))
	return t * t * (3 - 2*t)
}

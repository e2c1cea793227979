// Package colormap maps field quantities to colors for the heatmap, the
// cached vector and equipotential layers, and the potential landscape.
package colormap

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Ramp is a piecewise-linear gradient. Pos must be increasing, start at 0 and
// have one entry per color.
type Ramp struct {
	Pos    []float64
	Colors []colorful.Color
}

// At samples the ramp at t, clamped to [0,1].
func (r Ramp) At(t float64) colorful.Color {
	t = clamp01(t)
	last := len(r.Colors) - 1
	for i := 1; i <= last; i++ {
		if t < r.Pos[i] || i == last {
			span := r.Pos[i] - r.Pos[i-1]
			if span <= 0 {
				return r.Colors[i]
			}
			return r.Colors[i-1].BlendRgb(r.Colors[i], clamp01((t-r.Pos[i-1])/span))
		}
	}
	return r.Colors[last]
}

func rgb(r, g, b float64) colorful.Color { return colorful.Color{R: r, G: g, B: b} }

var (
	PositivePotential = Ramp{
		Pos:    []float64{0, .33, .66, 1},
		Colors: []colorful.Color{rgb(.02, 0, .03), rgb(.6, .05, .1), rgb(1, .4, .05), rgb(1, .85, .3)},
	}
	NegativePotential = Ramp{
		Pos:    []float64{0, .33, .66, 1},
		Colors: []colorful.Color{rgb(0, .01, .03), rgb(0, .08, .35), rgb(0, .3, .7), rgb(.1, .7, 1)},
	}
	MagnitudeRamp = Ramp{
		Pos:    []float64{0, .25, .5, .75, 1},
		Colors: []colorful.Color{rgb(.01, 0, .02), rgb(.2, 0, .4), rgb(.7, 0, .5), rgb(1, .3, .7), rgb(1, .92, 1)},
	}
	EnergyRamp = Ramp{
		Pos:    []float64{0, .25, .5, .75, 1},
		Colors: []colorful.Color{rgb(0, 0, 0), rgb(.4, .15, 0), rgb(.85, .4, 0), rgb(1, .7, .05), rgb(1, 1, .4)},
	}
)

// Heatmap alpha for every evaluated pixel.
const HeatmapAlpha = .88

// Potential colors V against a normalization scale: warm for V > 0, cool for
// V < 0.
func Potential(v, vScale float64) colorful.Color {
	n := math.Max(-1, math.Min(1, v/vScale))
	if n >= 0 {
		return PositivePotential.At(n)
	}
	return NegativePotential.At(-n)
}

// MagnitudeT is the log-compressed |E| used by the magnitude ramp.
func MagnitudeT(em float64) float64 { return clamp01(math.Log(em+1) / 18) }

func Magnitude(em float64) colorful.Color { return MagnitudeRamp.At(MagnitudeT(em)) }

// Direction encodes the field angle as hue and log|E| as value.
func Direction(ex, ey float64) colorful.Color {
	em := math.Hypot(ex, ey)
	h := (math.Atan2(ey, ex) + math.Pi) / (2 * math.Pi) * 360
	v := clamp01(math.Log(em+1)/14) * .9
	return colorful.Hsv(math.Mod(h, 360), .85, v)
}

// EnergyDensity is u = ½·ε₀·|E|² in J/m³.
func EnergyDensity(em float64) float64 { return .5 * 8.854e-12 * em * em }

func Energy(em float64) colorful.Color {
	t := clamp01(math.Log(EnergyDensity(em)*1e8+1) / 18)
	return EnergyRamp.At(t)
}

// ChromaticOffset is the world-space channel offset along Ê.
func ChromaticOffset(em float64) float64 {
	return math.Min(1, math.Log(em+1)/12) * .025
}

// Chromatic builds the split-channel color from |E| sampled at p+off, p and
// p-off, with a violet glow that grows with the offset s.
func Chromatic(emR, em0, emB, s float64) colorful.Color {
	tr := clamp01(math.Log(emR+1) / 14)
	tg := clamp01(math.Log(em0+1) / 14)
	tb := clamp01(math.Log(emB+1) / 14)
	glow := smoothstep(.2, 1, s/.025) * .2
	return rgb(tr*.7+.1+glow*.4, tg*.3+glow*.2, tb*.8+.1+glow*.9)
}

// NRGBA converts c to 8-bit with the given alpha. Channels are clamped.
func NRGBA(c colorful.Color, alpha float64) color.NRGBA {
	c = c.Clamped()
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(alpha)}
}

func to8(v float64) uint8 { return uint8(clamp01(v)*255 + .5) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func smoothstep(e0, e1, x float64) float64 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

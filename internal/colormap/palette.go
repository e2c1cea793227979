package colormap

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	PositiveCharge = mustHex("#00e5ff")
	NegativeCharge = mustHex("#ff006e")

	FieldLine      = color.NRGBA{R: 0, G: 200, B: 255, A: 89}
	FieldLineArrow = color.NRGBA{R: 0, G: 229, B: 255, A: 153}
)

// ChargeColor is cyan for positive and magenta for negative charges.
func ChargeColor(q float64) colorful.Color {
	if q > 0 {
		return PositiveCharge
	}
	return NegativeCharge
}

// EquipotentialAlpha fades weak contour levels.
func EquipotentialAlpha(level float64) float64 {
	return .15 + .35*math.Min(1, math.Abs(level)/3e5)
}

// Equipotential is the gold contour color for a level.
func Equipotential(level float64) color.NRGBA {
	return color.NRGBA{R: 255, G: 214, B: 0, A: to8(EquipotentialAlpha(level))}
}

// Arrow colors a field vector of magnitude m. The shaft alpha is returned;
// the head is drawn 0.1 more opaque.
func Arrow(m float64) (color.NRGBA, float64) {
	lm := math.Log10(m + 1)
	t := math.Min(1, lm/8)
	c := color.NRGBA{
		R: uint8(118 + 137*t),
		G: uint8(255 - 100*t),
		B: uint8(3 + 50*t),
	}
	alpha := .3 + .5*t
	c.A = to8(alpha)
	return c, alpha
}

// Landscape maps a potential to the terrain color: deep blue below zero,
// dark gray at zero, red-orange above.
func Landscape(v float64) color.NRGBA {
	vn := math.Max(-1, math.Min(1, v/1.5e5))
	var r, g, b float64
	if vn >= 0 {
		r = 60 + 195*vn
		g = 25 + 80*math.Sqrt(vn)*(1-vn*.5)
		b = 40 * (1 - vn)
	} else {
		t := -vn
		r = 20 * (1 - t)
		g = 40 * (1 - t*.7)
		b = 60 + 195*t
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: to8(.7)}
}

// Wireframe brightens a landscape quad color for its outline.
func Wireframe(c color.NRGBA) color.NRGBA {
	lift := func(v uint8) uint8 { return uint8(min(255, int(v)+40)) }
	return color.NRGBA{R: lift(c.R), G: lift(c.G), B: lift(c.B), A: to8(.25)}
}

// WithAlpha returns c with alpha replaced.
func WithAlpha(c colorful.Color, alpha float64) color.NRGBA { return NRGBA(c, alpha) }

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

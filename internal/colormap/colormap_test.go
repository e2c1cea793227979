package colormap

import (
	"image/color"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestRampEndpoints(t *testing.T) {
	for name, r := range map[string]Ramp{
		"positive":  PositivePotential,
		"negative":  NegativePotential,
		"magnitude": MagnitudeRamp,
		"energy":    EnergyRamp,
	} {
		if got := r.At(0); !got.AlmostEqualRgb(r.Colors[0]) {
			t.Errorf("%s: At(0) = %v, want %v", name, got, r.Colors[0])
		}
		last := r.Colors[len(r.Colors)-1]
		if got := r.At(1); !got.AlmostEqualRgb(last) {
			t.Errorf("%s: At(1) = %v, want %v", name, got, last)
		}
		if got := r.At(7); !got.AlmostEqualRgb(last) {
			t.Errorf("%s: At(7) not clamped: %v", name, got)
		}
	}
}

func TestRampMidpoint(t *testing.T) {
	r := Ramp{Pos: []float64{0, 1}, Colors: []colorful.Color{rgb(0, 0, 0), rgb(1, 1, 1)}}
	if got := r.At(.5); !got.AlmostEqualRgb(rgb(.5, .5, .5)) {
		t.Errorf("At(.5) = %v", got)
	}
}

func TestPotentialSign(t *testing.T) {
	warm := Potential(5e4, 1e5)
	cool := Potential(-5e4, 1e5)
	if warm.R <= warm.B {
		t.Errorf("positive potential should be warm: %v", warm)
	}
	if cool.B <= cool.R {
		t.Errorf("negative potential should be cool: %v", cool)
	}
	if !Potential(1e9, 1e5).AlmostEqualRgb(rgb(1, .85, .3)) {
		t.Error("potential above scale should saturate")
	}
}

func TestDirectionHue(t *testing.T) {
	// +x field sits half way round the hue circle.
	h, s, _ := Direction(1e6, 0).Hsv()
	if math.Abs(h-180) > 1 || math.Abs(s-.85) > 1e-6 {
		t.Errorf("hue=%g sat=%g, want 180 and .85", h, s)
	}
	if _, _, v := Direction(0, 0).Hsv(); v != 0 {
		t.Errorf("zero field should be black, value=%g", v)
	}
}

func TestMagnitudeMonotone(t *testing.T) {
	prev := -1.0
	for _, em := range []float64{0, 10, 1e3, 1e5, 1e7, 1e9} {
		tt := MagnitudeT(em)
		if tt < prev {
			t.Errorf("MagnitudeT not monotone at %g", em)
		}
		prev = tt
	}
}

func TestEnergyDensity(t *testing.T) {
	if got, want := EnergyDensity(1e3), .5*8.854e-12*1e6; math.Abs(got-want) > 1e-18 {
		t.Errorf("EnergyDensity = %g, want %g", got, want)
	}
	if Energy(0) != EnergyRamp.Colors[0] {
		t.Error("zero field should map to the first energy stop")
	}
}

func TestChromaticOffsetBounded(t *testing.T) {
	if ChromaticOffset(0) != 0 {
		t.Error("no offset without field")
	}
	if got := ChromaticOffset(1e12); got != .025 {
		t.Errorf("offset = %g, want cap .025", got)
	}
}

func TestArrowColor(t *testing.T) {
	c, a := Arrow(0)
	if c != (color.NRGBA{R: 118, G: 255, B: 3, A: 77}) || a != .3 {
		t.Errorf("weak arrow = %v alpha %g", c, a)
	}
	c, a = Arrow(1e9)
	if c.R != 255 || c.G != 155 || c.B != 53 || math.Abs(a-.8) > 1e-9 {
		t.Errorf("strong arrow = %v alpha %g", c, a)
	}
}

func TestEquipotentialAlpha(t *testing.T) {
	tests := []struct{ level, want float64 }{
		{0, .15},
		{1.5e5, .325},
		{-3e5, .5},
		{5e5, .5},
	}
	for _, tt := range tests {
		if got := EquipotentialAlpha(tt.level); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EquipotentialAlpha(%g) = %g, want %g", tt.level, got, tt.want)
		}
	}
}

func TestLandscapeColor(t *testing.T) {
	if got := Landscape(0); got != (color.NRGBA{R: 60, G: 25, B: 40, A: 179}) {
		t.Errorf("Landscape(0) = %v", got)
	}
	if got := Landscape(-1e9); got.B != 255 || got.R != 0 {
		t.Errorf("deep negative = %v", got)
	}
	if got := Landscape(1e9); got.R != 255 || got.B != 0 {
		t.Errorf("high positive = %v", got)
	}
	if w := Wireframe(color.NRGBA{R: 250, G: 10, B: 0}); w.R != 255 || w.G != 50 || w.B != 40 {
		t.Errorf("Wireframe = %v", w)
	}
}

func TestChargeColor(t *testing.T) {
	if ChargeColor(1) != PositiveCharge || ChargeColor(-1) != NegativeCharge {
		t.Error("charge colors swapped")
	}
	if got := NRGBA(PositiveCharge, 1); got != (color.NRGBA{R: 0, G: 229, B: 255, A: 255}) {
		t.Errorf("NRGBA = %v", got)
	}
}

package compute

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/view"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func manyCharges(n int) []core.Charge {
	cs := make([]core.Charge, n)
	for i := range cs {
		cs[i] = core.Charge{X: float64(i) * .1, Q: 1}
	}
	return cs
}

func TestPackerClampsAndLogsOnce(t *testing.T) {
	obs, logs := observer.New(zap.WarnLevel)
	p := NewPacker(64, zap.New(obs))
	if p.Limit() != MaxCharges {
		t.Fatalf("limit = %d, want %d", p.Limit(), MaxCharges)
	}
	tr := view.New(100, 100)
	for range 10 {
		u := p.Pack(core.HeatmapPotential, false, manyCharges(40), tr)
		if len(u.Charges) != MaxCharges {
			t.Fatalf("packed %d charges, want %d", len(u.Charges), MaxCharges)
		}
	}
	if n := logs.FilterMessage("heatmap charge count clamped").Len(); n != 1 {
		t.Errorf("clamp logged %d times, want 1", n)
	}
}

func TestPackerTierLimit(t *testing.T) {
	p := NewPacker(8, nil)
	u := p.Pack(core.HeatmapMagnitude, false, manyCharges(12), view.New(10, 10))
	if len(u.Charges) != 8 {
		t.Errorf("packed %d, want 8", len(u.Charges))
	}
	p.SetLimit(0)
	if p.Limit() != 1 {
		t.Errorf("limit floor = %d", p.Limit())
	}
}

func TestPackCopiesCharges(t *testing.T) {
	cs := manyCharges(2)
	u := NewPacker(MaxCharges, nil).Pack(core.HeatmapPotential, false, cs, view.New(10, 10))
	cs[0].Q = 99
	if u.Charges[0].Q != 1 {
		t.Error("uniforms alias the caller's slice")
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode      core.HeatmapMode
		chromatic bool
		want      core.HeatmapMode
	}{
		{core.HeatmapOff, false, core.HeatmapOff},
		{core.HeatmapOff, true, core.HeatmapChromatic},
		{core.HeatmapEnergy, true, core.HeatmapEnergy},
		{core.HeatmapDirection, false, core.HeatmapDirection},
	}
	for _, tt := range tests {
		if got := EffectiveMode(tt.mode, tt.chromatic); got != tt.want {
			t.Errorf("EffectiveMode(%v, %v) = %v, want %v", tt.mode, tt.chromatic, got, tt.want)
		}
	}
}

func TestVScale(t *testing.T) {
	if got := VScale(nil); got != 5e4 {
		t.Errorf("VScale(nil) = %g", got)
	}
	if got := VScale([]core.Charge{{Q: 4}, {Q: -2}}); got != 9e4 {
		t.Errorf("VScale = %g, want 9e4", got)
	}
}

func TestFlatten(t *testing.T) {
	u := Uniforms{Charges: []core.Charge{{X: 1, Y: 2, Q: 3}, {X: -1, Y: 0, Q: -2}}}
	want := []float32{1, 2, 3, -1, 0, -2}
	got := u.Flatten()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Flatten = %v, want %v", got, want)
		}
	}
}

func TestCPUEvaluatorEmptyIsTransparent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	img.Pix[3] = 255
	u := NewPacker(MaxCharges, nil).Pack(core.HeatmapPotential, false, nil, view.New(32, 32))
	if err := NewCPUEvaluator().Evaluate(context.Background(), img, &u); err != nil {
		t.Fatal(err)
	}
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("pixel byte %d = %d, want 0", i, v)
		}
	}
}

func TestCPUEvaluatorPotential(t *testing.T) {
	tr := view.New(64, 64)
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	charges := []core.Charge{{X: -.2, Q: 2}, {X: .2, Q: -2}}
	u := NewPacker(MaxCharges, nil).Pack(core.HeatmapPotential, false, charges, tr)
	if err := NewCPUEvaluator().Evaluate(context.Background(), img, &u); err != nil {
		t.Fatal(err)
	}
	at := func(x float64) image.Point {
		p := tr.WorldToScreen(r2.Vec{X: x})
		return image.Pt(int(p.X), int(p.Y))
	}
	lp, rp := at(-.2), at(.2)
	left := img.RGBAAt(lp.X, lp.Y)
	right := img.RGBAAt(rp.X, rp.Y)
	if left.A != 224 || right.A != 224 {
		t.Errorf("alpha = %d/%d, want 224", left.A, right.A)
	}
	if left.R <= left.B {
		t.Errorf("positive side should be warm: %v", left)
	}
	if right.B <= right.R {
		t.Errorf("negative side should be cool: %v", right)
	}
}

func TestShadeModesDiffer(t *testing.T) {
	charges := []core.Charge{{Q: 1}}
	p := r2.Vec{X: .3, Y: .1}
	seen := map[[3]uint8]core.HeatmapMode{}
	for m := core.HeatmapPotential; m <= core.HeatmapChromatic; m++ {
		u := Uniforms{Mode: m, Charges: charges, View: view.New(10, 10), VScale: VScale(charges)}
		c := Shade(&u, p)
		if c.A != 224 {
			t.Errorf("%v alpha = %d", m, c.A)
		}
		key := [3]uint8{c.R, c.G, c.B}
		if prev, dup := seen[key]; dup {
			t.Errorf("%v and %v produce the same color", prev, m)
		}
		seen[key] = m
	}
	off := Uniforms{Mode: core.HeatmapOff, Charges: charges}
	if Shade(&off, p).A != 0 {
		t.Error("off mode must be transparent")
	}
}

func TestShadeChromaticOverlay(t *testing.T) {
	charges := []core.Charge{{Q: 1}}
	p := r2.Vec{X: .3, Y: .1}
	plain := Uniforms{Mode: core.HeatmapMagnitude, Charges: charges}
	split := plain
	split.Chromatic = true
	if Shade(&plain, p) == Shade(&split, p) {
		t.Error("chromatic overlay had no effect")
	}
}

func TestCPUEvaluatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img := image.NewRGBA(image.Rect(0, 0, 16, 200))
	u := NewPacker(MaxCharges, nil).Pack(core.HeatmapMagnitude, false, manyCharges(3), view.New(16, 200))
	if err := NewCPUEvaluator().Evaluate(ctx, img, &u); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestGLEvaluatorUnavailableWithoutInit(t *testing.T) {
	g := NewGLEvaluator(nil)
	if g.Available() {
		t.Fatal("gl evaluator available before Init")
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	u := Uniforms{Mode: core.HeatmapPotential, Charges: manyCharges(1)}
	if err := g.Evaluate(context.Background(), img, &u); !errors.Is(err, core.ErrEvaluatorUnavailable) {
		t.Errorf("err = %v, want ErrEvaluatorUnavailable", err)
	}
	g.Cleanup()
}

func TestAutoSelectWithoutContext(t *testing.T) {
	ev := AutoSelect(false, nil)
	if ev.Name() != "cpu" || !ev.Available() {
		t.Errorf("AutoSelect(false) = %s", ev.Name())
	}
	ev.Cleanup()
}

func BenchmarkCPUEvaluator(b *testing.B) {
	tr := view.New(320, 180)
	img := image.NewRGBA(image.Rect(0, 0, 320, 180))
	u := NewPacker(MaxCharges, nil).Pack(core.HeatmapPotential, false, manyCharges(8), tr)
	ev := NewCPUEvaluator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ev.Evaluate(context.Background(), img, &u)
	}
}

package physics

import (
	"math"
	"testing"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCoulombForceSign(t *testing.T) {
	tests := []struct {
		name       string
		a, b       core.Charge
		attractive bool
	}{
		{"opposite", core.Charge{Q: 1}, core.Charge{X: 1, Q: -1}, true},
		{"like", core.Charge{Q: 1}, core.Charge{X: 1, Q: 2}, false},
	}
	for _, tt := range tests {
		f := CoulombForce(tt.a, tt.b)
		if (f < 0) != tt.attractive {
			t.Errorf("%s: force %g, attractive=%v", tt.name, f, tt.attractive)
		}
	}
	if f := CoulombForce(core.Charge{Q: 1}, core.Charge{X: 0.01, Q: 1}); f != 0 {
		t.Errorf("force inside MinRadius = %g, want 0", f)
	}
}

func TestPairForces(t *testing.T) {
	cs := []core.Charge{{Q: 1}, {X: 1, Q: -1}, {X: 0.01, Q: 1}}
	pairs := PairForces(cs)
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2 (one pair inside MinRadius)", len(pairs))
	}
	for _, p := range pairs {
		if !p.Attractive() {
			t.Errorf("pair %d-%d should attract", p.I, p.J)
		}
	}
}

func TestGaussFluxSingleCharge(t *testing.T) {
	cs := []core.Charge{{Q: 2}}
	const r = 0.5
	res := GaussFlux(r2.Vec{}, r, 200, cs)
	want := 2 * math.Pi * K * 2 * MicroCoulomb / r
	if !approx(res.Flux, want, 1e-9) {
		t.Errorf("flux = %g, want %g", res.Flux, want)
	}
	if res.Enclosed != 2 {
		t.Errorf("enclosed = %g, want 2", res.Enclosed)
	}

	outside := GaussFlux(r2.Vec{X: 3}, 0.5, 280, cs)
	if outside.Enclosed != 0 {
		t.Errorf("enclosed = %g, want 0", outside.Enclosed)
	}
	if math.Abs(outside.Flux) > 0.01*res.Flux {
		t.Errorf("flux of an external charge should nearly cancel, got %g", outside.Flux)
	}
}

func TestGaussVerified(t *testing.T) {
	if !(GaussResult{ErrorPct: 4.9}).Verified() {
		t.Error("4.9% should verify")
	}
	if (GaussResult{ErrorPct: 5}).Verified() {
		t.Error("5% should not verify")
	}
}

func TestWork(t *testing.T) {
	cs := []core.Charge{{Q: 1}}
	a, b := r2.Vec{X: 2}, r2.Vec{X: 1}
	res := Work(a, b, ProbeCharge, cs)
	want := ProbeCharge * (K*MicroCoulomb/1 - K*MicroCoulomb/2)
	if !approx(res.Work, want, 1e-12) {
		t.Errorf("work = %g, want %g", res.Work, want)
	}
	if res.DeltaV <= 0 {
		t.Errorf("moving toward a positive charge should raise potential, dV=%g", res.DeltaV)
	}
}

func TestCapacitor(t *testing.T) {
	var plates []core.Charge
	for i := -3; i <= 3; i++ {
		plates = append(plates,
			core.Charge{X: -1.5, Y: float64(i) * 0.35, Q: 1},
			core.Charge{X: 1.5, Y: float64(i) * 0.35, Q: -1})
	}
	res, ok := Capacitor(plates)
	if !ok {
		t.Fatal("expected capacitor detection")
	}
	if !approx(res.Separation, 3, 1e-12) {
		t.Errorf("separation = %g, want 3", res.Separation)
	}
	if res.DeltaV <= 0 || !approx(res.Field, res.DeltaV/3, 1e-12) {
		t.Errorf("inconsistent readout %+v", res)
	}

	if _, ok := Capacitor(dipole()); ok {
		t.Error("dipole should not be detected as a capacitor")
	}
}

func TestContributionsSumToField(t *testing.T) {
	cs := dipole()
	p := r2.Vec{X: 0.2, Y: 0.7}
	parts, total := Contributions(p, cs)
	if len(parts) != 2 {
		t.Fatalf("got %d parts", len(parts))
	}
	want := FieldAt(p, cs)
	if !approx(total.X, want.X, 1e-12) || !approx(total.Y, want.Y, 1e-12) {
		t.Errorf("resultant %v, want %v", total, want)
	}
}

func TestMirrorGroundsPlane(t *testing.T) {
	cs := []core.Charge{{ID: "a", X: 0.3, Y: 0.6, Q: 2}, {ID: "b", X: -0.5, Y: 1.1, Q: -1}}
	eff := Effective(cs, true)
	if len(eff) != 4 {
		t.Fatalf("got %d effective charges", len(eff))
	}
	for _, x := range []float64{-2, -0.4, 0, 0.3, 1.7} {
		if v := PotentialAt(r2.Vec{X: x}, eff); math.Abs(v) > 1e-6 {
			t.Errorf("V(%g, 0) = %g, want 0 on the grounded plane", x, v)
		}
	}
	if !IsMirror(eff[2]) || IsMirror(eff[0]) {
		t.Error("IsMirror misclassified charges")
	}
	if got := Effective(cs, false); len(got) != 2 {
		t.Errorf("mirror off should return the input, got %d", len(got))
	}
}

func TestFormatSI(t *testing.T) {
	tests := []struct {
		v    float64
		unit string
		want string
	}{
		{2.5e9, "V", "2.50 GV"},
		{-3.2e6, "N/C", "-3.20 MN/C"},
		{1500, "V", "1.50 kV"},
		{12.5, "J", "12.50 J"},
		{0.0042, "N", "4.20 mN"},
		{1.5e-5, "J", "1.50e-05 J"},
	}
	for _, tt := range tests {
		if got := FormatSI(tt.v, tt.unit); got != tt.want {
			t.Errorf("FormatSI(%g, %q) = %q, want %q", tt.v, tt.unit, got, tt.want)
		}
	}
}

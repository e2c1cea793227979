package fieldlines

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/view"
	"gonum.org/v1/gonum/spatial/r2"
)

var viewport = view.New(800, 600).WorldBounds()

func dipole() []core.Charge {
	return []core.Charge{{X: -0.8, Y: 0, Q: 2}, {X: 0.8, Y: 0, Q: -2}}
}

func TestTraceLeavesViewport(t *testing.T) {
	charges := []core.Charge{{Q: 1}}
	maxSteps := 600
	tr := NewTracer(charges, DefaultParams(viewport, maxSteps))
	res := tr.Trace(r2.Vec{X: physics.MinRadius}, 1)

	if res.Reason != OutOfBounds {
		t.Fatalf("reason = %v, want out-of-bounds", res.Reason)
	}
	if n := len(res.Path); n < 2 || n > maxSteps+1 {
		t.Errorf("path has %d points, want within [2, %d]", n, maxSteps+1)
	}
	last := res.Path[len(res.Path)-1]
	if last.Y != 0 {
		t.Errorf("radial line drifted off axis: %v", last)
	}
}

func TestTraceOutflowFromSource(t *testing.T) {
	charges := dipole()
	traces := TraceAll(charges, DefaultParams(viewport, 600), 16)
	if len(traces) == 0 {
		t.Fatal("no traces")
	}
	for i, tr := range traces {
		src := charges[tr.Source].Pos()
		if !Outflow(tr.Path, src, 3) {
			t.Errorf("trace %d: first points do not move away from the source", i)
		}
	}
}

func TestTraceAbsorbedBySink(t *testing.T) {
	charges := dipole()
	tr := NewTracer(charges, DefaultParams(viewport, 600))
	res := tr.Trace(r2.Vec{X: -0.8 + SeedRadius}, 1)

	if res.Reason != Absorbed {
		t.Fatalf("reason = %v, want absorbed", res.Reason)
	}
	end := res.Path[len(res.Path)-1]
	if d := r2.Norm(r2.Sub(end, charges[1].Pos())); d >= physics.AbsorbRadius {
		t.Errorf("final point %v is %g from the sink", end, d)
	}
}

func TestTraceNullField(t *testing.T) {
	charges := []core.Charge{{X: -1, Q: 1}, {X: 1, Q: 1}}
	tr := NewTracer(charges, DefaultParams(viewport, 100))
	res := tr.Trace(r2.Vec{}, 1)
	if res.Reason != NullField {
		t.Errorf("reason = %v, want null-field", res.Reason)
	}
	if len(res.Path) != 1 {
		t.Errorf("null field at the seed should emit only the seed, got %d points", len(res.Path))
	}
}

func TestTraceMaxSteps(t *testing.T) {
	tr := NewTracer([]core.Charge{{Q: 1}}, DefaultParams(viewport, 5))
	res := tr.Trace(r2.Vec{X: 0.5}, 1)
	if res.Reason != MaxSteps {
		t.Errorf("reason = %v, want max-steps", res.Reason)
	}
	if len(res.Path) != 6 {
		t.Errorf("path has %d points, want 6", len(res.Path))
	}
	for i := 1; i < len(res.Path); i++ {
		step := r2.Norm(r2.Sub(res.Path[i], res.Path[i-1]))
		if math.Abs(step-DefaultStepSize) > 1e-9 {
			t.Errorf("step %d has length %g, want %g", i, step, DefaultStepSize)
		}
	}
}

func TestTraceBackward(t *testing.T) {
	tr := NewTracer([]core.Charge{{Q: -1}}, DefaultParams(viewport, 600))
	res := tr.Trace(r2.Vec{Y: SeedRadius}, -1)
	if !Outflow(res.Path, r2.Vec{}, 3) {
		t.Error("backward trace around a negative charge should move outward")
	}
}

func TestTraceLineMatchesTracer(t *testing.T) {
	charges := dipole()
	seed := r2.Vec{X: -0.8, Y: SeedRadius}
	bounds := viewport.Expand(BoundsMargin)
	got := TraceLine(seed, 1, charges, 300, DefaultStepSize, bounds)
	want := NewTracer(charges, DefaultParams(viewport, 300)).Trace(seed, 1).Path
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TraceLine mismatch (-want +got):\n%s", diff)
	}
}

func TestStepBudget(t *testing.T) {
	tests := []struct {
		steps, quality, want int
	}{
		{800, 0, 420},
		{600, 1, 420},
		{380, 1, 380},
		{600, 2, 600},
		{800, 3, 800},
	}
	for _, tt := range tests {
		if got := StepBudget(tt.steps, tt.quality); got != tt.want {
			t.Errorf("StepBudget(%d, %d) = %d, want %d", tt.steps, tt.quality, got, tt.want)
		}
	}
}

func BenchmarkTraceAllDipole(b *testing.B) {
	charges := dipole()
	p := DefaultParams(viewport, 600)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = TraceAll(charges, p, 16)
	}
}

package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestUnitRing(t *testing.T) {
	for _, n := range []int{1, 4, 7, 60} {
		ring := UnitRing(n)
		if len(ring) != n {
			t.Fatalf("n=%d: got %d points", n, len(ring))
		}
		sum := r2.Vec{}
		for _, d := range ring {
			if math.Abs(r2.Norm(d)-1) > 1e-12 {
				t.Errorf("n=%d: non-unit direction %v", n, d)
			}
			sum = r2.Add(sum, d)
		}
		if n > 1 && r2.Norm(sum) > 1e-9 {
			t.Errorf("n=%d: ring not balanced, sum=%v", n, sum)
		}
	}
	if UnitRing(0) != nil {
		t.Error("expected nil ring for n=0")
	}
}

func TestRingPoints(t *testing.T) {
	c := r2.Vec{X: 1, Y: -2}
	for _, p := range RingPoints(c, 0.09, 8) {
		if d := r2.Norm(r2.Sub(p, c)); math.Abs(d-0.09) > 1e-12 {
			t.Errorf("point %v at distance %f, want 0.09", p, d)
		}
	}
}

func TestParallelRowsCoversRange(t *testing.T) {
	tests := []struct {
		n, minChunk int
	}{
		{0, 4},
		{1, 4},
		{17, 4},
		{1000, 16},
	}
	for _, tt := range tests {
		seen := make([]int32, tt.n)
		err := ParallelRows(context.Background(), tt.n, tt.minChunk, func(_ context.Context, s, e int) error {
			for i := s; i < e; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("n=%d: unexpected error %v", tt.n, err)
		}
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", tt.n, i, c)
			}
		}
	}
}

func TestParallelRowsError(t *testing.T) {
	boom := errors.New("boom")
	err := ParallelRows(context.Background(), 400, 10, func(_ context.Context, s, e int) error {
		if s == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestFrameErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("hook: %w", &FrameError{Frame: 9, Stage: "bloom", Wrapped: ErrShaderLink})
	if !errors.Is(err, ErrShaderLink) {
		t.Error("expected errors.Is to see through FrameError")
	}
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Stage != "bloom" {
		t.Errorf("expected FrameError with stage bloom, got %v", fe)
	}
}

func TestParseHeatmapMode(t *testing.T) {
	tests := []struct {
		in      string
		want    HeatmapMode
		wantErr bool
	}{
		{"potential", HeatmapPotential, false},
		{"Energy", HeatmapEnergy, false},
		{"3", HeatmapDirection, false},
		{"off", HeatmapOff, false},
		{"plasma", HeatmapOff, true},
	}
	for _, tt := range tests {
		got, err := ParseHeatmapMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestChargeHelpers(t *testing.T) {
	cs := []Charge{{X: 0, Y: 0, Q: 2}, {X: 1, Y: 0, Q: -3}}
	if got := TotalCharge(cs); got != -1 {
		t.Errorf("TotalCharge = %f, want -1", got)
	}
	if got := TotalAbsCharge(cs); got != 5 {
		t.Errorf("TotalAbsCharge = %f, want 5", got)
	}
	clone := CloneCharges(cs)
	clone[0].Q = 9
	if cs[0].Q != 2 {
		t.Error("CloneCharges shares backing array")
	}
	p := Path{{X: 0, Y: 0}, {X: 3, Y: 4}}
	if p.Len() != 5 {
		t.Errorf("Path.Len = %f, want 5", p.Len())
	}
}

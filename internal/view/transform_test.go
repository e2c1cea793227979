package view

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestRoundTrip(t *testing.T) {
	transforms := []Transform{
		New(800, 600),
		{Width: 1280, Height: 720, Zoom: 2.5, Pan: r2.Vec{X: 40, Y: -13}, PixelsPerUnit: 100},
		{Width: 300, Height: 900, Zoom: 0.3, Pan: r2.Vec{X: -200, Y: 55}},
	}
	points := []r2.Vec{{}, {X: 1.5, Y: -2}, {X: -7, Y: 3.25}}
	approx := cmpopts.EquateApprox(0, 1e-9)

	for _, tr := range transforms {
		for _, w := range points {
			back := tr.ScreenToWorld(tr.WorldToScreen(w))
			if diff := cmp.Diff(w, back, approx); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		}
	}
}

func TestOriginAndAxes(t *testing.T) {
	tr := New(800, 600)
	if got := tr.WorldToScreen(r2.Vec{}); got != (r2.Vec{X: 400, Y: 300}) {
		t.Errorf("origin maps to %v", got)
	}
	up := tr.WorldToScreen(r2.Vec{Y: 1})
	if up.Y >= 300 {
		t.Errorf("world +y should move up the screen, got %v", up)
	}
	if right := tr.WorldToScreen(r2.Vec{X: 1}); right.X != 500 {
		t.Errorf("one unit right should be 100px, got %v", right)
	}
}

func TestWorldBounds(t *testing.T) {
	b := Transform{Width: 800, Height: 600, Zoom: 2, Pan: r2.Vec{X: 99}}.WorldBounds()
	want := Rect{-2, -1.5, 2, 1.5}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
	if !b.Expand(2).Contains(r2.Vec{X: 3.9}) {
		t.Error("expanded bounds should contain x=3.9")
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	tr := New(800, 600)
	anchor := r2.Vec{X: 620, Y: 140}
	before := tr.ScreenToWorld(anchor)
	z := tr.ZoomAt(anchor, 1.5, 0.2, 5)
	after := z.ScreenToWorld(anchor)
	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Errorf("anchor drifted from %v to %v", before, after)
	}
	if z.Zoom != 1.5 {
		t.Errorf("zoom = %g, want 1.5", z.Zoom)
	}
	if clamped := tr.ZoomAt(anchor, 100, 0.2, 5); clamped.Zoom != 5 {
		t.Errorf("zoom should clamp to 5, got %g", clamped.Zoom)
	}
}

func TestGridOffset(t *testing.T) {
	tests := []struct{ origin, step, want float64 }{
		{400, 100, 0},
		{430, 100, 30},
		{-30, 100, 70},
	}
	for _, tt := range tests {
		if got := GridOffset(tt.origin, tt.step); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("GridOffset(%g, %g) = %g, want %g", tt.origin, tt.step, got, tt.want)
		}
	}
}

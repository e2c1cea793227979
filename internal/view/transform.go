// Package view maps between world coordinates (y up, one unit per
// PixelsPerUnit pixels at zoom 1) and screen pixels (y down, origin top-left).
package view

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultPixelsPerUnit matches the screen scale of the physics constants.
const DefaultPixelsPerUnit = 100.0

// Rect is an axis-aligned box in world units.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Contains(p r2.Vec) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Expand grows the box by m on every side.
func (r Rect) Expand(m float64) Rect {
	return Rect{r.MinX - m, r.MinY - m, r.MaxX + m, r.MaxY + m}
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Transform is a pure pan/zoom mapping for a viewport of Width x Height
// pixels. Pan is in pixels and moves the world origin away from the centre.
type Transform struct {
	Width, Height int
	Pan           r2.Vec
	Zoom          float64
	PixelsPerUnit float64
}

func New(width, height int) Transform {
	return Transform{Width: width, Height: height, Zoom: 1, PixelsPerUnit: DefaultPixelsPerUnit}
}

// Scale is the number of pixels per world unit at the current zoom.
func (t Transform) Scale() float64 {
	ppu := t.PixelsPerUnit
	if ppu == 0 {
		ppu = DefaultPixelsPerUnit
	}
	z := t.Zoom
	if z == 0 {
		z = 1
	}
	return ppu * z
}

// Center is the screen position of the world origin.
func (t Transform) Center() r2.Vec {
	return r2.Vec{X: float64(t.Width)/2 + t.Pan.X, Y: float64(t.Height)/2 + t.Pan.Y}
}

func (t Transform) WorldToScreen(w r2.Vec) r2.Vec {
	c, s := t.Center(), t.Scale()
	return r2.Vec{X: c.X + w.X*s, Y: c.Y - w.Y*s}
}

func (t Transform) ScreenToWorld(p r2.Vec) r2.Vec {
	c, s := t.Center(), t.Scale()
	return r2.Vec{X: (p.X - c.X) / s, Y: (c.Y - p.Y) / s}
}

// WorldBounds is the visible region in world units, centred on the origin
// and ignoring pan, which is how the tracer and particle system bound their
// integration.
func (t Transform) WorldBounds() Rect {
	s := t.Scale()
	hw, hh := float64(t.Width)/(2*s), float64(t.Height)/(2*s)
	return Rect{-hw, -hh, hw, hh}
}

// VisibleRect is the world box actually covered by the screen, pan included.
func (t Transform) VisibleRect() Rect {
	a := t.ScreenToWorld(r2.Vec{X: 0, Y: float64(t.Height)})
	b := t.ScreenToWorld(r2.Vec{X: float64(t.Width), Y: 0})
	return Rect{a.X, a.Y, b.X, b.Y}
}

// ZoomAt changes zoom by factor keeping the world point under screen
// position anchor fixed. Zoom is clamped to [min, max].
func (t Transform) ZoomAt(anchor r2.Vec, factor, min, max float64) Transform {
	w := t.ScreenToWorld(anchor)
	t.Zoom = math.Max(min, math.Min(max, t.Scale()/t.pixelsPerUnit()*factor))
	moved := t.WorldToScreen(w)
	t.Pan = r2.Add(t.Pan, r2.Sub(anchor, moved))
	return t
}

func (t Transform) pixelsPerUnit() float64 {
	if t.PixelsPerUnit == 0 {
		return DefaultPixelsPerUnit
	}
	return t.PixelsPerUnit
}

// GridOffset returns the first grid line position (pixels) along one axis for
// lines spaced every step pixels through origin.
func GridOffset(origin, step float64) float64 {
	return math.Mod(math.Mod(origin, step)+step, step)
}

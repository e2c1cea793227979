package raster

import (
	"math"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/view"
	"gonum.org/v1/gonum/spatial/r2"
)

// LandscapeSpan is the half-width of the mesh in world units.
const LandscapeSpan = 3.5

// LandscapeResolution is the mesh size per side for a quality tier.
func LandscapeResolution(quality int) int {
	if quality >= 2 {
		return 50
	}
	return 30
}

// LandscapeHeight log-compresses a potential into a signed terrain height
// bounded by ±1.5.
func LandscapeHeight(v float64) float64 {
	h := math.Min(1.5, math.Log(math.Abs(v/5e3)+1)*.4)
	if v < 0 {
		return -h
	}
	return h
}

// Iso projects world point w at height h into the isometric view. The view
// center sits at 55% of the viewport height.
type Iso struct {
	center r2.Vec
	scale  float64
}

func NewIso(t view.Transform) Iso {
	z := t.Zoom
	if z == 0 {
		z = 1
	}
	return Iso{
		center: r2.Vec{X: float64(t.Width)/2 + t.Pan.X, Y: float64(t.Height)*.55 + t.Pan.Y},
		scale:  float64(t.Width) / 12 * z,
	}
}

func (p Iso) Project(w r2.Vec, h float64) r2.Vec {
	return r2.Vec{
		X: p.center.X + (w.X-w.Y)*p.scale*.87,
		Y: p.center.Y + (w.X+w.Y)*p.scale*.5 - h*p.scale*3,
	}
}

// Vertex is one mesh node.
type Vertex struct {
	World  r2.Vec
	V      float64
	Height float64
	Screen r2.Vec
}

// Landscape is an (N+1)×(N+1) mesh of the potential surface.
type Landscape struct {
	N     int
	Verts []Vertex
	Iso   Iso
}

func (l *Landscape) At(i, j int) Vertex { return l.Verts[i*(l.N+1)+j] }

// Quad is a mesh cell with its average potential.
type Quad struct {
	Corners [4]r2.Vec
	V       float64
}

// Quads returns the cells in painter's order, farthest first.
func (l *Landscape) Quads() []Quad {
	out := make([]Quad, 0, l.N*l.N)
	for i := 0; i < l.N; i++ {
		for j := 0; j < l.N; j++ {
			a, b, c, d := l.At(i, j), l.At(i+1, j), l.At(i+1, j+1), l.At(i, j+1)
			out = append(out, Quad{
				Corners: [4]r2.Vec{a.Screen, b.Screen, c.Screen, d.Screen},
				V:       (a.V + b.V + c.V + d.V) / 4,
			})
		}
	}
	return out
}

// BuildLandscape samples V over a fixed ±LandscapeSpan square around the
// origin; pan and zoom only move the projection.
func BuildLandscape(t view.Transform, quality int, charges []core.Charge) *Landscape {
	n := LandscapeResolution(quality)
	l := &Landscape{N: n, Verts: make([]Vertex, (n+1)*(n+1)), Iso: NewIso(t)}
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			w := r2.Vec{
				X: (float64(i)/float64(n) - .5) * LandscapeSpan * 2,
				Y: (float64(j)/float64(n) - .5) * LandscapeSpan * 2,
			}
			v := physics.PotentialAt(w, charges)
			h := LandscapeHeight(v)
			l.Verts[i*(n+1)+j] = Vertex{World: w, V: v, Height: h, Screen: l.Iso.Project(w, h)}
		}
	}
	return l
}

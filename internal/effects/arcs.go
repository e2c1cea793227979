// Package effects holds the cosmetic passes layered over the field: electric
// arcs between nearby opposite charges and the bloom post-process.
package effects

import (
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/surface"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

const (
	// ArcRange is the largest charge separation, in world units, that arcs.
	ArcRange = 3.0
	// ArcFalloff scales the jitter at each subdivision level.
	ArcFalloff = 0.55

	arcMinJitter = 10.0 // px
	arcMaxJitter = 40.0 // px
	arcMinSpan   = 1.0  // px

	noiseAlpha = 2.0
	noiseBeta  = 2.0
	noiseN     = 3
)

// Arc is one jagged polyline in screen space. Intensity fades with
// separation.
type Arc struct {
	Points    []r2.Vec
	Intensity float64
}

// Arcs regenerates the bolt set every few frames. Jitter comes from Perlin
// noise sampled along a slowly advancing time axis so successive bolts
// between the same pair stay related instead of flickering randomly.
type Arcs struct {
	noise *perlin.Perlin
	arcs  []Arc
	tick  uint64
	gen   int
}

func NewArcs(seed int64) *Arcs {
	return &Arcs{noise: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseN, seed)}
}

func (a *Arcs) Arcs() []Arc { return a.arcs }

// Clear drops the cached bolts, used when the effect is switched off.
func (a *Arcs) Clear() { a.arcs = a.arcs[:0] }

// Update counts a frame and regenerates every freq frames. It reports
// whether the bolt set changed.
func (a *Arcs) Update(charges []core.Charge, t view.Transform, depth, freq int) bool {
	a.tick++
	if freq < 1 {
		freq = 1
	}
	if a.tick%uint64(freq) != 0 {
		return false
	}
	a.Regenerate(charges, t, depth)
	return true
}

// Regenerate rebuilds bolts between every opposite-sign pair closer than
// ArcRange.
func (a *Arcs) Regenerate(charges []core.Charge, t view.Transform, depth int) {
	a.gen++
	a.arcs = a.arcs[:0]
	pair := 0
	for i := 0; i < len(charges); i++ {
		for j := i + 1; j < len(charges); j++ {
			ci, cj := charges[i], charges[j]
			if ci.Q*cj.Q >= 0 {
				continue
			}
			d := math.Hypot(ci.X-cj.X, ci.Y-cj.Y)
			if d > ArcRange {
				continue
			}
			pair++
			jitter := math.Max(arcMinJitter, arcMaxJitter*(1-d/ArcRange))
			g := boltGen{noise: a.noise, time: float64(a.gen) * 0.21, lane: float64(pair) * 3.7}
			pts := g.bolt(t.WorldToScreen(ci.Pos()), t.WorldToScreen(cj.Pos()), jitter, depth)
			a.arcs = append(a.arcs, Arc{Points: pts, Intensity: 1 - d/ArcRange})
		}
	}
}

type boltGen struct {
	noise *perlin.Perlin
	time  float64
	lane  float64
	node  float64
}

func (g *boltGen) next() float64 {
	g.node++
	return g.noise.Noise2D(g.time+g.lane, g.node*0.61)
}

// bolt is recursive midpoint displacement: the midpoint moves by up to d in
// each axis and both halves recurse with d·ArcFalloff.
func (g *boltGen) bolt(a, b r2.Vec, d float64, depth int) []r2.Vec {
	if depth <= 0 || d < arcMinSpan {
		return []r2.Vec{a, b}
	}
	m := r2.Vec{
		X: (a.X+b.X)/2 + g.next()*d,
		Y: (a.Y+b.Y)/2 + g.next()*d,
	}
	l := g.bolt(a, m, d*ArcFalloff, depth-1)
	r := g.bolt(m, b, d*ArcFalloff, depth-1)
	return append(l[:len(l)-1], r...)
}

var arcPasses = [...]struct {
	width, alpha float64
	rgb          [3]uint8
}{
	{6, .08, [3]uint8{100, 200, 255}},
	{1.5, .35, [3]uint8{180, 230, 255}},
	{.5, .5, [3]uint8{255, 255, 255}},
}

// PaintArcs strokes each bolt as a wide halo, a tinted body and a white core.
func PaintArcs(s *surface.Surface, arcs []Arc) {
	for _, a := range arcs {
		if len(a.Points) < 2 {
			continue
		}
		for _, p := range arcPasses {
			c := color.NRGBA{p.rgb[0], p.rgb[1], p.rgb[2], uint8(math.Round(255 * p.alpha * a.Intensity))}
			s.StrokePolyline(a.Points, p.width, c)
		}
	}
}

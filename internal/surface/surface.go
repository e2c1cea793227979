// Package surface is an offscreen RGBA drawing target with the handful of
// vector primitives the field layers need. Coordinates are in pixels.
package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/semo00000/champ-electrostatique/internal/colormap"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// polylineChunk bounds how many segments share one rasterizer pass.
const polylineChunk = 48

type Surface struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

func New(w, h int) *Surface {
	return &Surface{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		z:   vector.NewRasterizer(1, 1),
	}
}

func (s *Surface) Image() *image.RGBA { return s.img }
func (s *Surface) Width() int         { return s.img.Rect.Dx() }
func (s *Surface) Height() int        { return s.img.Rect.Dy() }

// Resize reallocates the backing image when the size changed. Contents are
// cleared either way.
func (s *Surface) Resize(w, h int) {
	if s.img.Rect.Dx() != w || s.img.Rect.Dy() != h {
		s.img = image.NewRGBA(image.Rect(0, 0, w, h))
		return
	}
	s.Clear()
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

func (s *Surface) Fill(c color.Color) {
	draw.Draw(s.img, s.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// FillPolygon fills a closed polygon with the nonzero rule.
func (s *Surface) FillPolygon(pts []r2.Vec, c color.Color) {
	if len(pts) < 3 {
		return
	}
	s.fill([][]r2.Vec{pts}, c)
}

// StrokeLine draws a segment of the given width.
func (s *Surface) StrokeLine(a, b r2.Vec, width float64, c color.Color) {
	if q, ok := segmentQuad(a, b, width); ok {
		s.fill([][]r2.Vec{q}, c)
	}
}

// StrokePolyline draws connected segments. Overlapping joints inside a chunk
// are covered once.
func (s *Surface) StrokePolyline(pts []r2.Vec, width float64, c color.Color) {
	if len(pts) < 2 {
		return
	}
	rings := make([][]r2.Vec, 0, polylineChunk)
	for i := 1; i < len(pts); i++ {
		if q, ok := segmentQuad(pts[i-1], pts[i], width); ok {
			rings = append(rings, q)
		}
		if len(rings) == polylineChunk {
			s.fill(rings, c)
			rings = rings[:0]
		}
	}
	if len(rings) > 0 {
		s.fill(rings, c)
	}
}

// StrokeDashed draws pts as a dashed line. offset shifts the dash pattern
// along the path, which animates the dashes when advanced per frame.
func (s *Surface) StrokeDashed(pts []r2.Vec, dash, gap, offset, width float64, c color.Color) {
	period := dash + gap
	if len(pts) < 2 || dash <= 0 || period <= 0 {
		return
	}
	pos := math.Mod(offset, period)
	if pos < 0 {
		pos += period
	}
	var rings [][]r2.Vec
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := r2.Norm(r2.Sub(b, a))
		if seg == 0 {
			continue
		}
		dir := r2.Scale(1/seg, r2.Sub(b, a))
		for t := 0.0; t < seg; {
			if pos < dash {
				run := math.Min(dash-pos, seg-t)
				p0 := r2.Add(a, r2.Scale(t, dir))
				p1 := r2.Add(a, r2.Scale(t+run, dir))
				if q, ok := segmentQuad(p0, p1, width); ok {
					rings = append(rings, q)
				}
				t += run
				pos += run
			} else {
				run := math.Min(period-pos, seg-t)
				t += run
				pos += run
			}
			if pos >= period {
				pos -= period
			}
		}
	}
	for len(rings) > 0 {
		n := min(len(rings), polylineChunk)
		s.fill(rings[:n], c)
		rings = rings[n:]
	}
}

// FillCircle fills a disc.
func (s *Surface) FillCircle(center r2.Vec, r float64, c color.Color) {
	if r <= 0 {
		return
	}
	s.fill([][]r2.Vec{core.RingPoints(center, r, circleSegments(r))}, c)
}

// StrokeCircle draws an annulus of the given width centered on radius r.
func (s *Surface) StrokeCircle(center r2.Vec, r, width float64, c color.Color) {
	if r <= 0 || width <= 0 {
		return
	}
	n := circleSegments(r + width/2)
	outer := core.RingPoints(center, r+width/2, n)
	inner := core.RingPoints(center, math.Max(0, r-width/2), n)
	for i, j := 0, len(inner)-1; i < j; i, j = i+1, j-1 {
		inner[i], inner[j] = inner[j], inner[i]
	}
	s.fill([][]r2.Vec{outer, inner}, c)
}

// StrokeDashedCircle draws a dashed ring, the marker style of tools and
// selections.
func (s *Surface) StrokeDashedCircle(center r2.Vec, r, dash, gap, offset, width float64, c color.Color) {
	if r <= 0 {
		return
	}
	pts := core.RingPoints(center, r, circleSegments(r))
	pts = append(pts, pts[0])
	s.StrokeDashed(pts, dash, gap, offset, width, c)
}

// ArrowHead fills a triangle pointing along angle with its tip size pixels
// ahead of at.
func (s *Surface) ArrowHead(at r2.Vec, angle, size float64, c color.Color) {
	sin, cos := math.Sincos(angle)
	local := func(x, y float64) r2.Vec {
		return r2.Vec{X: at.X + x*cos - y*sin, Y: at.Y + x*sin + y*cos}
	}
	s.fill([][]r2.Vec{{
		local(size, 0),
		local(-size*.5, -size*.5),
		local(-size*.5, size*.5),
	}}, c)
}

// Arrow draws a shaft from a to b with a head of the given size at b.
func (s *Surface) Arrow(a, b r2.Vec, width, head float64, c color.Color) {
	d := r2.Sub(b, a)
	l := r2.Norm(d)
	if l < 1e-9 {
		return
	}
	angle := math.Atan2(d.Y, d.X)
	shaftEnd := r2.Add(a, r2.Scale(math.Max(0, l-head)/l, d))
	s.StrokeLine(a, shaftEnd, width, c)
	s.ArrowHead(r2.Sub(b, r2.Scale(head/l, d)), angle, head, c)
}

// DrawText writes txt with its baseline at (x, y) in the 7x13 bitmap face.
func (s *Surface) DrawText(x, y int, txt string, c color.Color) {
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(txt)
}

// TextWidth is the advance of txt in pixels.
func TextWidth(txt string) int {
	return font.MeasureString(basicfont.Face7x13, txt).Ceil()
}

func (s *Surface) fill(rings [][]r2.Vec, c color.Color) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, ring := range rings {
		for _, p := range ring {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1).Intersect(s.img.Rect)
	if box.Empty() {
		return
	}
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	s.z.Reset(box.Dx(), box.Dy())
	for _, ring := range rings {
		s.z.MoveTo(float32(ring[0].X-ox), float32(ring[0].Y-oy))
		for _, p := range ring[1:] {
			s.z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		s.z.ClosePath()
	}
	s.z.Draw(s.img, box, image.NewUniform(c), image.Point{})
}

func segmentQuad(a, b r2.Vec, width float64) ([]r2.Vec, bool) {
	d := r2.Sub(b, a)
	l := r2.Norm(d)
	if l < 1e-9 || width <= 0 {
		return nil, false
	}
	n := r2.Scale(width/(2*l), r2.Vec{X: -d.Y, Y: d.X})
	return []r2.Vec{r2.Add(a, n), r2.Add(b, n), r2.Sub(b, n), r2.Sub(a, n)}, true
}

func circleSegments(r float64) int {
	return max(12, min(96, int(r*1.5)))
}

// Glow approximates a radial gradient from peak alpha at the center to zero
// at r with stacked translucent discs.
func (s *Surface) Glow(center r2.Vec, r float64, c colorful.Color, peak float64) {
	const rings = 6
	for i := rings; i >= 1; i-- {
		s.FillCircle(center, r*float64(i)/rings, colormap.NRGBA(c, peak/rings))
	}
}

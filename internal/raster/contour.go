package raster

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is one contour piece in pixel coordinates.
type Segment struct {
	A, B r2.Vec
}

// Contour is every segment extracted for one level.
type Contour struct {
	Level    float64
	Segments []Segment
}

var (
	levelsOnce sync.Once
	levels     []float64
)

// Levels returns the contour values in volts: coarse steps of 25 kV over
// ±500 kV followed by fine steps of 5 kV over ±20 kV, skipping levels near
// zero. The slice is shared and must not be modified.
func Levels() []float64 {
	levelsOnce.Do(func() {
		for k := -20; k <= 20; k++ {
			if v := float64(k) * 2.5e4; v < -1e3 || v > 1e3 {
				levels = append(levels, v)
			}
		}
		for k := -4; k <= 4; k++ {
			if v := float64(k) * 5e3; v < -500 || v > 500 {
				levels = append(levels, v)
			}
		}
	})
	return levels
}

const (
	cornerTL = 8
	cornerTR = 4
	cornerBR = 2
	cornerBL = 1
)

// MarchingSquares extracts the iso-line of g at level. Each cell classifies
// its corners (TL=8, TR=4, BR=2, BL=1 when above the level) and connects the
// interpolated crossings on its bisected edges. Saddle cells are resolved by
// the cell-center average.
func MarchingSquares(g *ScalarGrid, level float64) []Segment {
	var segs []Segment
	for j := 0; j < g.Rows; j++ {
		y0, y1 := float64(j)*g.Cell, float64(j+1)*g.Cell
		for i := 0; i < g.Cols; i++ {
			v0 := g.At(i, j) - level
			v1 := g.At(i+1, j) - level
			v2 := g.At(i+1, j+1) - level
			v3 := g.At(i, j+1) - level

			code := 0
			if v0 > 0 {
				code |= cornerTL
			}
			if v1 > 0 {
				code |= cornerTR
			}
			if v2 > 0 {
				code |= cornerBR
			}
			if v3 > 0 {
				code |= cornerBL
			}
			if code == 0 || code == 15 {
				continue
			}

			x0, x1 := float64(i)*g.Cell, float64(i+1)*g.Cell
			top := r2.Vec{X: x0 + (x1-x0)*(-v0/(v1-v0)), Y: y0}
			right := r2.Vec{X: x1, Y: y0 + (y1-y0)*(-v1/(v2-v1))}
			bottom := r2.Vec{X: x0 + (x1-x0)*(-v3/(v2-v3)), Y: y1}
			left := r2.Vec{X: x0, Y: y0 + (y1-y0)*(-v0/(v3-v0))}

			switch code {
			case 5, 10:
				center := (v0+v1+v2+v3)/4 > 0
				if (code == 10) == center {
					segs = append(segs, Segment{top, right}, Segment{bottom, left})
				} else {
					segs = append(segs, Segment{top, left}, Segment{right, bottom})
				}
				continue
			}

			var pts [2]r2.Vec
			n := 0
			add := func(p r2.Vec) {
				if n < 2 {
					pts[n] = p
					n++
				}
			}
			if m := code & (cornerTL | cornerTR); m != 0 && m != cornerTL|cornerTR {
				add(top)
			}
			if m := code & (cornerTR | cornerBR); m != 0 && m != cornerTR|cornerBR {
				add(right)
			}
			if m := code & (cornerBR | cornerBL); m != 0 && m != cornerBR|cornerBL {
				add(bottom)
			}
			if m := code & (cornerTL | cornerBL); m != 0 && m != cornerTL|cornerBL {
				add(left)
			}
			if n == 2 {
				segs = append(segs, Segment{pts[0], pts[1]})
			}
		}
	}
	return segs
}

// Equipotentials runs MarchingSquares for every level and keeps the non-empty
// contours.
func Equipotentials(g *ScalarGrid, levels []float64) []Contour {
	var out []Contour
	for _, lv := range levels {
		if segs := MarchingSquares(g, lv); len(segs) > 0 {
			out = append(out, Contour{Level: lv, Segments: segs})
		}
	}
	return out
}

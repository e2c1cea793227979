// Package raster builds the CPU-side field layers: equipotential contours by
// marching squares, the arrow grid and the isometric potential landscape.
package raster

import (
	"math"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/view"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	FineCell   = 12.0
	CoarseCell = 20.0
)

// CellSize is the equipotential grid spacing in pixels for a quality tier.
func CellSize(quality int) float64 {
	if quality >= 2 {
		return FineCell
	}
	return CoarseCell
}

// ScalarGrid holds values at the (Cols+1)×(Rows+1) corners of a screen-space
// grid with square cells of Cell pixels. Row j is at y = j·Cell.
type ScalarGrid struct {
	Cols, Rows int
	Cell       float64
	Values     []float64
}

func NewScalarGrid(cols, rows int, cell float64) *ScalarGrid {
	return &ScalarGrid{
		Cols:   cols,
		Rows:   rows,
		Cell:   cell,
		Values: make([]float64, (cols+1)*(rows+1)),
	}
}

func (g *ScalarGrid) At(i, j int) float64     { return g.Values[j*(g.Cols+1)+i] }
func (g *ScalarGrid) Set(i, j int, v float64) { g.Values[j*(g.Cols+1)+i] = v }

// Corner is the screen position of grid corner (i, j).
func (g *ScalarGrid) Corner(i, j int) r2.Vec {
	return r2.Vec{X: float64(i) * g.Cell, Y: float64(j) * g.Cell}
}

// SampleFunc fills a grid covering a w×h pixel viewport with f evaluated at
// each corner.
func SampleFunc(w, h int, cell float64, f func(px r2.Vec) float64) *ScalarGrid {
	cols := int(math.Ceil(float64(w) / cell))
	rows := int(math.Ceil(float64(h) / cell))
	g := NewScalarGrid(cols, rows, cell)
	for j := 0; j <= rows; j++ {
		for i := 0; i <= cols; i++ {
			g.Set(i, j, f(g.Corner(i, j)))
		}
	}
	return g
}

// SamplePotential evaluates V at every grid corner of the viewport.
func SamplePotential(t view.Transform, cell float64, charges []core.Charge) *ScalarGrid {
	return SampleFunc(t.Width, t.Height, cell, func(px r2.Vec) float64 {
		return physics.PotentialAt(t.ScreenToWorld(px), charges)
	})
}

// Package export samples the field of a charge set and writes the results
// as CSV, JSON, SVG or PNG.
package export

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

// LineSamples is the default resolution of a line profile.
const LineSamples = 80

// Row is the field state at one sample point. Distance is measured along
// the sampled line and is zero for grid samples.
type Row struct {
	Distance  float64 `json:"distance"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Potential float64 `json:"potential"`
	Ex        float64 `json:"ex"`
	Ey        float64 `json:"ey"`
	Magnitude float64 `json:"magnitude"`
}

func row(p r2.Vec, d float64, charges []core.Charge) Row {
	s := physics.SampleAt(p, charges)
	return Row{
		Distance:  d,
		X:         p.X,
		Y:         p.Y,
		Potential: s.Potential,
		Ex:        s.Field.X,
		Ey:        s.Field.Y,
		Magnitude: s.Magnitude,
	}
}

// SampleLine samples n evenly spaced points from a to b inclusive.
func SampleLine(a, b r2.Vec, n int, charges []core.Charge) ([]Row, error) {
	if n < 2 {
		return nil, fmt.Errorf("line needs at least 2 samples, got %d", n)
	}
	xs := floats.Span(make([]float64, n), a.X, b.X)
	ys := floats.Span(make([]float64, n), a.Y, b.Y)
	ds := floats.Span(make([]float64, n), 0, r2.Norm(r2.Sub(b, a)))

	rows := make([]Row, n)
	for i := range rows {
		rows[i] = row(r2.Vec{X: xs[i], Y: ys[i]}, ds[i], charges)
	}
	return rows, nil
}

// Grid is a row-major nx×ny sampling of a world rectangle.
type Grid struct {
	Nx     int       `json:"nx"`
	Ny     int       `json:"ny"`
	Bounds view.Rect `json:"bounds"`
	Rows   []Row     `json:"rows"`
}

func (g *Grid) At(i, j int) Row { return g.Rows[j*g.Nx+i] }

// SampleGrid samples r on an nx×ny lattice including its edges. Rows of the
// lattice are evaluated in parallel bands.
func SampleGrid(ctx context.Context, r view.Rect, nx, ny int, charges []core.Charge) (*Grid, error) {
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("grid needs at least 2x2 samples, got %dx%d", nx, ny)
	}
	if r.Width() <= 0 || r.Height() <= 0 {
		return nil, fmt.Errorf("empty sampling rectangle %+v", r)
	}
	xs := floats.Span(make([]float64, nx), r.MinX, r.MaxX)
	ys := floats.Span(make([]float64, ny), r.MaxY, r.MinY)

	g := &Grid{Nx: nx, Ny: ny, Bounds: r, Rows: make([]Row, nx*ny)}
	err := core.ParallelRows(ctx, ny, 8, func(ctx context.Context, start, end int) error {
		for j := start; j < end; j++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i, x := range xs {
				g.Rows[j*nx+i] = row(r2.Vec{X: x, Y: ys[j]}, 0, charges)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sampling grid: %w", err)
	}
	return g, nil
}

// Summary condenses a sample set.
type Summary struct {
	Count        int     `json:"count"`
	MinPotential float64 `json:"min_potential"`
	MaxPotential float64 `json:"max_potential"`
	MeanField    float64 `json:"mean_field"`
	MaxField     float64 `json:"max_field"`
}

func Summarize(rows []Row) Summary {
	if len(rows) == 0 {
		return Summary{}
	}
	v := make([]float64, len(rows))
	e := make([]float64, len(rows))
	for i, r := range rows {
		v[i], e[i] = r.Potential, r.Magnitude
	}
	return Summary{
		Count:        len(rows),
		MinPotential: floats.Min(v),
		MaxPotential: floats.Max(v),
		MeanField:    floats.Sum(e) / float64(len(e)),
		MaxField:     floats.Max(e),
	}
}

// ChargeRow describes one charge together with the field the other charges
// create at its position and the net Coulomb force on it.
type ChargeRow struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Q        float64 `json:"q"`
	Locked   bool    `json:"locked"`
	Field    float64 `json:"field"`
	NetForce float64 `json:"net_force"`
}

func ChargeTable(charges []core.Charge) []ChargeRow {
	out := make([]ChargeRow, len(charges))
	others := make([]core.Charge, 0, len(charges))
	for i, c := range charges {
		others = others[:0]
		others = append(others, charges[:i]...)
		others = append(others, charges[i+1:]...)
		e := physics.FieldAt(c.Pos(), others)
		out[i] = ChargeRow{
			ID:       c.ID,
			X:        c.X,
			Y:        c.Y,
			Q:        c.Q,
			Locked:   c.Locked,
			Field:    r2.Norm(e),
			NetForce: r2.Norm(e) * math.Abs(c.Q) * physics.MicroCoulomb,
		}
	}
	return out
}

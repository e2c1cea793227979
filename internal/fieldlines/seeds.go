package fieldlines

import (
	"math"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// SeedRadius is the circle around a charge on which lines start.
	SeedRadius = 0.09
	// MinSeedsPerCharge keeps weak charges visible.
	MinSeedsPerCharge = 4
)

// Seed is a starting point for one field line.
type Seed struct {
	Pos    r2.Vec
	Dir    int
	Source int
}

// SeedCount is max(4, round(density·|q|)).
func SeedCount(q, density float64) int {
	n := int(math.Round(density * math.Abs(q)))
	if n < MinSeedsPerCharge {
		n = MinSeedsPerCharge
	}
	return n
}

// Seeds places lines evenly around every positive charge, traced forward.
// Without positive charges the lines start around negative charges and are
// traced backward.
func Seeds(charges []core.Charge, density float64) []Seed {
	dir := 1
	pick := func(c core.Charge) bool { return c.Q > 0 }
	hasPositive := false
	for _, c := range charges {
		if c.Q > 0 {
			hasPositive = true
			break
		}
	}
	if !hasPositive {
		dir = -1
		pick = func(c core.Charge) bool { return c.Q < 0 }
	}

	var seeds []Seed
	for i, c := range charges {
		if !pick(c) {
			continue
		}
		for _, p := range core.RingPoints(c.Pos(), SeedRadius, SeedCount(c.Q, density)) {
			seeds = append(seeds, Seed{Pos: p, Dir: dir, Source: i})
		}
	}
	return seeds
}

// TraceAll seeds and traces every line for a charge snapshot. Degenerate
// traces with fewer than two points are dropped.
func TraceAll(charges []core.Charge, p Params, density float64) []Trace {
	seeds := Seeds(charges, density)
	if len(seeds) == 0 {
		return nil
	}
	tr := NewTracer(charges, p)
	out := make([]Trace, 0, len(seeds))
	for _, s := range seeds {
		res := tr.Trace(s.Pos, s.Dir)
		if len(res.Path) < 2 {
			continue
		}
		res.Source = s.Source
		out = append(out, res)
	}
	return out
}

// Outflow reports whether the first n points of path move strictly away
// from origin.
func Outflow(path core.Path, origin r2.Vec, n int) bool {
	if len(path) < n {
		return false
	}
	prev := dist(path[0], origin)
	for i := 1; i < n; i++ {
		d := dist(path[i], origin)
		if d <= prev {
			return false
		}
		prev = d
	}
	return true
}

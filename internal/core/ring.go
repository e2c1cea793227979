package core

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// rings memoizes evenly spaced unit directions keyed by their count. Seed
// circles, Gauss surfaces and spawn bursts ask for the same handful of
// counts every rebuild.
var rings sync.Map // int -> []r2.Vec

// UnitRing returns n unit vectors at angles 2πi/n, i in [0,n). The returned
// slice is shared and must not be modified.
func UnitRing(n int) []r2.Vec {
	if n <= 0 {
		return nil
	}
	if v, ok := rings.Load(n); ok {
		return v.([]r2.Vec)
	}
	ring := make([]r2.Vec, n)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring[i] = r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
	}
	v, _ := rings.LoadOrStore(n, ring)
	return v.([]r2.Vec)
}

// RingPoints places the n ring directions on a circle of radius r around c.
func RingPoints(c r2.Vec, r float64, n int) []r2.Vec {
	dirs := UnitRing(n)
	pts := make([]r2.Vec, len(dirs))
	for i, d := range dirs {
		pts[i] = r2.Add(c, r2.Scale(r, d))
	}
	return pts
}

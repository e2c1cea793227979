package core

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Charge is a point charge. X and Y are world units, Q is in microcoulombs.
type Charge struct {
	ID     string  `json:"id,omitempty" yaml:"id,omitempty"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Q      float64 `json:"q" yaml:"q"`
	Locked bool    `json:"locked,omitempty" yaml:"locked,omitempty"`
}

func (c Charge) Pos() r2.Vec {
	return r2.Vec{X: c.X, Y: c.Y}
}

func (c Charge) Positive() bool {
	return c.Q > 0
}

func (c Charge) String() string {
	sign := ""
	if c.Q > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f µC @ (%.2f, %.2f)", sign, c.Q, c.X, c.Y)
}

// CloneCharges returns an independent copy of cs.
func CloneCharges(cs []Charge) []Charge {
	if cs == nil {
		return nil
	}
	out := make([]Charge, len(cs))
	copy(out, cs)
	return out
}

// TotalCharge sums q over cs (microcoulombs).
func TotalCharge(cs []Charge) float64 {
	sum := 0.0
	for _, c := range cs {
		sum += c.Q
	}
	return sum
}

// TotalAbsCharge sums |q| over cs (microcoulombs).
func TotalAbsCharge(cs []Charge) float64 {
	sum := 0.0
	for _, c := range cs {
		sum += math.Abs(c.Q)
	}
	return sum
}

// Sample is the derived field state at one point.
type Sample struct {
	Potential float64 `json:"potential"`
	Field     r2.Vec  `json:"field"`
	Magnitude float64 `json:"magnitude"`
}

// Path is a polyline in world coordinates.
type Path []r2.Vec

func (p Path) Len() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += r2.Norm(r2.Sub(p[i], p[i-1]))
	}
	return total
}

func (p Path) IsValid() bool {
	for _, v := range p {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return false
		}
	}
	return true
}

// HeatmapMode selects the colour mapping of the per-pixel scalar layer.
type HeatmapMode int

const (
	HeatmapOff HeatmapMode = iota
	HeatmapPotential
	HeatmapMagnitude
	HeatmapDirection
	HeatmapEnergy
	HeatmapChromatic
)

var heatmapNames = [...]string{"off", "potential", "magnitude", "direction", "energy", "chromatic"}

func (m HeatmapMode) String() string {
	if m < 0 || int(m) >= len(heatmapNames) {
		return fmt.Sprintf("HeatmapMode(%d)", int(m))
	}
	return heatmapNames[m]
}

// ParseHeatmapMode accepts the mode name or its index.
func ParseHeatmapMode(s string) (HeatmapMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range heatmapNames {
		if s == n || s == fmt.Sprint(i) {
			return HeatmapMode(i), nil
		}
	}
	return HeatmapOff, fmt.Errorf("%w: heatmap mode %q", ErrInvalidSettings, s)
}

// HeatmapModes lists every mode name in index order.
func HeatmapModes() []string {
	return append([]string(nil), heatmapNames[:]...)
}

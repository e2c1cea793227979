package config

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/semo00000/champ-electrostatique/internal/core"
)

type Preset struct {
	Name        string
	Description string
	build       func(seed int64) []core.Charge
}

// Charges builds a fresh charge set. Only the random preset uses seed.
func (p Preset) Charges(seed int64) []core.Charge { return p.build(seed) }

var presetOrder = []string{"dipole", "capacitor", "quadrupole", "triangle", "ring", "random", "faraday"}

var Presets = map[string]Preset{
	"dipole": {
		Description: "two opposite charges",
		build: func(int64) []core.Charge {
			return []core.Charge{{X: -.8, Q: 2}, {X: .8, Q: -2}}
		},
	},
	"capacitor": {
		Description: "two plates of seven charges",
		build: func(int64) []core.Charge {
			var cs []core.Charge
			for i := -3; i <= 3; i++ {
				y := float64(i) * .35
				cs = append(cs, core.Charge{X: -1.5, Y: y, Q: 1}, core.Charge{X: 1.5, Y: y, Q: -1})
			}
			return cs
		},
	},
	"quadrupole": {
		Description: "alternating square",
		build: func(int64) []core.Charge {
			return []core.Charge{
				{X: -.7, Y: .7, Q: 2}, {X: .7, Y: .7, Q: -2},
				{X: -.7, Y: -.7, Q: -2}, {X: .7, Y: -.7, Q: 2},
			}
		},
	},
	"triangle": {
		Description: "three charges, net positive",
		build: func(int64) []core.Charge {
			return []core.Charge{{Y: .8, Q: 2}, {X: -.7, Y: -.4, Q: -2}, {X: .7, Y: -.4, Q: 2}}
		},
	},
	"ring": {
		Description: "eight alternating charges on a circle",
		build: func(int64) []core.Charge { return ring(8, .9, func(i int) float64 { return []float64{1.5, -1.5}[i%2] }) },
	},
	"random": {
		Description: "six seeded random charges",
		build:       randomCharges,
	},
	"faraday": {
		Description: "twelve negative charges shielding the centre",
		build:       func(int64) []core.Charge { return ring(12, 1.2, func(int) float64 { return -1 }) },
	},
}

func init() {
	for name, p := range Presets {
		p.Name = name
		Presets[name] = p
	}
}

func ring(n int, r float64, q func(int) float64) []core.Charge {
	cs := make([]core.Charge, n)
	for i := range cs {
		a := 2 * math.Pi * float64(i) / float64(n)
		cs[i] = core.Charge{X: r * math.Cos(a), Y: r * math.Sin(a), Q: q(i)}
	}
	return cs
}

// randomCharges places six charges in [-1.5,1.5]×[-1,1] with q rounded to
// half microcoulombs in [-2,2]; a zero draw becomes +1.
func randomCharges(seed int64) []core.Charge {
	rng := rand.New(rand.NewSource(seed))
	cs := make([]core.Charge, 6)
	for i := range cs {
		q := math.Round((rng.Float64()*4-2)*2) / 2
		if q == 0 {
			q = 1
		}
		cs[i] = core.Charge{X: (rng.Float64() - .5) * 3, Y: (rng.Float64() - .5) * 2, Q: q}
	}
	return cs
}

func GetPreset(name string) (Preset, error) {
	p, ok := Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", core.ErrUnknownPreset, name)
	}
	return p, nil
}

// ListPresets returns the preset names in display order.
func ListPresets() []string {
	return append([]string(nil), presetOrder...)
}

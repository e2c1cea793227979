// Package cache memoizes the CPU-built raster layers behind a canonical key
// of every input that affects their pixels.
package cache

import (
	"cmp"
	"fmt"
	"hash/fnv"
	"slices"
	"strconv"
	"strings"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

// Inputs lists everything a cached layer depends on.
type Inputs struct {
	Charges    []core.Charge
	Mirror     bool
	View       view.Transform
	Quality    int
	Density    float64
	ArrowGrid  int
	FieldSteps int
}

// Key is the canonical text form of Inputs. Two keys are equal iff the
// layers they describe are pixel-identical.
type Key string

// NewKey sorts the charges so insertion order does not matter. Positions are
// rounded to 1e-4 world units; charge values are kept exact.
func NewKey(in Inputs) Key {
	cs := core.CloneCharges(in.Charges)
	slices.SortFunc(cs, func(a, b core.Charge) int {
		return cmp.Or(cmp.Compare(a.X, b.X), cmp.Compare(a.Y, b.Y), cmp.Compare(a.Q, b.Q))
	})

	var b strings.Builder
	b.Grow(32 + 32*len(cs))
	for _, c := range cs {
		b.WriteString(strconv.FormatFloat(c.X, 'f', 4, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(c.Y, 'f', 4, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(c.Q, 'g', -1, 64))
		b.WriteByte(';')
	}
	fmt.Fprintf(&b, "|m%t|z%.4f|p%.1f,%.1f|v%dx%d|q%d|d%s|a%d|s%d",
		in.Mirror,
		in.View.Zoom,
		in.View.Pan.X, in.View.Pan.Y,
		in.View.Width, in.View.Height,
		in.Quality,
		strconv.FormatFloat(in.Density, 'g', -1, 64),
		in.ArrowGrid,
		in.FieldSteps)
	return Key(b.String())
}

// Short is a 64-bit FNV-1a digest of the key for logs.
func (k Key) Short() string {
	h := fnv.New64a()
	h.Write([]byte(k))
	return fmt.Sprintf("%016x", h.Sum64())
}

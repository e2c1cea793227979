package compute

import (
	"math"
	"time"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/view"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MaxCharges is the size of the shader's charge array. It is a hard limit of
// the evaluator.
const MaxCharges = 32

// Uniforms is everything one heatmap pass reads.
type Uniforms struct {
	Mode      core.HeatmapMode
	Chromatic bool
	Charges   []core.Charge
	View      view.Transform
	VScale    float64
	Time      float64
}

// Empty reports whether the pass produces a fully transparent image.
func (u *Uniforms) Empty() bool {
	return u.Mode == core.HeatmapOff || len(u.Charges) == 0
}

// Flatten packs the charges as x, y, q triples for a vec3 uniform array.
func (u *Uniforms) Flatten() []float32 {
	out := make([]float32, 0, 3*len(u.Charges))
	for _, c := range u.Charges {
		out = append(out, float32(c.X), float32(c.Y), float32(c.Q))
	}
	return out
}

// VScale normalizes the potential ramp so colors stay vivid as the total
// charge grows.
func VScale(charges []core.Charge) float64 {
	return math.Max(5e4, 1.5e4*core.TotalAbsCharge(charges))
}

// EffectiveMode turns the chromatic toggle into the standalone chromatic mode
// when no heatmap is selected.
func EffectiveMode(mode core.HeatmapMode, chromatic bool) core.HeatmapMode {
	if chromatic && mode == core.HeatmapOff {
		return core.HeatmapChromatic
	}
	return mode
}

// Packer builds Uniforms under a charge limit.
type Packer struct {
	limit int
	log   *zap.Logger
	warn  rate.Sometimes
}

// NewPacker clamps limit into [1, MaxCharges].
func NewPacker(limit int, log *zap.Logger) *Packer {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Packer{log: log, warn: rate.Sometimes{First: 1, Interval: 5 * time.Second}}
	p.SetLimit(limit)
	return p
}

func (p *Packer) SetLimit(limit int) {
	p.limit = max(1, min(MaxCharges, limit))
}

func (p *Packer) Limit() int { return p.limit }

// Pack snapshots the inputs. Charges beyond the limit are dropped.
func (p *Packer) Pack(mode core.HeatmapMode, chromatic bool, charges []core.Charge, t view.Transform) Uniforms {
	if len(charges) > p.limit {
		n := len(charges)
		p.warn.Do(func() {
			p.log.Warn("heatmap charge count clamped",
				zap.Int("charges", n),
				zap.Int("limit", p.limit),
				zap.Error(core.ErrTooManyCharges))
		})
		charges = charges[:p.limit]
	}
	return Uniforms{
		Mode:      EffectiveMode(mode, chromatic),
		Chromatic: chromatic,
		Charges:   core.CloneCharges(charges),
		View:      t,
		VScale:    VScale(charges),
	}
}

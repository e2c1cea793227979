// Package perf maps hardware capability and observed frame rate to a quality
// tier and the sampling parameters of that tier.
package perf

import (
	"fmt"

	"github.com/semo00000/champ-electrostatique/internal/core"
)

const (
	MinTier = 0
	MaxTier = 3
)

// Profile is the full parameter vector of one quality tier.
type Profile struct {
	Tier        int     `json:"tier"`
	Particles   int     `json:"particles"`
	BloomDiv    int     `json:"bloom_downscale"`
	GaussN      int     `json:"gauss_samples"`
	FieldSteps  int     `json:"field_steps"`
	GPUCharges  int     `json:"gpu_charges"`
	ArrowGrid   int     `json:"arrow_grid"`
	Density     int     `json:"density"`
	TrailLength int     `json:"trail_length"`
	ArcDepth    int     `json:"arc_depth"`
	ArcFreq     int     `json:"arc_freq"`
	DPRCap      float64 `json:"dpr_cap"`

	SkipMinorGrid    bool `json:"skip_minor_grid"`
	SkipBloom        bool `json:"skip_bloom"`
	SkipGlow         bool `json:"skip_glow"`
	SkipTrails       bool `json:"skip_trails"`
	ReducedFieldFlow bool `json:"reduced_field_flow"`
}

var (
	particles   = [4]int{80, 150, 300, 500}
	bloomDiv    = [4]int{12, 8, 5, 3}
	gaussN      = [4]int{60, 100, 200, 280}
	fieldSteps  = [4]int{250, 380, 600, 800}
	gpuCharges  = [4]int{8, 16, 32, 32}
	arrowGrid   = [4]int{12, 16, 20, 28}
	density     = [4]int{10, 14, 16, 20}
	trailLength = [4]int{6, 10, 16, 20}
	arcDepth    = [4]int{3, 4, 5, 6}
	arcFreq     = [4]int{20, 12, 4, 2}
	dprCap      = [4]float64{1, 1.5, 2, 3}
	qualMult    = [4]float64{.3, .6, 1, 1.5}
)

// ClampTier forces t into [MinTier, MaxTier]. ok is false when t was out of
// range.
func ClampTier(t int) (tier int, ok bool) {
	switch {
	case t < MinTier:
		return MinTier, false
	case t > MaxTier:
		return MaxTier, false
	}
	return t, true
}

// ValidateTier returns ErrTierOutOfRange for tiers outside [0,3].
func ValidateTier(t int) error {
	if _, ok := ClampTier(t); !ok {
		return fmt.Errorf("%w: %d", core.ErrTierOutOfRange, t)
	}
	return nil
}

// ForTier builds the profile of a tier, clamping out-of-range values.
func ForTier(t int) Profile {
	t, _ = ClampTier(t)
	return Profile{
		Tier:             t,
		Particles:        particles[t],
		BloomDiv:         bloomDiv[t],
		GaussN:           gaussN[t],
		FieldSteps:       fieldSteps[t],
		GPUCharges:       gpuCharges[t],
		ArrowGrid:        arrowGrid[t],
		Density:          density[t],
		TrailLength:      trailLength[t],
		ArcDepth:         arcDepth[t],
		ArcFreq:          arcFreq[t],
		DPRCap:           dprCap[t],
		SkipMinorGrid:    t <= 0,
		SkipBloom:        t <= 0,
		SkipGlow:         t <= 0,
		SkipTrails:       t <= 0,
		ReducedFieldFlow: t <= 1,
	}
}

// QualMult scales seed and particle counts by quality tier.
func QualMult(quality int) float64 {
	q, _ := ClampTier(quality)
	return qualMult[q]
}

// BloomResolution is the bloom buffer size as a fraction of the viewport.
func (p Profile) BloomResolution() float64 { return 1 / float64(p.BloomDiv) }

// ArcRate is how many arc regenerations happen per frame.
func (p Profile) ArcRate() float64 { return 1 / float64(p.ArcFreq) }

// RenderScale is the backing-store pixels per screen pixel for a display
// scale of dpi, capped at DPRCap and never below 1.
func (p Profile) RenderScale(dpi float64) float64 {
	if !(dpi > 1) {
		return 1
	}
	return min(dpi, p.DPRCap)
}

// Sampling lists every sampling parameter oriented so that larger means
// more work. Divisor-style knobs are reported as rates.
func (p Profile) Sampling() map[string]float64 {
	return map[string]float64{
		"particles":        float64(p.Particles),
		"bloom_resolution": p.BloomResolution(),
		"gauss_samples":    float64(p.GaussN),
		"field_steps":      float64(p.FieldSteps),
		"gpu_charges":      float64(p.GPUCharges),
		"arrow_grid":       float64(p.ArrowGrid),
		"density":          float64(p.Density),
		"trail_length":     float64(p.TrailLength),
		"arc_depth":        float64(p.ArcDepth),
		"arc_rate":         p.ArcRate(),
		"dpr_cap":          p.DPRCap,
	}
}

var tierNames = [4]string{"ultra-low", "low-mid", "mid-high", "ultra"}

func TierName(t int) string {
	t, _ = ClampTier(t)
	return tierNames[t]
}

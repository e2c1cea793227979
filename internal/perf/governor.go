package perf

import (
	"time"

	"go.uber.org/zap"
)

// Thresholds drive the governor's state machine.
type Thresholds struct {
	// CheckEvery is the evaluation cadence in frames.
	CheckEvery int
	// Window is the span over which frames are counted into an FPS figure.
	Window time.Duration
	// LowFPS starts the drop streak; CriticalFPS drops immediately.
	LowFPS, CriticalFPS float64
	// HighFPS starts the raise streak.
	HighFPS float64
	// DropAfter and RaiseAfter are consecutive checks needed to move a tier.
	DropAfter, RaiseAfter int
	// DegradeAfter is the low streak at tier 0 that triggers the next
	// effect reduction. ArcsAfter is the accumulated streak that also turns
	// arcs off.
	DegradeAfter, ArcsAfter int
	// ParticleStep and ParticleFloor bound particle shrinking.
	ParticleStep, ParticleFloor int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CheckEvery:    15,
		Window:        500 * time.Millisecond,
		LowFPS:        30,
		CriticalFPS:   24,
		HighFPS:       55,
		DropAfter:     2,
		RaiseAfter:    3,
		DegradeAfter:  3,
		ArcsAfter:     6,
		ParticleStep:  50,
		ParticleFloor: 50,
	}
}

// Action is what one evaluation did.
type Action int

const (
	Hold Action = iota
	TierDown
	TierUp
	Degrade
)

func (a Action) String() string {
	switch a {
	case TierDown:
		return "tier-down"
	case TierUp:
		return "tier-up"
	case Degrade:
		return "degrade"
	}
	return "hold"
}

// Effects is the effect budget the governor allows. Once an effect is
// switched off it stays off for the session.
type Effects struct {
	Particles int
	Bloom     bool
	Arcs      bool
}

// TierListener is notified after every tier change.
type TierListener func(from, to int, p Profile)

// Governor adapts the quality tier to the measured frame rate. It is driven
// from the render loop and is not safe for concurrent use.
type Governor struct {
	log *zap.Logger
	th  Thresholds

	tier    int
	auto    bool
	effects Effects

	frame        uint64
	windowStart  time.Time
	windowFrames int
	fps          float64
	measured     bool

	slowSinceChange int
	highStreak      int
	lowStreak       int
	degradeStreak   int

	listeners []TierListener
}

// NewGovernor starts at tier (clamped) with the tier's particle count and
// every effect allowed.
func NewGovernor(tier int, th Thresholds, log *zap.Logger) *Governor {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("governor")
	t, ok := ClampTier(tier)
	if !ok {
		log.Warn("initial tier clamped", zap.Int("requested", tier), zap.Int("tier", t))
	}
	return &Governor{
		log:     log,
		th:      th,
		tier:    t,
		auto:    true,
		effects: Effects{Particles: ForTier(t).Particles, Bloom: true, Arcs: true},
	}
}

func (g *Governor) Tier() int          { return g.tier }
func (g *Governor) Profile() Profile   { return ForTier(g.tier) }
func (g *Governor) FPS() float64       { return g.fps }
func (g *Governor) Effects() Effects   { return g.effects }
func (g *Governor) Auto() bool         { return g.auto }
func (g *Governor) SetAuto(on bool)    { g.auto = on }
func (g *Governor) LowStreak() int     { return g.lowStreak }
func (g *Governor) Frames() uint64     { return g.frame }
func (g *Governor) OnTierChange(fn TierListener) {
	g.listeners = append(g.listeners, fn)
}

// SetParticles overrides the particle budget from user settings.
func (g *Governor) SetParticles(n int) { g.effects.Particles = max(0, n) }

// SetTier is the manual quality override. Out-of-range tiers are clamped,
// logged and reported.
func (g *Governor) SetTier(t int) error {
	err := ValidateTier(t)
	if err != nil {
		g.log.Warn("tier clamped", zap.Int("requested", t), zap.Error(err))
	}
	c, _ := ClampTier(t)
	g.changeTier(c, "manual")
	return err
}

// Frame records one rendered frame. FPS is refreshed once per Window and the
// state machine runs every CheckEvery frames while auto adaptation is on.
func (g *Governor) Frame(now time.Time) Action {
	g.frame++
	if g.windowStart.IsZero() {
		g.windowStart = now
	}
	g.windowFrames++
	if el := now.Sub(g.windowStart); el > g.th.Window {
		g.fps = float64(g.windowFrames) / el.Seconds()
		g.measured = true
		g.windowStart, g.windowFrames = now, 0
	}
	if !g.auto || !g.measured || g.th.CheckEvery <= 0 || g.frame%uint64(g.th.CheckEvery) != 0 {
		return Hold
	}
	return g.Evaluate(g.fps)
}

// Evaluate runs one step of the state machine against fps.
func (g *Governor) Evaluate(fps float64) Action {
	g.fps = fps
	switch {
	case fps < g.th.LowFPS:
		g.highStreak = 0
		g.lowStreak++
		g.slowSinceChange++
		if g.tier > MinTier {
			if fps < g.th.CriticalFPS || g.slowSinceChange >= g.th.DropAfter {
				g.changeTier(g.tier-1, "low fps")
				return TierDown
			}
			return Hold
		}
		g.degradeStreak++
		if g.lowStreak > g.th.DegradeAfter {
			g.degrade()
			g.lowStreak = 0
			return Degrade
		}
		return Hold

	case fps > g.th.HighFPS:
		g.lowStreak, g.degradeStreak, g.slowSinceChange = 0, 0, 0
		g.highStreak++
		if g.tier < MaxTier && g.highStreak >= g.th.RaiseAfter {
			g.changeTier(g.tier+1, "high fps")
			return TierUp
		}
		return Hold
	}

	g.highStreak, g.slowSinceChange = 0, 0
	g.lowStreak = max(0, g.lowStreak-1)
	g.degradeStreak = max(0, g.degradeStreak-1)
	return Hold
}

// degrade applies the next step of the one-way cascade: fewer particles,
// then no bloom, then no arcs.
func (g *Governor) degrade() {
	e := &g.effects
	if e.Particles > g.th.ParticleFloor {
		e.Particles = max(g.th.ParticleFloor, e.Particles-g.th.ParticleStep)
	}
	e.Bloom = false
	if g.degradeStreak > g.th.ArcsAfter {
		e.Arcs = false
	}
	g.log.Info("effects reduced",
		zap.Int("particles", e.Particles),
		zap.Bool("bloom", e.Bloom),
		zap.Bool("arcs", e.Arcs),
		zap.Float64("fps", g.fps))
}

func (g *Governor) changeTier(t int, reason string) {
	old := g.tier
	g.slowSinceChange, g.highStreak = 0, 0
	if t == old {
		return
	}
	g.tier = t
	p := ForTier(t)
	g.log.Info("quality tier changed",
		zap.Int("from", old),
		zap.Int("to", t),
		zap.String("reason", reason),
		zap.Float64("fps", g.fps))
	for _, fn := range g.listeners {
		fn(old, t, p)
	}
}

package perf

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/semo00000/champ-electrostatique/internal/core"
)

type change struct{ from, to int }

var _ = Describe("Governor", func() {
	var (
		g       *Governor
		changes []change
	)

	start := func(tier int) {
		changes = nil
		g = NewGovernor(tier, DefaultThresholds(), nil)
		g.OnTierChange(func(from, to int, p Profile) {
			Expect(p.Tier).To(Equal(to))
			changes = append(changes, change{from, to})
		})
	}

	evaluate := func(fps float64, n int) Action {
		var last Action
		for range n {
			last = g.Evaluate(fps)
		}
		return last
	}

	Describe("dropping tiers", func() {
		BeforeEach(func() { start(3) })

		It("holds after a single slow check", func() {
			Expect(g.Evaluate(28)).To(Equal(Hold))
			Expect(g.Tier()).To(Equal(3))
		})

		It("drops after two consecutive slow checks", func() {
			g.Evaluate(28)
			Expect(g.Evaluate(28)).To(Equal(TierDown))
			Expect(g.Tier()).To(Equal(2))
			Expect(changes).To(Equal([]change{{3, 2}}))
		})

		It("drops immediately below the critical rate", func() {
			Expect(g.Evaluate(15)).To(Equal(TierDown))
			Expect(g.Evaluate(15)).To(Equal(TierDown))
			Expect(g.Tier()).To(Equal(1))
		})

		It("needs a fresh streak after each drop", func() {
			g.Evaluate(28)
			g.Evaluate(28)
			Expect(g.Evaluate(28)).To(Equal(Hold))
			Expect(g.Tier()).To(Equal(2))
		})

		It("forgets a slow check after a comfortable one", func() {
			g.Evaluate(28)
			g.Evaluate(45)
			Expect(g.Evaluate(28)).To(Equal(Hold))
			Expect(g.Tier()).To(Equal(3))
		})
	})

	Describe("raising tiers", func() {
		BeforeEach(func() { start(1) })

		It("raises after three consecutive fast checks", func() {
			Expect(evaluate(60, 2)).To(Equal(Hold))
			Expect(g.Evaluate(60)).To(Equal(TierUp))
			Expect(g.Tier()).To(Equal(2))
		})

		It("does not thrash on one transient spike", func() {
			g.Evaluate(60)
			g.Evaluate(60)
			g.Evaluate(40)
			Expect(g.Evaluate(60)).To(Equal(Hold))
			Expect(g.Tier()).To(Equal(1))
		})

		It("stops at the top tier", func() {
			evaluate(60, 30)
			Expect(g.Tier()).To(Equal(MaxTier))
			Expect(changes).To(HaveLen(2))
		})
	})

	Describe("effect cascade at tier 0", func() {
		BeforeEach(func() { start(0) })

		It("shrinks particles and disables bloom after the low streak", func() {
			Expect(evaluate(20, 3)).To(Equal(Hold))
			Expect(g.Evaluate(20)).To(Equal(Degrade))
			e := g.Effects()
			Expect(e.Particles).To(Equal(50))
			Expect(e.Bloom).To(BeFalse())
			Expect(e.Arcs).To(BeTrue())
			Expect(g.LowStreak()).To(Equal(0))
		})

		It("disables arcs once the streak keeps growing", func() {
			evaluate(20, 8)
			Expect(g.Effects().Arcs).To(BeFalse())
		})

		It("never shrinks particles below the floor", func() {
			g.SetParticles(120)
			evaluate(20, 40)
			Expect(g.Effects().Particles).To(Equal(50))
		})

		It("never re-enables effects when the frame rate recovers", func() {
			evaluate(20, 8)
			evaluate(60, 30)
			Expect(g.Tier()).To(Equal(MaxTier))
			e := g.Effects()
			Expect(e.Bloom).To(BeFalse())
			Expect(e.Arcs).To(BeFalse())
		})
	})

	Describe("frame sampling", func() {
		BeforeEach(func() { start(2) })

		It("measures fps over the window and evaluates every 15 frames", func() {
			t0 := time.Unix(0, 0)
			frame := 50 * time.Millisecond // 20 fps
			var actions []Action
			for i := range 60 {
				actions = append(actions, g.Frame(t0.Add(time.Duration(i)*frame)))
			}
			Expect(g.FPS()).To(BeNumerically("~", 20, 1))
			Expect(actions).To(ContainElement(TierDown))
			Expect(g.Frames()).To(Equal(uint64(60)))
		})

		It("does nothing when auto adaptation is off", func() {
			g.SetAuto(false)
			t0 := time.Unix(0, 0)
			for i := range 120 {
				Expect(g.Frame(t0.Add(time.Duration(i) * 100 * time.Millisecond))).To(Equal(Hold))
			}
			Expect(g.Tier()).To(Equal(2))
		})
	})

	Describe("manual override", func() {
		BeforeEach(func() { start(1) })

		It("clamps and reports out-of-range tiers", func() {
			err := g.SetTier(7)
			Expect(errors.Is(err, core.ErrTierOutOfRange)).To(BeTrue())
			Expect(g.Tier()).To(Equal(3))
			Expect(changes).To(Equal([]change{{1, 3}}))
		})

		It("does not notify when the tier is unchanged", func() {
			Expect(g.SetTier(1)).To(Succeed())
			Expect(changes).To(BeEmpty())
		})
	})

	It("clamps the initial tier", func() {
		Expect(NewGovernor(-2, DefaultThresholds(), nil).Tier()).To(Equal(0))
		Expect(NewGovernor(5, DefaultThresholds(), nil).Profile().Tier).To(Equal(3))
	})
})

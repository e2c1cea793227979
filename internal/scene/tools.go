package scene

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
)

func (s *Scene) Tool() Tool { return s.tool }

// SetTool switches the pointer tool and drops the state of the tool being
// left.
func (s *Scene) SetTool(t Tool) {
	if t == s.tool {
		return
	}
	switch s.tool {
	case ToolGauss:
		s.gauss = nil
	case ToolWork:
		s.workA, s.workB = nil, nil
	case ToolProbe:
		s.probeOn = false
	}
	s.tool = t
	s.notify(ChangeTool)
}

// SetProbe moves the probe to world point p.
func (s *Scene) SetProbe(p r2.Vec) {
	s.probe, s.probeOn = p, true
}

// Probe returns the probe position while the probe tool is active.
func (s *Scene) Probe() (r2.Vec, bool) {
	return s.probe, s.probeOn && s.tool == ToolProbe
}

// ProbeSample evaluates the field under the probe.
func (s *Scene) ProbeSample() (core.Sample, bool) {
	p, ok := s.Probe()
	if !ok {
		return core.Sample{}, false
	}
	return physics.SampleAt(p, s.Effective()), true
}

// SetGauss places the Gaussian surface. A non-positive radius removes it.
func (s *Scene) SetGauss(center r2.Vec, radius float64) {
	if radius <= 0 {
		s.gauss = nil
		return
	}
	s.gauss = &Gauss{Center: center, Radius: radius}
}

func (s *Scene) Gauss() (Gauss, bool) {
	if s.gauss == nil {
		return Gauss{}, false
	}
	return *s.gauss, true
}

// GaussResult integrates the flux through the current surface with n samples.
func (s *Scene) GaussResult(n int) (physics.GaussResult, bool) {
	g, ok := s.Gauss()
	if !ok {
		return physics.GaussResult{}, false
	}
	return physics.GaussFlux(g.Center, g.Radius, n, s.Effective()), true
}

// WorkClick places work-calculator markers: first A, then B, then a third
// click starts over from A.
func (s *Scene) WorkClick(p r2.Vec) {
	switch {
	case s.workA == nil || s.workB != nil:
		s.workA, s.workB = &p, nil
	default:
		s.workB = &p
	}
}

// WorkPoints returns the markers placed so far.
func (s *Scene) WorkPoints() (a, b *r2.Vec) {
	return s.workA, s.workB
}

// WorkResult is the work moving the probe charge from A to B once both are
// placed.
func (s *Scene) WorkResult() (physics.WorkResult, bool) {
	if s.workA == nil || s.workB == nil {
		return physics.WorkResult{}, false
	}
	return physics.Work(*s.workA, *s.workB, physics.ProbeCharge, s.Effective()), true
}

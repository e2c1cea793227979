package physics

const (
	// K is Coulomb's constant in N·m²/C².
	K = 8.99e9
	// MicroCoulomb converts charge values to coulombs.
	MicroCoulomb = 1e-6
	// Eps0 is the vacuum permittivity in F/m.
	Eps0 = 8.854e-12

	// MinRadius is the softening radius in world units.
	MinRadius = 0.05
	// AbsorbRadius is where a traced field line lands on a charge.
	AbsorbRadius = 0.08
	// SinkRadius is where flow particles are swallowed by a negative charge.
	SinkRadius = 0.08
	// TestChargeKillRadius removes test charges near a negative charge.
	TestChargeKillRadius = 0.1

	// PixelsPerUnit is the screen scale at zoom 1.
	PixelsPerUnit = 100.0
	// ChargeRadiusPx is the base glyph radius of a charge.
	ChargeRadiusPx = 14.0

	// ProbeCharge is the charge moved by the work calculator, in coulombs.
	ProbeCharge = 1e-6
)

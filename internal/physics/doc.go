// Package physics is the electrostatics kernel: Coulomb superposition for the
// field vector and the potential of a set of point charges.
//
// All functions are pure and allocation free in their inner loops; they are
// called from the tracer, the rasterizer and every per-frame overlay.
//
//   - [FieldAt]: E(p) = Σ k·q·µ/r² · (p - c)/|p - c|
//   - [PotentialAt]: V(p) = Σ k·q·µ/r
//   - [SampleAt]: both in a single pass
//   - [SystemEnergy]: pairwise interaction energy
//
// # Softening
//
// Distances below [MinRadius] are clamped to MinRadius. This is a visual
// softening, not a physical model: inside the clamp the potential of a charge
// is flat at k·q·µ/MinRadius and its field magnitude is flat at
// k·q·µ/MinRadius² while still pointing away from the charge. Both are
// continuous in value at r = MinRadius; their radial derivatives jump to zero
// there. At the exact charge location the field contribution is dropped
// because its direction is undefined.
package physics

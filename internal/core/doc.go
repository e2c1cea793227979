// Package core provides the value types shared by every stage of the field
// pipeline.
//
// The types are deliberately plain values:
//
//   - [Charge]: a point charge in world units with its charge in microcoulombs
//   - [Sample]: potential, field vector and magnitude at one point
//   - [Path]: an ordered polyline in world coordinates
//   - [HeatmapMode]: colour mapping selected for the scalar-field layer
//
// Charges are copied by value into snapshots (undo history, cache keys,
// exports); nothing outside the scene holds a reference to them.
//
// # Errors
//
// Sentinel errors live in this package so callers can test them with
// errors.Is regardless of which component produced them. [FrameError] carries
// the frame number and stage name of a failure inside the render loop.
package core

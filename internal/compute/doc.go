// Package compute evaluates the scalar field per pixel for the heatmap layer.
//
// Two evaluators implement the same superposition formula and colour modes:
//
//   - gl: a GLSL 3.30 fragment shader rendered into an offscreen framebuffer
//     and read back. Needs a current OpenGL context.
//   - cpu: the same shader written in Go, split into row bands across cores.
//     Always available.
//
// The shader binds charges through a fixed uniform array of MaxCharges
// entries. Packer clamps larger scenes to that limit and logs the overflow.
//
//	ev := compute.AutoSelect(glReady, logger)
//	u := packer.Pack(core.HeatmapPotential, false, charges, transform)
//	err := ev.Evaluate(ctx, img, &u)
package compute

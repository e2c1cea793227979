// Package viz is the terminal host: a Bubble Tea viewer that draws the
// field lines, flow particles and charges of a scene on a braille canvas.
//
// # Key Bindings
//
//	Space   - Pause/Resume flow particles
//	N / P   - Next / previous preset
//	Tab     - Select the next charge
//	Arrows  - Move the selected charge by one snap step
//	+ / -   - Change the selected charge by 0.5 µC
//	L       - Lock or unlock the selected charge
//	X       - Delete the selected charge
//	M       - Toggle the grounded mirror plane
//	U / R   - Undo / redo
//	?       - Show help overlay
package viz

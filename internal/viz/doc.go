// Package viz draws particle frames in the terminal.
//
// Frames are projected through an orbiting [Camera] onto a braille [Canvas]:
// links become lines, particles become dots. [Model] is a Bubble Tea program
// that steps a simulation live, and [Menu] lets the user pick a scenario and
// preset before handing over to it.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	R     - Rebuild the scenario
//	hjkl  - Orbit the camera
//	+/-   - Zoom
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz

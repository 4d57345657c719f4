// Package analysis characterises recorded particle motion.
//
//   - [Spectrum]: amplitude spectrum of a sampled coordinate
//   - [DominantFrequency]: strongest non-DC oscillation frequency
//   - [NewPhasePortrait]: position against velocity for one particle
//   - [NewPoincareSection]: phase points where a coordinate crosses a level
//
// Velocities are estimated from positions by central differences, so the
// tools work on stored runs that keep positions only.
//
//	freqs, amps, err := analysis.Spectrum(heights, dt)
//	f, _ := analysis.DominantFrequency(freqs, amps)
package analysis

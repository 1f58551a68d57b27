// Package analysis summarises contour passes over an animation run.
//
//   - [Stats]: segment count, filled cells and contour length of a pass
//   - [PowerSpectrum]: magnitude spectrum of a per-frame series
//   - [DominantFrequency]: strongest non-DC bin, in cycles per frame
//
// A breathing blob (two sources oscillating through each other) shows up
// as a clear peak in the length spectrum:
//
//	lengths := analysis.Series(stats, analysis.Length)
//	f := analysis.DominantFrequency(lengths)
package analysis

// ABOUTME: SLM calibration arithmetic
// ABOUTME: Converts meter readings into the SLM offset and presentation levels
package calibration

import "math"

// Offset computes the SLM offset from a meter reading taken while the
// calibration stimulus plays at calLevelDB (dB FS). The offset maps digital
// level to measured SPL: a 70 dB reading at -30 dB FS gives an offset of 100.
func Offset(slmReading, calLevelDB float64) float64 {
	return round1(slmReading - calLevelDB)
}

// AdjustedLevel computes the dB FS level needed to present desiredSPL
// through a system with the given SLM offset.
func AdjustedLevel(desiredSPL, slmOffset float64) float64 {
	return round1(desiredSPL - slmOffset)
}

// round1 rounds to one decimal, halves away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ABOUTME: Tests for SLM calibration arithmetic
// ABOUTME: Checks offset and presentation level math against known values
package calibration

import "testing"

func TestOffset(t *testing.T) {
	tests := []struct {
		reading    float64
		calLevelDB float64
		want       float64
	}{
		{70, -30, 100},
		{75, -30, 105},
		{70, -25, 95},
		{68.3, -30, 98.3},
		{70.04, -30, 100},
	}

	for _, tt := range tests {
		got := Offset(tt.reading, tt.calLevelDB)
		if got != tt.want {
			t.Errorf("Offset(%v, %v) = %v, want %v", tt.reading, tt.calLevelDB, got, tt.want)
		}
	}
}

func TestAdjustedLevel(t *testing.T) {
	tests := []struct {
		desiredSPL float64
		slmOffset  float64
		want       float64
	}{
		{75, 100, -25},
		{70, 100, -30},
		{80, 98.3, -18.3},
		// Rounding is half away from zero, and 75.55 - 100 lands just
		// below -24.45 in float64.
		{75.55, 100, -24.5},
	}

	for _, tt := range tests {
		got := AdjustedLevel(tt.desiredSPL, tt.slmOffset)
		if got != tt.want {
			t.Errorf("AdjustedLevel(%v, %v) = %v, want %v", tt.desiredSPL, tt.slmOffset, got, tt.want)
		}
	}
}

func TestOffsetAndAdjustedLevelRoundTrip(t *testing.T) {
	// Presenting at the adjusted level should yield the desired SPL:
	// reading = level + offset.
	offset := Offset(70, -30)
	level := AdjustedLevel(75, offset)

	if got := level + offset; got != 75 {
		t.Errorf("expected presentation at %v dB SPL, got %v", 75.0, got)
	}
}

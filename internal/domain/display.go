package domain

import "fmt"

// FormatClock renders seconds as M:SS. Minutes are not padded.
func FormatClock(seconds int) string {
	seconds = clampSeconds(seconds)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ProgressFraction returns the fill of the progress ring. With
// FixedProgressDenominator on it is measured against the 25 minute reference
// span, so it may exceed 1 for longer blocks. It is never clamped.
func ProgressFraction(s Session) float64 {
	denominator := ReferenceSpanSeconds
	if !s.Behavior.FixedProgressDenominator {
		denominator = s.PhaseDurationSeconds()
	}
	if denominator <= 0 {
		return 0
	}
	return float64(s.RemainingSeconds) / float64(denominator)
}

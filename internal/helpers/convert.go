// Package helpers provides small numeric utilities shared across the
// agent, mainly clamping user-supplied values to valid ranges.
package helpers

// ClampInt restricts v to the range [lowerLimit, upperLimit].
func ClampInt(v, lowerLimit, upperLimit int) int {
	if v < lowerLimit {
		return lowerLimit
	}
	if v > upperLimit {
		return upperLimit
	}
	return v
}

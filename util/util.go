// Package util contains misc internal utilities.
package util

// Limiter is an inclusive min/max range in engineering units (degrees, for
// rotation stages).
type Limiter struct {
	Min float64 `json:"min" yaml:"Min"`
	Max float64 `json:"max" yaml:"Max"`
}

// Check returns true if the value is within the limits, boundary included.
func (l Limiter) Check(v float64) bool {
	return l.Min <= v && v <= l.Max
}

// Valid returns true if the limiter is ordered, min <= max.
func (l Limiter) Valid() bool {
	return l.Min <= l.Max
}

// Clamp restricts a value to the range [low, high].
func Clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// Package util contains misc internal utilities.
package util

import "time"

// Limiter holds a min and max value and can check if a float falls
// between them
type Limiter struct {
	// Min is the lower limit, inclusive
	Min float64 `json:"min" yaml:"Min"`

	// Max is the upper limit, inclusive
	Max float64 `json:"max" yaml:"Max"`
}

// Check returns true if Min <= f <= Max
func (l Limiter) Check(f float64) bool {
	return f >= l.Min && f <= l.Max
}

// Clamp restricts x to the range [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SecsToDuration converts a floating point number of seconds to a Duration
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

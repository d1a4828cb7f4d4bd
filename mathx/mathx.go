// Package mathx provides small numeric helpers not found in the standard library
package mathx

import "math"

// Round rounds a float to the nearest "unit" (0.1 for tenth, 0.01 for hundredth, and so on).
func Round(x, unit float64) float64 {
	return float64(int64(x/unit+0.5)) * unit
}

// Logspace returns n log-uniformly spaced samples from start to stop,
// both inclusive.  start and stop must be positive.
func Logspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = start
		return out
	}
	l0 := math.Log10(start)
	step := (math.Log10(stop) - l0) / float64(n-1)
	for i := 0; i < n; i++ {
		out[i] = math.Pow(10, l0+float64(i)*step)
	}
	return out
}

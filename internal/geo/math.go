package geo

import "math"

// AverageZ returns the arithmetic mean of the finite elevations in s.
// Absent elevations count towards neither sum nor count; with none finite it is 0.
func AverageZ(s Sequence) float64 {
	var sum float64
	var n int
	for _, c := range s {
		if math.IsNaN(c.Z) || math.IsInf(c.Z, 0) {
			continue
		}
		sum += c.Z
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Round rounds v to the given number of decimal places. Negative places keep v.
func Round(v float64, places int) float64 {
	if places < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// Finite reports whether every argument is a finite number.
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

package estimator

import (
	"math"
	"strconv"
)

// round2 rounds a non-negative quantity to two decimals for display.
// Exact binary halves (x.xx5 with x*8 an odd integer) round up, matching
// how the reference exports format the same numbers.
func round2(x float64) float64 {
	if x8 := x * 8; x8 == math.Trunc(x8) && math.Mod(x8, 2) == 1 {
		return math.Ceil(x*100) / 100
	}
	return roundTo(x, 2)
}

func roundTo(x float64, digits int) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', digits, 64), 64)
	if err != nil {
		return x
	}
	return rounded
}

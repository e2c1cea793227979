package physics

import (
	"math"
	"strconv"
)

// FormatSI renders v with an SI prefix chosen from its magnitude.
func FormatSI(v float64, unit string) string {
	a := math.Abs(v)
	switch {
	case a >= 1e9:
		return strconv.FormatFloat(v/1e9, 'f', 2, 64) + " G" + unit
	case a >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 2, 64) + " M" + unit
	case a >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 2, 64) + " k" + unit
	case a >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64) + " " + unit
	case a >= 1e-3:
		return strconv.FormatFloat(v*1e3, 'f', 2, 64) + " m" + unit
	default:
		return strconv.FormatFloat(v, 'e', 2, 64) + " " + unit
	}
}

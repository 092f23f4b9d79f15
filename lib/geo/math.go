package geo

import (
	"math"

	"golang.org/x/exp/constraints"

	"oss.terrastruct.com/util-go/go2"
)

func EuclideanDistance(x1, y1, x2, y2 float64) float64 {
	if x1 == x2 {
		return math.Abs(y1 - y2)
	} else if y1 == y2 {
		return math.Abs(x1 - x2)
	} else {
		return math.Sqrt((x1-x2)*(x1-x2) + (y1-y2)*(y1-y2))
	}
}

func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return go2.Max(lo, go2.Min(v, hi))
}

// FloorDiv divides rounding toward negative infinity, so cells keep a
// constant width on both sides of the origin. d must be positive.
func FloorDiv(n, d int) int {
	q := n / d
	if n%d != 0 && n < 0 {
		q--
	}
	return q
}

package math

import "math"

// AddInt64 returns x+y and whether the addition stayed within the int64 range.
func AddInt64(x, y int64) (int64, bool) {
	sum := x + y
	if (y > 0 && sum < x) || (y < 0 && sum > x) {
		return 0, false
	}
	return sum, true
}

// SubInt64 returns x-y and whether the subtraction stayed within the int64 range.
func SubInt64(x, y int64) (int64, bool) {
	difference := x - y
	if (y > 0 && difference > x) || (y < 0 && difference < x) {
		return 0, false
	}
	return difference, true
}

// NegateInt64 returns -x and whether the negation is representable.
func NegateInt64(x int64) (int64, bool) {
	if x == math.MinInt64 {
		return 0, false
	}
	return -x, true
}

// AbsInt64 returns |x| and whether the result is representable.
func AbsInt64(x int64) (int64, bool) {
	if x < 0 {
		return NegateInt64(x)
	}
	return x, true
}

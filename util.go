package collide

import (
	"math"

	"golang.org/x/exp/constraints"
)

const Infinity = math.MaxFloat64

const magicEpsilon = 1e-5

func Clamp[T constraints.Ordered](v, min, max T) T {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func Lerp(f1, f2, t float64) float64 {
	return f1*(1.0-t) + f2*t
}

func assert(truth bool, msg string) {
	if !truth {
		panic("Assertion failed: " + msg)
	}
}

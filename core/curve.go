package core

import "math"

// frac01 maps any real t to [0,1) using the positive-remainder convention:
// frac01(t+k) == frac01(t) for any integer k, and 0 <= frac01(t) < 1.
func frac01(t float64) float64 {
	f := t - math.Floor(t)
	if f < 0 {
		f += 1.0
	}
	if f >= 1.0 {
		f -= 1.0
	}
	return f
}

// sampleCurve evaluates a curve entry at elapsed time, returning the raw
// (pre-dither) complex value: cloud curves take the sample at
// floor(rawIdx) (clamped to the last index); polylines interpolate linearly between
// floor(rawIdx) and the next point, wrapping at the end.
func sampleCurve(entry CurveEntry, elapsed float64) complex128 {
	dir := 1.0
	if entry.CCW {
		dir = -1.0
	}
	t := elapsed * entry.Speed * dir
	u := frac01(t)
	n := len(entry.Curve.Points)
	rawIdx := u * float64(n)

	if entry.Curve.IsCloud {
		k := int(rawIdx)
		if k >= n {
			k = n - 1
		}
		return entry.Curve.Points[k]
	}

	lo := int(rawIdx)
	if lo >= n {
		lo = n - 1
	}
	hi := lo + 1
	if hi == n {
		hi = 0
	}
	frac := rawIdx - float64(lo)
	a, b := entry.Curve.Points[lo], entry.Curve.Points[hi]
	return a*complex(1-frac, 0) + b*complex(frac, 0)
}

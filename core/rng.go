package core

import "math"

// RngState is xorshift128 on four 32-bit words plus the cached spare from
// the Box-Muller Gaussian pair, threaded explicitly through dither/gauss
// calls instead of living as file-scope mutable state.
type RngState struct {
	s          [4]uint32
	gaussSpare float64
	hasSpare   bool
}

// Seed sets the four xorshift words, substituting a fixed non-zero tuple
// when the caller passes all-zero (an all-zero xorshift128 state never
// produces anything but zero).
func (r *RngState) Seed(seed [4]uint32) {
	r.s = seed
	if r.s[0] == 0 && r.s[1] == 0 && r.s[2] == 0 && r.s[3] == 0 {
		r.s = [4]uint32{0xDEADBEEF, 0x12345678, 0xABCDEF01, 0x87654321}
	}
	r.hasSpare = false
}

func (r *RngState) next() uint32 {
	t := r.s[3]
	s := r.s[0]
	r.s[3] = r.s[2]
	r.s[2] = r.s[1]
	r.s[1] = s
	t ^= t << 11
	t ^= t >> 8
	r.s[0] = t ^ s ^ (s >> 19)
	return r.s[0]
}

// Uniform returns a value in [0, 1).
func (r *RngState) Uniform() float64 {
	return float64(r.next()>>1) / 2147483648.0
}

// Gauss returns a standard-normal sample via Box-Muller, caching the spare.
func (r *RngState) Gauss() float64 {
	if r.hasSpare {
		r.hasSpare = false
		return r.gaussSpare
	}
	var u float64
	for u == 0 {
		u = r.Uniform()
	}
	v := r.Uniform()
	radius := math.Sqrt(-2.0 * math.Log(u))
	theta := 2.0 * math.Pi * v
	r.gaussSpare = radius * math.Sin(theta)
	r.hasSpare = true
	return radius * math.Cos(theta)
}

// Dither returns gauss() for DitherGaussian or a symmetric uniform sample
// in [-1, 1) for DitherUniform.
func (r *RngState) Dither(dist DitherDist) float64 {
	if dist == DitherUniform {
		return (r.Uniform() - 0.5) * 2.0
	}
	return r.Gauss()
}

package core

import (
	"math"
	"testing"
)

// TestRankNorm_Idempotence covers property #6: re-running rankNorm on its
// own output (already in [0,1], already sorted-compatible) reproduces the
// same values, and the output stays within [0,1].
func TestRankNorm_Idempotence(t *testing.T) {
	raw := []float64{3.5, 1.0, 1.0, 9.0, 0.0, 4.2}
	n := len(raw)
	first := make([]float64, n)
	rankNorm(raw, first)
	for _, v := range first {
		if v < 0 || v > 1 {
			t.Fatalf("rankNorm produced %v outside [0,1]", v)
		}
	}

	second := make([]float64, n)
	rankNorm(first, second)

	// Idempotent: second[i] == first[i]. Order-preserving: if
	// first[i] < first[j] then second[i] < second[j]; if first[i] == first[j]
	// then second[i] == second[j].
	for i := 0; i < n; i++ {
		if !nearlyEqual(second[i], first[i], 1e-12) {
			t.Errorf("not idempotent at %d: first=%v second=%v", i, first[i], second[i])
		}
		for j := 0; j < n; j++ {
			if first[i] < first[j] && !(second[i] < second[j]) {
				t.Errorf("order not preserved at (%d,%d): first=%v/%v second=%v/%v", i, j, first[i], first[j], second[i], second[j])
			}
			if first[i] == first[j] && second[i] != second[j] {
				t.Errorf("ties not preserved at (%d,%d): first=%v second=%v", i, j, first[i], second[i])
			}
		}
	}
}

func TestRankNorm_AllEqualYieldsHalf(t *testing.T) {
	raw := []float64{7, 7, 7, 7}
	out := make([]float64, len(raw))
	rankNorm(raw, out)
	for i, v := range out {
		if !nearlyEqual(v, 0.5, 1e-12) {
			t.Errorf("out[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestRankNorm_NaNAndInfTreatedAsMax(t *testing.T) {
	raw := []float64{1, 2, math.NaN(), math.Inf(1)}
	out := make([]float64, len(raw))
	rankNorm(raw, out)
	// NaN and +Inf both collapse to the max finite observed value (2), so
	// they tie with the 2 itself; ties share the lowest rank (1), which
	// normalizes to 1/(n-1) = 1/3.
	if out[2] != out[3] {
		t.Errorf("NaN and +Inf should rank identically: got %v and %v", out[2], out[3])
	}
	if out[2] != 1.0/3.0 || out[1] != out[2] {
		t.Errorf("NaN/+Inf slot should tie with the max finite value at rank 1/3, got %v (max finite %v)", out[2], out[1])
	}
	if out[0] != 0.0 {
		t.Errorf("smallest value should rank 0.0, got %v", out[0])
	}
}

func TestRankNorm_SingleElement(t *testing.T) {
	raw := []float64{42}
	out := make([]float64, 1)
	rankNorm(raw, out)
	if out[0] != 0.5 {
		t.Errorf("single-element rankNorm = %v, want 0.5", out[0])
	}
}

// TestProject_CanvasBounds covers property #10: centered point maps to the
// canvas midpoint, and points outside [-range,range] report ok=false.
func TestProject_CanvasBounds(t *testing.T) {
	w, h := 100, 80
	rng := 2.0
	ix, iy, ok := project(0, 0, 0, 0, rng, w, h)
	if !ok {
		t.Fatal("center point should project inside canvas")
	}
	if ix != w/2 || iy != h/2 {
		t.Errorf("center projected to (%d,%d), want (%d,%d)", ix, iy, w/2, h/2)
	}

	_, _, ok = project(10, 10, 0, 0, rng, w, h)
	if ok {
		t.Error("far outside point should not project inside canvas")
	}

	// Top-left corner of the visible range.
	ix, iy, ok = project(-rng, rng, 0, 0, rng, w, h)
	if !ok {
		t.Fatal("range-boundary point should still be considered for projection")
	}
	if ix < 0 || ix > w || iy < 0 || iy > h {
		t.Errorf("boundary projected out of expected neighborhood: (%d,%d)", ix, iy)
	}
}

func TestProject_CenterOffset(t *testing.T) {
	w, h := 100, 100
	ix, iy, ok := project(5, 5, 5, 5, 2.0, w, h)
	if !ok {
		t.Fatal("point at the configured center should project inside canvas")
	}
	if ix != w/2 || iy != h/2 {
		t.Errorf("offset center projected to (%d,%d), want (%d,%d)", ix, iy, w/2, h/2)
	}
}

// TestSensitivity_PaletteIndexBounds covers property #9: derivative-mode
// palette indices stay within [0,15] even for degenerate sensitivity inputs.
func TestSensitivity_PaletteIndexBounds(t *testing.T) {
	cRe := []float64{1, 0, -1}
	cIm := []float64{0, 0, 0}
	rootsRe := []float64{1.0000001, -1.0000001}
	rootsIm := []float64{0, 0}
	sel := []int{0}
	out := make([]float64, 2)
	sensitivity(cRe, cIm, rootsRe, rootsIm, sel, out)

	norm := make([]float64, 2)
	rankNorm(out, norm)
	for i, v := range norm {
		palIdx := int(v*15.0 + 0.5)
		if palIdx < 0 || palIdx > 15 {
			t.Errorf("root %d: palette index %d out of [0,15] (norm=%v)", i, palIdx, v)
		}
	}
}

func TestSensitivity_NearZeroDerivativeSentinel(t *testing.T) {
	// z^2 at z=0: p'(0) = 0, must report a large finite sentinel, not +Inf/NaN.
	cRe := []float64{1, 0, 0}
	cIm := []float64{0, 0, 0}
	rootsRe := []float64{0}
	rootsIm := []float64{0}
	out := make([]float64, 1)
	sensitivity(cRe, cIm, rootsRe, rootsIm, []int{0}, out)
	if math.IsInf(out[0], 0) || out[0] != out[0] {
		t.Fatalf("sensitivity at zero derivative returned non-finite sentinel: %v", out[0])
	}
	if out[0] < 1e100 {
		t.Errorf("expected a very large sentinel, got %v", out[0])
	}
}

package core

import "math"

// project maps a root position to integer canvas coordinates. ok is false
// when the root falls outside the canvas; the caller must drop it from the
// pixel list.
func project(re, im, centerX, centerY, rng float64, w, h int) (ix, iy int, ok bool) {
	ix = int(math.Floor(((re-centerX)/rng + 1) * 0.5 * float64(w)))
	iy = int(math.Floor((1 - (im-centerY)/rng) * 0.5 * float64(h)))
	ok = ix >= 0 && ix < w && iy >= 0 && iy < h
	return
}

// rankNorm maps n scalars to [0,1] into result: +Inf/NaN are treated as the
// maximum finite value, ties share the lowest rank, and the result is
// divided by (n-1). d==1 or all-equal inputs yield 0.5 for every entry.
// Sort is insertion sort — d is small and, frame to frame, nearly sorted
// already. result must have the same length as raw; no allocation occurs.
func rankNorm(raw, result []float64) {
	n := len(raw)

	maxFinite := math.Inf(-1)
	for _, v := range raw {
		if v == v && v < 1e300 && v > maxFinite {
			maxFinite = v
		}
	}
	if maxFinite == math.Inf(-1) {
		for i := range result {
			result[i] = 0.5
		}
		return
	}

	var valsArr [maxDegree]float64
	var idxsArr [maxDegree]int
	vals, idxs := valsArr[:n], idxsArr[:n]
	for i, v := range raw {
		if v == v && v < 1e300 {
			vals[i] = v
		} else {
			vals[i] = maxFinite
		}
		idxs[i] = i
	}

	for i := 1; i < n; i++ {
		v, ix := vals[i], idxs[i]
		j := i - 1
		for j >= 0 && vals[j] > v {
			vals[j+1] = vals[j]
			idxs[j+1] = idxs[j]
			j--
		}
		vals[j+1] = v
		idxs[j+1] = ix
	}
	if vals[0] == vals[n-1] {
		for i := range result {
			result[i] = 0.5
		}
		return
	}

	rank := 0
	for p := 0; p < n; p++ {
		if p > 0 && vals[p] != vals[p-1] {
			rank = p
		}
		result[idxs[p]] = float64(rank)
	}
	maxRank := n - 1
	if maxRank == 0 {
		for i := range result {
			result[i] = 0.5
		}
		return
	}
	for i := range result {
		result[i] /= float64(maxRank)
	}
}

// sensitivity computes s_i = (Σ_{k in sel} |z_i|^(deg-k)) / |p'(z_i)| for
// every root into out. A near-zero derivative reports a very large finite
// sentinel rather than true +Inf, keeping rankNorm's arithmetic
// well-defined. out must have the same length as rootsRe; no allocation
// occurs.
func sensitivity(cRe, cIm []float64, rootsRe, rootsIm []float64, sel []int, out []float64) {
	deg := len(cRe) - 1

	var pows [maxCoeffs]float64
	for j := range rootsRe {
		zRe, zIm := rootsRe[j], rootsIm[j]
		_, _, dpRe, dpIm := hornerPD(cRe, cIm, zRe, zIm)
		dpMag2 := dpRe*dpRe + dpIm*dpIm
		if dpMag2 < newtonTol2 {
			out[j] = 1e300
			continue
		}
		dpMag := math.Sqrt(dpMag2)
		rMag := math.Sqrt(zRe*zRe + zIm*zIm)
		pows[0] = 1.0
		for k := 1; k <= deg; k++ {
			pows[k] = pows[k-1] * rMag
		}
		sum := 0.0
		for _, s := range sel {
			sum += pows[deg-s]
		}
		out[j] = sum / dpMag
	}
}

// RankNorm is the exported form of rankNorm, for tools that want to
// rank-normalize a score vector outside of a running step loop (e.g. the
// animate command's post-hoc histogram).
func RankNorm(raw, result []float64) { rankNorm(raw, result) }

// Sensitivity is the exported form of sensitivity, for the same purpose.
func Sensitivity(cRe, cIm []float64, rootsRe, rootsIm []float64, sel []int, out []float64) {
	sensitivity(cRe, cIm, rootsRe, rootsIm, sel, out)
}

// colorUniform assigns the single configured RGB to every root.
func colorUniform(c *Core, re, im []float64, pc *int) {
	b := c.Buf
	for i := range re {
		ix, iy, ok := project(re[i], im[i], c.Cfg.CenterX, c.Cfg.CenterY, c.Cfg.Range, c.Cfg.CanvasW, c.Cfg.CanvasH)
		if !ok {
			continue
		}
		b.PaintIdx[*pc] = iy*c.Cfg.CanvasW + ix
		b.PaintR[*pc] = c.Cfg.UniformR
		b.PaintG[*pc] = c.Cfg.UniformG
		b.PaintB[*pc] = c.Cfg.UniformB
		*pc++
	}
}

// colorIndex assigns each root's per-root palette entry after matching has
// reordered the solved roots to track predecessor identity.
func colorIndex(c *Core, re, im []float64, pc *int) {
	b := c.Buf
	for i := range re {
		ix, iy, ok := project(re[i], im[i], c.Cfg.CenterX, c.Cfg.CenterY, c.Cfg.Range, c.Cfg.CanvasW, c.Cfg.CanvasH)
		if !ok {
			continue
		}
		b.PaintIdx[*pc] = iy*c.Cfg.CanvasW + ix
		b.PaintR[*pc] = b.ColorsR[i]
		b.PaintG[*pc] = b.ColorsG[i]
		b.PaintB[*pc] = b.ColorsB[i]
		*pc++
	}
}

// colorProximity colors each root by how close it is to its nearest
// neighbor, normalized against a running high-water mark that decays by
// 0.999 every step. proxRunMax resets to 1.0 at the start of every
// RunStepLoop call; it does not persist across invocations.
func colorProximity(c *Core, re, im []float64, pc *int) {
	n := len(re)
	b := c.Buf
	var minDist [maxDegree]float64
	for i := range minDist[:n] {
		minDist[i] = 1e300
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := re[i] - re[j]
			dy := im[i] - im[j]
			d2 := dx*dx + dy*dy
			if d2 < minDist[i] {
				minDist[i] = d2
			}
			if d2 < minDist[j] {
				minDist[j] = d2
			}
		}
	}
	for i := 0; i < n; i++ {
		minDist[i] = math.Sqrt(minDist[i])
		if minDist[i] > c.proxRunMax {
			c.proxRunMax = minDist[i]
		}
	}
	c.proxRunMax *= 0.999

	for i := 0; i < n; i++ {
		ix, iy, ok := project(re[i], im[i], c.Cfg.CenterX, c.Cfg.CenterY, c.Cfg.Range, c.Cfg.CanvasW, c.Cfg.CanvasH)
		if !ok {
			continue
		}
		t := 1.0
		if c.proxRunMax > 0 {
			t = minDist[i] / c.proxRunMax
			if t > 1.0 {
				t = 1.0
			}
			t = 1.0 - t
		}
		palIdx := int(t * 15.0)
		if palIdx > 15 {
			palIdx = 15
		}
		b.PaintIdx[*pc] = iy*c.Cfg.CanvasW + ix
		b.PaintR[*pc] = b.ProxPalette.R[palIdx]
		b.PaintG[*pc] = b.ProxPalette.G[palIdx]
		b.PaintB[*pc] = b.ProxPalette.B[palIdx]
		*pc++
	}
}

// colorDerivative colors each root by its rank-normalized sensitivity
// score.
func colorDerivative(c *Core, workCRe, workCIm []float64, re, im []float64, pc *int) {
	b := c.Buf
	n := len(re)
	var rawArr, normArr [maxDegree]float64
	raw, norm := rawArr[:n], normArr[:n]
	sensitivity(workCRe, workCIm, re, im, b.SelIndices, raw)
	rankNorm(raw, norm)
	for i := range re {
		ix, iy, ok := project(re[i], im[i], c.Cfg.CenterX, c.Cfg.CenterY, c.Cfg.Range, c.Cfg.CanvasW, c.Cfg.CanvasH)
		if !ok {
			continue
		}
		palIdx := int(norm[i]*15.0 + 0.5)
		if palIdx > 15 {
			palIdx = 15
		}
		b.PaintIdx[*pc] = iy*c.Cfg.CanvasW + ix
		b.PaintR[*pc] = b.DerivPalette.R[palIdx]
		b.PaintG[*pc] = b.DerivPalette.G[palIdx]
		b.PaintB[*pc] = b.DerivPalette.B[palIdx]
		*pc++
	}
}

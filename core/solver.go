package core

import "math"

// SolveEA refines all roots of the polynomial (cRe, cIm) simultaneously via
// Ehrlich–Aberth iteration, writing finite results back into warmRe/warmIm
// in place. Non-finite slots are left untouched. This is the standalone
// entry point for one-shot solves; it is also the engine the step loop
// calls per step with trackIter=false.
//
// When trackIter is true, a root that converges (its correction falls below
// tolerance) freezes immediately and is skipped in later iterations;
// iterCounts[i] receives the 1-based iteration it froze on, or solverIter if
// it never did. iterCounts may be nil when trackIter is false.
//
// Returns the effective degree actually solved (0 if the polynomial
// collapsed to a constant after stripping near-zero leading coefficients).
func SolveEA(cRe, cIm []float64, warmRe, warmIm []float64, trackIter bool, iterCounts []byte) int {
	nCoeffs := len(cRe)

	start := 0
	for start < nCoeffs-1 && cRe[start]*cRe[start]+cIm[start]*cIm[start] < stripTol2 {
		start++
	}
	degree := nCoeffs - 1 - start
	if degree <= 0 {
		return 0
	}

	if degree == 1 {
		aR, aI := cRe[start], cIm[start]
		bR, bI := cRe[start+1], cIm[start+1]
		d := aR*aR + aI*aI
		if d < stripTol2 {
			return degree
		}
		warmRe[0] = -(bR*aR + bI*aI) / d
		warmIm[0] = -(bI*aR - bR*aI) / d
		if trackIter && iterCounts != nil {
			iterCounts[0] = 1
		}
		return degree
	}

	n := nCoeffs - start
	cr := cRe[start : start+n]
	ci := cIm[start : start+n]

	// Fixed-size stack scratch sized to the degree cap: no heap allocation
	// on this hot path.
	var rReArr, rImArr [maxDegree]float64
	rRe, rIm := rReArr[:degree], rImArr[:degree]
	copy(rRe, warmRe[:degree])
	copy(rIm, warmIm[:degree])

	var convArr [maxDegree]bool
	conv := convArr[:degree]

	maxIter := solverIter
	lastIter := maxIter
	for iter := 0; iter < maxIter; iter++ {
		maxCorr2 := 0.0

		for i := 0; i < degree; i++ {
			if trackIter && conv[i] {
				continue
			}

			zR, zI := rRe[i], rIm[i]

			// Horner: evaluate p(z) and p'(z) in one pass.
			pR, pI := cr[0], ci[0]
			dpR, dpI := 0.0, 0.0
			for k := 1; k < n; k++ {
				ndR := dpR*zR - dpI*zI + pR
				ndI := dpR*zI + dpI*zR + pI
				dpR, dpI = ndR, ndI
				npR := pR*zR - pI*zI + cr[k]
				npI := pR*zI + pI*zR + ci[k]
				pR, pI = npR, npI
			}

			dpMag2 := dpR*dpR + dpI*dpI
			if dpMag2 < newtonTol2 {
				continue
			}
			wR := (pR*dpR + pI*dpI) / dpMag2
			wI := (pI*dpR - pR*dpI) / dpMag2

			sR, sI := 0.0, 0.0
			for j := 0; j < degree; j++ {
				if j == i {
					continue
				}
				dR := zR - rRe[j]
				dI := zI - rIm[j]
				dMag2 := dR*dR + dI*dI
				if dMag2 < aberthTol2 {
					continue
				}
				sR += dR / dMag2
				sI += -dI / dMag2
			}

			wsR := wR*sR - wI*sI
			wsI := wR*sI + wI*sR
			dnR := 1 - wsR
			dnI := -wsI
			dnMag2 := dnR*dnR + dnI*dnI
			if dnMag2 < aberthTol2 {
				continue
			}

			corrR := (wR*dnR + wI*dnI) / dnMag2
			corrI := (wI*dnR - wR*dnI) / dnMag2

			rRe[i] -= corrR
			rIm[i] -= corrI

			h2 := corrR*corrR + corrI*corrI
			if h2 > maxCorr2 {
				maxCorr2 = h2
			}
			if trackIter && h2 < solverTol2 {
				conv[i] = true
				if iterCounts != nil {
					iterCounts[i] = byte(iter + 1)
				}
			}
		}

		if maxCorr2 < solverTol2 {
			lastIter = iter
			if trackIter && iterCounts != nil {
				for i := 0; i < degree; i++ {
					if !conv[i] {
						conv[i] = true
						iterCounts[i] = byte(iter + 1)
					}
				}
			}
			break
		}
	}
	_ = lastIter

	if trackIter && iterCounts != nil {
		for i := 0; i < degree; i++ {
			if !conv[i] {
				iterCounts[i] = solverIter
			}
		}
	}

	for i := 0; i < degree; i++ {
		if !math.IsNaN(rRe[i]) && !math.IsNaN(rIm[i]) && !math.IsInf(rRe[i], 0) && !math.IsInf(rIm[i], 0) {
			warmRe[i] = rRe[i]
			warmIm[i] = rIm[i]
		}
		// else: non-finite; leave warm-start unchanged, preserving the prior trajectory.
	}

	return degree
}

// hornerPD evaluates p(z) and p'(z) for coefficients c[0..deg] (descending
// powers) via the same interleaved Horner recurrence SolveEA uses.
func hornerPD(cRe, cIm []float64, zRe, zIm float64) (pRe, pIm, dpRe, dpIm float64) {
	pRe, pIm = cRe[0], cIm[0]
	for k := 1; k < len(cRe); k++ {
		ndR := dpRe*zRe - dpIm*zIm + pRe
		ndI := dpRe*zIm + dpIm*zRe + pIm
		dpRe, dpIm = ndR, ndI
		npR := pRe*zRe - pIm*zIm + cRe[k]
		npI := pRe*zIm + pIm*zRe + cIm[k]
		pRe, pIm = npR, npI
	}
	return
}

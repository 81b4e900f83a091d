package core

import "math"

// morphAngle carries the recurrence state for θ = 2π·rate·elapsed, updated
// by multiplying a per-step rotor instead of calling cos/sin every step.
type morphAngle struct {
	cosT, sinT float64
	cosD, sinD float64
}

// seed initializes (cosT, sinT) from the absolute elapsed offset at
// stepStart and computes the per-step rotor (cosD, sinD) from the morph
// rate, matching step_loop.c's theta0/dTheta derivation exactly.
func (m *morphAngle) seed(caps Capabilities, rate, fps float64, totalSteps, stepStart int, elapsedOffset float64) {
	dTheta := 2.0 * math.Pi * rate * fps / float64(totalSteps)
	theta0 := 2.0 * math.Pi * rate * (elapsedOffset + (float64(stepStart)/float64(totalSteps))*fps)
	m.cosT, m.sinT = caps.Cos(theta0), caps.Sin(theta0)
	m.cosD, m.sinD = caps.Cos(dTheta), caps.Sin(dTheta)
}

// advance applies the rotor recurrence and renormalizes every 1024 steps to
// bound accumulated drift.
func (m *morphAngle) advance(relativeStep int) {
	nc := m.cosT*m.cosD - m.sinT*m.sinD
	ns := m.sinT*m.cosD + m.cosT*m.sinD
	m.cosT, m.sinT = nc, ns
	if relativeStep&1023 == 0 {
		invLen := 1.0 / math.Sqrt(m.cosT*m.cosT+m.sinT*m.sinT)
		m.cosT *= invLen
		m.sinT *= invLen
	}
}

// nearZero reports whether θ is close enough to 0 that the morph blend
// should be skipped outright, avoiding floating-point noise at the home
// position (mirrors step_loop.c's guard before the blend block).
func (m *morphAngle) nearZero() bool {
	return m.cosT >= 1.0-1e-14 && m.sinT > -1e-14 && m.sinT < 1e-14
}

// assembleStep runs the full §4.2 pipeline (a)→(g), writing the working
// polynomial into c.Buf.WorkCoeffsRe/Im (and, when morph is enabled, the
// morph-target polynomial into MorphWorkRe/Im).
func assembleStep(c *Core, elapsed float64, angle *morphAngle) {
	cfg := &c.Cfg
	b := c.Buf
	nc := cfg.NCoeffs

	// (a) Reset to base — only when jiggle is enabled. When disabled,
	// WorkCoeffsRe/Im is a persistent scratch buffer: Bind seeds it once
	// from CoeffsRe/Im, and each step's writes carry over to the next. With
	// morph disabled only the indices a C-entry touches ever change, so the
	// other indices keep the (static) base value without a per-step copy;
	// with morph enabled the blend and envelope dither rewrite every index.
	if cfg.HasJiggle {
		copy(b.WorkCoeffsRe[:nc], b.CoeffsRe[:nc])
		copy(b.WorkCoeffsIm[:nc], b.CoeffsIm[:nc])
	}

	// (b) C-curve overlay + dither.
	for _, e := range b.CEntries {
		v := sampleCurve(e, elapsed)
		b.WorkCoeffsRe[e.CoeffIndex] = real(v)
		b.WorkCoeffsIm[e.CoeffIndex] = imag(v)
		if e.DitherSig > 0 {
			b.WorkCoeffsRe[e.CoeffIndex] += c.Rng.Dither(e.DitherDist) * e.DitherSig
			b.WorkCoeffsIm[e.CoeffIndex] += c.Rng.Dither(e.DitherDist) * e.DitherSig
		}
	}

	if cfg.MorphEnabled {
		// (c) D-curve overlay. MorphWorkRe/Im is likewise persistent
		// scratch, seeded once from MorphTargetBaseRe/Im by Bind.
		for _, e := range b.DEntries {
			v := sampleCurve(e, elapsed)
			b.MorphWorkRe[e.CoeffIndex] = real(v)
			b.MorphWorkIm[e.CoeffIndex] = imag(v)
			if e.DitherSig > 0 {
				b.MorphWorkRe[e.CoeffIndex] += c.Rng.Dither(e.DitherDist) * e.DitherSig
				b.MorphWorkIm[e.CoeffIndex] += c.Rng.Dither(e.DitherDist) * e.DitherSig
			}
		}

		// (d) Follow-C copy.
		for _, f := range b.FollowC {
			b.MorphWorkRe[f] = b.WorkCoeffsRe[f]
			b.MorphWorkIm[f] = b.WorkCoeffsIm[f]
		}

		// (e) Morph blend, (f) envelope dither — skipped when θ≈0.
		if !angle.nearZero() {
			blendMorph(cfg, b, angle, nc)
			ditherEnvelope(cfg, &c.Rng, b, angle, nc)
		}
	}

	// (g) Jiggle.
	if cfg.HasJiggle {
		for i := 0; i < nc; i++ {
			b.WorkCoeffsRe[i] += b.JiggleRe[i]
			b.WorkCoeffsIm[i] += b.JiggleIm[i]
		}
	}
}

// blendMorph crossfades the working coefficients toward the morph target:
// the line path is a linear crossfade; circle/ellipse/figure-8 sweep a
// perpendicular offset around the C-D midpoint.
func blendMorph(cfg *Config, b *Buffers, angle *morphAngle, nc int) {
	cosT, sinT := angle.cosT, angle.sinT

	if cfg.MorphPathType == MorphLine {
		mu := 0.5 - 0.5*cosT
		omu := 1.0 - mu
		for m := 0; m < nc; m++ {
			b.WorkCoeffsRe[m] = b.WorkCoeffsRe[m]*omu + b.MorphWorkRe[m]*mu
			b.WorkCoeffsIm[m] = b.WorkCoeffsIm[m]*omu + b.MorphWorkIm[m]*mu
		}
		return
	}

	sign := -1.0
	if cfg.MorphCCW {
		sign = 1.0
	}
	sin2T := 2.0 * sinT * cosT
	for m := 0; m < nc; m++ {
		cR, cI := b.WorkCoeffsRe[m], b.WorkCoeffsIm[m]
		dR, dI := b.MorphWorkRe[m], b.MorphWorkIm[m]
		dx, dy := dR-cR, dI-cI
		len2 := dx*dx + dy*dy
		if len2 < 1e-30 {
			continue // C ≈ D: keep C unchanged (morph singularity).
		}
		length := math.Sqrt(len2)
		ux, uy := dx/length, dy/length
		vx, vy := -uy, ux
		midR, midI := (cR+dR)*0.5, (cI+dI)*0.5
		semi := length * 0.5
		lx := -semi * cosT

		var ly float64
		switch cfg.MorphPathType {
		case MorphCircle:
			ly = sign * semi * sinT
		case MorphEllipse:
			ly = sign * (cfg.MorphEllipseMinor * semi) * sinT
		default: // MorphFigure8
			ly = sign * (semi * 0.5) * sin2T
		}
		b.WorkCoeffsRe[m] = midR + lx*ux + ly*vx
		b.WorkCoeffsIm[m] = midI + lx*uy + ly*vy
	}
}

// ditherEnvelope adds phase-weighted uniform noise to the working coefficients.
func ditherEnvelope(cfg *Config, rng *RngState, b *Buffers, angle *morphAngle, nc int) {
	if cfg.MorphDitherStart <= 0 && cfg.MorphDitherMid <= 0 && cfg.MorphDitherEnd <= 0 {
		return
	}
	cosT, sinT := angle.cosT, angle.sinT
	startEnv := 0.0
	if cosT > 0 {
		startEnv = cosT * cosT
	}
	endEnv := 0.0
	if cosT < 0 {
		endEnv = cosT * cosT
	}
	sigma := cfg.MorphDitherStart*startEnv + cfg.MorphDitherMid*sinT*sinT + cfg.MorphDitherEnd*endEnv
	if sigma <= 0 {
		return
	}
	for m := 0; m < nc; m++ {
		b.WorkCoeffsRe[m] += (rng.Uniform() - 0.5) * 2.0 * sigma
		b.WorkCoeffsIm[m] += (rng.Uniform() - 0.5) * 2.0 * sigma
	}
}

package core

import "math"

// Capabilities supplies the transcendental functions and progress callback
// the step loop calls out for: cos, sin, log, reportProgress. The original
// WASM core imported these from its JS host because it had no libm; a Go
// rewrite has math.Sin/Cos/Log available directly, so DefaultCapabilities
// simply wraps the standard library. The interface is kept so a host that
// wants a lookup-table approximation, or that wants to observe every
// progress tick, can still supply its own.
type Capabilities interface {
	Cos(x float64) float64
	Sin(x float64) float64
	Log(x float64) float64
	ReportProgress(relativeStep int)
}

// DefaultCapabilities implements Capabilities with the standard math
// package and a no-op progress callback.
type DefaultCapabilities struct{}

func (DefaultCapabilities) Cos(x float64) float64 { return math.Cos(x) }
func (DefaultCapabilities) Sin(x float64) float64 { return math.Sin(x) }
func (DefaultCapabilities) Log(x float64) float64 { return math.Log(x) }
func (DefaultCapabilities) ReportProgress(int)    {}

// RunStepLoop executes steps [stepStart, stepEnd) and returns the number of
// pixels written to Buf.PaintIdx/R/G/B. caps may be nil, in which case
// DefaultCapabilities is used.
func (c *Core) RunStepLoop(caps Capabilities, stepStart, stepEnd int, elapsedOffset float64) int {
	if caps == nil {
		caps = DefaultCapabilities{}
	}
	cfg := &c.Cfg
	b := c.Buf
	nr := cfg.NRoots
	nc := cfg.NCoeffs

	pc := 0
	c.proxRunMax = 1.0 // does not persist across invocations

	var angle morphAngle
	if cfg.MorphEnabled {
		angle.seed(caps, cfg.MorphRate, cfg.FPS, cfg.TotalSteps, stepStart, elapsedOffset)
	}

	for step := stepStart; step < stepEnd; step++ {
		relStep := step - stepStart
		elapsed := elapsedOffset + (float64(step)/float64(cfg.TotalSteps))*cfg.FPS

		assembleStep(c, elapsed, &angle)
		if cfg.MorphEnabled {
			angle.advance(relStep)
		}

		// Solve from the previous (persistent) root positions.
		copy(b.ScratchRe[:nr], b.RootsRe[:nr])
		copy(b.ScratchIm[:nr], b.RootsIm[:nr])
		SolveEA(b.WorkCoeffsRe[:nc], b.WorkCoeffsIm[:nc], b.ScratchRe[:nr], b.ScratchIm[:nr], false, nil)

		// NaN rescue: place any still-NaN root on the unit circle.
		for i := 0; i < nr; i++ {
			if b.ScratchRe[i] != b.ScratchRe[i] || b.ScratchIm[i] != b.ScratchIm[i] {
				angle2 := (2.0*math.Pi*float64(i))/float64(nr) + 0.37
				b.ScratchRe[i] = caps.Cos(angle2)
				b.ScratchIm[i] = caps.Sin(angle2)
			}
		}

		switch cfg.ColorMode {
		case ColorDerivative:
			if relStep%4 == 0 {
				matchGreedy(b.ScratchRe[:nr], b.ScratchIm[:nr], b.RootsRe[:nr], b.RootsIm[:nr])
			}
			copy(b.RootsRe[:nr], b.ScratchRe[:nr])
			copy(b.RootsIm[:nr], b.ScratchIm[:nr])
			colorDerivative(c, b.WorkCoeffsRe[:nc], b.WorkCoeffsIm[:nc], b.RootsRe[:nr], b.RootsIm[:nr], &pc)

		case ColorProximity:
			copy(b.RootsRe[:nr], b.ScratchRe[:nr])
			copy(b.RootsIm[:nr], b.ScratchIm[:nr])
			colorProximity(c, b.RootsRe[:nr], b.RootsIm[:nr], &pc)

		case ColorUniform:
			copy(b.RootsRe[:nr], b.ScratchRe[:nr])
			copy(b.RootsIm[:nr], b.ScratchIm[:nr])
			colorUniform(c, b.RootsRe[:nr], b.RootsIm[:nr], &pc)

		default: // ColorIndex
			matchStep(cfg.MatchStrategy, relStep, b.ScratchRe[:nr], b.ScratchIm[:nr], b.RootsRe[:nr], b.RootsIm[:nr])
			copy(b.RootsRe[:nr], b.ScratchRe[:nr])
			copy(b.RootsIm[:nr], b.ScratchIm[:nr])
			colorIndex(c, b.RootsRe[:nr], b.RootsIm[:nr], &pc)
		}

		if relStep%progressEvery == 0 {
			caps.ReportProgress(relStep)
		}
	}

	return pc
}

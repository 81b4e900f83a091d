// Package core implements the Ehrlich–Aberth root solver, coefficient
// assembler, root matcher and colorizer that together compute one animation
// step of a complex-polynomial-root visualizer.
package core

import "fmt"

// ColorMode selects how a solved root is turned into a pixel color.
type ColorMode int

const (
	ColorUniform ColorMode = iota
	ColorIndex
	ColorProximity
	ColorDerivative
)

// MatchStrategy selects how freshly solved roots are reordered against
// their predecessors.
type MatchStrategy int

const (
	MatchAssign4 MatchStrategy = iota // greedy every 4th step
	MatchGreedy1                      // greedy every step
	MatchHungarian1                   // Hungarian when degree <= hungarianMax
)

// MorphPath selects the parametric path a coefficient's morph blend follows.
type MorphPath int

const (
	MorphLine MorphPath = iota
	MorphCircle
	MorphEllipse
	MorphFigure8
)

// DitherDist selects the noise distribution used by an entry's dither.
type DitherDist int

const (
	DitherGaussian DitherDist = iota
	DitherUniform
)

const (
	maxDegree     = 255
	maxCoeffs     = maxDegree + 1
	hungarianMax  = 32
	solverIter    = 64
	solverTol2    = 1e-16
	newtonTol2    = 1e-60
	aberthTol2    = 1e-60
	stripTol2     = 1e-30
	progressEvery = 2000
)

// Config is the step loop's scalar configuration. The host hands buffers
// to the solver as typed slices directly via Buffers (see Bind below), so
// there are no raw pointer/offset fields to resolve here.
type Config struct {
	NCoeffs       int
	NRoots        int
	CanvasW       int
	CanvasH       int
	TotalSteps    int
	ColorMode     ColorMode
	MatchStrategy MatchStrategy
	MorphEnabled  bool
	HasJiggle     bool
	UniformR      byte
	UniformG      byte
	UniformB      byte
	Seed          [4]uint32

	MorphPathType MorphPath
	MorphCCW      bool

	Range             float64
	FPS               float64
	MorphRate         float64
	MorphEllipseMinor float64
	MorphDitherStart  float64
	MorphDitherMid    float64
	MorphDitherEnd    float64
	CenterX           float64
	CenterY           float64
}

// Curve is an ordered sequence of complex control points addressed by a
// float phase u in [0,1). IsCloud=true means discrete samples (the sample
// at floor(u·N)); false means a closed polyline interpolated linearly with
// wrap.
type Curve struct {
	Points  []complex128
	IsCloud bool
}

// CurveEntry binds a coefficient index to a curve plus animation parameters.
type CurveEntry struct {
	CoeffIndex int
	Curve      *Curve
	Speed      float64
	CCW        bool // true = direction -1
	DitherSig  float64
	DitherDist DitherDist
}

// Palette16 is a fixed 16-entry RGB lookup table (proximity/derivative modes).
type Palette16 struct {
	R, G, B [16]byte
}

// Buffers holds every host-owned array the core reads or writes for one
// invocation: inputs, scratch and outputs, pre-sized by the host. The core
// performs no dynamic allocation against these once Bind succeeds.
type Buffers struct {
	CoeffsRe, CoeffsIm []float64 // base polynomial, length NCoeffs
	ColorsR, ColorsG, ColorsB []byte // per-root colors (index mode), length NRoots

	JiggleRe, JiggleIm []float64 // static per-coefficient offsets, length NCoeffs

	MorphTargetBaseRe, MorphTargetBaseIm []float64 // base morph-target polynomial, length NCoeffs
	ProxPalette, DerivPalette             Palette16

	SelIndices []int // coefficient indices used by the sensitivity sum
	FollowC    []int // coefficient indices where morph target tracks the base

	CEntries []CurveEntry // C-curve bindings (base polynomial)
	DEntries []CurveEntry // D-curve bindings (morph-target polynomial)

	// Persistent root state: tracks a trajectory across steps as long as
	// matching keeps succeeding. Length NRoots.
	RootsRe, RootsIm []float64

	// Scratch. ScratchRe/Im is overwritten every step; WorkCoeffsRe/Im and
	// MorphWorkRe/Im are seeded once by Bind and carry over between steps
	// (see assembleStep).
	WorkCoeffsRe, WorkCoeffsIm   []float64 // length NCoeffs
	MorphWorkRe, MorphWorkIm     []float64 // length NCoeffs
	ScratchRe, ScratchIm         []float64 // length NRoots, solver in/out

	// Output: densely packed pixel list, length >= NRoots*(stepEnd-stepStart).
	PaintIdx        []int
	PaintR, PaintG, PaintB []byte
}

// Core is the bound, ready-to-run step loop. Create with Bind; the zero
// value is not usable.
type Core struct {
	Cfg Config
	Buf *Buffers
	Rng RngState

	proxRunMax float64 // reset to 1.0 at the start of each RunStepLoop call
}

// Bind validates buffer sizes against cfg and seeds the PRNG and persistent
// scratch buffers once, before the step loop runs.
func Bind(cfg Config, buf *Buffers) (*Core, error) {
	if cfg.NCoeffs <= 0 || cfg.NCoeffs > maxCoeffs {
		return nil, fmt.Errorf("core: NCoeffs %d out of range (1..%d)", cfg.NCoeffs, maxCoeffs)
	}
	if cfg.NRoots < 0 || cfg.NRoots > maxDegree {
		return nil, fmt.Errorf("core: NRoots %d out of range (0..%d)", cfg.NRoots, maxDegree)
	}
	need := func(name string, n int, want int) error {
		if n < want {
			return fmt.Errorf("core: buffer %s has length %d, want >= %d", name, n, want)
		}
		return nil
	}
	for _, c := range []struct {
		name string
		n    int
	}{
		{"CoeffsRe", len(buf.CoeffsRe)},
		{"CoeffsIm", len(buf.CoeffsIm)},
		{"JiggleRe", len(buf.JiggleRe)},
		{"JiggleIm", len(buf.JiggleIm)},
		{"WorkCoeffsRe", len(buf.WorkCoeffsRe)},
		{"WorkCoeffsIm", len(buf.WorkCoeffsIm)},
	} {
		if err := need(c.name, c.n, cfg.NCoeffs); err != nil {
			return nil, err
		}
	}
	for _, c := range []struct {
		name string
		n    int
	}{
		{"RootsRe", len(buf.RootsRe)},
		{"RootsIm", len(buf.RootsIm)},
		{"ScratchRe", len(buf.ScratchRe)},
		{"ScratchIm", len(buf.ScratchIm)},
	} {
		if err := need(c.name, c.n, cfg.NRoots); err != nil {
			return nil, err
		}
	}
	if cfg.ColorMode == ColorIndex {
		for _, c := range []struct {
			name string
			n    int
		}{
			{"ColorsR", len(buf.ColorsR)},
			{"ColorsG", len(buf.ColorsG)},
			{"ColorsB", len(buf.ColorsB)},
		} {
			if err := need(c.name, c.n, cfg.NRoots); err != nil {
				return nil, err
			}
		}
	}
	if cfg.MorphEnabled {
		for _, c := range []struct {
			name string
			n    int
		}{
			{"MorphTargetBaseRe", len(buf.MorphTargetBaseRe)},
			{"MorphTargetBaseIm", len(buf.MorphTargetBaseIm)},
			{"MorphWorkRe", len(buf.MorphWorkRe)},
			{"MorphWorkIm", len(buf.MorphWorkIm)},
		} {
			if err := need(c.name, c.n, cfg.NCoeffs); err != nil {
				return nil, err
			}
		}
	}

	// Seed the persistent scratch buffers once. When jiggle is disabled the
	// step loop never resets WorkCoeffsRe/Im from the base array (see
	// assembler.go), so they must start out equal to it; MorphWorkRe/Im
	// likewise starts out equal to the host-declared morph-target default.
	copy(buf.WorkCoeffsRe[:cfg.NCoeffs], buf.CoeffsRe[:cfg.NCoeffs])
	copy(buf.WorkCoeffsIm[:cfg.NCoeffs], buf.CoeffsIm[:cfg.NCoeffs])
	if cfg.MorphEnabled {
		copy(buf.MorphWorkRe[:cfg.NCoeffs], buf.MorphTargetBaseRe[:cfg.NCoeffs])
		copy(buf.MorphWorkIm[:cfg.NCoeffs], buf.MorphTargetBaseIm[:cfg.NCoeffs])
	}

	c := &Core{Cfg: cfg, Buf: buf}
	c.Rng.Seed(cfg.Seed)
	return c, nil
}

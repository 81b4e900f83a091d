// Command animate drives core.RunStepLoop over a batch of steps, rasterizes
// the resulting pixel list to a PNG with draw2d, and writes a gonum/plot
// histogram of the final step's rank-normalized derivative-sensitivity
// scores when color mode "derivative" is selected and -hist names a path.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/llgcode/draw2d/draw2dimg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"rootfield/core"
)

func main() {
	degree := flag.Int("degree", 6, "polynomial degree (number of roots)")
	steps := flag.Int("steps", 240, "number of animation steps to run")
	canvasW := flag.Int("w", 800, "canvas width in pixels")
	canvasH := flag.Int("h", 800, "canvas height in pixels")
	colorMode := flag.String("color", "index", "color mode: uniform, index, proximity, derivative")
	out := flag.String("out", "field.png", "output PNG path")
	histOut := flag.String("hist", "", "optional output path for a derivative-sensitivity histogram (PNG)")
	flag.Parse()

	cfg := core.Config{
		NCoeffs:       *degree + 1,
		NRoots:        *degree,
		CanvasW:       *canvasW,
		CanvasH:       *canvasH,
		TotalSteps:    *steps,
		MatchStrategy: core.MatchAssign4,
		Range:         2.0,
		FPS:           1.0,
		Seed:          [4]uint32{1, 2, 3, 4},
	}
	switch *colorMode {
	case "uniform":
		cfg.ColorMode = core.ColorUniform
		cfg.UniformR, cfg.UniformG, cfg.UniformB = 255, 220, 80
	case "proximity":
		cfg.ColorMode = core.ColorProximity
	case "derivative":
		cfg.ColorMode = core.ColorDerivative
	default:
		cfg.ColorMode = core.ColorIndex
	}

	nc, nr := cfg.NCoeffs, cfg.NRoots
	buf := &core.Buffers{
		CoeffsRe:     make([]float64, nc),
		CoeffsIm:     make([]float64, nc),
		ColorsR:      make([]byte, nr),
		ColorsG:      make([]byte, nr),
		ColorsB:      make([]byte, nr),
		JiggleRe:     make([]float64, nc),
		JiggleIm:     make([]float64, nc),
		WorkCoeffsRe: make([]float64, nc),
		WorkCoeffsIm: make([]float64, nc),
		RootsRe:      make([]float64, nr),
		RootsIm:      make([]float64, nr),
		ScratchRe:    make([]float64, nr),
		ScratchIm:    make([]float64, nr),
		PaintIdx:     make([]int, nr*(*steps)),
		PaintR:       make([]byte, nr*(*steps)),
		PaintG:       make([]byte, nr*(*steps)),
		PaintB:       make([]byte, nr*(*steps)),
		SelIndices:   []int{0},
	}
	buf.CoeffsRe[0] = 1
	buf.CoeffsRe[nc-1] = -1
	for i := 0; i < nr; i++ {
		theta := 2 * math.Pi * float64(i) / float64(nr)
		buf.RootsRe[i] = math.Cos(theta)
		buf.RootsIm[i] = math.Sin(theta)
		buf.ColorsR[i] = byte(64 + 24*i)
		buf.ColorsG[i] = byte(128)
		buf.ColorsB[i] = byte(255 - 24*i)
	}

	c, err := core.Bind(cfg, buf)
	if err != nil {
		log.Fatalf("bind: %v", err)
	}

	pc := c.RunStepLoop(nil, 0, *steps, 0)
	log.Printf("animate: ran %d steps, painted %d pixels", *steps, pc)

	if err := rasterize(buf, pc, cfg.CanvasW, cfg.CanvasH, *out); err != nil {
		log.Fatalf("rasterize: %v", err)
	}

	if *histOut != "" && cfg.ColorMode == core.ColorDerivative {
		raw := make([]float64, nr)
		norm := make([]float64, nr)
		// Histogram the final step's sensitivity scores as a representative sample.
		core.Sensitivity(buf.WorkCoeffsRe, buf.WorkCoeffsIm, buf.RootsRe, buf.RootsIm, buf.SelIndices, raw)
		core.RankNorm(raw, norm)
		if err := plotSensitivityHistogram(norm, *histOut); err != nil {
			log.Fatalf("histogram: %v", err)
		}
	}
}

// rasterize draws the painted pixel list onto a canvas that draw2d first
// clears to opaque black, painting a dense field of per-pixel dots rather than stroking
// connected line segments.
func rasterize(buf *core.Buffers, pc, w, h int, outPath string) error {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetFillColor(color.RGBA{0, 0, 0, 255})
	gc.Clear()

	for i := 0; i < pc; i++ {
		idx := buf.PaintIdx[i]
		x := idx % w
		y := idx / w
		img.Set(x, y, color.RGBA{buf.PaintR[i], buf.PaintG[i], buf.PaintB[i], 255})
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// plotSensitivityHistogram renders a gonum/plot histogram of rank-normalized
// sensitivity scores for the derivative color mode.
func plotSensitivityHistogram(norm []float64, outPath string) error {
	values := make(plotter.Values, len(norm))
	copy(values, norm)

	p := plot.New()
	p.Title.Text = "Rank-normalized sensitivity"
	p.X.Label.Text = "score"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(values, 16)
	if err != nil {
		return err
	}
	p.Add(h)

	return p.Save(6*vg.Inch, 4*vg.Inch, outPath)
}

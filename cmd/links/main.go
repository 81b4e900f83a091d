// Command links runs a short animation, records the per-step "links" of
// each root's trajectory (its chain of successive solved positions),
// prints them when -print is set, and renders the full set of trajectories to a PNG using a
// worker-pool compositing approach.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math"
	"os"
	"time"

	"rootfield/core"
	"rootfield/pkg/trace"
)

func main() {
	degree := flag.Int("degree", 5, "polynomial degree (number of roots to track)")
	steps := flag.Int("steps", 500, "number of animation steps to record")
	outputSize := flag.Int("size", 1024, "output PNG width/height in pixels")
	numWorkers := flag.Int("workers", 8, "number of goroutines rendering trajectory layers in parallel")
	printLinks := flag.Bool("print", false, "print every recorded link to stdout")
	flag.Parse()

	nc, nr := *degree+1, *degree
	cfg := core.Config{
		NCoeffs:       nc,
		NRoots:        nr,
		CanvasW:       *outputSize,
		CanvasH:       *outputSize,
		TotalSteps:    *steps,
		ColorMode:     core.ColorIndex,
		MatchStrategy: core.MatchGreedy1,
		Range:         2.0,
		FPS:           1.0,
		Seed:          [4]uint32{7, 11, 13, 17},
	}
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
		PaintIdx:     make([]int, nr**steps),
		PaintR:       make([]byte, nr**steps),
		PaintG:       make([]byte, nr**steps),
		PaintB:       make([]byte, nr**steps),
	}
	buf.CoeffsRe[0] = 1
	buf.CoeffsRe[nc-1] = -1
	for i := 0; i < nr; i++ {
		theta := 2 * math.Pi * float64(i) / float64(nr)
		buf.RootsRe[i] = math.Cos(theta)
		buf.RootsIm[i] = math.Sin(theta)
	}

	c, err := core.Bind(cfg, buf)
	if err != nil {
		log.Fatalf("bind: %v", err)
	}

	rec := trace.NewRecorder(nr, *steps)
	startTime := time.Now()
	for step := 0; step < *steps; step++ {
		c.RunStepLoop(nil, step, step+1, 0)
		rec.Sample(buf.RootsRe, buf.RootsIm)
	}
	elapsed := time.Since(startTime)
	fps := float64(*steps) / elapsed.Seconds()
	fmt.Printf("recorded %d steps for %d roots in %v (%.2f steps/sec)\n", *steps, nr, elapsed, fps)

	if *printLinks {
		for i := 0; i < nr; i++ {
			fmt.Printf("root %d links:\n", i)
			for j, z := range rec.Trajectory(i) {
				fmt.Printf("  link %d: (%.6f, %.6f)\n", j, real(z), imag(z))
			}
		}
	}

	startPlot := time.Now()
	if err := plotTrajectories(rec, nr, *outputSize, *numWorkers, "links.png"); err != nil {
		log.Fatalf("plot: %v", err)
	}
	plotElapsed := time.Since(startPlot)
	fmt.Printf("plotting time: %v\n", plotElapsed)
}

// plotTrajectories renders every root's recorded trajectory as a polyline,
// splitting the roots across numWorkers goroutines that each draw into
// their own transparent layer before the layers are composited.
func plotTrajectories(rec *trace.Recorder, numRoots, outputSize, numWorkers int, outPath string) error {
	minX, maxX, minY, maxY := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for i := 0; i < numRoots; i++ {
		for _, z := range rec.Trajectory(i) {
			x, y := real(z), imag(z)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	if maxX-minX < 1e-9 {
		maxX = minX + 1
	}
	if maxY-minY < 1e-9 {
		maxY = minY + 1
	}

	type workerResult struct {
		index int
		img   *image.RGBA
	}
	if numWorkers > numRoots {
		numWorkers = numRoots
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	workerCh := make(chan workerResult, numWorkers)

	chunkSize := (numRoots + numWorkers - 1) / numWorkers
	palette := []color.RGBA{
		{255, 99, 71, 255}, {100, 200, 255, 255}, {120, 255, 120, 255},
		{255, 220, 80, 255}, {200, 120, 255, 255}, {255, 255, 255, 255},
	}
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > numRoots {
			end = numRoots
		}
		go func(worker, start, end int) {
			img := image.NewRGBA(image.Rect(0, 0, outputSize, outputSize))
			for root := start; root < end; root++ {
				col := palette[root%len(palette)]
				pts := rec.Trajectory(root)
				var prevX, prevY int
				for j, z := range pts {
					x := int((real(z) - minX) / (maxX - minX) * float64(outputSize))
					y := outputSize - int((imag(z)-minY)/(maxY-minY)*float64(outputSize))
					if j > 0 {
						drawLine(img, prevX, prevY, x, y, col)
					}
					prevX, prevY = x, y
				}
			}
			workerCh <- workerResult{worker, img}
		}(w, start, end)
	}

	layers := make([]*image.RGBA, numWorkers)
	for i := 0; i < numWorkers; i++ {
		res := <-workerCh
		layers[res.index] = res.img
	}
	close(workerCh)

	final := image.NewRGBA(image.Rect(0, 0, outputSize, outputSize))
	draw.Draw(final, final.Bounds(), &image.Uniform{color.RGBA{20, 20, 25, 255}}, image.Point{}, draw.Src)
	for _, layer := range layers {
		draw.Draw(final, layer.Bounds(), layer, image.Point{}, draw.Over)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, final)
}

// drawLine is a Bresenham line rasterizer.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	errVal := int(dx - dy)
	for {
		if x0 >= 0 && x0 < img.Bounds().Dx() && y0 >= 0 && y0 < img.Bounds().Dy() {
			img.Set(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * errVal
		if e2 > -int(dy) {
			errVal -= int(dy)
			x0 += sx
		}
		if e2 < int(dx) {
			errVal += int(dx)
			y0 += sy
		}
	}
}

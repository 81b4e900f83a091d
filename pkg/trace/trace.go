// Package trace records and compresses the per-root trajectories produced
// by a run of core.RunStepLoop into a compact delta-encoded MessagePack
// stream, for an arbitrary number of simultaneously tracked root paths.
package trace

import (
	"compress/gzip"
	"log"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Recorder accumulates one complex128 sample per root per step. Call
// Sample once per animation step with the current RootsRe/Im buffers.
type Recorder struct {
	NumRoots int
	points   [][]complex128 // points[root][step]
}

// NewRecorder allocates a recorder for numRoots trajectories, pre-sizing
// each to expectedSteps to avoid reallocation while sampling.
func NewRecorder(numRoots, expectedSteps int) *Recorder {
	points := make([][]complex128, numRoots)
	for i := range points {
		points[i] = make([]complex128, 0, expectedSteps)
	}
	return &Recorder{NumRoots: numRoots, points: points}
}

// Sample appends the current position of every root. re/im must both have
// length NumRoots.
func (r *Recorder) Sample(re, im []float64) {
	for i := 0; i < r.NumRoots; i++ {
		r.points[i] = append(r.points[i], complex(re[i], im[i]))
	}
}

// Trajectory returns the recorded path for root i.
func (r *Recorder) Trajectory(i int) []complex128 {
	return r.points[i]
}

// Trace is the on-disk representation of a recorded run: a single
// MessagePack document holding one delta-encoded, quantized entry per root
// trajectory.
type Trace struct {
	NumRoots int           `msgpack:"numRoots"`
	Roots    []RootTrajectory `msgpack:"roots"`
}

// RootTrajectory is a single root's quantized path, stored as a bounds +
// scale + int16-delta layout.
type RootTrajectory struct {
	StartX    float32 `msgpack:"startX"`
	StartY    float32 `msgpack:"startY"`
	ScaleX    float32 `msgpack:"scaleX"`
	ScaleY    float32 `msgpack:"scaleY"`
	NumPoints uint32  `msgpack:"n"`
	Deltas    []int16 `msgpack:"deltas"`
}

// CompressTrajectory delta-encodes one root's path, quantizing each delta
// into an int16 scaled to keep headroom against overflow.
func CompressTrajectory(points []complex128) RootTrajectory {
	if len(points) == 0 {
		return RootTrajectory{}
	}
	rt := RootTrajectory{
		StartX:    float32(real(points[0])),
		StartY:    float32(imag(points[0])),
		NumPoints: uint32(len(points)),
	}

	var minDx, maxDx, minDy, maxDy float64
	for i := 1; i < len(points); i++ {
		dx := real(points[i]) - real(points[i-1])
		dy := imag(points[i]) - imag(points[i-1])
		if dx < minDx {
			minDx = dx
		}
		if dx > maxDx {
			maxDx = dx
		}
		if dy < minDy {
			minDy = dy
		}
		if dy > maxDy {
			maxDy = dy
		}
	}

	scaleX := absMax(minDx, maxDx) / 29000.0
	scaleY := absMax(minDy, maxDy) / 29000.0
	if scaleX == 0 {
		scaleX = 1
	}
	if scaleY == 0 {
		scaleY = 1
	}
	rt.ScaleX, rt.ScaleY = float32(scaleX), float32(scaleY)

	rt.Deltas = make([]int16, (len(points)-1)*2)
	for i := 1; i < len(points); i++ {
		dx := real(points[i]) - real(points[i-1])
		dy := imag(points[i]) - imag(points[i-1])
		rt.Deltas[(i-1)*2] = int16(dx / scaleX)
		rt.Deltas[(i-1)*2+1] = int16(dy / scaleY)
	}
	return rt
}

func absMax(a, b float64) float64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

// Decompress reconstructs the float64 trajectory from a quantized,
// delta-encoded root path.
func (rt RootTrajectory) Decompress() []complex128 {
	if rt.NumPoints == 0 {
		return nil
	}
	points := make([]complex128, rt.NumPoints)
	points[0] = complex(float64(rt.StartX), float64(rt.StartY))
	for i := 1; i < int(rt.NumPoints); i++ {
		dx := float64(rt.Deltas[(i-1)*2]) * float64(rt.ScaleX)
		dy := float64(rt.Deltas[(i-1)*2+1]) * float64(rt.ScaleY)
		points[i] = complex(real(points[i-1])+dx, imag(points[i-1])+dy)
	}
	return points
}

// Compress builds a Trace from every trajectory the recorder collected.
func (r *Recorder) Compress() *Trace {
	tr := &Trace{NumRoots: r.NumRoots, Roots: make([]RootTrajectory, r.NumRoots)}
	for i := 0; i < r.NumRoots; i++ {
		tr.Roots[i] = CompressTrajectory(r.points[i])
	}
	return tr
}

// Save writes a Trace to filename as gzip-compressed MessagePack.
func Save(tr *Trace, filename string) error {
	log.Printf("trace: encoding %d root trajectories", tr.NumRoots)
	data, err := msgpack.Marshal(tr)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	gzw := gzip.NewWriter(file)
	if _, err := gzw.Write(data); err != nil {
		gzw.Close()
		return err
	}
	if err := gzw.Close(); err != nil {
		return err
	}
	log.Printf("trace: wrote %s (%d bytes packed)", filename, len(data))
	return nil
}

// Load reads a Trace previously written by Save.
func Load(filename string) (*Trace, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer gzr.Close()

	data := make([]byte, 0, 1024*1024)
	buf := make([]byte, 32*1024)
	for {
		n, err := gzr.Read(buf)
		data = append(data, buf[:n]...)
		if err != nil {
			break
		}
	}

	var tr Trace
	if err := msgpack.Unmarshal(data, &tr); err != nil {
		return nil, err
	}
	log.Printf("trace: loaded %d root trajectories from %s", tr.NumRoots, filename)
	return &tr, nil
}

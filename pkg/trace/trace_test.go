package trace

import (
	"math"
	"os"
	"testing"
)

func floatEquals(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestCompressTrajectory_RoundTrip(t *testing.T) {
	points := []complex128{
		complex(1, 1),
		complex(1.1, 0.9),
		complex(1.3, 0.7),
		complex(1.0, 1.2),
	}
	rt := CompressTrajectory(points)
	if rt.NumPoints != uint32(len(points)) {
		t.Fatalf("NumPoints = %d, want %d", rt.NumPoints, len(points))
	}

	got := rt.Decompress()
	if len(got) != len(points) {
		t.Fatalf("decompressed length %d, want %d", len(got), len(points))
	}
	// Quantization to int16 deltas loses precision; check a loose tolerance.
	for i := range points {
		if !floatEquals(real(got[i]), real(points[i]), 0.01) || !floatEquals(imag(got[i]), imag(points[i]), 0.01) {
			t.Errorf("point %d: got %v, want %v", i, got[i], points[i])
		}
	}
}

func TestCompressTrajectory_Empty(t *testing.T) {
	rt := CompressTrajectory(nil)
	if rt.NumPoints != 0 {
		t.Errorf("empty trajectory should have NumPoints=0, got %d", rt.NumPoints)
	}
	if got := rt.Decompress(); got != nil {
		t.Errorf("empty trajectory should decompress to nil, got %v", got)
	}
}

func TestRecorder_SampleAndCompress(t *testing.T) {
	rec := NewRecorder(2, 4)
	steps := [][2]float64{
		{0, 1}, {0.1, 1.1}, {0.2, 1.3}, {0.4, 1.2},
	}
	for _, s := range steps {
		rec.Sample([]float64{s[0], s[1]}, []float64{-s[0], -s[1]})
	}

	if len(rec.Trajectory(0)) != 4 {
		t.Fatalf("trajectory 0 length = %d, want 4", len(rec.Trajectory(0)))
	}

	tr := rec.Compress()
	if tr.NumRoots != 2 {
		t.Fatalf("NumRoots = %d, want 2", tr.NumRoots)
	}
	for i, rt := range tr.Roots {
		if rt.NumPoints != 4 {
			t.Errorf("root %d: NumPoints = %d, want 4", i, rt.NumPoints)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	rec := NewRecorder(1, 3)
	rec.Sample([]float64{0}, []float64{0})
	rec.Sample([]float64{1}, []float64{1})
	rec.Sample([]float64{2}, []float64{4})
	tr := rec.Compress()

	f, err := os.CreateTemp("", "trace-*.bin")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := Save(tr, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.NumRoots != tr.NumRoots {
		t.Errorf("loaded NumRoots = %d, want %d", loaded.NumRoots, tr.NumRoots)
	}
	if len(loaded.Roots) != 1 || loaded.Roots[0].NumPoints != 3 {
		t.Errorf("loaded trajectory mismatch: %+v", loaded.Roots)
	}
}

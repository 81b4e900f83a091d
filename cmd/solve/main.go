// Command solve is a standalone CLI over the Ehrlich–Aberth solver: given a
// polynomial's coefficients (highest degree first), it prints the refined
// roots. It generalizes cmd/zeta's flag-driven, single-shot numeric tool
// pattern from one fixed computation (an Euler-Maclaurin zeta evaluation) to
// an arbitrary polynomial supplied on the command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"rootfield/core"
)

// coeffList collects repeated -c flags into a slice of complex128,
// accepting either a bare real number ("3") or a "re,im" pair ("1,-2").
type coeffList []complex128

func (c *coeffList) String() string {
	parts := make([]string, len(*c))
	for i, z := range *c {
		parts[i] = fmt.Sprintf("%v+%vi", real(z), imag(z))
	}
	return strings.Join(parts, " ")
}

func (c *coeffList) Set(s string) error {
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		re, err := strconv.ParseFloat(strings.TrimSpace(s[:idx]), 64)
		if err != nil {
			return fmt.Errorf("invalid real part %q: %w", s[:idx], err)
		}
		im, err := strconv.ParseFloat(strings.TrimSpace(s[idx+1:]), 64)
		if err != nil {
			return fmt.Errorf("invalid imaginary part %q: %w", s[idx+1:], err)
		}
		*c = append(*c, complex(re, im))
		return nil
	}
	re, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid coefficient %q: %w", s, err)
	}
	*c = append(*c, complex(re, 0))
	return nil
}

func main() {
	var coeffs coeffList
	flag.Var(&coeffs, "c", "polynomial coefficient, highest degree first; repeatable (e.g. -c 1 -c 0 -c -1 for z^2-1)")
	iters := flag.Int("track-iter", 0, "if nonzero, print the iteration each root froze on")
	flag.Parse()

	if len(coeffs) < 2 {
		log.Fatalf("need at least 2 coefficients (degree >= 1), got %d", len(coeffs))
	}

	cRe := make([]float64, len(coeffs))
	cIm := make([]float64, len(coeffs))
	for i, z := range coeffs {
		cRe[i] = real(z)
		cIm[i] = imag(z)
	}

	degree := len(coeffs) - 1
	warmRe := make([]float64, degree)
	warmIm := make([]float64, degree)
	for i := 0; i < degree; i++ {
		theta := 2 * math.Pi * float64(i) / float64(degree)
		warmRe[i] = 0.4 * math.Cos(theta)
		warmIm[i] = 0.4 * math.Sin(theta)
	}

	var iterCounts []byte
	trackIter := *iters != 0
	if trackIter {
		iterCounts = make([]byte, degree)
	}

	effDeg := core.SolveEA(cRe, cIm, warmRe, warmIm, trackIter, iterCounts)
	fmt.Printf("effective degree: %d\n", effDeg)
	for i := 0; i < degree; i++ {
		if trackIter {
			fmt.Printf("root %d: %.10f%+.10fi (froze at iter %d)\n", i, warmRe[i], warmIm[i], iterCounts[i])
		} else {
			fmt.Printf("root %d: %.10f%+.10fi\n", i, warmRe[i], warmIm[i])
		}
	}
}

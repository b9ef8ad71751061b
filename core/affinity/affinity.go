// Package affinity scores nucleosome binding affinity as the log-odds of a
// full core-length window under the nucleosome versus the linker chain.
package affinity

import (
	"math"

	"nupop-core/emission"
	"nupop-core/model"
)

// Window is the scored window length; Half is the flank on either side of
// the centre position.
const (
	Window = model.CoreLength
	Half   = Window / 2
)

// NA marks a position without a full window.
var NA = math.NaN()

// IsNA reports whether v is the NA marker.
func IsNA(v float64) bool { return math.IsNaN(v) }

// Defined reports whether position i of a length-n sequence has a full
// window, i.e. i ∈ [Half+1, n-Half].
func Defined(i, n int) bool { return i > Half && i <= n-Half }

// Scores returns affinity(i) for i in [1..N] (index i-1). Each window is
// scored as a standalone sequence; positions without a full window are NA.
func Scores(sc *emission.Scores) []float64 {
	n := sc.N()
	out := make([]float64, n)
	for i := 1; i <= n; i++ {
		if !Defined(i, n) {
			out[i-1] = NA
			continue
		}
		from, to := i-Half, i+Half
		out[i-1] = sc.Window(model.Nucleosome, from, to) - sc.Window(model.Linker, from, to)
	}
	return out
}

package model

import (
	"fmt"
	"math"

	"nupop-core/logspace"
)

// Tolerance is how far a raw probability vector may sum away from 1 before
// loading rejects it instead of renormalising.
const Tolerance = 1e-3

// DefaultLinkerCap bounds the linker dwell when none is configured.
const DefaultLinkerCap = 500

// Duration is a segment-length distribution over [Min()..Max()], pre-logged.
type Duration struct {
	min, max int
	logPMF   []float64 // index d; len max+1
	logSurv  []float64 // index d: log P(D >= d); len max+2
	mean     float64
}

// NewDuration builds a Duration from probs (probs[d-1] = P(D = d)) restricted
// to the declared support [min..max]. Mass outside the support is dropped;
// the rest is renormalised if it sums to 1 within Tolerance.
func NewDuration(probs []float64, min, max int) (Duration, error) {
	if min < 1 || max < min {
		return Duration{}, fmt.Errorf("bad support [%d..%d]", min, max)
	}
	if max > len(probs) {
		return Duration{}, fmt.Errorf("support ends at %d but only %d probabilities given", max, len(probs))
	}
	pmf := make([]float64, max+1)
	for d := min; d <= max; d++ {
		p := probs[d-1]
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return Duration{}, fmt.Errorf("P(D=%d) = %v is not a probability", d, p)
		}
		pmf[d] = p
	}
	if sum := logspace.Normalize(pmf); math.Abs(sum-1) > Tolerance {
		return Duration{}, fmt.Errorf("probabilities over [%d..%d] sum to %.6g, want 1±%g", min, max, sum, Tolerance)
	}
	return newDuration(pmf, min, max), nil
}

// Geometric is the implicit linker dwell: continue with probability cont per
// base, truncated at cap and renormalised,
// P(d) = cont^(d-1)(1-cont) / (1-cont^cap), 1 <= d <= cap.
func Geometric(cont float64, cap int) (Duration, error) {
	if cap < 1 {
		return Duration{}, fmt.Errorf("linker cap %d must be >= 1", cap)
	}
	if cont < 0 || cont >= 1 || math.IsNaN(cont) {
		return Duration{}, fmt.Errorf("continuation probability %v outside [0,1)", cont)
	}
	pmf := make([]float64, cap+1)
	w := 1 - cont
	for d := 1; d <= cap; d++ {
		pmf[d] = w
		w *= cont
	}
	logspace.Normalize(pmf)
	return newDuration(pmf, 1, cap), nil
}

// Truncate caps the distribution at cap, renormalising the retained mass.
// A cap at or beyond Max returns d unchanged.
func (d Duration) Truncate(cap int) (Duration, error) {
	if cap >= d.max {
		return d, nil
	}
	if cap < d.min {
		return Duration{}, fmt.Errorf("cap %d is below the shortest supported length %d", cap, d.min)
	}
	pmf := make([]float64, cap+1)
	for n := d.min; n <= cap; n++ {
		pmf[n] = math.Exp(d.logPMF[n])
	}
	if logspace.Normalize(pmf) <= 0 {
		return Duration{}, fmt.Errorf("no mass left below cap %d", cap)
	}
	return newDuration(pmf, d.min, cap), nil
}

func newDuration(pmf []float64, min, max int) Duration {
	d := Duration{
		min:     min,
		max:     max,
		logPMF:  make([]float64, max+1),
		logSurv: make([]float64, max+2),
	}
	d.logSurv[max+1] = logspace.Zero
	tail := 0.0
	for n := max; n >= 1; n-- {
		tail += pmf[n]
		d.logPMF[n] = logspace.Log(pmf[n])
		d.logSurv[n] = logspace.Log(tail)
		d.mean += float64(n) * pmf[n]
	}
	d.logPMF[0] = logspace.Zero
	// every segment reaches its minimum length
	for n := 1; n <= min; n++ {
		d.logSurv[n] = 0
	}
	return d
}

// Min is the shortest length with non-zero declared support.
func (d Duration) Min() int { return d.min }

// Max is the longest supported length.
func (d Duration) Max() int { return d.max }

// Mean is E[D].
func (d Duration) Mean() float64 { return d.mean }

// LogPMF returns log P(D = n); lengths outside the support are log 0.
func (d Duration) LogPMF(n int) float64 {
	if n < 1 || n > d.max {
		return logspace.Zero
	}
	return d.logPMF[n]
}

// LogSurvival returns log P(D >= n), used for a segment cut off by the end
// of the sequence.
func (d Duration) LogSurvival(n int) float64 {
	if n < 1 {
		return 0
	}
	if n > d.max {
		return logspace.Zero
	}
	return d.logSurv[n]
}

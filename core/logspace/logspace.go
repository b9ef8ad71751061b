// Package logspace holds the numeric helpers shared by the decoder: log-sum-exp,
// safe logarithms and normalisation.
//
// All probabilities handled by the decoder live in natural-log space; a zero
// probability is math.Inf(-1).
package logspace

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Zero is log(0).
var Zero = math.Inf(-1)

// Log returns ln(p), mapping p <= 0 to Zero.
func Log(p float64) float64 {
	if p <= 0 {
		return Zero
	}
	return math.Log(p)
}

// SumExp returns ln(Σ e^v) over terms; an empty slice sums to Zero.
func SumExp(terms []float64) float64 {
	if len(terms) == 0 {
		return Zero
	}
	return floats.LogSumExp(terms)
}

// Prob converts a log value back to a probability clamped into [0,1].
func Prob(v float64) float64 {
	p := math.Exp(v)
	switch {
	case p < 0 || math.IsNaN(p):
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Normalize scales p in place to sum to 1 and returns the original sum.
// A non-positive sum leaves p untouched.
func Normalize(p []float64) float64 {
	s := floats.Sum(p)
	if s > 0 {
		floats.Scale(1/s, p)
	}
	return s
}

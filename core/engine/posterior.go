// core/engine/posterior.go
package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"nupop-core/emission"
	"nupop-core/errs"
	"nupop-core/logspace"
	"nupop-core/model"
)

// Posterior holds the per-position marginals of one sequence.
type Posterior struct {
	// PStart[i-1] is the probability a nucleosome starts at i.
	PStart []float64
	// Occupancy[i-1] is the probability i lies inside a nucleosome.
	Occupancy []float64
	// LogZ is the log-likelihood of the sequence over all segmentations.
	LogZ float64
}

// ExpectedNucleosomes is Σ pstart, the posterior mean number of N segments.
func (p *Posterior) ExpectedNucleosomes() float64 {
	return floats.Sum(p.PStart)
}

// Posterior runs forward–backward over segment boundaries.
//
// alpha[s][j] is the log-mass of all segmentations of [1..j] whose last
// segment is s and ends at j; beta[s][j] is the log-mass of [j+1..N] given a
// segment of s ended at j.
func (dc *Decoder) Posterior(sc *emission.Scores) (*Posterior, error) {
	const op = "engine.Posterior"
	n := sc.N()
	if n < 1 {
		return nil, errs.New(errs.InvalidSequence, op, "empty sequence")
	}
	alpha := dc.forward(sc)
	beta := dc.backward(sc)

	z := logspace.SumExp([]float64{
		alpha[model.Linker][0] + beta[model.Linker][0],
		alpha[model.Nucleosome][0] + beta[model.Nucleosome][0],
	})
	if math.IsInf(z, 0) || math.IsNaN(z) {
		return nil, errs.New(errs.Internal, op, "total likelihood is %v for a sequence of length %d", z, n)
	}

	post := &Posterior{
		PStart:    make([]float64, n),
		Occupancy: make([]float64, n),
		LogZ:      z,
	}
	started, ended := 0.0, 0.0
	for i := 1; i <= n; i++ {
		// a linker ending at i-1 (or the virtual boundary) hands over to N at i
		ps := logspace.Prob(alpha[model.Linker][i-1] + beta[model.Linker][i-1] - z)
		post.PStart[i-1] = ps
		started += ps
		if i > 1 {
			ended += logspace.Prob(alpha[model.Nucleosome][i-1] + beta[model.Nucleosome][i-1] - z)
		}
		post.Occupancy[i-1] = clamp01(started - ended)
	}
	return post, nil
}

func (dc *Decoder) forward(sc *emission.Scores) [model.NumStates][]float64 {
	n := sc.N()
	var alpha [model.NumStates][]float64
	for _, st := range states {
		alpha[st] = make([]float64, n)
	}
	dc.seed(&alpha)
	buf := make([]float64, 0, dc.sel.MaxDuration())
	for i := 1; i < n; i++ {
		for _, st := range states {
			dur := dc.dur[st]
			prev := alpha[st.Other()]
			hi := dur.Max()
			if hi > i {
				hi = i
			}
			buf = buf[:0]
			for d := dur.Min(); d <= hi; d++ {
				p := prev[i-d]
				if math.IsInf(p, -1) {
					continue
				}
				buf = append(buf, p+dur.LogPMF(d)+sc.Run(st, i-d+1, i))
			}
			alpha[st][i] = logspace.SumExp(buf)
		}
	}
	return alpha
}

func (dc *Decoder) backward(sc *emission.Scores) [model.NumStates][]float64 {
	n := sc.N()
	var beta [model.NumStates][]float64
	for _, st := range states {
		beta[st] = make([]float64, n)
	}
	buf := make([]float64, 0, dc.sel.MaxDuration())
	for j := n - 1; j >= 0; j-- {
		for _, st := range states {
			t := st.Other()
			dur := dc.dur[t]
			next := beta[t]
			hi := dur.Max()
			if hi > n-j {
				hi = n - j
			}
			buf = buf[:0]
			for d := 1; d <= hi; d++ {
				e := sc.Run(t, j+1, j+d)
				if j+d == n {
					buf = append(buf, e+dur.LogSurvival(d))
					continue
				}
				if d < dur.Min() || math.IsInf(next[j+d], -1) {
					continue
				}
				buf = append(buf, e+dur.LogPMF(d)+next[j+d])
			}
			beta[st][j] = logspace.SumExp(buf)
		}
	}
	return beta
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

// Package emission scores a sequence under both states of an emission model
// and keeps per-state prefix sums so any run [from..to] costs O(1).
package emission

import (
	"math"

	"nupop-core/dna"
	"nupop-core/logspace"
	"nupop-core/model"
)

// wildcardScore is log(1/4): an ambiguous base carries no evidence.
var wildcardScore = -math.Log(dna.AlphabetSize)

// Scores holds e_s(i) = log P(x_i | context, s) for i in [1..N] and the
// prefix sums P_s[i] = e_s(1) + ... + e_s(i). Terms of probability zero are
// counted separately so that a difference of prefix sums never sees -Inf.
type Scores struct {
	em     model.EmissionModel
	seq    dna.Sequence
	prefix [model.NumStates][]float64
	zeros  [model.NumStates][]int32
}

// Score evaluates every position of seq under m for both states, with the
// boundary rule anchored at position 1.
func Score(m model.EmissionModel, seq dna.Sequence) *Scores {
	n := seq.Len()
	sc := &Scores{em: m, seq: seq}
	for _, st := range []model.State{model.Linker, model.Nucleosome} {
		p := make([]float64, n+1)
		z := make([]int32, n+1)
		for i := 1; i <= n; i++ {
			p[i], z[i] = p[i-1], z[i-1]
			if e := term(m, seq, st, i, 1); math.IsInf(e, -1) {
				z[i]++
			} else {
				p[i] += e
			}
		}
		sc.prefix[st], sc.zeros[st] = p, z
	}
	return sc
}

// term is e_s(i) for a chain that starts at position from. Positions with
// fewer than k preceding bases since from use the order-1 boundary tables:
// the state's initial distribution at from, the order-1 transition after.
func term(m model.EmissionModel, seq dna.Sequence, st model.State, i, from int) float64 {
	b := seq.At(i)
	if b == dna.Wildcard {
		return wildcardScore
	}
	bnd := m.Boundary()
	if k := m.Order(); i-from >= k {
		if row, ok := seq.Context(i, k, from); ok {
			return m.Cond(st, row, b)
		}
		return bnd.Initial(st, b)
	}
	if i == from {
		return bnd.Initial(st, b)
	}
	prev := seq.At(i - 1)
	if prev == dna.Wildcard {
		return bnd.Initial(st, b)
	}
	return bnd.Cond(st, int(prev), b)
}

// N is the sequence length.
func (s *Scores) N() int { return s.seq.Len() }

// Sequence returns the scored sequence.
func (s *Scores) Sequence() dna.Sequence { return s.seq }

// Order is the Markov order of the underlying model.
func (s *Scores) Order() int { return s.em.Order() }

// At returns e_st(i).
func (s *Scores) At(st model.State, i int) float64 {
	return s.Run(st, i, i)
}

// Run returns E_st(from..to), the chain log-likelihood of the inclusive run
// [from..to] with context taken from the whole sequence. An empty run
// (to < from) scores 0.
func (s *Scores) Run(st model.State, from, to int) float64 {
	if to < from {
		return 0
	}
	if s.zeros[st][to] != s.zeros[st][from-1] {
		return logspace.Zero
	}
	return s.prefix[st][to] - s.prefix[st][from-1]
}

// Window scores [from..to] as a standalone sequence: the boundary rule
// restarts at from, so no base before the window is consulted.
func (s *Scores) Window(st model.State, from, to int) float64 {
	if to < from {
		return 0
	}
	k := s.em.Order()
	edge := from + k - 1
	if edge > to {
		edge = to
	}
	total := 0.0
	for i := from; i <= edge; i++ {
		total += term(s.em, s.seq, st, i, from)
	}
	// past the first k bases the context lies inside the window and matches
	// the global chain
	return total + s.Run(st, edge+1, to)
}

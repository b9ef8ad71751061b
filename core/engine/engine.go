// core/engine/engine.go
package engine

import (
	"math"

	"nupop-core/emission"
	"nupop-core/errs"
	"nupop-core/logspace"
	"nupop-core/model"
)

var states = [model.NumStates]model.State{model.Linker, model.Nucleosome}

// Decoder runs Viterbi and forward–backward for one model selection.
type Decoder struct {
	sel *model.Selection
	dur [model.NumStates]model.Duration
}

// New creates a Decoder over sel.
func New(sel *model.Selection) *Decoder {
	d := &Decoder{sel: sel}
	for _, st := range states {
		d.dur[st] = sel.Duration(st)
	}
	return d
}

// Selection returns the model selection the decoder runs with.
func (dc *Decoder) Selection() *model.Selection { return dc.sel }

// Cost is the number of DP cells one pass visits for a sequence of length n
// with longest segment d: n·d per state.
func Cost(n, d int) int64 { return int64(n) * int64(d) * model.NumStates }

// Cost is Cost(n, D) for this decoder's D.
func (dc *Decoder) Cost(n int) int64 { return Cost(n, dc.sel.MaxDuration()) }

// seed fills column 0 with the virtual boundary.
func (dc *Decoder) seed(col *[model.NumStates][]float64) {
	col[model.Linker][0] = dc.sel.LogStart[model.Nucleosome]
	col[model.Nucleosome][0] = dc.sel.LogStart[model.Linker]
}

// Viterbi returns the most probable segmentation and its joint
// log-probability. Among equal-scoring alternatives the shorter final
// segment wins, and at the last position linker wins a tie between states.
// If every segmentation has probability zero the result is a single linker
// segment over [1..N] with log-probability -Inf.
func (dc *Decoder) Viterbi(sc *emission.Scores) (Segmentation, float64, error) {
	const op = "engine.Viterbi"
	n := sc.N()
	if n < 1 {
		return nil, logspace.Zero, errs.New(errs.InvalidSequence, op, "empty sequence")
	}
	var (
		v    [model.NumStates][]float64
		back [model.NumStates][]int32
	)
	for _, st := range states {
		v[st] = make([]float64, n+1)
		back[st] = make([]int32, n+1)
	}
	dc.seed(&v)

	for i := 1; i <= n; i++ {
		final := i == n
		for _, st := range states {
			dur := dc.dur[st]
			prev := v[st.Other()]
			lo, hi := dur.Min(), dur.Max()
			if final {
				lo = 1
			}
			if hi > i {
				hi = i
			}
			best, arg := logspace.Zero, 0
			for d := lo; d <= hi; d++ {
				p := prev[i-d]
				if math.IsInf(p, -1) {
					continue
				}
				var ld float64
				if final {
					ld = dur.LogSurvival(d)
				} else {
					ld = dur.LogPMF(d)
				}
				if math.IsInf(ld, -1) {
					continue
				}
				if c := p + ld + sc.Run(st, i-d+1, i); c > best {
					best, arg = c, d
				}
			}
			v[st][i], back[st][i] = best, int32(arg)
		}
	}

	last := model.Linker
	if v[model.Nucleosome][n] > v[model.Linker][n] {
		last = model.Nucleosome
	}
	logp := v[last][n]
	if math.IsInf(logp, -1) {
		return Segmentation{{State: model.Linker, Start: 1, Length: n}}, logp, nil
	}

	var rev Segmentation
	for st, i := last, n; i > 0; st = st.Other() {
		d := int(back[st][i])
		if d < 1 || d > i {
			return nil, logp, errs.New(errs.Internal, op, "broken back-pointer %d for %v at %d", d, st, i)
		}
		rev = append(rev, Segment{State: st, Start: i - d + 1, Length: d})
		i -= d
	}
	segs := make(Segmentation, len(rev))
	for k := range rev {
		segs[k] = rev[len(rev)-1-k]
	}
	return segs, logp, nil
}

package model

import (
	"gonum.org/v1/gonum/stat/distuv"

	"nupop-core/logspace"
)

// TemplateLinkerMeans are rough mean linker lengths (bp) per known species
// used by Template. They are illustrative defaults, not fitted values.
var TemplateLinkerMeans = map[int]float64{
	1: 40, 2: 38, 3: 38, 4: 45, 5: 30, 6: 28,
	7: 18, 8: 20, 9: 8, 10: 30, 11: 40,
}

// Nucleosome core length and the spread of the template length prior.
const (
	CoreLength     = 147
	templateSD     = 2.0
	templateRadius = 6
)

// Template builds a complete, loadable bundle with order-1 and order-4
// tables and every Known species. Nucleosome DNA is mildly GC-rich and
// linker DNA favours poly(dA:dT); the values exist to exercise the decoder
// end to end and are not trained estimates.
func Template() *File {
	f := &File{
		FormatVersion: FormatVersion,
		Name:          "template",
		Emissions: map[string]StateTables{
			"1": {Nucleosome: orderOneTable(Nucleosome), Linker: orderOneTable(Linker)},
			"4": {Nucleosome: orderFourTable(Nucleosome), Linker: orderFourTable(Linker)},
		},
	}
	nuc := NucleosomePrior(CoreLength, templateSD, templateRadius)
	half := 0.5
	for _, k := range Known {
		cont := 1 - 1/TemplateLinkerMeans[k.ID]
		f.Species = append(f.Species, SpeciesFile{
			ID:                 k.ID,
			Name:               k.Name,
			StartNucleosome:    &half,
			NucleosomeDuration: nuc,
			Linker:             LinkerFile{Continuation: &cont, Cap: DefaultLinkerCap},
		})
	}
	return f
}

// NucleosomePrior discretises Normal(mu, sd) onto [mu-radius..mu+radius]:
// P(d) = Φ(d+½) − Φ(d−½), renormalised over the window.
func NucleosomePrior(mu int, sd float64, radius int) DurationFile {
	lo, hi := mu-radius, mu+radius
	if lo < 1 {
		lo = 1
	}
	norm := distuv.Normal{Mu: float64(mu), Sigma: sd}
	probs := make([]float64, hi)
	for d := lo; d <= hi; d++ {
		probs[d-1] = norm.CDF(float64(d)+0.5) - norm.CDF(float64(d)-0.5)
	}
	logspace.Normalize(probs[lo-1:])
	return DurationFile{Min: lo, Max: hi, Probs: probs}
}

var templateComposition = [NumStates][4]float64{
	Linker:     {0.31, 0.19, 0.19, 0.31},
	Nucleosome: {0.24, 0.26, 0.26, 0.24},
}

func orderOneTable(s State) Table {
	t := Table{Initial: append([]float64(nil), templateComposition[s][:]...)}
	for prev := 0; prev < 4; prev++ {
		t.Transitions = append(t.Transitions, orderOneRow(s, prev))
	}
	return t
}

func orderOneRow(s State, prev int) []float64 {
	row := append([]float64(nil), templateComposition[s][:]...)
	for b := range row {
		switch {
		case s == Linker && prev == b && (b == 0 || b == 3):
			row[b] *= 1.25 // AA / TT runs
		case s == Nucleosome && isGC(prev) && isGC(b):
			row[b] *= 1.15
		}
	}
	logspace.Normalize(row)
	return row
}

func orderFourTable(s State) Table {
	var t Table
	for ctx := 0; ctx < ContextRows(4); ctx++ {
		gc := 0
		for i := 0; i < 4; i++ {
			if isGC((ctx >> (2 * i)) & 3) {
				gc++
			}
		}
		row := orderOneRow(s, ctx&3)
		for b := range row {
			if s == Nucleosome && isGC(b) {
				row[b] *= 1 + 0.03*float64(gc)
			}
			if s == Linker && !isGC(b) {
				row[b] *= 1 + 0.03*float64(4-gc)
			}
		}
		logspace.Normalize(row)
		t.Transitions = append(t.Transitions, row)
	}
	return t
}

func isGC(b int) bool { return b == 1 || b == 2 }

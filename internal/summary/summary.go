// Package summary reduces a prediction table to a few per-record numbers.
package summary

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"nupop-core/model"
	"nupop-core/predict"
	"nupop/internal/output"
)

// Header is the first line written by Write.
const Header = "sequence_id\tlength\tnucleosomes\texpected_nucleosomes\tmean_occupancy\tmean_affinity\tdefined_affinity"

// Stats summarizes one table.
type Stats struct {
	ID                  string
	Length              int
	Nucleosomes         int     // Viterbi nucleosome segments
	ExpectedNucleosomes float64 // Σ pstart
	MeanOccupancy       float64
	MeanAffinity        float64 // NaN when no position has an affinity
	DefinedAffinity     int
}

// Of computes Stats for rows.
func Of(id string, rows []predict.Row) Stats {
	s := Stats{ID: id, Length: len(rows), MeanAffinity: math.NaN()}
	if len(rows) == 0 {
		s.MeanOccupancy = math.NaN()
		return s
	}
	pstart := make([]float64, len(rows))
	occ := make([]float64, len(rows))
	aff := make([]float64, 0, len(rows))
	prev := model.Linker
	for i, r := range rows {
		pstart[i] = r.PStart
		occ[i] = r.Occupancy
		if !math.IsNaN(r.Affinity) {
			aff = append(aff, r.Affinity)
		}
		if r.Label == model.Nucleosome && (i == 0 || prev != model.Nucleosome) {
			s.Nucleosomes++
		}
		prev = r.Label
	}
	s.ExpectedNucleosomes = floats.Sum(pstart)
	s.MeanOccupancy = stat.Mean(occ, nil)
	if len(aff) > 0 {
		s.MeanAffinity = stat.Mean(aff, nil)
		s.DefinedAffinity = len(aff)
	}
	return s
}

// OfPrediction summarizes a table read back with output.ReadPrediction.
func OfPrediction(p output.Prediction) Stats { return Of(p.ID, p.Rows) }

// Write prints one TSV line per Stats.
func Write(w io.Writer, list []Stats, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, Header); err != nil {
			return err
		}
	}
	for _, s := range list {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%d\n",
			s.ID, s.Length, s.Nucleosomes,
			output.FormatFloat(s.ExpectedNucleosomes),
			output.FormatFloat(s.MeanOccupancy),
			output.FormatFloat(s.MeanAffinity),
			s.DefinedAffinity); err != nil {
			return err
		}
	}
	return nil
}

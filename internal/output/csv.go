// internal/output/csv.go
package output

import (
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Frame lays r out as a dataframe with the TSVHeader columns. Affinity is a
// string column so undefined positions read NA rather than NaN.
func Frame(r Record) dataframe.DataFrame {
	n := r.Profile.Len()
	ids := make([]string, n)
	pos := make([]int, n)
	ps := make([]float64, n)
	occ := make([]float64, n)
	lab := make([]int, n)
	aff := make([]string, n)
	for i, row := range r.Profile.Rows {
		ids[i] = r.Profile.ID
		pos[i] = row.Position
		ps[i] = row.PStart
		occ[i] = row.Occupancy
		lab[i] = row.Label.Bit()
		aff[i] = string(appendFloat(nil, row.Affinity, 6))
	}
	return dataframe.New(
		series.New(ids, series.String, "sequence_id"),
		series.New(pos, series.Int, "position"),
		series.New(ps, series.Float, "pstart"),
		series.New(occ, series.Float, "occupancy"),
		series.New(lab, series.Int, "viterbi"),
		series.New(aff, series.String, "affinity"),
	)
}

// WriteCSV writes r as comma-separated rows.
func WriteCSV(w io.Writer, r Record, header bool) error {
	df := Frame(r)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w, dataframe.WriteHeader(header))
}

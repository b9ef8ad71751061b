// internal/output/json.go
package output

import (
	"io"

	"nupop/internal/jsonutil"
	"nupop/pkg/api"
)

// ToAPIProfile converts a decoded record to the stable wire schema (v1).
func ToAPIProfile(r Record) api.ProfileV1 {
	p := r.Profile
	v := api.ProfileV1{
		SequenceID:          p.ID,
		SourceFile:          r.Source,
		Model:               r.Model,
		Length:              p.Len(),
		Order:               r.Order,
		Species:             r.Species,
		LogLikelihood:       p.LogLikelihood,
		Nucleosomes:         p.Segments.Nucleosomes(),
		ExpectedNucleosomes: p.ExpectedNucleosomes,
		Segments:            make([]api.SegmentV1, 0, len(p.Segments)),
		Positions:           make([]api.PositionV1, 0, p.Len()),
	}
	for _, s := range p.Segments {
		v.Segments = append(v.Segments, api.SegmentV1{State: s.State.String(), Start: s.Start, End: s.End()})
	}
	for _, row := range p.Rows {
		v.Positions = append(v.Positions, api.PositionV1{
			Position:  row.Position,
			PStart:    row.PStart,
			Occupancy: row.Occupancy,
			Viterbi:   row.Label.Bit(),
			Affinity:  api.Affinity(row.Affinity),
		})
	}
	return v
}

// WriteJSON writes a single JSON array of v1 profiles (pretty-indented).
func WriteJSON(w io.Writer, list []Record) error {
	out := make([]api.ProfileV1, 0, len(list))
	for _, r := range list {
		out = append(out, ToAPIProfile(r))
	}
	return jsonutil.EncodePretty(w, out)
}

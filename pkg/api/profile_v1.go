// pkg/api/profile_v1.go
package api

import (
	"encoding/json"
	"math"
)

// ProfileV1 is the stable JSON/JSONL schema for one decoded sequence.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ProfileV1 struct {
	SequenceID    string  `json:"sequence_id"`
	SourceFile    string  `json:"source_file,omitempty"`
	Model         string  `json:"model,omitempty"`
	Length        int     `json:"length"`
	Order         int     `json:"order"`
	Species       string  `json:"species"`
	LogLikelihood float64 `json:"log_likelihood"`
	Nucleosomes   int     `json:"nucleosomes"` // N segments in the Viterbi path
	// ExpectedNucleosomes is Σ pstart over the sequence.
	ExpectedNucleosomes float64      `json:"expected_nucleosomes"`
	Segments            []SegmentV1  `json:"segments"`
	Positions           []PositionV1 `json:"positions"`
}

// SegmentV1 is one Viterbi segment; State is "N" or "L".
type SegmentV1 struct {
	State string `json:"state"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// PositionV1 is one row of the prediction table.
type PositionV1 struct {
	Position  int      `json:"position"`
	PStart    float64  `json:"pstart"`
	Occupancy float64  `json:"occupancy"`
	Viterbi   int      `json:"viterbi"` // 1 = nucleosome, 0 = linker
	Affinity  Affinity `json:"affinity"`
}

// Affinity is a number, or the string "NA" where no full window exists.
type Affinity float64

// NA reports whether a is the undefined marker.
func (a Affinity) NA() bool { return math.IsNaN(float64(a)) }

func (a Affinity) MarshalJSON() ([]byte, error) {
	if a.NA() {
		return []byte(`"NA"`), nil
	}
	return json.Marshal(float64(a))
}

func (a *Affinity) UnmarshalJSON(b []byte) error {
	if string(b) == `"NA"` || string(b) == "null" {
		*a = Affinity(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = Affinity(f)
	return nil
}

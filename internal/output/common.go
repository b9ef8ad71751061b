package output

import (
	"math"
	"strconv"

	"nupop-core/predict"
)

// Output format names.
const (
	FormatText  = "text"
	FormatNuPoP = "nupop"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// TSVHeader is the canonical header row for text/TSV outputs.
// Keep this as the single source of truth; all writers should use it.
const TSVHeader = "sequence_id\tposition\tpstart\toccupancy\tviterbi\taffinity"

// NA is the wire marker for an undefined affinity.
const NA = "NA"

// Record is one decoded sequence with the run context writers report.
type Record struct {
	Source  string
	Model   string // parameter bundle name; "template" for the built-in one
	Order   int
	Species string
	Profile *predict.Profile
}

// appendFloat formats v with prec decimals, writing NA for NaN.
func appendFloat(b []byte, v float64, prec int) []byte {
	if math.IsNaN(v) {
		return append(b, NA...)
	}
	return strconv.AppendFloat(b, v, 'f', prec, 64)
}

// FormatFloat renders v like the text writers do.
func FormatFloat(v float64) string { return string(appendFloat(nil, v, 6)) }

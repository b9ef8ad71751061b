// internal/output/legacy.go
package output

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"nupop-core/model"
	"nupop-core/predict"
)

// LegacyHeader is the first line of a NuPoP prediction table.
const LegacyHeader = "Position P-start Occup N/L Affinity"

// ModelPrefix starts the metadata line naming the parameter bundle.
const ModelPrefix = "## model: "

// WriteLegacy writes r in the space-aligned NuPoP layout. With named set, a
// "# <id>" line precedes the header so several records can share a file,
// followed by a "## model: <name>" line when r.Model is set.
func WriteLegacy(w io.Writer, r Record, named bool) error {
	if named {
		if _, err := fmt.Fprintf(w, "# %s\n", r.Profile.ID); err != nil {
			return err
		}
		if r.Model != "" {
			if _, err := io.WriteString(w, ModelPrefix+r.Model+"\n"); err != nil {
				return err
			}
		}
	}
	if _, err := io.WriteString(w, LegacyHeader+"\n"); err != nil {
		return err
	}
	for _, row := range r.Profile.Rows {
		aff := NA
		if !math.IsNaN(row.Affinity) {
			aff = strconv.FormatFloat(row.Affinity, 'f', 3, 64)
		}
		if _, err := fmt.Fprintf(w, "%9d %7.3f %7.3f %3d %8s\n",
			row.Position, row.PStart, row.Occupancy, row.Label.Bit(), aff); err != nil {
			return err
		}
	}
	return nil
}

// Prediction is one table read back from the NuPoP layout.
type Prediction struct {
	ID    string
	Model string // from the "## model:" line, if any
	Rows  []predict.Row
}

// ReadPrediction parses one or more NuPoP tables from r. Fields are split
// on runs of whitespace; "NA" affinities come back as NaN.
func ReadPrediction(r io.Reader) ([]Prediction, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	var (
		out    []Prediction
		cur    *Prediction
		lineNo int
	)
	start := func(id string) {
		out = append(out, Prediction{ID: id})
		cur = &out[len(out)-1]
	}
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "##"):
			if cur != nil && strings.HasPrefix(line, strings.TrimSpace(ModelPrefix)) {
				cur.Model = strings.TrimSpace(strings.TrimPrefix(line, strings.TrimSpace(ModelPrefix)))
			}
			continue
		case strings.HasPrefix(line, "#"):
			start(strings.TrimSpace(strings.TrimPrefix(line, "#")))
			continue
		case strings.HasPrefix(line, "Position"):
			if cur == nil || len(cur.Rows) > 0 {
				start("")
			}
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("prediction line %d: data before the %q header", lineNo, LegacyHeader)
		}
		row, err := parseLegacyRow(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("prediction line %d: %w", lineNo, err)
		}
		cur.Rows = append(cur.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseLegacyRow(f []string) (predict.Row, error) {
	var row predict.Row
	if len(f) != 5 {
		return row, fmt.Errorf("want 5 fields, got %d", len(f))
	}
	var err error
	if row.Position, err = strconv.Atoi(f[0]); err != nil {
		return row, fmt.Errorf("position: %w", err)
	}
	if row.PStart, err = strconv.ParseFloat(f[1], 64); err != nil {
		return row, fmt.Errorf("pstart: %w", err)
	}
	if row.Occupancy, err = strconv.ParseFloat(f[2], 64); err != nil {
		return row, fmt.Errorf("occupancy: %w", err)
	}
	switch f[3] {
	case "1":
		row.Label = model.Nucleosome
	case "0":
		row.Label = model.Linker
	default:
		return row, fmt.Errorf("N/L must be 0 or 1, got %q", f[3])
	}
	if f[4] == NA {
		row.Affinity = math.NaN()
	} else if row.Affinity, err = strconv.ParseFloat(f[4], 64); err != nil {
		return row, fmt.Errorf("affinity: %w", err)
	}
	return row, nil
}

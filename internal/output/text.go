// internal/output/text.go
package output

import (
	"io"
	"strconv"
)

// WriteText writes r as TSV rows (one per position), optionally preceded by
// TSVHeader.
func WriteText(w io.Writer, r Record, header bool) error {
	if header {
		if _, err := io.WriteString(w, TSVHeader+"\n"); err != nil {
			return err
		}
	}
	id := r.Profile.ID
	buf := make([]byte, 0, 128)
	for _, row := range r.Profile.Rows {
		buf = append(buf[:0], id...)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(row.Position), 10)
		buf = append(buf, '\t')
		buf = appendFloat(buf, row.PStart, 6)
		buf = append(buf, '\t')
		buf = appendFloat(buf, row.Occupancy, 6)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(row.Label.Bit()), 10)
		buf = append(buf, '\t')
		buf = appendFloat(buf, row.Affinity, 6)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

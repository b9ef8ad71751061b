// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"nupop/internal/jsonlutil"
	"nupop/internal/output"
)

// StartJSONLWriter streams each record as one JSON line (v1).
func StartJSONLWriter(out io.Writer, bufSize int) (chan<- output.Record, <-chan error) {
	return jsonlutil.Start[output.Record](out, bufSize,
		func(enc *json.Encoder, r output.Record) error {
			return enc.Encode(output.ToAPIProfile(r))
		},
		IsBrokenPipe,
	)
}

// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"nupop/internal/output"
)

// Starter spins up a writer goroutine for one format.
type Starter func(out io.Writer, header bool, bufSize int) (chan<- output.Record, <-chan error)

// Writer registry (format → starter). Register in init() blocks.
var starters = map[string]Starter{}

// Register adds or replaces (last wins) the starter for format.
func Register(format string, s Starter) { starters[format] = s }

// Formats lists the registered format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(starters))
	for f := range starters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Supported reports whether a writer is registered for format.
func Supported(format string) bool {
	_, ok := starters[format]
	return ok
}

// StartRecordWriter dispatches to the registered writer for format. An
// unknown format yields a writer that drains its input and reports the error.
func StartRecordWriter(out io.Writer, format string, header bool, bufSize int) (chan<- output.Record, <-chan error) {
	if s, ok := starters[format]; ok {
		return s(out, header, bufSize)
	}
	return startStream(bufSize, func(output.Record, bool) error {
		return fmt.Errorf("unknown output format %q (have %v)", format, Formats())
	}, nil)
}

// startStream runs write for each record in arrival order; first is true for
// the first record. After the first error the rest of the input is drained.
// finish, if non-nil, runs once the input is closed without error.
func startStream(bufSize int, write func(r output.Record, first bool) error, finish func() error) (chan<- output.Record, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan output.Record, bufSize)
	done := make(chan error, 1)
	go func() {
		var err error
		first := true
		for r := range in {
			if err != nil {
				continue
			}
			err = write(r, first)
			first = false
		}
		if err == nil && finish != nil {
			err = finish()
		}
		done <- err
	}()
	return in, done
}

func init() {
	Register(output.FormatText, func(out io.Writer, header bool, bufSize int) (chan<- output.Record, <-chan error) {
		return startStream(bufSize, func(r output.Record, first bool) error {
			return output.WriteText(out, r, header && first)
		}, nil)
	})
	Register(output.FormatNuPoP, func(out io.Writer, _ bool, bufSize int) (chan<- output.Record, <-chan error) {
		return startStream(bufSize, func(r output.Record, _ bool) error {
			return output.WriteLegacy(out, r, true)
		}, nil)
	})
	Register(output.FormatCSV, func(out io.Writer, header bool, bufSize int) (chan<- output.Record, <-chan error) {
		return startStream(bufSize, func(r output.Record, first bool) error {
			return output.WriteCSV(out, r, header && first)
		}, nil)
	})
	Register(output.FormatJSON, func(out io.Writer, _ bool, bufSize int) (chan<- output.Record, <-chan error) {
		var buf []output.Record
		return startStream(bufSize, func(r output.Record, _ bool) error {
			buf = append(buf, r)
			return nil
		}, func() error {
			return output.WriteJSON(out, buf)
		})
	})
	Register(output.FormatJSONL, func(out io.Writer, _ bool, bufSize int) (chan<- output.Record, <-chan error) {
		return StartJSONLWriter(out, bufSize)
	})
}

// core/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"nupop-core/internal/xopen"
)

// Record is one parsed FASTA entry. Seq has line breaks and surrounding
// whitespace removed; symbols are not validated here.
type Record struct {
	ID   string
	Desc string
	Seq  []byte
}

// maxLine allows very long single-line sequences (64 MiB).
const maxLine = 64 * 1024 * 1024

// ReadCtx parses FASTA from r and calls emit once per record, in file
// order. Cancellation via ctx is checked between lines. A header with no
// sequence lines yields a record with an empty Seq.
func ReadCtx(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		rec    Record
		seq    = make([]byte, 0, 1<<20)
		open   bool
		lineNo int
	)
	flush := func() error {
		if !open {
			return nil
		}
		rec.Seq = make([]byte, len(seq))
		copy(rec.Seq, seq)
		seq = seq[:0]
		return emit(rec)
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			rec.ID, rec.Desc = parseHeader(line[1:])
			open = true
			continue
		}
		if !open {
			return fmt.Errorf("fasta: line %d: sequence data before the first '>' header", lineNo)
		}
		seq = append(seq, line...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// ReadPathCtx opens path (plain, gzip or "-" for stdin) and parses it with
// ReadCtx.
func ReadPathCtx(ctx context.Context, path string, emit func(Record) error) error {
	rc, err := xopen.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return ReadCtx(ctx, rc, emit)
}

// ReadAll is a convenience for small inputs and tests.
func ReadAll(path string) ([]Record, error) {
	var out []Record
	err := ReadPathCtx(context.Background(), path, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

func parseHeader(hdr []byte) (id, desc string) {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i]), string(bytes.TrimSpace(hdr[i+1:]))
	}
	return string(hdr), ""
}

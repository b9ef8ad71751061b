package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"nupop-core/errs"
	"nupop-core/predict"
)

// fakeDecoder returns a one-row profile per record and sleeps longer for
// earlier records so that workers finish out of order.
type fakeDecoder struct {
	failID string
	calls  atomic.Int64
}

func (f *fakeDecoder) Predict(id string, raw []byte) (*predict.Profile, error) {
	f.calls.Add(1)
	if id == f.failID {
		return nil, errs.New(errs.InvalidSequence, "dna.Encode", "bad symbol")
	}
	var n int
	fmt.Sscanf(id, "s%d", &n)
	time.Sleep(time.Duration(20-n%20) * time.Millisecond / 4)
	return &predict.Profile{ID: id, Rows: make([]predict.Row, len(raw))}, nil
}

func (f *fakeDecoder) Cost(n int) int64 { return int64(n) * 10 }

func writeFasta(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, ">s%d\nACGT%s\n", i, strings.Repeat("A", i))
	}
	p := filepath.Join(t.TempDir(), "in.fa")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func collect(t *testing.T, cfg Config, files []string, dec Decoder) ([]Result, error) {
	t.Helper()
	var got []Result
	err := ForEachProfile(context.Background(), cfg, files, dec, func(r Result) error {
		got = append(got, r)
		return nil
	})
	return got, err
}

func TestForEachProfile_InputOrder(t *testing.T) {
	fa := writeFasta(t, 40)
	for _, threads := range []int{1, 4, 16} {
		got, err := collect(t, Config{Threads: threads}, []string{fa, fa}, &fakeDecoder{})
		if err != nil {
			t.Fatalf("threads=%d: %v", threads, err)
		}
		if len(got) != 80 {
			t.Fatalf("threads=%d: want 80 results, got %d", threads, len(got))
		}
		for i, r := range got {
			want := fmt.Sprintf("s%d", i%40)
			if r.Index != i || r.Profile.ID != want || r.Source != fa {
				t.Fatalf("threads=%d: result %d = {%d %s %s}, want {%d %s %s}",
					threads, i, r.Index, r.Profile.ID, r.Source, i, want, fa)
			}
			if r.Profile.Len() != 4+i%40 {
				t.Fatalf("threads=%d: result %d has %d rows", threads, i, r.Profile.Len())
			}
		}
	}
}

func TestForEachProfile_MaxCells(t *testing.T) {
	fa := writeFasta(t, 10)
	// s5 has length 9 → 90 cells.
	got, err := collect(t, Config{Threads: 3, MaxCells: 85}, []string{fa}, &fakeDecoder{})
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("want configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), `"s5"`) {
		t.Fatalf("error should name the record: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("records before the failure should be visited: got %d", len(got))
	}
}

func TestForEachProfile_FirstErrorInInputOrder(t *testing.T) {
	fa := writeFasta(t, 30)
	dec := &fakeDecoder{failID: "s12"}
	got, err := collect(t, Config{Threads: 8}, []string{fa}, dec)
	if !errors.Is(err, errs.ErrInvalidSequence) {
		t.Fatalf("want invalid sequence, got %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("want 12 visited records, got %d", len(got))
	}
	for i, r := range got {
		if r.Index != i {
			t.Fatalf("out of order at %d: %d", i, r.Index)
		}
	}
}

func TestForEachProfile_VisitErrorStops(t *testing.T) {
	fa := writeFasta(t, 20)
	boom := errors.New("sink closed")
	n := 0
	err := ForEachProfile(context.Background(), Config{Threads: 4}, []string{fa}, &fakeDecoder{}, func(Result) error {
		n++
		if n == 3 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want visit error, got %v", err)
	}
	if n != 3 {
		t.Fatalf("visit called %d times after failing", n)
	}
}

func TestForEachProfile_ReadError(t *testing.T) {
	fa := writeFasta(t, 2)
	missing := filepath.Join(t.TempDir(), "nope.fa")
	got, err := collect(t, Config{Threads: 2}, []string{fa, missing}, &fakeDecoder{})
	if err == nil || !strings.Contains(err.Error(), "nope.fa") {
		t.Fatalf("want read error naming the file, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records of the readable file should be visited, got %d", len(got))
	}
}

func TestForEachProfile_Cancel(t *testing.T) {
	fa := writeFasta(t, 200)
	ctx, cancel := context.WithCancel(context.Background())
	dec := &fakeDecoder{}
	err := ForEachProfile(ctx, Config{Threads: 2}, []string{fa}, dec, func(r Result) error {
		if r.Index == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if c := dec.calls.Load(); c >= 200 {
		t.Fatalf("cancel did not stop decoding: %d calls", c)
	}
}

func TestForEachProfile_Progress(t *testing.T) {
	fa := writeFasta(t, 5)
	var bar bytes.Buffer
	if _, err := collect(t, Config{Threads: 2, Progress: &bar}, []string{fa}, &fakeDecoder{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(bar.String(), "records") {
		t.Fatalf("progress output missing prefix: %q", bar.String())
	}
}

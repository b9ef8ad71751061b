package model

import (
	"bytes"
	"compress/gzip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nupop-core/dna"
	"nupop-core/errs"
)

func mustBuild(t *testing.T, f *File) *Params {
	t.Helper()
	p, err := f.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return p
}

func TestTemplateBuilds(t *testing.T) {
	p := mustBuild(t, Template())
	if got := p.Orders(); len(got) != 2 || got[1] != 4 {
		t.Fatalf("want orders [1 4], got %v", got)
	}
	if n := len(p.Species()); n != len(Known) {
		t.Fatalf("want %d species, got %d", len(Known), n)
	}
	em, err := p.Emission(4)
	if err != nil {
		t.Fatalf("emission 4: %v", err)
	}
	if em.Order() != 4 || em.Boundary().Order() != 1 {
		t.Fatalf("order-4 variant must carry an order-1 boundary")
	}
	// every conditional row is a distribution
	for _, st := range []State{Linker, Nucleosome} {
		for row := 0; row < ContextRows(4); row++ {
			sum := 0.0
			for b := dna.A; b <= dna.T; b++ {
				sum += math.Exp(em.Cond(st, row, b))
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Fatalf("%v row %d sums to %v", st, row, sum)
			}
		}
	}
}

func TestBuild_ShapeMismatch(t *testing.T) {
	f := Template()
	four := f.Emissions["4"]
	four.Nucleosome.Transitions = four.Nucleosome.Transitions[:64]
	f.Emissions["4"] = four
	_, err := f.Build()
	if !errors.Is(err, errs.ErrModelParameter) {
		t.Fatalf("want model parameter error, got %v", err)
	}
	if !strings.Contains(err.Error(), "needs 256 transition rows, got 64") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestBuild_RowTolerance(t *testing.T) {
	t.Run("small drift is renormalised", func(t *testing.T) {
		f := Template()
		one := f.Emissions["1"]
		one.Linker.Transitions[0] = []float64{0.25, 0.25, 0.25, 0.2501}
		mustBuild(t, f)
	})
	t.Run("large drift is rejected", func(t *testing.T) {
		f := Template()
		one := f.Emissions["1"]
		one.Linker.Transitions[2] = []float64{0.5, 0.5, 0.5, 0.5}
		_, err := f.Build()
		if !errors.Is(err, errs.ErrModelParameter) || !strings.Contains(err.Error(), "row 2 (G)") {
			t.Fatalf("want row 2 rejection, got %v", err)
		}
	})
	t.Run("wrong column count", func(t *testing.T) {
		f := Template()
		one := f.Emissions["1"]
		one.Nucleosome.Initial = []float64{0.5, 0.5}
		if _, err := f.Build(); !errors.Is(err, errs.ErrModelParameter) {
			t.Fatalf("want model parameter error, got %v", err)
		}
	})
}

func TestBuild_Structure(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(f *File)
		want   string
	}{
		{"version", func(f *File) { f.FormatVersion = 2 }, "format_version 2"},
		{"order 2", func(f *File) { f.Emissions["2"] = f.Emissions["1"] }, `order "2"`},
		{"no order 1", func(f *File) { delete(f.Emissions, "1") }, "order-1 tables are required"},
		{"no species", func(f *File) { f.Species = nil }, "no species"},
		{"duplicate id", func(f *File) { f.Species[1].ID = f.Species[0].ID }, "duplicate species id"},
		{"linker both", func(f *File) { f.Species[0].Linker.Probs = []float64{1} }, "not both"},
		{"linker none", func(f *File) { f.Species[0].Linker = LinkerFile{} }, "continuation or probs required"},
		{"start prob", func(f *File) { v := 1.5; f.Species[0].StartNucleosome = &v }, "start_nucleosome"},
		{"duration support", func(f *File) { f.Species[0].NucleosomeDuration.Max = 500 }, "support ends at 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Template()
			tc.mutate(f)
			_, err := f.Build()
			if !errors.Is(err, errs.ErrModelParameter) || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want %q model parameter error, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_GzipFile(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if err := Template().Encode(gw); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	fn := filepath.Join(t.TempDir(), "params.json.gz")
	if err := os.WriteFile(fn, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(fn)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "template" || len(p.Species()) != len(Known) {
		t.Fatalf("unexpected bundle %q with %d species", p.Name, len(p.Species()))
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"format_version":1,"emisions":{}}`))
	if !errors.Is(err, errs.ErrModelParameter) {
		t.Fatalf("want model parameter error, got %v", err)
	}
}

func TestEmission_OrderFourMissing(t *testing.T) {
	f := Template()
	delete(f.Emissions, "4")
	p := mustBuild(t, f)
	if _, err := p.Emission(4); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("want configuration error, got %v", err)
	}
	if _, err := p.Emission(2); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("want configuration error for order 2, got %v", err)
	}
}

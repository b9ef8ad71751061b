// Package model holds the precomputed, versioned parameters of the duration
// HMM: emission tables per Markov order and per-species duration
// distributions. A *Params is built once, validated, pre-logged and then
// shared read-only by every decode.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"nupop-core/dna"
	"nupop-core/errs"
	"nupop-core/internal/xopen"
	"nupop-core/logspace"
)

// FormatVersion is the parameter bundle schema this package reads.
const FormatVersion = 1

// File is the on-disk JSON schema of a parameter bundle.
type File struct {
	FormatVersion int                    `json:"format_version"`
	Name          string                 `json:"name,omitempty"`
	Emissions     map[string]StateTables `json:"emissions"` // keyed by order: "1", "4"
	Species       []SpeciesFile          `json:"species"`
}

// StateTables are the raw emission tables of one order.
type StateTables struct {
	Nucleosome Table `json:"nucleosome"`
	Linker     Table `json:"linker"`
}

// Table is one state's conditional table. Transitions[row][b] =
// P(b | context row); Initial is required for order 1 only.
type Table struct {
	Initial     []float64   `json:"initial,omitempty"`
	Transitions [][]float64 `json:"transitions"`
}

// SpeciesFile is the raw duration side of one species.
type SpeciesFile struct {
	ID                 int          `json:"id"`
	Name               string       `json:"name,omitempty"`
	StartNucleosome    *float64     `json:"start_nucleosome,omitempty"`
	NucleosomeDuration DurationFile `json:"nucleosome_duration"`
	Linker             LinkerFile   `json:"linker"`
}

// DurationFile is a length distribution: Probs[d-1] = P(D = d), restricted
// to [Min..Max] (defaults 1 and len(Probs)).
type DurationFile struct {
	Min   int       `json:"min,omitempty"`
	Max   int       `json:"max,omitempty"`
	Probs []float64 `json:"probs"`
}

// LinkerFile is either a geometric continuation (with optional cap) or an
// explicit table.
type LinkerFile struct {
	Continuation *float64  `json:"continuation,omitempty"`
	Cap          int       `json:"cap,omitempty"`
	Probs        []float64 `json:"probs,omitempty"`
}

// Params is a validated, pre-logged parameter bundle.
type Params struct {
	Name      string
	orderOne  *OrderOne
	orderFour *OrderFour
	species   []*Species
}

// Load reads a (possibly gzip-compressed) JSON bundle from path.
func Load(path string) (*Params, error) {
	rc, err := xopen.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ModelParameter, "model.Load", err)
	}
	defer rc.Close()
	p, err := Decode(rc)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = path
	}
	return p, nil
}

// Decode parses and builds a bundle from r.
func Decode(r io.Reader) (*Params, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, errs.New(errs.ModelParameter, "model.Decode", "parse: %v", err)
	}
	return f.Build()
}

// Encode writes f as indented JSON.
func (f *File) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// Build validates f, renormalises its tables and pre-logs them.
func (f *File) Build() (*Params, error) {
	const op = "model.Build"
	fail := func(format string, a ...any) (*Params, error) {
		return nil, errs.New(errs.ModelParameter, op, format, a...)
	}
	if f.FormatVersion != FormatVersion {
		return fail("format_version %d not supported (want %d)", f.FormatVersion, FormatVersion)
	}
	for key := range f.Emissions {
		if key != "1" && key != "4" {
			return fail("emissions for order %q: only orders 1 and 4 exist", key)
		}
	}
	one, ok := f.Emissions["1"]
	if !ok {
		return fail("order-1 tables are required (they also seed higher orders at the sequence start)")
	}
	p := &Params{Name: f.Name, orderOne: &OrderOne{}}
	for _, st := range []State{Linker, Nucleosome} {
		tab := one.table(st)
		first, err := logRow(tab.Initial)
		if err != nil {
			return fail("order 1 %s initial: %v", stateName(st), err)
		}
		p.orderOne.initial[st] = first
		rows, err := logRows(tab.Transitions, 1)
		if err != nil {
			return fail("order 1 %s: %v", stateName(st), err)
		}
		copy(p.orderOne.trans[st][:], rows)
	}
	if four, ok := f.Emissions["4"]; ok {
		p.orderFour = &OrderFour{boundary: p.orderOne}
		for _, st := range []State{Linker, Nucleosome} {
			rows, err := logRows(four.table(st).Transitions, 4)
			if err != nil {
				return fail("order 4 %s: %v", stateName(st), err)
			}
			p.orderFour.trans[st] = rows
		}
	}

	if len(f.Species) == 0 {
		return fail("no species defined")
	}
	seen := map[int]bool{}
	for i := range f.Species {
		sf := &f.Species[i]
		if seen[sf.ID] {
			return fail("duplicate species id %d", sf.ID)
		}
		seen[sf.ID] = true
		sp, err := sf.build()
		if err != nil {
			return fail("species %d: %v", sf.ID, err)
		}
		p.species = append(p.species, sp)
	}
	sort.Slice(p.species, func(i, j int) bool { return p.species[i].ID < p.species[j].ID })
	return p, nil
}

func (t StateTables) table(s State) Table {
	if s == Nucleosome {
		return t.Nucleosome
	}
	return t.Linker
}

func stateName(s State) string {
	if s == Nucleosome {
		return "nucleosome"
	}
	return "linker"
}

func (sf *SpeciesFile) build() (*Species, error) {
	sp := &Species{ID: sf.ID, Name: sf.Name, StartNucleosome: 0.5}
	if sp.Name == "" {
		sp.Name = knownName(sf.ID)
	}
	if sf.StartNucleosome != nil {
		v := *sf.StartNucleosome
		if v < 0 || v > 1 || math.IsNaN(v) {
			return nil, fmt.Errorf("start_nucleosome %v outside [0,1]", v)
		}
		sp.StartNucleosome = v
	}

	nd := sf.NucleosomeDuration
	lo, hi := nd.Min, nd.Max
	if lo == 0 {
		lo = 1
	}
	if hi == 0 {
		hi = len(nd.Probs)
	}
	d, err := NewDuration(nd.Probs, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("nucleosome_duration: %w", err)
	}
	sp.Nucleosome = d

	lf := sf.Linker
	switch {
	case lf.Continuation != nil && len(lf.Probs) > 0:
		return nil, fmt.Errorf("linker: give either continuation or probs, not both")
	case lf.Continuation != nil:
		sp.LinkerKind = LinkerGeometric
		sp.LinkerContinuation = *lf.Continuation
		sp.LinkerCap = lf.Cap
		if sp.LinkerCap == 0 {
			sp.LinkerCap = DefaultLinkerCap
		}
		if _, err := Geometric(sp.LinkerContinuation, sp.LinkerCap); err != nil {
			return nil, fmt.Errorf("linker: %w", err)
		}
	case len(lf.Probs) > 0:
		sp.LinkerKind = LinkerTable
		t, err := NewDuration(lf.Probs, 1, len(lf.Probs))
		if err != nil {
			return nil, fmt.Errorf("linker: %w", err)
		}
		sp.linkerTable = t
		sp.LinkerCap = len(lf.Probs)
	default:
		return nil, fmt.Errorf("linker: continuation or probs required")
	}
	return sp, nil
}

func knownName(id int) string {
	for _, k := range Known {
		if k.ID == id {
			return k.Name
		}
	}
	return "species-" + strconv.Itoa(id)
}

// logRows checks a transition table has the shape order k demands and
// returns it renormalised and pre-logged.
func logRows(rows [][]float64, k int) ([][dna.AlphabetSize]float64, error) {
	want := ContextRows(k)
	if len(rows) != want {
		return nil, fmt.Errorf("order %d needs %d transition rows, got %d", k, want, len(rows))
	}
	out := make([][dna.AlphabetSize]float64, want)
	for i, r := range rows {
		lr, err := logRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %v", i, contextLabel(i, k), err)
		}
		out[i] = lr
	}
	return out, nil
}

func logRow(r []float64) ([dna.AlphabetSize]float64, error) {
	var out [dna.AlphabetSize]float64
	if len(r) != dna.AlphabetSize {
		return out, fmt.Errorf("want %d columns (A,C,G,T), got %d", dna.AlphabetSize, len(r))
	}
	p := make([]float64, dna.AlphabetSize)
	for j, v := range r {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return out, fmt.Errorf("column %d = %v is not a probability", j, v)
		}
		p[j] = v
	}
	if sum := logspace.Normalize(p); math.Abs(sum-1) > Tolerance {
		return out, fmt.Errorf("sums to %.6g, want 1±%g", sum, Tolerance)
	}
	for j, v := range p {
		out[j] = logspace.Log(v)
	}
	return out, nil
}

func contextLabel(row, k int) string {
	b := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		b[i] = "ACGT"[row&3]
		row >>= 2
	}
	return string(b)
}

// Orders lists the Markov orders the bundle carries.
func (p *Params) Orders() []int {
	if p.orderFour != nil {
		return []int{1, 4}
	}
	return []int{1}
}

// Species returns the bundle's species sorted by id.
func (p *Params) Species() []*Species { return p.species }

// Emission selects the emission variant for order k.
func (p *Params) Emission(k int) (EmissionModel, error) {
	switch k {
	case 1:
		return p.orderOne, nil
	case 4:
		if p.orderFour == nil {
			return nil, errs.New(errs.Configuration, "model.Emission", "bundle %q has no order-4 tables", p.Name)
		}
		return p.orderFour, nil
	}
	return nil, errs.New(errs.Configuration, "model.Emission", "order must be 1 or 4, got %d", k)
}

// FindSpecies resolves sel (numeric id, bundle name or known alias).
func (p *Params) FindSpecies(sel string) (*Species, error) {
	for _, sp := range p.species {
		if sp.matches(sel) {
			return sp, nil
		}
	}
	names := make([]string, 0, len(p.species))
	for _, sp := range p.species {
		names = append(names, fmt.Sprintf("%d=%s", sp.ID, sp.Name))
	}
	return nil, errs.New(errs.Configuration, "model.FindSpecies", "unknown species %q (have %s)", sel, strings.Join(names, ", "))
}

// Package dna encodes raw nucleotide bytes into the compact symbol codes the
// emission scorer indexes tables with.
package dna

import (
	"fmt"
	"strings"

	"nupop-core/errs"
)

// Base codes. A..T index the 4-column emission tables directly.
const (
	A Base = iota
	C
	G
	T
	// Wildcard stands for an IUPAC ambiguity code accepted under PolicyWildcard.
	Wildcard
)

// AlphabetSize is the number of concrete bases.
const AlphabetSize = 4

// Base is an encoded nucleotide.
type Base uint8

func (b Base) String() string {
	if b > Wildcard {
		return "?"
	}
	return string("ACGTN"[b])
}

// Policy decides what happens to symbols outside {A,C,G,T}.
type Policy uint8

const (
	// PolicyReject fails the whole sequence on the first non-ACGT symbol.
	PolicyReject Policy = iota
	// PolicyWildcard accepts IUPAC ambiguity codes as Wildcard.
	PolicyWildcard
)

// ParsePolicy maps "reject" / "wildcard" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, nil
	case "wildcard":
		return PolicyWildcard, nil
	}
	return PolicyReject, errs.New(errs.Configuration, "dna.ParsePolicy", "unknown ambiguity policy %q (want reject|wildcard)", s)
}

func (p Policy) String() string {
	if p == PolicyWildcard {
		return "wildcard"
	}
	return "reject"
}

// code maps ASCII to a Base; 0xFF is unsupported, Wildcard is IUPAC ambiguity.
var code [256]byte

func init() {
	for i := range code {
		code[i] = 0xFF
	}
	set := func(c byte, b Base) {
		code[c] = byte(b)
		code[c|0x20] = byte(b) // soft-masked lowercase
	}
	set('A', A)
	set('C', C)
	set('G', G)
	set('T', T)
	for _, c := range []byte("RYSWKMBDHVN") {
		set(c, Wildcard)
	}
}

// Sequence is an immutable encoded nucleotide sequence.
type Sequence struct {
	id    string
	bases []Base
	wild  int
}

// Encode validates raw under policy and returns the encoded Sequence.
// Position numbers in errors are 1-based.
func Encode(id string, raw []byte, policy Policy) (Sequence, error) {
	const op = "dna.Encode"
	if len(raw) == 0 {
		return Sequence{}, errs.New(errs.InvalidSequence, op, "sequence %q is empty", id)
	}
	s := Sequence{id: id, bases: make([]Base, len(raw))}
	for i, c := range raw {
		b := code[c]
		switch {
		case b == 0xFF:
			return Sequence{}, errs.New(errs.InvalidSequence, op, "sequence %q: unsupported symbol %q at %d", id, c, i+1)
		case Base(b) == Wildcard && policy != PolicyWildcard:
			return Sequence{}, errs.New(errs.InvalidSequence, op,
				"sequence %q: ambiguity symbol %q at %d (use the wildcard policy to accept it)", id, c, i+1)
		case Base(b) == Wildcard:
			s.wild++
		}
		s.bases[i] = Base(b)
	}
	return s, nil
}

// MustEncode is Encode for literals in tests and examples; it panics on error.
func MustEncode(id, raw string) Sequence {
	s, err := Encode(id, []byte(raw), PolicyReject)
	if err != nil {
		panic(err)
	}
	return s
}

// ID returns the record identifier.
func (s Sequence) ID() string { return s.id }

// Len returns N.
func (s Sequence) Len() int { return len(s.bases) }

// At returns the base at 1-based position i.
func (s Sequence) At(i int) Base { return s.bases[i-1] }

// Wildcards counts positions encoded as Wildcard.
func (s Sequence) Wildcards() int { return s.wild }

// String renders the sequence back to ACGTN.
func (s Sequence) String() string {
	var b strings.Builder
	b.Grow(len(s.bases))
	for _, x := range s.bases {
		b.WriteByte("ACGTN"[x])
	}
	return b.String()
}

// Context packs the k bases preceding 1-based position i into a row index
// (2 bits per base, oldest base most significant). ok is false when the
// context runs off the left edge of [from..] or contains a Wildcard.
func (s Sequence) Context(i, k, from int) (row int, ok bool) {
	if i-k < from {
		return 0, false
	}
	for j := i - k; j < i; j++ {
		b := s.bases[j-1]
		if b == Wildcard {
			return 0, false
		}
		row = row<<2 | int(b)
	}
	return row, true
}

// GoString helps test failure output.
func (s Sequence) GoString() string {
	return fmt.Sprintf("dna.Sequence{%q, N=%d}", s.id, len(s.bases))
}

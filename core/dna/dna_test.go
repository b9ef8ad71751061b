package dna

import (
	"errors"
	"strings"
	"testing"

	"nupop-core/errs"
)

func TestEncode_RoundTripAndSoftMask(t *testing.T) {
	s, err := Encode("s", []byte("ACGTacgt"), PolicyReject)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := s.String(); got != "ACGTACGT" {
		t.Fatalf("want ACGTACGT, got %s", got)
	}
	if s.Len() != 8 || s.At(1) != A || s.At(8) != T {
		t.Fatalf("bad decode: len=%d first=%v last=%v", s.Len(), s.At(1), s.At(8))
	}
}

func TestEncode_Failures(t *testing.T) {
	cases := []struct {
		name, raw string
		policy    Policy
		want      string
	}{
		{"empty", "", PolicyReject, "empty"},
		{"ambiguity rejected", "ACNGT", PolicyReject, "ambiguity symbol 'N' at 3"},
		{"digit always rejected", "AC1GT", PolicyWildcard, "unsupported symbol '1' at 3"},
		{"uracil rejected", "ACGU", PolicyReject, "unsupported symbol 'U' at 4"},
		{"uracil not a wildcard", "acgu", PolicyWildcard, "unsupported symbol 'u' at 4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Encode("x", []byte(tc.raw), tc.policy)
			if !errors.Is(err, errs.ErrInvalidSequence) {
				t.Fatalf("want InvalidSequence, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestEncode_WildcardPolicy(t *testing.T) {
	s, err := Encode("x", []byte("ACRNT"), PolicyWildcard)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if s.Wildcards() != 2 || s.At(3) != Wildcard {
		t.Fatalf("want 2 wildcards at 3,4; got %d (%v)", s.Wildcards(), s.At(3))
	}
}

func TestContext(t *testing.T) {
	s := MustEncode("x", "ACGTA")
	// bases 1..4 = A C G T → 0b00_01_10_11 = 27
	if row, ok := s.Context(5, 4, 1); !ok || row != 27 {
		t.Fatalf("want 27, got %d ok=%v", row, ok)
	}
	if _, ok := s.Context(4, 4, 1); ok {
		t.Fatalf("context running off the left edge must fail")
	}
	if _, ok := s.Context(5, 2, 4); ok {
		t.Fatalf("context crossing the window start must fail")
	}
	w, _ := Encode("w", []byte("ANGTA"), PolicyWildcard)
	if _, ok := w.Context(5, 4, 1); ok {
		t.Fatalf("context containing a wildcard must fail")
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("Wildcard"); err != nil || p != PolicyWildcard {
		t.Fatalf("want wildcard, got %v %v", p, err)
	}
	if _, err := ParsePolicy("skip"); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("want configuration error, got %v", err)
	}
}

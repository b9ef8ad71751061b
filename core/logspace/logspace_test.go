package logspace

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) <= 1e-12*math.Max(1, math.Abs(b)) }

func TestSumExp(t *testing.T) {
	if got := SumExp(nil); !math.IsInf(got, -1) {
		t.Fatalf("empty sum must be -Inf, got %v", got)
	}
	// large magnitudes that would underflow in probability space
	terms := []float64{-1000, -1000, -1000, -1000}
	if got := SumExp(terms); !near(got, -1000+math.Log(4)) {
		t.Fatalf("want -1000+ln4, got %v", got)
	}
	if got := SumExp([]float64{Zero, Zero}); !math.IsInf(got, -1) {
		t.Fatalf("all -Inf must stay -Inf, got %v", got)
	}
}

func TestProb(t *testing.T) {
	if Prob(0.1) != 1 || Prob(Zero) != 0 {
		t.Fatalf("Prob must clamp into [0,1]")
	}
}

func TestNormalize(t *testing.T) {
	v := []float64{1, 1, 2}
	if s := Normalize(v); s != 4 || v[2] != 0.5 {
		t.Fatalf("sum=%v v=%v", s, v)
	}
	z := []float64{0, 0}
	if s := Normalize(z); s != 0 || z[0] != 0 {
		t.Fatalf("zero vector must stay untouched")
	}
}

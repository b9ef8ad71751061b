package model

import (
	"math"
	"testing"
)

func sumPMF(d Duration) float64 {
	s := 0.0
	for n := 1; n <= d.Max(); n++ {
		s += math.Exp(d.LogPMF(n))
	}
	return s
}

func TestGeometric(t *testing.T) {
	d, err := Geometric(0.9, 500)
	if err != nil {
		t.Fatalf("geometric: %v", err)
	}
	if got := sumPMF(d); math.Abs(got-1) > 1e-12 {
		t.Fatalf("want pmf summing to 1, got %v", got)
	}
	// P(1) = (1-p)/(1-p^cap)
	want := math.Log(0.1 / (1 - math.Pow(0.9, 500)))
	if got := d.LogPMF(1); math.Abs(got-want) > 1e-12 {
		t.Fatalf("P(1): want %v, got %v", want, got)
	}
	if math.Abs(d.Mean()-10) > 1e-6 {
		t.Fatalf("want mean ~10, got %v", d.Mean())
	}
	if d.LogSurvival(1) != 0 {
		t.Fatalf("S(1) must be 1, got %v", math.Exp(d.LogSurvival(1)))
	}
	if !math.IsInf(d.LogSurvival(501), -1) || !math.IsInf(d.LogPMF(501), -1) {
		t.Fatalf("lengths past the cap must have zero mass")
	}

	for _, bad := range []struct {
		p   float64
		cap int
	}{{1, 10}, {-0.1, 10}, {0.5, 0}} {
		if _, err := Geometric(bad.p, bad.cap); err == nil {
			t.Fatalf("Geometric(%v, %d): want error", bad.p, bad.cap)
		}
	}
}

func TestNewDuration_SupportAndSurvival(t *testing.T) {
	probs := []float64{0.3, 0.2, 0.25, 0.25, 0.3}
	// mass outside [3..4] is ignored
	d, err := NewDuration(probs, 3, 4)
	if err != nil {
		t.Fatalf("NewDuration: %v", err)
	}
	if d.Min() != 3 || d.Max() != 4 {
		t.Fatalf("want support [3..4], got [%d..%d]", d.Min(), d.Max())
	}
	if !math.IsInf(d.LogPMF(2), -1) || !math.IsInf(d.LogPMF(5), -1) {
		t.Fatalf("lengths outside the support must have zero mass")
	}
	if got := math.Exp(d.LogPMF(3)); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("P(3): want 0.5, got %v", got)
	}
	for n, want := range map[int]float64{1: 1, 2: 1, 3: 1, 4: 0.5} {
		if got := math.Exp(d.LogSurvival(n)); math.Abs(got-want) > 1e-12 {
			t.Fatalf("S(%d): want %v, got %v", n, want, got)
		}
	}
	if math.Abs(d.Mean()-3.5) > 1e-12 {
		t.Fatalf("want mean 3.5, got %v", d.Mean())
	}
}

func TestNewDuration_Rejects(t *testing.T) {
	cases := []struct {
		name     string
		probs    []float64
		min, max int
	}{
		{"sum", []float64{0.5, 0.6}, 1, 2},
		{"negative", []float64{1.2, -0.2}, 1, 2},
		{"support", []float64{1}, 1, 3},
		{"min", []float64{1}, 0, 1},
	}
	for _, tc := range cases {
		if _, err := NewDuration(tc.probs, tc.min, tc.max); err == nil {
			t.Fatalf("%s: want error", tc.name)
		}
	}
}

func TestTruncate(t *testing.T) {
	d, err := NewDuration([]float64{0.25, 0.25, 0.25, 0.25}, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	same, err := d.Truncate(10)
	if err != nil || same.Max() != 4 {
		t.Fatalf("cap past max must be a no-op, got max %d err %v", same.Max(), err)
	}
	c, err := d.Truncate(2)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if c.Max() != 2 || math.Abs(math.Exp(c.LogPMF(2))-0.5) > 1e-12 {
		t.Fatalf("want renormalised P(2)=0.5 with max 2, got %v max %d", math.Exp(c.LogPMF(2)), c.Max())
	}
	nd, _ := NewDuration([]float64{0, 0.5, 0.5}, 2, 3)
	if _, err := nd.Truncate(1); err == nil {
		t.Fatalf("cap below the minimum must fail")
	}
}

func TestNucleosomePrior(t *testing.T) {
	df := NucleosomePrior(CoreLength, 2, 6)
	d, err := NewDuration(df.Probs, df.Min, df.Max)
	if err != nil {
		t.Fatalf("prior does not load: %v", err)
	}
	if d.Min() != 141 || d.Max() != 153 {
		t.Fatalf("want [141..153], got [%d..%d]", d.Min(), d.Max())
	}
	if math.Abs(d.Mean()-CoreLength) > 1e-9 {
		t.Fatalf("symmetric prior must have mean %d, got %v", CoreLength, d.Mean())
	}
	if d.LogPMF(147) <= d.LogPMF(146) {
		t.Fatalf("mode must sit at %d", CoreLength)
	}
}

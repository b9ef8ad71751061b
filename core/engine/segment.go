// core/engine/segment.go
package engine

import (
	"nupop-core/errs"
	"nupop-core/model"
)

// Segment is a maximal run of one state covering [Start..Start+Length-1].
type Segment struct {
	State  model.State
	Start  int
	Length int
}

// End is the last position of the segment.
func (s Segment) End() int { return s.Start + s.Length - 1 }

// Segmentation is an ordered, alternating tiling of [1..N].
type Segmentation []Segment

// Labels expands the segmentation to one state per position (index i-1).
func (sg Segmentation) Labels() []model.State {
	n := 0
	if len(sg) > 0 {
		n = sg[len(sg)-1].End()
	}
	out := make([]model.State, n)
	for _, s := range sg {
		for i := s.Start; i <= s.End(); i++ {
			out[i-1] = s.State
		}
	}
	return out
}

// Nucleosomes counts the N segments.
func (sg Segmentation) Nucleosomes() int {
	c := 0
	for _, s := range sg {
		if s.State == model.Nucleosome {
			c++
		}
	}
	return c
}

// Validate checks that sg tiles [1..n] without gaps or overlaps and that
// neighbouring segments alternate.
func (sg Segmentation) Validate(n int) error {
	const op = "engine.Validate"
	next := 1
	for k, s := range sg {
		if s.Length < 1 {
			return errs.New(errs.Internal, op, "segment %d has length %d", k, s.Length)
		}
		if s.Start != next {
			return errs.New(errs.Internal, op, "segment %d starts at %d, want %d", k, s.Start, next)
		}
		if k > 0 && sg[k-1].State == s.State {
			return errs.New(errs.Internal, op, "segments %d and %d are both %v", k-1, k, s.State)
		}
		next = s.End() + 1
	}
	if next != n+1 {
		return errs.New(errs.Internal, op, "segmentation covers [1..%d], want [1..%d]", next-1, n)
	}
	return nil
}

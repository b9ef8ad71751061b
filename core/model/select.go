package model

import (
	"nupop-core/errs"
	"nupop-core/logspace"
)

// Options picks the parts of a bundle one decode run uses.
type Options struct {
	Order     int    // 1 or 4
	Species   string // id, name or alias
	LinkerCap int    // 0 = species default
}

// Selection is everything the decoder needs for one (order, species, cap)
// choice. It is immutable and safe to share across goroutines.
type Selection struct {
	Emission   EmissionModel
	Species    *Species
	Nucleosome Duration
	Linker     Duration
	// LogStart[s] is log π_s, the probability the first segment is in s.
	LogStart [NumStates]float64
}

// Select validates o against the bundle. All failures are configuration
// errors and happen before any decoding.
func (p *Params) Select(o Options) (*Selection, error) {
	const op = "model.Select"
	if o.LinkerCap < 0 {
		return nil, errs.New(errs.Configuration, op, "linker cap must be >= 0, got %d", o.LinkerCap)
	}
	em, err := p.Emission(o.Order)
	if err != nil {
		return nil, err
	}
	sp, err := p.FindSpecies(o.Species)
	if err != nil {
		return nil, err
	}
	linker, err := sp.Linker(o.LinkerCap)
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, op, err)
	}
	sel := &Selection{
		Emission:   em,
		Species:    sp,
		Nucleosome: sp.Nucleosome,
		Linker:     linker,
	}
	sel.LogStart[Nucleosome] = logspace.Log(sp.StartNucleosome)
	sel.LogStart[Linker] = logspace.Log(1 - sp.StartNucleosome)
	return sel, nil
}

// Duration returns the dwell distribution of state s.
func (s *Selection) Duration(st State) Duration {
	if st == Nucleosome {
		return s.Nucleosome
	}
	return s.Linker
}

// MaxDuration is D = max(D_Nmax, D_L).
func (s *Selection) MaxDuration() int {
	if s.Nucleosome.Max() > s.Linker.Max() {
		return s.Nucleosome.Max()
	}
	return s.Linker.Max()
}

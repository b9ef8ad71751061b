// Package predict ties the core together: it encodes a raw sequence, scores
// it, runs both decoders and the affinity scorer, and returns one immutable
// per-position profile.
package predict

import (
	"nupop-core/affinity"
	"nupop-core/dna"
	"nupop-core/emission"
	"nupop-core/engine"
	"nupop-core/errs"
	"nupop-core/model"
)

// Options are the per-run choices; they are validated once by New.
type Options struct {
	Order     int
	Species   string
	LinkerCap int
	Policy    dna.Policy
}

// Row is the output line for one position.
type Row struct {
	Position  int
	PStart    float64
	Occupancy float64
	Label     model.State
	Affinity  float64 // NaN when undefined
}

// Profile is the result of decoding one sequence.
type Profile struct {
	ID            string
	Rows          []Row
	Segments      engine.Segmentation
	LogLikelihood float64 // log Z over all segmentations
	// ExpectedNucleosomes is Σ pstart, the posterior mean nucleosome count.
	ExpectedNucleosomes float64
	ViterbiLogP         float64
	Wildcards           int
}

// Len is N.
func (p *Profile) Len() int { return len(p.Rows) }

// Predictor decodes sequences with one fixed model selection. It holds no
// mutable state and is safe for concurrent use.
type Predictor struct {
	opt Options
	sel *model.Selection
	dec *engine.Decoder
}

// New validates o against params. Every configuration error surfaces here,
// before any sequence is decoded.
func New(params *model.Params, o Options) (*Predictor, error) {
	if params == nil {
		return nil, errs.New(errs.Configuration, "predict.New", "no model parameters loaded")
	}
	sel, err := params.Select(model.Options{Order: o.Order, Species: o.Species, LinkerCap: o.LinkerCap})
	if err != nil {
		return nil, err
	}
	return &Predictor{opt: o, sel: sel, dec: engine.New(sel)}, nil
}

// Selection returns the resolved model selection.
func (p *Predictor) Selection() *model.Selection { return p.sel }

// Cost is the DP cell count of decoding a length-n sequence.
func (p *Predictor) Cost(n int) int64 { return p.dec.Cost(n) }

// Predict decodes raw. Nothing is returned unless every stage succeeds.
func (p *Predictor) Predict(id string, raw []byte) (*Profile, error) {
	seq, err := dna.Encode(id, raw, p.opt.Policy)
	if err != nil {
		return nil, err
	}
	return p.Decode(seq)
}

// Decode runs the decoders over an encoded sequence.
func (p *Predictor) Decode(seq dna.Sequence) (*Profile, error) {
	sc := emission.Score(p.sel.Emission, seq)
	segs, vlogp, err := p.dec.Viterbi(sc)
	if err != nil {
		return nil, err
	}
	if err := segs.Validate(seq.Len()); err != nil {
		return nil, err
	}
	post, err := p.dec.Posterior(sc)
	if err != nil {
		return nil, err
	}
	aff := affinity.Scores(sc)
	labels := segs.Labels()

	rows := make([]Row, seq.Len())
	for i := range rows {
		rows[i] = Row{
			Position:  i + 1,
			PStart:    post.PStart[i],
			Occupancy: post.Occupancy[i],
			Label:     labels[i],
			Affinity:  aff[i],
		}
	}
	return &Profile{
		ID:                  seq.ID(),
		Rows:                rows,
		Segments:            segs,
		LogLikelihood:       post.LogZ,
		ExpectedNucleosomes: post.ExpectedNucleosomes(),
		ViterbiLogP:         vlogp,
		Wildcards:           seq.Wildcards(),
	}, nil
}

// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"

	"nupop-core/errs"
	"nupop-core/fasta"
	"nupop-core/predict"
	"nupop/internal/logging"
)

// Decoder decodes one raw record. *predict.Predictor implements it.
type Decoder interface {
	Predict(id string, raw []byte) (*predict.Profile, error)
	Cost(n int) int64
}

// Config controls the decoding pipeline.
type Config struct {
	Threads  int            // number of worker goroutines (>=1)
	MaxCells int64          // reject records whose DP exceeds this many cells (0 = no bound)
	Progress io.Writer      // progress bar destination; nil disables it
	Log      *logrus.Logger // per-record events; nil discards them
	Fields   logrus.Fields  // attached to every per-record event (order, species)
}

// Result is one decoded record.
type Result struct {
	Index   int // position among all records of all inputs, from 0
	Source  string
	Profile *predict.Profile
	Elapsed time.Duration
}

type job struct {
	idx int
	src string
	rec fasta.Record
}

type outcome struct {
	res Result
	err error
}

// ForEachProfile decodes every record of seqFiles and calls visit with the
// results in input order, whatever the thread count. The first failing
// record (in input order) stops the run: records before it have been
// visited, nothing after it is. It returns that error, a read error, or the
// context's error when ctx is cancelled.
func ForEachProfile(
	parent context.Context,
	cfg Config,
	seqFiles []string,
	dec Decoder,
	visit func(Result) error,
) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	log := cfg.Log
	if log == nil {
		log = logging.Discard()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan job, cfg.Threads*2)
	results := make(chan outcome, cfg.Threads*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					o := decodeOne(cfg, dec, j)
					select {
					case results <- o:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	var bar *pb.ProgressBar
	if cfg.Progress != nil {
		bar = pb.New(0).Prefix("records ")
		bar.Output = cfg.Progress
		bar.ShowBar, bar.ShowPercent, bar.ShowTimeLeft = false, false, false
		bar.Start()
	}

	// Collector: release results strictly in index order.
	var (
		cerr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		pending := make(map[int]outcome)
		next := 0
		for o := range results {
			pending[o.res.Index] = o
			for {
				p, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if cerr != nil {
					continue
				}
				if p.err != nil {
					cerr = p.err
					cancel()
					continue
				}
				entry := log.WithFields(cfg.Fields).WithFields(logrus.Fields{
					"sequence_id": p.res.Profile.ID,
					"source":      p.res.Source,
					"length":      p.res.Profile.Len(),
					"elapsed":     p.res.Elapsed.String(),
				})
				if wc := p.res.Profile.Wildcards; wc > 0 {
					entry.WithField("wildcards", wc).Warn("ambiguity codes scored as uninformative")
				}
				entry.Debug("decoded")
				if err := visit(p.res); err != nil {
					cerr = err
					cancel()
				}
				if bar != nil {
					bar.Increment()
				}
			}
		}
	}()

	// Feed work
	var (
		ferr error
		idx  int
	)
feed:
	for _, fa := range seqFiles {
		err := fasta.ReadPathCtx(ctx, fa, func(rec fasta.Record) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- job{idx: idx, src: fa, rec: rec}:
				idx++
				return nil
			}
		})
		switch {
		case ctx.Err() != nil:
			break feed
		case err != nil:
			ferr = fmt.Errorf("%s: %w", fa, err)
			break feed
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()
	if bar != nil {
		bar.Finish()
	}

	if parent.Err() != nil {
		return parent.Err()
	}
	if cerr != nil {
		return cerr
	}
	return ferr
}

func decodeOne(cfg Config, dec Decoder, j job) outcome {
	res := Result{Index: j.idx, Source: j.src}
	if n := len(j.rec.Seq); cfg.MaxCells > 0 {
		if c := dec.Cost(n); c > cfg.MaxCells {
			return outcome{res: res, err: errs.New(errs.Configuration, "pipeline",
				"%s: record %q needs %d DP cells, over the --max-cells bound of %d", j.src, j.rec.ID, c, cfg.MaxCells)}
		}
	}
	start := time.Now()
	prof, err := dec.Predict(j.rec.ID, j.rec.Seq)
	if err != nil {
		return outcome{res: res, err: fmt.Errorf("%s: record %q: %w", j.src, j.rec.ID, err)}
	}
	res.Profile = prof
	res.Elapsed = time.Since(start)
	return outcome{res: res}
}

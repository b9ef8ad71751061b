// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"nupop-core/errs"
	"nupop/internal/output"
	"nupop/internal/pipeline"
	"nupop/internal/runutil"
	"nupop/internal/writers"
)

// Options are the resolved predict settings.
type Options struct {
	SeqFiles []string

	Model   string
	Order   int
	Species string

	Threads  int
	MaxCells int64
	Progress io.Writer

	Format string
	Header bool
	Save   bool
}

// Run decodes every record of o.SeqFiles with pred and streams the results
// to out in o.Format. It returns the first error; a cancelled parent
// surfaces as context.Canceled.
func Run(parent context.Context, out io.Writer, log *logrus.Logger, o Options, pred pipeline.Decoder) error {
	if !writers.Supported(o.Format) {
		return errs.New(errs.Configuration, "predict", "unknown --format %q (want one of %v)", o.Format, writers.Formats())
	}
	thr := runutil.EffectiveThreads(o.Threads)

	outw := bufio.NewWriter(out)
	inCh, writeErr := writers.StartRecordWriter(outw, o.Format, o.Header, thr*4)

	saves := newSaver(o.Order)
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	perr := pipeline.ForEachProfile(ctx,
		pipeline.Config{
			Threads:  thr,
			MaxCells: o.MaxCells,
			Progress: o.Progress,
			Log:      log,
			Fields:   logrus.Fields{"order": o.Order, "species": o.Species},
		},
		o.SeqFiles,
		pred,
		func(r pipeline.Result) error {
			rec := output.Record{Source: r.Source, Model: o.Model, Order: o.Order, Species: o.Species, Profile: r.Profile}
			if o.Save {
				if err := saves.write(rec); err != nil {
					return err
				}
			}
			select {
			case inCh <- rec:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	)
	close(inCh)
	werr := <-writeErr
	serr := saves.close()
	if werr == nil {
		werr = outw.Flush()
	}

	switch {
	case perr != nil:
		return perr
	case werr != nil:
		return werr
	case serr != nil:
		return serr
	}
	for _, p := range saves.paths {
		log.WithField("path", p).Info("saved prediction table")
	}
	return nil
}

// saver keeps one NuPoP-layout file open per input for --save.
type saver struct {
	order int
	files map[string]*savedFile
	open  []*savedFile
	paths []string
}

type savedFile struct {
	f *os.File
	w *bufio.Writer
}

func newSaver(order int) *saver {
	return &saver{order: order, files: map[string]*savedFile{}}
}

func (s *saver) write(rec output.Record) error {
	sf, ok := s.files[rec.Source]
	if !ok {
		path := runutil.PredictionPath(rec.Source, s.order)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("--save: %w", err)
		}
		sf = &savedFile{f: f, w: bufio.NewWriter(f)}
		s.files[rec.Source] = sf
		s.open = append(s.open, sf)
		s.paths = append(s.paths, path)
	}
	if err := output.WriteLegacy(sf.w, rec, true); err != nil {
		return fmt.Errorf("--save: %w", err)
	}
	return nil
}

func (s *saver) close() error {
	var first error
	for _, sf := range s.open {
		if err := sf.w.Flush(); err != nil && first == nil {
			first = err
		}
		if err := sf.f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

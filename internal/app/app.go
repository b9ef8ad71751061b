// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"nupop-core/dna"
	"nupop-core/errs"
	"nupop-core/model"
	"nupop-core/predict"
	"nupop/internal/appcore"
	"nupop/internal/cli"
	"nupop/internal/cliutil"
	"nupop/internal/config"
	"nupop/internal/logging"
	"nupop/internal/output"
	"nupop/internal/summary"
	"nupop/internal/writers"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitUsage     = 2
	ExitIO        = 3
	ExitModel     = 4
	ExitSequence  = 5
	ExitInternal  = 6
	ExitCancelled = 130
)

// RunContext runs the nupop command line and returns the exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	if len(argv) == 0 {
		argv = []string{"--help"}
	}
	opts, err := cli.ParseArgs(argv, outw)
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			return flush(outw, stderr, ExitOK)
		}
		_, _ = fmt.Fprintf(stderr, "nupop: error: %v, try --help\n", err)
		return ExitUsage
	}
	if opts.Version {
		_, _ = fmt.Fprintln(outw, cli.VersionLine())
		return flush(outw, stderr, ExitOK)
	}

	settings, err := config.Load(opts.Config)
	if err != nil {
		return fail(stderr, err)
	}
	opts.Apply(settings)
	log, err := logging.New(stderr, opts.LogLevel, opts.LogFormat)
	if err != nil {
		return fail(stderr, err)
	}

	switch opts.Command {
	case cli.CmdTemplate:
		err = runTemplate(outw, opts.TemplateOut)
	case cli.CmdSummarize:
		err = runSummarize(outw, opts.Tables)
	default:
		err = runPredict(parent, outw, stderr, log, opts)
	}
	if err == nil {
		err = outw.Flush()
	}
	if parent.Err() != nil {
		return ExitCancelled
	}
	return fail(stderr, err)
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func runPredict(ctx context.Context, out io.Writer, stderr io.Writer, log *logrus.Logger, opts cli.Options) error {
	policy, err := dna.ParsePolicy(opts.Ambiguity)
	if err != nil {
		return err
	}
	files, err := cliutil.ExpandPositionals(opts.SeqFiles)
	if err != nil {
		return errs.Wrap(errs.Configuration, "predict", err)
	}

	var params *model.Params
	if opts.Model == "" {
		log.Warn("no --model given; decoding with the built-in template parameters, output is labelled model \"template\"")
		params, err = model.Template().Build()
	} else {
		params, err = model.Load(opts.Model)
	}
	if err != nil {
		return err
	}
	pred, err := predict.New(params, predict.Options{
		Order:     opts.Order,
		Species:   opts.Species,
		LinkerCap: opts.LinkerCap,
		Policy:    policy,
	})
	if err != nil {
		return err
	}
	sel := pred.Selection()
	log.WithFields(logrus.Fields{
		"model":   params.Name,
		"order":   opts.Order,
		"species": sel.Species.Name,
		"inputs":  len(files),
	}).Info("decoding")

	var progress io.Writer
	if opts.Progress {
		progress = stderr
	}
	return appcore.Run(ctx, out, log, appcore.Options{
		SeqFiles: files,
		Model:    params.Name,
		Order:    opts.Order,
		Species:  sel.Species.Name,
		Threads:  opts.Threads,
		MaxCells: opts.MaxCells,
		Progress: progress,
		Format:   opts.Format,
		Header:   opts.Header,
		Save:     opts.Save,
	}, pred)
}

func runTemplate(out io.Writer, dest string) error {
	f := model.Template()
	if dest == "" || dest == "-" {
		return f.Encode(out)
	}
	fh, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := f.Encode(fh); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

func runSummarize(out io.Writer, tables []string) error {
	paths, err := cliutil.ExpandPositionals(tables)
	if err != nil {
		return errs.Wrap(errs.Configuration, "summarize", err)
	}
	var list []summary.Stats
	for _, p := range paths {
		preds, err := readTables(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		for _, pr := range preds {
			list = append(list, summary.OfPrediction(pr))
		}
	}
	return summary.Write(out, list, true)
}

func readTables(path string) ([]output.Prediction, error) {
	if path == "-" {
		return output.ReadPrediction(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return output.ReadPrediction(f)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case writers.IsBrokenPipe(err):
		return ExitOK
	}
	k, ok := errs.KindOf(err)
	if !ok {
		return ExitIO
	}
	switch k {
	case errs.Configuration:
		return ExitUsage
	case errs.ModelParameter:
		return ExitModel
	case errs.InvalidSequence:
		return ExitSequence
	default:
		return ExitInternal
	}
}

func fail(stderr io.Writer, err error) int {
	code := ExitCode(err)
	if code != ExitOK && code != ExitCancelled {
		_, _ = fmt.Fprintf(stderr, "nupop: %v\n", err)
	}
	return code
}

func flush(outw *bufio.Writer, stderr io.Writer, code int) int {
	if err := outw.Flush(); err != nil {
		return fail(stderr, err)
	}
	return code
}

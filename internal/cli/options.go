// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"

	"nupop/internal/config"
	"nupop/internal/version"
)

// Command names.
const (
	CmdPredict   = "predict"
	CmdTemplate  = "template"
	CmdSummarize = "summarize"
)

// ErrHelp is returned by Parse after usage has been written.
var ErrHelp = errors.New("help requested")

// Options holds all CLI flags and arguments. Tunables the user did not pass
// on the command line are filled from config.Settings by Apply.
type Options struct {
	Command string

	// Global
	Config    string
	LogLevel  string
	LogFormat string
	Quiet     bool
	Version   bool

	// predict
	Model     string
	Species   string
	Order     int
	LinkerCap int
	Ambiguity string
	Format    string
	Header    bool // true unless --no-header
	Save      bool
	Threads   int
	MaxCells  int64
	Progress  bool
	SeqFiles  []string

	// template
	TemplateOut string

	// summarize
	Tables []string

	given map[string]bool // flags passed explicitly
}

// Given reports whether flag name appeared on the command line.
func (o *Options) Given(name string) bool { return o.given[name] }

// tracked records that a settings-backed flag was passed explicitly.
func (o *Options) tracked(name string) kingpin.Action {
	return func(*kingpin.ParseContext) error {
		if o.given == nil {
			o.given = map[string]bool{}
		}
		o.given[name] = true
		return nil
	}
}

// App builds the kingpin application and binds every flag to opt.
func App(opt *Options) *kingpin.Application {
	app := kingpin.New("nupop", "nucleosome positioning prediction with a duration hidden Markov model").
		UsageTemplate(kingpin.CompactUsageTemplate)
	app.HelpFlag.Short('h')

	app.Flag("config", "config file (yaml, json or toml) supplying defaults").StringVar(&opt.Config)
	app.Flag("log-level", "panic|fatal|error|warn|info|debug|trace [warn]").Action(opt.tracked("log-level")).StringVar(&opt.LogLevel)
	app.Flag("log-format", "text|json [text]").Action(opt.tracked("log-format")).StringVar(&opt.LogFormat)
	app.Flag("quiet", "only log errors").Short('q').BoolVar(&opt.Quiet)
	app.Flag("version", "print version and exit").Short('v').BoolVar(&opt.Version)

	pr := app.Command(CmdPredict, "decode every FASTA record and write the per-position table")
	pr.Flag("model", "parameter bundle (JSON, optionally gzipped); built-in template when empty").Action(opt.tracked("model")).StringVar(&opt.Model)
	pr.Flag("species", "species id (1-11) or name [1]").Action(opt.tracked("species")).StringVar(&opt.Species)
	pr.Flag("order", "Markov order of the emission model: 1 or 4 [4]").Action(opt.tracked("order")).IntVar(&opt.Order)
	pr.Flag("linker-cap", "maximum linker length (0 = the species' own cap) [500]").Action(opt.tracked("linker-cap")).IntVar(&opt.LinkerCap)
	pr.Flag("ambiguity", "non-ACGT policy: reject|wildcard [reject]").Action(opt.tracked("ambiguity")).StringVar(&opt.Ambiguity)
	pr.Flag("format", "output format: text|nupop|json|jsonl|csv [text]").Short('f').Action(opt.tracked("format")).StringVar(&opt.Format)
	pr.Flag("header", "print the header line in text/csv output").Default("true").BoolVar(&opt.Header)
	pr.Flag("save", "also write <fasta>_Prediction<order>.txt in the NuPoP layout").BoolVar(&opt.Save)
	pr.Flag("threads", "number of worker threads (0 = all CPUs) [0]").Short('t').Action(opt.tracked("threads")).IntVar(&opt.Threads)
	pr.Flag("max-cells", "reject records whose DP needs more cells (0 = unbounded) [0]").Action(opt.tracked("max-cells")).Int64Var(&opt.MaxCells)
	pr.Flag("progress", "show a progress bar on stderr").BoolVar(&opt.Progress)
	pr.Arg("fasta", "FASTA file(s), globs or '-' for stdin").StringsVar(&opt.SeqFiles)

	tp := app.Command(CmdTemplate, "write the built-in template parameter bundle as JSON")
	tp.Flag("output", "destination file ('-' = stdout)").Short('o').Default("-").StringVar(&opt.TemplateOut)

	sm := app.Command(CmdSummarize, "summarize NuPoP prediction tables")
	sm.Arg("table", "prediction table(s) in the NuPoP layout").StringsVar(&opt.Tables)
	return app
}

// ParseArgs parses argv. Help and usage go to usage; on -h/--help it
// returns ErrHelp. Errors are returned, never printed, and never exit.
func ParseArgs(argv []string, usage io.Writer) (Options, error) {
	var opt Options
	app := App(&opt)
	app.Terminate(func(int) {})
	app.UsageWriter(usage)
	app.ErrorWriter(io.Discard)

	rest, help, ver := splitMeta(argv)
	if help {
		app.Usage(commandOnly(rest))
		return opt, ErrHelp
	}
	if ver {
		opt.Version = true
		return opt, nil
	}

	cmd, err := app.Parse(rest)
	if err != nil {
		return opt, err
	}
	opt.Command = cmd
	for i, a := range opt.SeqFiles {
		if a == stdinArg {
			opt.SeqFiles[i] = "-"
		}
	}

	switch cmd {
	case CmdPredict:
		if len(opt.SeqFiles) == 0 {
			return opt, fmt.Errorf("predict: at least one FASTA file is required")
		}
		if opt.Threads < 0 || opt.MaxCells < 0 {
			return opt, fmt.Errorf("predict: --threads and --max-cells must be ≥ 0")
		}
	case CmdSummarize:
		if len(opt.Tables) == 0 {
			return opt, fmt.Errorf("summarize: at least one table is required")
		}
	}
	return opt, nil
}

// kingpin lexes a bare "-" as an empty short flag.
const stdinArg = "\x00stdin"

// splitMeta pulls -h/--help and -v/--version out of argv and shields "-".
func splitMeta(argv []string) (rest []string, help, ver bool) {
	for i, a := range argv {
		if a == "--" {
			rest = append(rest, argv[i:]...)
			break
		}
		switch a {
		case "-h", "--help", "--help-long":
			help = true
		case "-v", "--version":
			ver = true
		case "-":
			rest = append(rest, stdinArg)
		default:
			rest = append(rest, a)
		}
	}
	return rest, help, ver
}

// commandOnly keeps the leading command name, if any, for context usage.
func commandOnly(args []string) []string {
	for _, a := range args {
		switch a {
		case CmdPredict, CmdTemplate, CmdSummarize:
			return []string{a}
		}
		if !strings.HasPrefix(a, "-") {
			break
		}
	}
	return nil
}

// Apply fills every tunable not passed on the command line from s.
// Explicit flags win over the environment and the config file, even when
// their value is zero or empty; the model layer validates them.
func (o *Options) Apply(s config.Settings) {
	if !o.Given("model") {
		o.Model = s.Model
	}
	if !o.Given("species") {
		o.Species = s.Species
	}
	if !o.Given("order") {
		o.Order = s.Order
	}
	if !o.Given("linker-cap") {
		o.LinkerCap = s.LinkerCap
	}
	if !o.Given("threads") {
		o.Threads = s.Threads
	}
	if !o.Given("format") {
		o.Format = s.Format
	}
	if !o.Given("ambiguity") {
		o.Ambiguity = s.Ambiguity
	}
	if !o.Given("max-cells") {
		o.MaxCells = s.MaxCells
	}
	if !o.Given("log-level") {
		o.LogLevel = s.LogLevel
	}
	if !o.Given("log-format") {
		o.LogFormat = s.LogFormat
	}
	o.Format = strings.ToLower(o.Format)
	o.Ambiguity = strings.ToLower(o.Ambiguity)
	if o.Quiet {
		o.LogLevel = "error"
	}
}

// VersionLine is what --version prints.
func VersionLine() string { return "nupop version " + version.Version }

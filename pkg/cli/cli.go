// Package cli is the shared skeleton of the command line tools: common
// flags, config loading, logging and metrics setup, positional argument
// checks and exit codes.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-bindstat/pkg/config"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
	"github.com/dd0wney/cluso-bindstat/pkg/metrics"
	"github.com/dd0wney/cluso-bindstat/pkg/validation"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Command describes one tool.
type Command struct {
	Name string
	Args []string // positional argument names
	// Optional is how many trailing Args may be omitted. Run then receives
	// fewer args and falls back to config values.
	Optional int
	Summary  string
	// Flags registers tool flags on fs. Optional.
	Flags func(fs *flag.FlagSet)
	Run   func(ctx context.Context, env *Env, args []string) error
}

// Env is what a tool's Run gets besides its positional arguments.
type Env struct {
	Tool    string
	Config  config.Experiment
	Logger  logging.Logger
	Metrics *metrics.Registry
	Stdout  io.Writer
	Stderr  io.Writer

	set map[string]bool
}

// IsSet reports whether the flag name was given on the command line.
func (e *Env) IsSet(name string) bool {
	return e.set[name]
}

// Main parses args, runs the tool and returns the process exit code.
func (c Command) Main(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.MainContext(ctx, args, stdout, stderr)
}

// MainContext is Main with a caller-supplied context.
func (c Command) MainContext(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(c.Name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "YAML experiment file")
		logLevel    = fs.String("log-level", "", "Log level: debug, info, warn, error")
		metricsFile = fs.String("metrics-file", "", "Write metrics in text format to this file on exit")
		workers     = fs.Int("workers", 0, "Concurrent workers (0 uses the config value)")
	)
	if c.Flags != nil {
		c.Flags(fs)
	}
	fs.Usage = func() { c.usage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitFailure
	}
	if n, least := fs.NArg(), len(c.Args)-c.Optional; n < least || n > len(c.Args) {
		if c.Optional == 0 {
			fmt.Fprintf(stderr, "%s: expected %d arguments, got %d\n", c.Name, len(c.Args), n)
		} else {
			fmt.Fprintf(stderr, "%s: expected %d to %d arguments, got %d\n", c.Name, least, len(c.Args), n)
		}
		fs.Usage()
		return ExitFailure
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", c.Name, err)
		return ExitFailure
	}

	env := &Env{
		Tool:    c.Name,
		Config:  cfg,
		Metrics: metrics.NewRegistry(),
		Stdout:  stdout,
		Stderr:  stderr,
		set:     make(map[string]bool),
	}
	fs.Visit(func(f *flag.Flag) { env.set[f.Name] = true })

	if env.IsSet("log-level") {
		env.Config.LogLevel = *logLevel
	}
	if env.IsSet("workers") {
		env.Config.Workers = *workers
	}
	if env.IsSet("metrics-file") {
		env.Config.MetricsFile = *metricsFile
	}

	level, ok := logging.LookupLevel(env.Config.LogLevel)
	if !ok && env.Config.LogLevel != "" {
		fmt.Fprintf(stderr, "%s: unknown log level %q\n", c.Name, env.Config.LogLevel)
		return ExitFailure
	}
	if err := validation.NewConfigValidator("flags").NonNegative("workers", env.Config.Workers).Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", c.Name, err)
		return ExitFailure
	}
	env.Logger = logging.NewJSONLogger(stderr, level).With(logging.Tool(c.Name))

	timer := logging.StartTimer(env.Logger, "run", logging.Any("args", fs.Args()))
	runErr := c.Run(ctx, env, fs.Args())
	if runErr != nil {
		timer.EndError(runErr)
	} else {
		timer.End()
	}

	if path := env.Config.MetricsFile; path != "" {
		if err := env.Metrics.WriteTextfile(path); err != nil {
			env.Logger.Error("metrics not written", logging.Path(path), logging.Error(err))
			runErr = errors.Join(runErr, err)
		}
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "%s: %v\n", c.Name, runErr)
		if errs.IsArgument(runErr) {
			fs.Usage()
		}
		return ExitFailure
	}
	return ExitOK
}

func (c Command) usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [flags]", c.Name)
	for i, a := range c.Args {
		if i >= len(c.Args)-c.Optional {
			fmt.Fprintf(w, " [<%s>]", a)
			continue
		}
		fmt.Fprintf(w, " <%s>", a)
	}
	fmt.Fprintln(w)
	if c.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", c.Summary)
	}
	fmt.Fprintln(w, "\nFlags:")
	fs.PrintDefaults()
}

// Arg returns args[i] and whether it was given.
func Arg(args []string, i int) (string, bool) {
	if i < len(args) {
		return args[i], true
	}
	return "", false
}

// Int parses positional argument name as an integer.
func Int(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errs.Argument("%s must be an integer, got %q", name, value)
	}
	return n, nil
}

// NonNegativeInt is Int that also rejects negative values.
func NonNegativeInt(name, value string) (int, error) {
	n, err := Int(name, value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errs.Argument("%s must be non-negative, got %d", name, n)
	}
	return n, nil
}

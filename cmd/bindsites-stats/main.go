// Command bindsites-stats reports, for every line of a binding-site trace,
// how many molecules of one type have each site bound and the conditional
// probabilities P(X|Y) between sites.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/dd0wney/cluso-bindstat/pkg/binding"
	"github.com/dd0wney/cluso-bindstat/pkg/cli"
	"github.com/dd0wney/cluso-bindstat/pkg/config"
	"github.com/dd0wney/cluso-bindstat/pkg/dataio"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
	"github.com/dd0wney/cluso-bindstat/pkg/moltype"
	"github.com/dd0wney/cluso-bindstat/pkg/sitestats"
	"github.com/dd0wney/cluso-bindstat/pkg/validation"
)

func main() {
	os.Exit(command().Main(os.Args[1:], os.Stdout, os.Stderr))
}

func command() cli.Command {
	var (
		valency int
		kind    string
		header  bool
		format  string
	)
	return cli.Command{
		Name:     "bindsites-stats",
		Args:     []string{"ifile", "ofile", "molType", "totalMolsOfType", "startIndex"},
		Optional: 2,
		Summary:  "Molecules of the type are ids [startIndex, startIndex+totalMolsOfType). Without those two\n" +
			"arguments the range of molType comes from start_indices and total_molecules in -config.",
		Flags: func(fs *flag.FlagSet) {
			fs.IntVar(&valency, "valency", 2, "Binding sites per molecule (2 or 4)")
			fs.StringVar(&kind, "report", "counts", "Report kind: counts or probabilities")
			fs.BoolVar(&header, "header", false, "Write a header line naming the columns")
			fs.StringVar(&format, "format", "auto", "Input line format: auto, flat, aggregate")
		},
		Run: func(ctx context.Context, env *cli.Env, args []string) error {
			if !env.IsSet("valency") {
				valency = env.Config.Valency
			}
			if !env.IsSet("format") {
				format = env.Config.Format
			}
			if err := validation.ValidateValency(valency); err != nil {
				return err
			}
			reportKind, err := sitestats.ParseReportKind(kind)
			if err != nil {
				return err
			}
			lineFormat, err := binding.ParseFormat(format)
			if err != nil {
				return err
			}

			molType, err := cli.NonNegativeInt("molType", args[2])
			if err != nil {
				return err
			}
			target, err := targetRange(env.Config, molType, args[3:])
			if err != nil {
				return err
			}

			env.Logger.Info("site statistics",
				logging.Int("mol_type", molType),
				logging.Int("start", target.Start),
				logging.Int("count", target.Count),
				logging.Int("valency", valency),
				logging.String("report", reportKind.String()))

			lines, err := writeReport(ctx, args[0], args[1], func(w *bufio.Writer, parser *binding.Parser, line string) error {
				edges, err := parser.Parse(line)
				if err != nil {
					return err
				}
				_, err = w.WriteString(sitestats.NewTable(edges, target).ReportLine(reportKind, valency))
				return err
			}, lineFormat, headerLine(header, reportKind, valency))
			env.Metrics.RecordLinesScanned(env.Tool, lines)
			if err != nil {
				return err
			}
			env.Logger.Info("report written", logging.Path(args[1]), logging.Count(lines))
			return nil
		},
	}
}

// targetRange reads the id range of molType from the two trailing
// arguments, or from the configured layout when both are omitted.
func targetRange(cfg config.Experiment, molType int, rest []string) (moltype.Range, error) {
	switch len(rest) {
	case 2:
		count, err := cli.NonNegativeInt("totalMolsOfType", rest[0])
		if err != nil {
			return moltype.Range{}, err
		}
		start, err := cli.NonNegativeInt("startIndex", rest[1])
		if err != nil {
			return moltype.Range{}, err
		}
		return moltype.Range{Start: start, Count: count}, nil
	case 0:
		types, err := cfg.Types()
		if err != nil {
			return moltype.Range{}, err
		}
		if molType >= types.NumTypes() {
			return moltype.Range{}, errs.Argument("molType %d is not one of the %d types in %s", molType, types.NumTypes(), types)
		}
		return types.Range(molType), nil
	default:
		return moltype.Range{}, errs.Argument("give both totalMolsOfType and startIndex, or neither")
	}
}

func headerLine(enabled bool, kind sitestats.ReportKind, valency int) string {
	if !enabled {
		return ""
	}
	return strings.Join(sitestats.Header(kind, valency), ", ") + "\n"
}

// writeReport feeds every line of in to emit and returns the number of
// lines handled. Output written before a failing line is kept.
func writeReport(ctx context.Context, in, out string, emit func(*bufio.Writer, *binding.Parser, string) error, format binding.Format, header string) (int, error) {
	src, err := dataio.OpenLines(in)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	f, err := dataio.Create(out)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(f)
	parser := binding.NewParser(format)

	n := 0
	runErr := func() error {
		if header != "" {
			if _, err := w.WriteString(header); err != nil {
				return err
			}
		}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			line, err := src.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if err := emit(w, parser, line); err != nil {
				return errs.New("site statistics").Path(in).Line(n + 1).Cause(err).Err()
			}
			n++
		}
	}()
	return n, errors.Join(runErr, w.Flush(), f.Close())
}

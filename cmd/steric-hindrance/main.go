// Command steric-hindrance reads one final-state line per run and reports,
// for every ligand type, P(A|B) and P(B|A) between its two binding sites.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/cluso-bindstat/pkg/binding"
	"github.com/dd0wney/cluso-bindstat/pkg/cli"
	"github.com/dd0wney/cluso-bindstat/pkg/dataio"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
	"github.com/dd0wney/cluso-bindstat/pkg/moltype"
	"github.com/dd0wney/cluso-bindstat/pkg/sitestats"
)

func main() {
	os.Exit(command().Main(os.Args[1:], os.Stdout, os.Stderr))
}

func command() cli.Command {
	var (
		format string
		counts bool
	)
	return cli.Command{
		Name:    "steric-hindrance",
		Args:    []string{"ifile", "ofile", "numMolTypes", "totalMols", "startIndexList"},
		Summary: "startIndexList gives the first id of each type, receptors first (e.g. 0,20,30 for 20R 10L 10M).",
		Flags: func(fs *flag.FlagSet) {
			fs.StringVar(&format, "format", "auto", "Input line format: auto, flat, aggregate")
			fs.BoolVar(&counts, "counts", false, "Also write the site A, site B and both counts per type")
		},
		Run: func(ctx context.Context, env *cli.Env, args []string) error {
			if !env.IsSet("format") {
				format = env.Config.Format
			}
			lineFormat, err := binding.ParseFormat(format)
			if err != nil {
				return err
			}
			numTypes, err := cli.Int("numMolTypes", args[2])
			if err != nil {
				return err
			}
			totalMols, err := cli.Int("totalMols", args[3])
			if err != nil {
				return err
			}
			starts, err := moltype.ParseStarts(args[4])
			if err != nil {
				return err
			}
			if numTypes != len(starts) {
				return errs.Argument("numMolTypes is %d but startIndexList has %d entries", numTypes, len(starts))
			}
			types, err := moltype.New(starts, totalMols)
			if err != nil {
				return err
			}

			table := sitestats.NewStericTable(types)
			if err := fill(ctx, table, args[0], binding.NewParser(lineFormat)); err != nil {
				return err
			}
			env.Metrics.RecordLinesScanned(env.Tool, table.Lines())

			out := table.Report()
			if counts {
				for t := 1; t < types.NumTypes(); t++ {
					c := table.Counts(t)
					out += fmt.Sprintf("%d: A = %d, B = %d, both = %d\n", t, c.SiteA, c.SiteB, c.Both)
				}
			}
			if err := writeFile(args[1], out); err != nil {
				return err
			}
			for _, h := range table.Hindrances() {
				env.Logger.Info("steric hindrance",
					logging.Int("type", h.Type),
					logging.Float64("p_a_given_b", h.AGivenB),
					logging.Float64("p_b_given_a", h.BGivenA))
			}
			env.Logger.Info("report written", logging.Path(args[1]), logging.Count(table.Lines()))
			return nil
		},
	}
}

func fill(ctx context.Context, table *sitestats.StericTable, path string, parser *binding.Parser) error {
	src, err := dataio.OpenLines(path)
	if err != nil {
		return err
	}
	defer src.Close()

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
		edges, err := parser.Parse(line)
		if err != nil {
			return errs.New("steric hindrance").Path(path).Line(src.Lines()).Cause(err).Err()
		}
		if err := table.Add(edges); err != nil {
			return errs.New("steric hindrance").Path(path).Cause(err).Err()
		}
	}
}

func writeFile(path, content string) error {
	w, err := dataio.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, content); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return w.Close()
}

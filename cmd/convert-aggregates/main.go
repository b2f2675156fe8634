// Command convert-aggregates rewrites a trace in aggregate form,
// "[(m.s,m.s),...],[...]", into flat tuple form, "(m1,s1,m2,s2),...;", one
// line per input line.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"os"

	"github.com/dd0wney/cluso-bindstat/pkg/binding"
	"github.com/dd0wney/cluso-bindstat/pkg/cli"
	"github.com/dd0wney/cluso-bindstat/pkg/dataio"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
)

func main() {
	os.Exit(command().Main(os.Args[1:], os.Stdout, os.Stderr))
}

func command() cli.Command {
	var symmetrize bool
	return cli.Command{
		Name: "convert-aggregates",
		Args: []string{"ifile", "ofile"},
		Flags: func(fs *flag.FlagSet) {
			fs.BoolVar(&symmetrize, "symmetrize", false, "Also write the reverse of every edge")
		},
		Run: func(ctx context.Context, env *cli.Env, args []string) error {
			n, edges, err := convert(ctx, args[0], args[1], symmetrize)
			env.Metrics.RecordLinesScanned(env.Tool, n)
			if err != nil {
				return err
			}
			env.Logger.Info("trace converted",
				logging.Path(args[1]),
				logging.Count(n),
				logging.Int("edges", edges))
			return nil
		},
	}
}

func convert(ctx context.Context, in, out string, symmetrize bool) (lines, edges int, err error) {
	src, err := dataio.OpenLines(in)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()

	f, err := dataio.Create(out)
	if err != nil {
		return 0, 0, err
	}
	w := bufio.NewWriter(f)
	parser := binding.NewParser(binding.FormatAggregate)

	runErr := func() error {
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
			parsed, err := parser.Parse(line)
			if err != nil {
				return errs.New("convert").Path(in).Line(lines + 1).Cause(err).Err()
			}
			if symmetrize {
				parsed = binding.Symmetrize(parsed)
			}
			if _, err := w.WriteString(binding.RenderFlat(parsed) + "\n"); err != nil {
				return err
			}
			lines++
			edges += len(parsed)
		}
	}()
	return lines, edges, errors.Join(runErr, w.Flush(), f.Close())
}

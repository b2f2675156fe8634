// Command histogram-summary prints per-column statistics for one run's
// histogram CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dd0wney/cluso-bindstat/pkg/cli"
	"github.com/dd0wney/cluso-bindstat/pkg/dataio"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/histogram"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
	"github.com/dd0wney/cluso-bindstat/pkg/report"
)

func main() {
	os.Exit(command().Main(os.Args[1:], os.Stdout, os.Stderr))
}

func command() cli.Command {
	var title string
	return cli.Command{
		Name: "histogram-summary",
		Args: []string{"histogram.csv"},
		Flags: func(fs *flag.FlagSet) {
			fs.StringVar(&title, "title", "", "Heading for the table (default: file name)")
		},
		Run: func(ctx context.Context, env *cli.Env, args []string) error {
			path := args[0]
			rows, err := readRows(path)
			if err != nil {
				return err
			}
			summary, err := report.Summarize(rows)
			if err != nil {
				return errs.New("summarize").Path(path).Cause(err).Err()
			}
			if title == "" {
				title = filepath.Base(path)
			}
			fmt.Fprintln(env.Stdout, report.Render(title, summary))
			env.Logger.Debug("histogram summarized",
				logging.Path(path),
				logging.Count(summary.Timesteps))
			return nil
		},
	}
}

func readRows(path string) ([]*histogram.Histogram, error) {
	r, err := dataio.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rows, err := histogram.ReadRows(r)
	if err != nil {
		return nil, errs.New("read").Path(path).Cause(err).Err()
	}
	return rows, nil
}

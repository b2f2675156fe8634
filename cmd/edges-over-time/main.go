// Command edges-over-time counts the edges on every timestep of each run's
// binding-site trace and writes one matrix, rows = timestep and columns =
// run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dd0wney/cluso-bindstat/pkg/aggregate"
	"github.com/dd0wney/cluso-bindstat/pkg/binding"
	"github.com/dd0wney/cluso-bindstat/pkg/cli"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
	"github.com/dd0wney/cluso-bindstat/pkg/manifest"
	"github.com/dd0wney/cluso-bindstat/pkg/validation"
)

func main() {
	os.Exit(command().Main(os.Args[1:], os.Stdout, os.Stderr))
}

func command() cli.Command {
	var (
		expectedRuns int
		skipBadRuns  bool
		pattern      string
		runIDPattern string
		format       string
	)
	return cli.Command{
		Name:     "edges-over-time",
		Args:     []string{"expName", "inputDir", "outputDir", "expectedTimesteps"},
		Optional: 1,
		Summary:  "Writes cumulative_edge_counts.<expName>.csv and manifest.json into outputDir.\n" +
			"expectedTimesteps defaults to expected_timesteps from -config.",
		Flags: func(fs *flag.FlagSet) {
			fs.IntVar(&expectedRuns, "expected-runs", 0, "Runs 0..n-1 that must be present (0 accepts any)")
			fs.BoolVar(&skipBadRuns, "skip-bad-runs", false, "Leave failing runs out instead of failing")
			fs.StringVar(&pattern, "pattern", "", "Glob on file base names selecting binding-site traces")
			fs.StringVar(&runIDPattern, "run-id-pattern", "", "Regexp whose first group is the run id")
			fs.StringVar(&format, "format", "auto", "Input line format: auto, flat, aggregate")
		},
		Run: func(ctx context.Context, env *cli.Env, args []string) error {
			cfg := env.Config
			if !env.IsSet("expected-runs") {
				expectedRuns = cfg.ExpectedRuns
			}
			if !env.IsSet("skip-bad-runs") {
				skipBadRuns = cfg.SkipBadRuns
			}
			if !env.IsSet("format") {
				format = cfg.Format
			}
			pattern = validation.DefaultOr(pattern, cfg.EdgePattern)
			runIDPattern = validation.DefaultOr(runIDPattern, cfg.RunIDPattern)

			expName, inputDir, outputDir := args[0], args[1], args[2]
			if err := validation.ValidateExperimentName(expName); err != nil {
				return err
			}
			expected := cfg.ExpectedTimesteps
			if arg, ok := cli.Arg(args, 3); ok {
				var err error
				if expected, err = cli.Int("expectedTimesteps", arg); err != nil {
					return err
				}
			}
			if err := validation.NewConfigValidator("edges-over-time").
				Positive("expectedTimesteps", expected).
				NonNegative("expected-runs", expectedRuns).
				Validate(); err != nil {
				return err
			}
			lineFormat, err := binding.ParseFormat(format)
			if err != nil {
				return err
			}

			runs, ignored, err := aggregate.Discover(inputDir, pattern, runIDPattern)
			if err != nil {
				return err
			}
			for _, path := range ignored {
				env.Logger.Warn("no run id in path, file ignored", logging.Path(path))
			}

			parser := binding.NewParser(lineFormat)
			agg := &aggregate.Aggregator{
				ExpectedTimesteps: expected,
				ExpectedRuns:      expectedRuns,
				Workers:           cfg.Workers,
				SkipBadRuns:       skipBadRuns,
				Logger:            env.Logger.With(logging.Experiment(expName)),
				Metrics:           env.Metrics,
			}
			m, skipped, err := agg.EdgeCounts(ctx, runs, func(line string) (int, error) {
				edges, err := parser.Parse(line)
				if err != nil {
					env.Metrics.RecordParseError()
					return 0, err
				}
				return len(edges), nil
			})
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			path := filepath.Join(outputDir, aggregate.EdgeCountFileName(expName))
			if err := aggregate.WriteMatrix(path, m); err != nil {
				return err
			}
			env.Metrics.RecordMatrixWritten()

			man := manifest.New(env.Tool, expName, expected)
			man.Columns = m.RunIDs
			man.AddSkipped(skipped...)
			man.AddOutputs(path)
			if _, err := man.Write(outputDir); err != nil {
				return err
			}
			env.Logger.Info("edge counts written",
				logging.Experiment(expName),
				logging.Path(path),
				logging.Count(m.Cols()),
				logging.Int("skipped", len(skipped)))
			return nil
		},
	}
}

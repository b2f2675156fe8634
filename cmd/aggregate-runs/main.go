// Command aggregate-runs stacks the histogram CSVs of every run of an
// experiment into one matrix per aggregate class, rows = timestep and
// columns = run, and writes a manifest describing the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dd0wney/cluso-bindstat/pkg/aggregate"
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
		groupFrom    int
		skipBadRuns  bool
		pattern      string
		runIDPattern string
	)
	return cli.Command{
		Name:     "aggregate-runs",
		Args:     []string{"expName", "inputDir", "outputDir", "expectedTimesteps"},
		Optional: 1,
		Summary:  "Writes cumulative_class_stats.<category>.<expName>.csv per class and manifest.json into outputDir.\n" +
			"expectedTimesteps defaults to expected_timesteps from -config.",
		Flags: func(fs *flag.FlagSet) {
			fs.IntVar(&expectedRuns, "expected-runs", 0, "Runs 0..n-1 that must be present (0 accepts any)")
			fs.IntVar(&groupFrom, "group-from", 0, "Collapse kmer..Nmer into one kplus category (0 disables)")
			fs.BoolVar(&skipBadRuns, "skip-bad-runs", false, "Leave failing runs out instead of failing")
			fs.StringVar(&pattern, "pattern", "", "Glob on file base names selecting histogram files")
			fs.StringVar(&runIDPattern, "run-id-pattern", "", "Regexp whose first group is the run id")
		},
		Run: func(ctx context.Context, env *cli.Env, args []string) error {
			cfg := env.Config
			if !env.IsSet("expected-runs") {
				expectedRuns = cfg.ExpectedRuns
			}
			if !env.IsSet("group-from") {
				groupFrom = cfg.GroupFrom
			}
			if !env.IsSet("skip-bad-runs") {
				skipBadRuns = cfg.SkipBadRuns
			}
			pattern = validation.DefaultOr(pattern, cfg.HistogramPattern)
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
			if err := validation.NewConfigValidator("aggregate-runs").
				Positive("expectedTimesteps", expected).
				NonNegative("expected-runs", expectedRuns).
				When(groupFrom != 0, func(cv *validation.ConfigValidator) {
					cv.MinInt("group-from", groupFrom, 2)
				}).
				Validate(); err != nil {
				return err
			}

			runs, ignored, err := aggregate.Discover(inputDir, pattern, runIDPattern)
			if err != nil {
				return err
			}
			for _, path := range ignored {
				env.Logger.Warn("no run id in path, file ignored", logging.Path(path))
			}
			env.Logger.Info("runs discovered", logging.Experiment(expName), logging.Count(len(runs)))

			agg := &aggregate.Aggregator{
				ExpectedTimesteps: expected,
				ExpectedRuns:      expectedRuns,
				Workers:           cfg.Workers,
				SkipBadRuns:       skipBadRuns,
				GroupFrom:         groupFrom,
				Logger:            env.Logger.With(logging.Experiment(expName)),
				Metrics:           env.Metrics,
			}
			result, err := agg.Aggregate(ctx, runs)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			paths, err := aggregate.WriteMatrices(outputDir, expName, result, env.Metrics)
			if err != nil {
				return err
			}
			for i, path := range paths {
				env.Logger.Debug("matrix written", logging.Category(result.Categories[i]), logging.Path(path))
			}

			m := manifest.New(env.Tool, expName, expected)
			m.AddResult(result)
			m.AddOutputs(paths...)
			mpath, err := m.Write(outputDir)
			if err != nil {
				return err
			}
			env.Logger.Info("matrices written",
				logging.Experiment(expName),
				logging.Count(len(paths)),
				logging.Int("skipped", len(result.Skipped)),
				logging.Path(mpath))
			return nil
		},
	}
}

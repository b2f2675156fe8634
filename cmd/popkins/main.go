// Command popkins writes the per-timestep aggregate histogram of one run:
// one CSV row per input line with the receptor counts per class.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/dd0wney/cluso-bindstat/pkg/binding"
	"github.com/dd0wney/cluso-bindstat/pkg/classify"
	"github.com/dd0wney/cluso-bindstat/pkg/cli"
	"github.com/dd0wney/cluso-bindstat/pkg/config"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
	"github.com/dd0wney/cluso-bindstat/pkg/moltype"
	"github.com/dd0wney/cluso-bindstat/pkg/pipeline"
	"github.com/dd0wney/cluso-bindstat/pkg/validation"
)

func main() {
	os.Exit(command().Main(os.Args[1:], os.Stdout, os.Stderr))
}

func command() cli.Command {
	var (
		startIndices string
		siteA, siteB int
		symmetrize   bool
		format       string
		window       int
	)
	return cli.Command{
		Name:     "popkins",
		Args:     []string{"ifile", "ofile", "molType", "totalMols", "startIndex"},
		Optional: 2,
		Summary:  "Receptors are ids [0,startIndex) and ligands [startIndex,totalMols) unless -start-indices\n" +
			"or start_indices in -config is given. totalMols defaults to total_molecules from -config.",
		Flags: func(fs *flag.FlagSet) {
			fs.StringVar(&startIndices, "start-indices", "", "Comma-separated type start indices for multi-type runs (e.g. 0,20,30)")
			fs.IntVar(&siteA, "site-a", 0, "Receptor site id counted as site A")
			fs.IntVar(&siteB, "site-b", 1, "Receptor site id counted as site B")
			fs.BoolVar(&symmetrize, "symmetrize", false, "Add the reverse of every edge before grouping")
			fs.StringVar(&format, "format", "auto", "Input line format: auto, flat, aggregate")
			fs.IntVar(&window, "window", 0, "Lines processed per batch (0 picks one from -workers)")
		},
		Run: func(ctx context.Context, env *cli.Env, args []string) error {
			cfg := env.Config
			if !env.IsSet("site-a") {
				siteA = cfg.SiteA
			}
			if !env.IsSet("site-b") {
				siteB = cfg.SiteB
			}
			if !env.IsSet("symmetrize") {
				symmetrize = cfg.Symmetrize
			}
			if !env.IsSet("format") {
				format = cfg.Format
			}
			if !env.IsSet("window") {
				window = cfg.Window
			}

			molType, err := cli.NonNegativeInt("molType", args[2])
			if err != nil {
				return err
			}
			totalMols := cfg.TotalMolecules
			if arg, ok := cli.Arg(args, 3); ok {
				if totalMols, err = cli.Int("totalMols", arg); err != nil {
					return err
				}
			}
			if err := validation.NewConfigValidator("popkins").
				Positive("totalMols", totalMols).
				NonNegative("window", window).
				Custom("site-b", func() error { return validation.ValidateSites(siteA, siteB) }).
				Validate(); err != nil {
				return err
			}
			lineFormat, err := binding.ParseFormat(format)
			if err != nil {
				return err
			}

			startArg, _ := cli.Arg(args, 4)
			types, err := layout(startIndices, cfg, totalMols, startArg)
			if err != nil {
				return err
			}
			if molType >= types.NumTypes() {
				return errs.Argument("molType %d is not one of the %d types in %s", molType, types.NumTypes(), types)
			}

			classifier := classify.New(types).WithSites(siteA, siteB)
			classifier.Receptor = molType

			p := &pipeline.Processor{
				Parser:         binding.NewParser(lineFormat),
				Classifier:     classifier,
				TotalReceptors: types.Count(molType),
				Symmetrize:     symmetrize,
				Workers:        cfg.Workers,
				Window:         window,
				Tool:           env.Tool,
				Logger:         env.Logger,
				Metrics:        env.Metrics,
			}
			env.Logger.Info("molecule layout",
				logging.String("types", types.String()),
				logging.Int("receptors", p.TotalReceptors))

			stats, err := p.RunFile(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			env.Logger.Info("histogram written",
				logging.Path(args[1]),
				logging.Count(stats.Timesteps),
				logging.Int("edges", stats.Edges),
				logging.Latency(stats.Duration))
			return nil
		},
	}
}

// layout picks the type layout: the -start-indices flag, then the config
// file, then the two-type split at the startIndex argument.
func layout(flagStarts string, cfg config.Experiment, totalMols int, startArg string) (moltype.Config, error) {
	if flagStarts != "" {
		starts, err := moltype.ParseStarts(flagStarts)
		if err != nil {
			return moltype.Config{}, err
		}
		return moltype.New(starts, totalMols)
	}
	if len(cfg.StartIndices) > 0 {
		cfg.TotalMolecules = totalMols
		return cfg.Types()
	}
	if startArg == "" {
		return moltype.Config{}, errs.Argument("startIndex is required without -start-indices or start_indices")
	}
	startIndex, err := cli.Int("startIndex", startArg)
	if err != nil {
		return moltype.Config{}, err
	}
	return moltype.ReceptorsThenLigands(startIndex, totalMols)
}

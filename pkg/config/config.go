// Package config loads the optional YAML experiment description shared by
// the command line tools. Flags override file values and positional
// arguments override both.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-bindstat/pkg/aggregate"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/moltype"
	"github.com/dd0wney/cluso-bindstat/pkg/validation"
)

// Default file patterns for run discovery.
const (
	DefaultHistogramPattern = "*.csv"
	DefaultEdgePattern      = "*bindingsites*"
)

// Experiment describes one experiment layout and how to process it.
type Experiment struct {
	// ExpectedTimesteps stands in for the expectedTimesteps argument of
	// the aggregation tools when it is omitted.
	ExpectedTimesteps int `yaml:"expected_timesteps" validate:"gte=0"`
	ExpectedRuns      int `yaml:"expected_runs" validate:"gte=0"`

	// TotalMolecules and StartIndices give the type layout when the layout
	// arguments of popkins or bindsites-stats are omitted.
	TotalMolecules int    `yaml:"total_molecules" validate:"gte=0"`
	StartIndices   []int  `yaml:"start_indices" validate:"omitempty,dive,gte=0"`
	SiteA          int    `yaml:"site_a" validate:"gte=0"`
	SiteB          int    `yaml:"site_b" validate:"gte=0"`
	Valency        int    `yaml:"valency" validate:"omitempty,gte=2,lte=16"`
	Symmetrize     bool   `yaml:"symmetrize"`
	Format         string `yaml:"format" validate:"omitempty,oneof=auto flat aggregate"`

	Workers     int  `yaml:"workers" validate:"gte=0,lte=1024"`
	Window      int  `yaml:"window" validate:"gte=0"`
	GroupFrom   int  `yaml:"group_from" validate:"gte=0"`
	SkipBadRuns bool `yaml:"skip_bad_runs"`

	HistogramPattern string `yaml:"histogram_pattern"`
	EdgePattern      string `yaml:"edge_pattern"`
	RunIDPattern     string `yaml:"run_id_pattern" validate:"omitempty,regexp"`

	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the values used when neither a file nor a flag sets them.
func Default() Experiment {
	return Experiment{
		SiteA:            0,
		SiteB:            1,
		Valency:          2,
		Format:           "auto",
		Workers:          1,
		HistogramPattern: DefaultHistogramPattern,
		EdgePattern:      DefaultEdgePattern,
		RunIDPattern:     aggregate.DefaultRunIDPattern,
		LogLevel:         "info",
	}
}

// Load reads path over Default. An empty path returns Default unchanged.
func Load(path string) (Experiment, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, errs.MissingFile("load config", path, err)
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errs.New("load config").Path(path).Cause(
			fmt.Errorf("%w: %v", errs.ErrArgument, err)).Err()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errs.New("load config").Path(path).Cause(err).Err()
	}
	return cfg, nil
}

// Validate checks field rules and the rules that span fields.
func (c Experiment) Validate() error {
	if err := validation.Struct(&c); err != nil {
		return err
	}
	return validation.NewConfigValidator("Experiment").
		When(len(c.StartIndices) > 0 && c.TotalMolecules > 0, func(cv *validation.ConfigValidator) {
			cv.Custom("StartIndices", func() error {
				return validation.ValidateStartIndices(c.StartIndices, c.TotalMolecules)
			})
		}).
		Custom("SiteB", func() error { return validation.ValidateSites(c.SiteA, c.SiteB) }).
		When(c.GroupFrom != 0, func(cv *validation.ConfigValidator) {
			cv.MinInt("GroupFrom", c.GroupFrom, 2)
		}).
		Validate()
}

// Types builds the molecule type layout from StartIndices and
// TotalMolecules.
func (c Experiment) Types() (moltype.Config, error) {
	if len(c.StartIndices) == 0 {
		return moltype.Config{}, errs.Argument("no start_indices configured")
	}
	if c.TotalMolecules == 0 {
		return moltype.Config{}, errs.Argument("no total_molecules configured")
	}
	return moltype.New(c.StartIndices, c.TotalMolecules)
}

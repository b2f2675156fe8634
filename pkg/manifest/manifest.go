// Package manifest records what an aggregation produced: which run fed
// which matrix column, which runs were skipped and why, and the files
// written.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-bindstat/pkg/aggregate"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// FileName is the manifest's name inside the output directory.
const FileName = "manifest.json"

// FilledRun reports how many rows forward-fill added to one run.
type FilledRun struct {
	Run  int `json:"run"`
	Rows int `json:"rows"`
}

// Manifest describes one aggregation.
type Manifest struct {
	ID                string                 `json:"id"`
	Tool              string                 `json:"tool"`
	Experiment        string                 `json:"experiment"`
	CreatedAt         time.Time              `json:"created_at"`
	ExpectedTimesteps int                    `json:"expected_timesteps"`
	Columns           []int                  `json:"columns"`
	Categories        []string               `json:"categories,omitempty"`
	Skipped           []aggregate.SkippedRun `json:"skipped,omitempty"`
	Filled            []FilledRun            `json:"filled,omitempty"`
	Outputs           []string               `json:"outputs"`
}

// New starts a manifest with a fresh analysis id.
func New(tool, experiment string, expectedTimesteps int) *Manifest {
	return &Manifest{
		ID:                uuid.New().String(),
		Tool:              tool,
		Experiment:        experiment,
		CreatedAt:         time.Now().UTC(),
		ExpectedTimesteps: expectedTimesteps,
	}
}

// AddResult copies the column order, skipped runs and fill counts of r.
func (m *Manifest) AddResult(r *aggregate.Result) {
	m.Columns = append([]int(nil), r.RunIDs...)
	m.Categories = append([]string(nil), r.Categories...)
	m.AddSkipped(r.Skipped...)
	m.AddFilled(r.Filled)
}

// AddFilled records forward-fill counts keyed by run id. Runs with nothing
// filled are left out.
func (m *Manifest) AddFilled(filled map[int]int) {
	for run, rows := range filled {
		if rows > 0 {
			m.Filled = append(m.Filled, FilledRun{Run: run, Rows: rows})
		}
	}
	sort.Slice(m.Filled, func(i, j int) bool { return m.Filled[i].Run < m.Filled[j].Run })
}

// AddSkipped records runs left out of the matrices.
func (m *Manifest) AddSkipped(skipped ...aggregate.SkippedRun) {
	m.Skipped = append(m.Skipped, skipped...)
}

// AddOutputs records written files. Write stores them relative to the
// manifest directory.
func (m *Manifest) AddOutputs(paths ...string) {
	m.Outputs = append(m.Outputs, paths...)
}

// Write stores the manifest as indented JSON in dir and returns its path.
func (m *Manifest) Write(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	outputs := make([]string, len(m.Outputs))
	for i, p := range m.Outputs {
		if rel, err := filepath.Rel(dir, p); err == nil && filepath.IsLocal(rel) {
			p = rel
		}
		outputs[i] = filepath.ToSlash(p)
	}
	out := *m
	out.Outputs = outputs

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return path, nil
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.MissingFile("read manifest", path, err)
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return nil, errs.New("read manifest").Path(path).Cause(
			fmt.Errorf("%w: bad id %q", errs.ErrInvariantViolation, m.ID)).Err()
	}
	return &m, nil
}

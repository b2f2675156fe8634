// Package aggregate stacks the per-run histogram files of an experiment
// into one matrix per category, rows = timestep and columns = run.
package aggregate

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-bindstat/pkg/dataio"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/histogram"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
	"github.com/dd0wney/cluso-bindstat/pkg/metrics"
)

// Aggregator loads run files concurrently and builds category matrices.
type Aggregator struct {
	ExpectedTimesteps int
	ExpectedRuns      int  // 0 accepts whatever runs were discovered
	Workers           int  // concurrent file loads, 0 means 1
	SkipBadRuns       bool // drop failing runs instead of failing
	GroupFrom         int  // 0 disables kplus grouping
	Logger            logging.Logger
	Metrics           *metrics.Registry
}

// SkippedRun records a run left out of the matrices.
type SkippedRun struct {
	ID     int    `json:"id"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason"`
}

// Result holds the matrices of one aggregation.
type Result struct {
	RunIDs     []int
	Categories []string
	Matrices   []*Matrix
	Skipped    []SkippedRun
	Filled     map[int]int // run id -> rows added by forward-fill
}

// Matrix returns the matrix of category, or nil.
func (r *Result) Matrix(category string) *Matrix {
	for i, name := range r.Categories {
		if name == category {
			return r.Matrices[i]
		}
	}
	return nil
}

// loadFunc reads one run as rows of integers.
type loadFunc func(ctx context.Context, run RunFile) ([][]int, error)

type runSlot struct {
	run    RunFile
	rows   [][]int
	filled int
	err    error
}

// Aggregate loads every run's histogram CSV and builds the category matrices.
func (a *Aggregator) Aggregate(ctx context.Context, runs []RunFile) (*Result, error) {
	slots, skipped, err := a.collect(ctx, runs, loadHistogramRows)
	if err != nil {
		return nil, err
	}

	numColumns, votes := commonWidth(slots)
	var kept []runSlot
	for _, s := range slots {
		if n := len(s.rows[0]); n != numColumns {
			err := errs.New("aggregate").Path(s.run.Path).Run(s.run.ID).Cause(
				errs.Invariant("aggregate", "run %d has %d columns, %d of %d runs have %d",
					s.run.ID, n, votes, len(slots), numColumns)).Err()
			if !a.SkipBadRuns {
				return nil, err
			}
			skipped = append(skipped, a.skip(s.run, err))
			continue
		}
		kept = append(kept, s)
	}

	layout, err := categoryLayout(numColumns, a.GroupFrom)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunIDs:  make([]int, len(kept)),
		Skipped: skipped,
		Filled:  make(map[int]int),
	}
	for c, s := range kept {
		result.RunIDs[c] = s.run.ID
		if s.filled > 0 {
			result.Filled[s.run.ID] = s.filled
		}
	}

	for _, cat := range layout {
		m := newMatrix(cat.name, a.ExpectedTimesteps, result.RunIDs)
		for c, s := range kept {
			for t, row := range s.rows {
				sum := 0
				for _, col := range cat.columns {
					sum += row[col]
				}
				m.Values[t][c] = sum
			}
		}
		result.Categories = append(result.Categories, cat.name)
		result.Matrices = append(result.Matrices, m)
	}

	a.logger().Info("runs aggregated",
		logging.Count(len(kept)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("categories", len(result.Categories)))
	return result, nil
}

// commonWidth returns the row width shared by most runs and how many runs
// have it. Ties go to the width of the lowest run id.
func commonWidth(slots []runSlot) (width, votes int) {
	counts := make(map[int]int)
	for _, s := range slots {
		counts[len(s.rows[0])]++
	}
	for _, s := range slots {
		if n := len(s.rows[0]); counts[n] > votes {
			width, votes = n, counts[n]
		}
	}
	return width, votes
}

// EdgeCounts counts the edges on every line of each run's binding-site
// trace and stacks the counts into one matrix, forward-filled like the
// histogram matrices.
func (a *Aggregator) EdgeCounts(ctx context.Context, runs []RunFile, count func(line string) (int, error)) (*Matrix, []SkippedRun, error) {
	load := func(ctx context.Context, run RunFile) ([][]int, error) {
		r, err := dataio.OpenLines(run.Path)
		if err != nil {
			return nil, err
		}
		defer r.Close()

		var rows [][]int
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			line, err := r.Next()
			if err == io.EOF {
				return rows, nil
			}
			if err != nil {
				return nil, err
			}
			n, err := count(line)
			if err != nil {
				return nil, errs.New("count edges").Line(r.Lines()).Cause(err).Err()
			}
			rows = append(rows, []int{n})
		}
	}

	slots, skipped, err := a.collect(ctx, runs, load)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]int, len(slots))
	for c, s := range slots {
		ids[c] = s.run.ID
	}
	m := newMatrix("edges", a.ExpectedTimesteps, ids)
	for c, s := range slots {
		for t, row := range s.rows {
			m.Values[t][c] = row[0]
		}
	}
	return m, skipped, nil
}

// collect loads runs with bounded concurrency and forward-fills them. The
// returned slots are in run id order and hold only successful runs.
func (a *Aggregator) collect(ctx context.Context, runs []RunFile, load loadFunc) ([]runSlot, []SkippedRun, error) {
	if a.ExpectedTimesteps <= 0 {
		return nil, nil, errs.Argument("expected timesteps must be positive, got %d", a.ExpectedTimesteps)
	}

	var skipped []SkippedRun
	runs, missing, err := a.checkRunIDs(runs)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range missing {
		err := errs.New("aggregate").Run(id).Cause(errs.ErrMissingFile).Err()
		if !a.SkipBadRuns {
			return nil, nil, err
		}
		skipped = append(skipped, a.skip(RunFile{ID: id}, err))
	}

	slots := make([]runSlot, len(runs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.Workers, 1))

	for i, run := range runs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			slots[i] = a.loadRun(gCtx, run, load)
			if slots[i].err != nil && !a.SkipBadRuns {
				return slots[i].err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	kept := slots[:0]
	for _, s := range slots {
		if s.err != nil {
			skipped = append(skipped, a.skip(s.run, s.err))
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return nil, nil, errs.MissingFile("aggregate", "", errors.New("no usable run files"))
	}
	return kept, skipped, nil
}

func (a *Aggregator) loadRun(ctx context.Context, run RunFile, load loadFunc) runSlot {
	timer := logging.StartTimer(a.logger(), "run loaded", logging.Run(run.ID), logging.Path(run.Path))

	rows, err := load(ctx, run)
	if err == nil {
		var filled int
		rows, filled, err = ForwardFill(rows, a.ExpectedTimesteps)
		if err == nil {
			a.Metrics.RecordRunAggregated(metrics.StatusOK, filled)
			timer.End(logging.Int("forward_filled", filled))
			return runSlot{run: run, rows: rows, filled: filled}
		}
	}

	err = errs.New("aggregate").Path(run.Path).Run(run.ID).Cause(err).Err()
	if !a.SkipBadRuns {
		a.Metrics.RecordRunAggregated(metrics.StatusFailed, 0)
	}
	return runSlot{run: run, err: err}
}

// checkRunIDs reports the ids in 0..ExpectedRuns-1 that have no file and
// rejects ids outside that range.
func (a *Aggregator) checkRunIDs(runs []RunFile) ([]RunFile, []int, error) {
	if a.ExpectedRuns <= 0 {
		if len(runs) == 0 {
			return nil, nil, errs.MissingFile("aggregate", "", errors.New("no run files found"))
		}
		return runs, nil, nil
	}

	present := make(map[int]bool, len(runs))
	for _, r := range runs {
		if r.ID >= a.ExpectedRuns {
			return nil, nil, errs.New("aggregate").Path(r.Path).Run(r.ID).Cause(
				errs.Invariant("aggregate", "run id %d outside 0..%d", r.ID, a.ExpectedRuns-1)).Err()
		}
		present[r.ID] = true
	}
	var missing []int
	for id := 0; id < a.ExpectedRuns; id++ {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return runs, missing, nil
}

func (a *Aggregator) skip(run RunFile, err error) SkippedRun {
	a.Metrics.RecordRunAggregated(metrics.StatusSkipped, 0)
	a.logger().Warn("skipping run", logging.Run(run.ID), logging.Path(run.Path), logging.Error(err))
	return SkippedRun{ID: run.ID, Path: run.Path, Reason: err.Error()}
}

func (a *Aggregator) logger() logging.Logger {
	if a.Logger == nil {
		return logging.NewNopLogger()
	}
	return a.Logger
}

func loadHistogramRows(ctx context.Context, run RunFile) ([][]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := dataio.OpenReader(run.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	hists, err := histogram.ReadRows(r)
	if err != nil {
		return nil, err
	}
	rows := make([][]int, len(hists))
	for i, h := range hists {
		rows[i] = h.Row()
	}
	return rows, nil
}

// Package pipeline turns the lines of one run file into histogram rows.
//
// Lines are read sequentially and processed in windows on a bounded worker
// pool. Results are buffered by line index so rows are always written in
// timestep order, whatever order the workers finish in.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dd0wney/cluso-bindstat/pkg/algorithms"
	"github.com/dd0wney/cluso-bindstat/pkg/binding"
	"github.com/dd0wney/cluso-bindstat/pkg/classify"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/histogram"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
	"github.com/dd0wney/cluso-bindstat/pkg/metrics"
	"github.com/dd0wney/cluso-bindstat/pkg/parallel"
)

// DefaultWindowPerWorker is the number of lines buffered per worker.
const DefaultWindowPerWorker = 64

// Source yields one line per timestep and io.EOF at the end.
type Source interface {
	Next() (string, error)
}

// Sink receives histogram rows in timestep order.
type Sink interface {
	Write(h *histogram.Histogram) error
	Flush() error
}

// Processor classifies every timestep of a run.
type Processor struct {
	Parser         *binding.Parser
	Classifier     *classify.Classifier
	TotalReceptors int
	Symmetrize     bool
	Workers        int
	Window         int // lines per batch, 0 means Workers*DefaultWindowPerWorker
	Tool           string
	Logger         logging.Logger
	Metrics        *metrics.Registry
}

// Stats summarizes one Run.
type Stats struct {
	Timesteps int
	Edges     int
	Duration  time.Duration
}

type lineResult struct {
	hist  *histogram.Histogram
	edges int
	err   error
}

// ProcessLine parses, groups and classifies a single timestep.
func (p *Processor) ProcessLine(line string) (*histogram.Histogram, int, error) {
	edges, err := p.Parser.Parse(line)
	if err != nil {
		p.Metrics.RecordParseError()
		return nil, 0, err
	}
	if p.Symmetrize {
		edges = binding.Symmetrize(edges)
	}

	g := algorithms.Build(edges)
	h := histogram.New(p.TotalReceptors)
	for _, comp := range algorithms.ConnectedComponents(g).Components {
		res, err := p.Classifier.Classify(comp, g)
		if err != nil {
			return nil, 0, err
		}
		if !res.OK {
			p.Metrics.RecordComponent(metrics.KindLigandOnly)
			continue
		}
		if res.Class.IsMer() {
			p.Metrics.RecordComponent(metrics.KindMer)
		} else {
			p.Metrics.RecordComponent(metrics.KindSingleton)
		}
		if err := h.Fold(res.Class, res.Receptors); err != nil {
			return nil, 0, err
		}
	}
	return h, len(edges), nil
}

// Run processes src to the end and writes one row per line to dst. On the
// first failing line the rows before it are written and flushed, nothing
// after it is written, and the error is returned.
func (p *Processor) Run(ctx context.Context, src Source, dst Sink) (Stats, error) {
	logger := p.logger()
	start := time.Now()
	var stats Stats

	workers := max(p.Workers, 1)
	window := p.Window
	if window <= 0 {
		window = workers * DefaultWindowPerWorker
	}

	var pool *parallel.WorkerPool
	if workers > 1 {
		var err error
		pool, err = parallel.NewWorkerPool(workers, parallel.WithPanicHandler(func(r any) {
			logger.Error("timestep worker panicked", logging.Any("panic", fmt.Sprint(r)))
		}))
		if err != nil {
			return stats, err
		}
		defer pool.Close()
	}

	lines := make([]string, 0, window)
	results := make([]lineResult, window)
	eof := false
	for !eof {
		if err := ctx.Err(); err != nil {
			return p.finish(stats, start, dst, err)
		}

		lines = lines[:0]
		var readErr error
		for len(lines) < window {
			line, err := src.Next()
			if err == io.EOF {
				eof = true
				break
			}
			if err != nil {
				readErr = err
				break
			}
			lines = append(lines, line)
		}

		p.processWindow(pool, lines, results)

		for i := range lines {
			res := results[i]
			results[i] = lineResult{}
			if res.err != nil {
				err := errs.New("process").Line(stats.Timesteps + 1).Cause(res.err).Err()
				return p.finish(stats, start, dst, err)
			}
			if err := dst.Write(res.hist); err != nil {
				return p.finish(stats, start, dst, err)
			}
			stats.Timesteps++
			stats.Edges += res.edges
			p.Metrics.RecordTimestep(p.Tool, res.edges)
		}
		logger.Debug("window processed", logging.Count(len(lines)), logging.Timestep(stats.Timesteps))

		// lines read before a failed read still become rows
		if readErr != nil {
			return p.finish(stats, start, dst, readErr)
		}
	}

	return p.finish(stats, start, dst, nil)
}

func (p *Processor) processWindow(pool *parallel.WorkerPool, lines []string, results []lineResult) {
	if pool == nil {
		for i, line := range lines {
			results[i] = p.processOne(line)
		}
		return
	}

	for i, line := range lines {
		results[i] = lineResult{err: fmt.Errorf("timestep task did not complete")}
		pool.Submit(func() {
			results[i] = p.processOne(line)
		})
	}
	pool.Drain()
}

func (p *Processor) processOne(line string) lineResult {
	h, n, err := p.ProcessLine(line)
	return lineResult{hist: h, edges: n, err: err}
}

// finish flushes whatever was written and records timing. A flush failure
// is reported only when no earlier error occurred.
func (p *Processor) finish(stats Stats, start time.Time, dst Sink, runErr error) (Stats, error) {
	stats.Duration = time.Since(start)
	p.Metrics.ObserveRun(p.Tool, stats.Duration)

	if err := dst.Flush(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		p.logger().Error("run aborted", logging.Timestep(stats.Timesteps), logging.Error(runErr))
	}
	return stats, runErr
}

func (p *Processor) logger() logging.Logger {
	if p.Logger == nil {
		return logging.NewNopLogger()
	}
	return p.Logger
}

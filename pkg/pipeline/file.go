package pipeline

import (
	"context"
	"errors"

	"github.com/dd0wney/cluso-bindstat/pkg/dataio"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/histogram"
	"github.com/dd0wney/cluso-bindstat/pkg/logging"
)

// RunFile processes the run file in and writes its histogram CSV to out.
// Either path may end in ".sz". Rows computed before a failing line stay in
// out.
func (p *Processor) RunFile(ctx context.Context, in, out string) (Stats, error) {
	src, err := dataio.OpenLines(in)
	if err != nil {
		return Stats{}, err
	}
	defer src.Close()

	w, err := dataio.Create(out)
	if err != nil {
		return Stats{}, err
	}
	dst := histogram.NewWriter(w)

	p.logger().Info("processing run file", logging.Path(in), logging.String("output", out))
	stats, runErr := p.Run(ctx, src, dst)
	if runErr != nil {
		runErr = errs.New("process").Path(in).Cause(runErr).Err()
	}
	return stats, errors.Join(runErr, dst.Close())
}

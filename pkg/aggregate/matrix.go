package aggregate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// Matrix is one category across runs: Values[t][c] is the value at timestep
// t of the run in column c. RunIDs gives the run id of each column.
type Matrix struct {
	Category string
	RunIDs   []int
	Values   [][]int
}

func newMatrix(category string, timesteps int, runIDs []int) *Matrix {
	values := make([][]int, timesteps)
	for t := range values {
		values[t] = make([]int, len(runIDs))
	}
	return &Matrix{Category: category, RunIDs: runIDs, Values: values}
}

// Rows returns the number of timesteps.
func (m *Matrix) Rows() int {
	return len(m.Values)
}

// Cols returns the number of runs.
func (m *Matrix) Cols() int {
	return len(m.RunIDs)
}

// Column returns the time series of column c.
func (m *Matrix) Column(c int) []int {
	out := make([]int, len(m.Values))
	for t, row := range m.Values {
		out[t] = row[c]
	}
	return out
}

// WriteCSV writes the matrix as integer CSV without a header.
func (m *Matrix) WriteCSV(w io.Writer) (retErr error) {
	cw := csv.NewWriter(w)
	defer func() {
		cw.Flush()
		if err := cw.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("CSV writer flush error: %w", err)
		}
	}()

	record := make([]string, m.Cols())
	for t, row := range m.Values {
		for c, v := range row {
			record[c] = strconv.Itoa(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", t, m.Category, err)
		}
	}
	return nil
}

// ForwardFill pads rows to expected rows by repeating the last row. It
// returns the padded rows and the number of rows added. More rows than
// expected, or no rows at all, is an invariant violation.
func ForwardFill(rows [][]int, expected int) ([][]int, int, error) {
	switch {
	case len(rows) == 0:
		return nil, 0, errs.Invariant("forward fill", "run has no rows, expected %d", expected)
	case len(rows) > expected:
		return nil, 0, errs.Invariant("forward fill", "run has %d rows, more than the expected %d", len(rows), expected)
	}

	filled := len(rows)
	out := make([][]int, expected)
	copy(out, rows)
	last := rows[len(rows)-1]
	for t := filled; t < expected; t++ {
		out[t] = last
	}
	return out, expected - filled, nil
}

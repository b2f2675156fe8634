package histogram

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// Writer writes one histogram row per timestep. Rows carry no header.
type Writer struct {
	csv    *csv.Writer
	closer io.Closer
	rows   int
}

// NewWriter wraps w. When w is also an io.Closer it is closed by Close.
func NewWriter(w io.Writer) *Writer {
	hw := &Writer{csv: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		hw.closer = c
	}
	return hw
}

// Write appends h as the next row.
func (w *Writer) Write(h *Histogram) error {
	if err := w.csv.Write(h.Record()); err != nil {
		return fmt.Errorf("failed to write histogram row %d: %w", w.rows, err)
	}
	w.rows++
	return nil
}

// Rows returns the number of rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush pushes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("CSV writer flush error: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer if it is closable.
func (w *Writer) Close() error {
	flushErr := w.Flush()
	if w.closer == nil {
		return flushErr
	}
	return errors.Join(flushErr, w.closer.Close())
}

// ReadRows parses every row of a histogram CSV. All rows must have the same
// column count.
func ReadRows(r io.Reader) ([]*Histogram, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0
	reader.ReuseRecord = true

	var rows []*Histogram
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && errors.Is(err, csv.ErrFieldCount) {
				return nil, errs.New("read histogram").Line(perr.Line).Cause(
					fmt.Errorf("%w: %v", errs.ErrInvariantViolation, err)).Err()
			}
			return nil, fmt.Errorf("failed to read histogram row %d: %w", len(rows), err)
		}
		h, err := ParseRow(record)
		if err != nil {
			return nil, errs.New("read histogram").Line(len(rows) + 1).Cause(err).Err()
		}
		rows = append(rows, h)
	}
	return rows, nil
}

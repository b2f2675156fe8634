// Package histogram accumulates classified components into one fixed-column
// row per timestep.
//
// Columns are Free, SingletonA, SingletonB, SingletonAB followed by 2mer
// through Nmer where N is the number of receptors of the run. Buckets count
// receptors, so a row always sums to N.
package histogram

import (
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-bindstat/pkg/classify"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// fixedColumns is the number of non-mer columns.
const fixedColumns = 4

// Columns returns the column classes for a run with totalReceptors receptors.
func Columns(totalReceptors int) []classify.Class {
	cols := make([]classify.Class, 0, NumColumns(totalReceptors))
	cols = append(cols, classify.Free, classify.SingletonA, classify.SingletonB, classify.SingletonAB)
	for n := 2; n <= totalReceptors; n++ {
		cols = append(cols, classify.Mer(n))
	}
	return cols
}

// NumColumns returns len(Columns(totalReceptors)).
func NumColumns(totalReceptors int) int {
	if totalReceptors < 2 {
		return fixedColumns
	}
	return fixedColumns + totalReceptors - 1
}

// Header returns the column names, e.g. "Free", "SingletonA", ..., "3mer".
func Header(totalReceptors int) []string {
	cols := Columns(totalReceptors)
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.String()
	}
	return out
}

// Histogram is one timestep's class counts.
type Histogram struct {
	total   int
	buckets []int
}

// New returns a histogram with every receptor free.
func New(totalReceptors int) *Histogram {
	h := &Histogram{
		total:   totalReceptors,
		buckets: make([]int, NumColumns(totalReceptors)),
	}
	h.buckets[classify.Free.Column()] = totalReceptors
	return h
}

// Total returns the number of receptors the histogram was created for.
func (h *Histogram) Total() int {
	return h.total
}

// Fold moves receptors receptors from Free into class.
func (h *Histogram) Fold(class classify.Class, receptors int) error {
	if class == classify.Free {
		return errs.Invariant("fold", "cannot fold into Free")
	}
	col := class.Column()
	if col < 0 || col >= len(h.buckets) {
		return errs.Invariant("fold", "class %s is not a column for %d receptors", class, h.total)
	}
	if receptors < 0 {
		return errs.Invariant("fold", "negative receptor count %d", receptors)
	}
	free := h.buckets[classify.Free.Column()]
	if free-receptors < 0 {
		return errs.Invariant("fold", "Free would drop to %d after folding %d receptors into %s", free-receptors, receptors, class)
	}
	h.buckets[col] += receptors
	h.buckets[classify.Free.Column()] = free - receptors
	return nil
}

// Count returns the receptors in class, 0 for classes outside the columns.
func (h *Histogram) Count(class classify.Class) int {
	col := class.Column()
	if col < 0 || col >= len(h.buckets) {
		return 0
	}
	return h.buckets[col]
}

// Row returns a copy of the buckets in column order.
func (h *Histogram) Row() []int {
	return append([]int(nil), h.buckets...)
}

// Sum returns the sum of all buckets.
func (h *Histogram) Sum() int {
	sum := 0
	for _, v := range h.buckets {
		sum += v
	}
	return sum
}

// Record returns the row as CSV fields.
func (h *Histogram) Record() []string {
	out := make([]string, len(h.buckets))
	for i, v := range h.buckets {
		out[i] = strconv.Itoa(v)
	}
	return out
}

// SerializeRow renders the row as comma-joined integers with a trailing newline.
func (h *Histogram) SerializeRow() string {
	return strings.Join(h.Record(), ",") + "\n"
}

// ParseRow rebuilds a histogram from CSV fields. The field count fixes the
// receptor total; the fields must sum to it.
func ParseRow(record []string) (*Histogram, error) {
	if len(record) < fixedColumns {
		return nil, errs.Invariant("parse row", "row has %d columns, need at least %d", len(record), fixedColumns)
	}
	buckets := make([]int, len(record))
	sum := 0
	for i, field := range record {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, errs.New("parse row").Context("column %d", i).Cause(
				errs.Argument("%q is not an integer", field)).Err()
		}
		if v < 0 {
			return nil, errs.Invariant("parse row", "column %d is negative (%d)", i, v)
		}
		buckets[i] = v
		sum += v
	}

	total := len(record) - fixedColumns + 1
	if len(record) == fixedColumns {
		// no mer columns: one receptor, or none
		total = min(sum, 1)
	}
	if sum != total {
		return nil, errs.Invariant("parse row", "row sums to %d, want %d", sum, total)
	}
	return &Histogram{total: total, buckets: buckets}, nil
}

// Equal reports whether two histograms have the same columns and counts.
func (h *Histogram) Equal(other *Histogram) bool {
	if h.total != other.total || len(h.buckets) != len(other.buckets) {
		return false
	}
	for i := range h.buckets {
		if h.buckets[i] != other.buckets[i] {
			return false
		}
	}
	return true
}

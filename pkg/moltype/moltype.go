// Package moltype maps molecule ids to molecule types. Types occupy
// contiguous, half-open id ranges given by sorted start indices; type 0 is
// the receptor type and the remaining types are ligands.
package moltype

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// Receptor is the conventional type index of the receptor type.
const Receptor = 0

// Range is one contiguous id range [Start, Start+Count).
type Range struct {
	Start int
	Count int
}

// End returns the exclusive upper bound of the range.
func (r Range) End() int {
	return r.Start + r.Count
}

// Contains reports whether id lies in the range.
func (r Range) Contains(id int) bool {
	return id >= r.Start && id < r.End()
}

// Config partitions the id space [Starts[0], Total) into types.
type Config struct {
	Starts []int
	Total  int
}

// New validates and builds a Config.
func New(starts []int, total int) (Config, error) {
	if len(starts) == 0 {
		return Config{}, errs.Argument("at least one type start index is required")
	}
	if starts[0] < 0 {
		return Config{}, errs.Argument("start index %d is negative", starts[0])
	}
	for i := 1; i < len(starts); i++ {
		if starts[i] <= starts[i-1] {
			return Config{}, errs.Argument("start indices must be strictly increasing, got %v", starts)
		}
	}
	if total <= starts[len(starts)-1] {
		return Config{}, errs.Argument("total molecules %d must exceed last start index %d", total, starts[len(starts)-1])
	}
	return Config{Starts: append([]int(nil), starts...), Total: total}, nil
}

// ReceptorsThenLigands builds the two-type layout used by the single-ligand
// tools: receptors are [0, startIndex) and ligands [startIndex, total).
func ReceptorsThenLigands(startIndex, total int) (Config, error) {
	if startIndex <= 0 {
		return Config{}, errs.Argument("ligand start index must be positive, got %d", startIndex)
	}
	return New([]int{0, startIndex}, total)
}

// ParseStarts parses a comma-separated list of start indices ("0,20,30").
func ParseStarts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, errs.Argument("start index %q is not an integer", p)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errs.Argument("empty start index list %q", s)
	}
	return out, nil
}

// NumTypes returns the number of declared types.
func (c Config) NumTypes() int {
	return len(c.Starts)
}

// Range returns the id range of type t.
func (c Config) Range(t int) Range {
	if t < 0 || t >= len(c.Starts) {
		return Range{}
	}
	end := c.Total
	if t+1 < len(c.Starts) {
		end = c.Starts[t+1]
	}
	return Range{Start: c.Starts[t], Count: end - c.Starts[t]}
}

// Count returns the number of molecules of type t.
func (c Config) Count(t int) int {
	return c.Range(t).Count
}

// TypeOf returns the type of id, or an invariant violation when id lies
// outside every declared range.
func (c Config) TypeOf(id int) (int, error) {
	if len(c.Starts) == 0 || id < c.Starts[0] || id >= c.Total {
		return -1, errs.Invariant("moltype", "molecule id %d outside declared ranges [%d,%d)", id, c.firstStart(), c.Total)
	}
	// index of the last start <= id
	t := sort.Search(len(c.Starts), func(i int) bool { return c.Starts[i] > id }) - 1
	return t, nil
}

// Is reports whether id belongs to type t. Ids outside the configuration
// belong to no type.
func (c Config) Is(t, id int) bool {
	return c.Range(t).Contains(id)
}

func (c Config) firstStart() int {
	if len(c.Starts) == 0 {
		return 0
	}
	return c.Starts[0]
}

// String renders the layout, e.g. "[0,20)[20,30)[30,40)".
func (c Config) String() string {
	var b strings.Builder
	for t := range c.Starts {
		r := c.Range(t)
		fmt.Fprintf(&b, "[%d,%d)", r.Start, r.End())
	}
	return b.String()
}

package sitestats

import (
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// ReportKind selects what a report line holds.
type ReportKind int

const (
	// Counts reports molecule counts.
	Counts ReportKind = iota
	// Probabilities reports the matching probabilities.
	Probabilities
)

func (k ReportKind) String() string {
	if k == Probabilities {
		return "probabilities"
	}
	return "counts"
}

// ParseReportKind accepts "counts" or "probabilities".
func ParseReportKind(s string) (ReportKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "counts", "count":
		return Counts, nil
	case "probabilities", "probability", "probs":
		return Probabilities, nil
	}
	return Counts, errs.Argument("unknown report kind %q (want counts or probabilities)", s)
}

// SitePair is an ordered (X, Y) pair: X bound given Y bound.
type SitePair struct {
	X, Y int
}

// Layout returns the pair order used by reports for a molecule with valency
// sites: every conditioning site Y in order, and for each Y every X != Y.
// For valency 2 that is (1,0),(0,1).
func Layout(valency int) []SitePair {
	if valency < 2 {
		return nil
	}
	out := make([]SitePair, 0, valency*(valency-1))
	for y := 0; y < valency; y++ {
		for x := 0; x < valency; x++ {
			if x != y {
				out = append(out, SitePair{X: x, Y: y})
			}
		}
	}
	return out
}

// Header names the report columns: c0..c{v-1} then c{x}{y} for counts, and
// p0.. then p{x}_{y} for probabilities.
func Header(kind ReportKind, valency int) []string {
	prefix := "c"
	sep := ""
	if kind == Probabilities {
		prefix, sep = "p", "_"
	}
	out := make([]string, 0, valency*valency)
	for s := 0; s < valency; s++ {
		out = append(out, prefix+strconv.Itoa(s))
	}
	for _, p := range Layout(valency) {
		out = append(out, prefix+strconv.Itoa(p.X)+sep+strconv.Itoa(p.Y))
	}
	return out
}

// CountReport returns the single-site counts for sites 0..valency-1
// followed by the two-site counts in Layout order.
func (t *BoundSitesTable) CountReport(valency int) []int {
	out := make([]int, 0, valency*valency)
	for s := 0; s < valency; s++ {
		out = append(out, t.CountSingleSiteBound(s))
	}
	for _, p := range Layout(valency) {
		out = append(out, t.CountTwoSitesBound(p.X, p.Y))
	}
	return out
}

// ProbabilityReport mirrors CountReport with P(site) and P(X|Y).
func (t *BoundSitesTable) ProbabilityReport(valency int) []float64 {
	out := make([]float64, 0, valency*valency)
	for s := 0; s < valency; s++ {
		out = append(out, t.ProbSiteBound(s))
	}
	for _, p := range Layout(valency) {
		out = append(out, t.ProbGiven(p.X, p.Y))
	}
	return out
}

// ReportLine renders one report line, values joined by ", " and ending in a
// newline.
func (t *BoundSitesTable) ReportLine(kind ReportKind, valency int) string {
	if kind == Probabilities {
		return JoinFloats(t.ProbabilityReport(valency)) + "\n"
	}
	return JoinInts(t.CountReport(valency)) + "\n"
}

// JoinInts renders values as "a, b, c".
func JoinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// JoinFloats renders values as "a, b, c" in the shortest exact form.
func JoinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatFloat(v)
	}
	return strings.Join(parts, ", ")
}

// FormatFloat renders v in the shortest form that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

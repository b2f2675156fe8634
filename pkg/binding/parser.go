package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

// Format selects the line encoding a Parser accepts.
type Format int

const (
	// FormatAuto picks the aggregate form when a line starts with '[' and the
	// flat form otherwise.
	FormatAuto Format = iota
	// FormatFlat is "(mol1,site1,mol2,site2),...;".
	FormatFlat
	// FormatAggregate is "[(mol.site,mol.site),...],[...]".
	FormatAggregate
)

// String returns the flag spelling of the format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatFlat:
		return "flat"
	case FormatAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "flat", "tuple":
		return FormatFlat, nil
	case "aggregate", "agg":
		return FormatAggregate, nil
	default:
		return FormatAuto, errs.Argument("unknown line format %q", s)
	}
}

// MalformedLineError reports tuple text that does not decompose into the
// fields its format requires.
type MalformedLineError struct {
	Tuple  string
	Offset int
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%v: tuple %q at offset %d: %s", errs.ErrMalformedLine, e.Tuple, e.Offset, e.Reason)
}

// Unwrap lets errors.Is match errs.ErrMalformedLine.
func (e *MalformedLineError) Unwrap() error {
	return errs.ErrMalformedLine
}

// Parser turns raw lines into binding edges. It holds only compiled
// patterns and is safe for concurrent use.
type Parser struct {
	format Format
	group  *regexp.Regexp
}

// NewParser creates a parser for the given format.
func NewParser(format Format) *Parser {
	return &Parser{
		format: format,
		group:  regexp.MustCompile(`\(([^()]*)\)`),
	}
}

// Format returns the configured format.
func (p *Parser) Format() Format {
	return p.format
}

// Parse extracts all edges from one line. Text outside tuples is ignored;
// a line without tuple text yields no edges.
func (p *Parser) Parse(line string) ([]Edge, error) {
	format := p.format
	if format == FormatAuto {
		format = detect(line)
	}

	matches := p.group.FindAllStringSubmatchIndex(line, -1)
	edges := make([]Edge, 0, len(matches))
	for _, m := range matches {
		body := strings.TrimSpace(line[m[2]:m[3]])
		if !isTupleText(body) {
			continue
		}
		var (
			e   Edge
			err error
		)
		if format == FormatAggregate {
			e, err = parseAggregatePair(body)
		} else {
			e, err = parseFlatTuple(body)
		}
		if err != nil {
			return nil, &MalformedLineError{Tuple: line[m[0]:m[1]], Offset: m[0], Reason: err.Error()}
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func detect(line string) Format {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "[") {
		return FormatAggregate
	}
	return FormatFlat
}

// isTupleText separates numeric tuples from parenthesised prose.
func isTupleText(body string) bool {
	if body == "" {
		return false
	}
	c := body[0]
	return (c >= '0' && c <= '9') || c == '-' || c == '+'
}

func parseFlatTuple(body string) (Edge, error) {
	fields := strings.Split(body, ",")
	if len(fields) != 4 {
		return Edge{}, fmt.Errorf("expected 4 integer fields, got %d", len(fields))
	}
	var v [4]int
	for i, f := range fields {
		n, err := parseID(f)
		if err != nil {
			return Edge{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v[i] = n
	}
	return Edge{Mol1: v[0], Site1: v[1], Mol2: v[2], Site2: v[3]}, nil
}

func parseAggregatePair(body string) (Edge, error) {
	ends := strings.Split(body, ",")
	if len(ends) != 2 {
		return Edge{}, fmt.Errorf("expected 2 mol.site endpoints, got %d", len(ends))
	}
	m1, s1, err := parseEndpoint(ends[0])
	if err != nil {
		return Edge{}, fmt.Errorf("endpoint 1: %w", err)
	}
	m2, s2, err := parseEndpoint(ends[1])
	if err != nil {
		return Edge{}, fmt.Errorf("endpoint 2: %w", err)
	}
	return Edge{Mol1: m1, Site1: s1, Mol2: m2, Site2: s2}, nil
}

func parseEndpoint(s string) (int, int, error) {
	mol, site, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not mol.site", strings.TrimSpace(s))
	}
	m, err := parseID(mol)
	if err != nil {
		return 0, 0, err
	}
	st, err := parseID(site)
	if err != nil {
		return 0, 0, err
	}
	return m, st, nil
}

func parseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%d is negative", n)
	}
	return n, nil
}

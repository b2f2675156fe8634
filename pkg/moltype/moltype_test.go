package moltype

import (
	"testing"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

func TestTypeOf(t *testing.T) {
	cfg, err := New([]int{0, 20, 30}, 40)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		id   int
		want int
	}{
		{0, 0},
		{19, 0},
		{20, 1},
		{29, 1},
		{30, 2},
		{39, 2},
	}
	for _, tt := range tests {
		got, err := cfg.TypeOf(tt.id)
		if err != nil {
			t.Fatalf("TypeOf(%d) error: %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("TypeOf(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestTypeOfOutOfRange(t *testing.T) {
	cfg, _ := New([]int{1, 2}, 4)

	for _, id := range []int{0, 4, 100} {
		if _, err := cfg.TypeOf(id); !errs.IsInvariant(err) {
			t.Errorf("TypeOf(%d) error = %v, want invariant violation", id, err)
		}
	}
}

func TestRangeAndCount(t *testing.T) {
	cfg, _ := ReceptorsThenLigands(20, 40)

	if r := cfg.Range(0); r.Start != 0 || r.Count != 20 {
		t.Errorf("Range(0) = %+v", r)
	}
	if r := cfg.Range(1); r.Start != 20 || r.End() != 40 {
		t.Errorf("Range(1) = %+v", r)
	}
	if cfg.Count(5) != 0 {
		t.Error("unknown type should have zero count")
	}
	if !cfg.Is(1, 25) || cfg.Is(0, 25) {
		t.Error("Is mismatch for id 25")
	}
	if cfg.String() != "[0,20)[20,40)" {
		t.Errorf("String() = %q", cfg.String())
	}
}

func TestNewRejectsBadLayouts(t *testing.T) {
	tests := []struct {
		name   string
		starts []int
		total  int
	}{
		{"empty", nil, 10},
		{"negative", []int{-1, 5}, 10},
		{"unsorted", []int{0, 20, 10}, 40},
		{"duplicate", []int{0, 20, 20}, 40},
		{"total too small", []int{0, 20}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.starts, tt.total); !errs.IsArgument(err) {
				t.Errorf("New(%v, %d) error = %v, want argument error", tt.starts, tt.total, err)
			}
		})
	}
}

func TestParseStarts(t *testing.T) {
	got, err := ParseStarts("0, 20,30,")
	if err != nil {
		t.Fatalf("ParseStarts failed: %v", err)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 20 || got[2] != 30 {
		t.Errorf("ParseStarts = %v", got)
	}

	if _, err := ParseStarts("0,x"); !errs.IsArgument(err) {
		t.Errorf("expected argument error, got %v", err)
	}
	if _, err := ParseStarts(" , "); !errs.IsArgument(err) {
		t.Errorf("expected argument error for empty list, got %v", err)
	}
}

func TestReceptorsThenLigandsRejectsZeroStart(t *testing.T) {
	if _, err := ReceptorsThenLigands(0, 10); !errs.IsArgument(err) {
		t.Errorf("expected argument error, got %v", err)
	}
}

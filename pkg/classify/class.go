// Package classify labels binding-graph components with an aggregate class.
package classify

import (
	"fmt"
	"strconv"
	"strings"
)

// Class is the aggregate class of one component. The integer value doubles
// as the column index in a histogram row: Free, SingletonA, SingletonB and
// SingletonAB occupy columns 0-3 and an n-mer occupies column n+2.
type Class int

const (
	Free Class = iota
	SingletonA
	SingletonB
	SingletonAB
)

const firstMer = 2

// Mer returns the class of an aggregate holding n >= 2 receptors.
func Mer(n int) Class {
	return Class(n + int(SingletonAB) - 1)
}

// IsMer reports whether c is an n-mer class.
func (c Class) IsMer() bool {
	return c > SingletonAB
}

// IsSingleton reports whether c is one of the singleton classes.
func (c Class) IsSingleton() bool {
	return c == SingletonA || c == SingletonB || c == SingletonAB
}

// MerSize returns n for an n-mer class, 0 otherwise.
func (c Class) MerSize() int {
	if !c.IsMer() {
		return 0
	}
	return int(c) - int(SingletonAB) + 1
}

// Column returns the histogram column of c.
func (c Class) Column() int {
	return int(c)
}

func (c Class) String() string {
	switch c {
	case Free:
		return "Free"
	case SingletonA:
		return "SingletonA"
	case SingletonB:
		return "SingletonB"
	case SingletonAB:
		return "SingletonAB"
	}
	if c.IsMer() {
		return strconv.Itoa(c.MerSize()) + "mer"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ParseClass is the inverse of String.
func ParseClass(s string) (Class, error) {
	switch s {
	case "Free":
		return Free, nil
	case "SingletonA":
		return SingletonA, nil
	case "SingletonB":
		return SingletonB, nil
	case "SingletonAB":
		return SingletonAB, nil
	}
	if digits, ok := strings.CutSuffix(s, "mer"); ok && isDigits(digits) {
		if n, err := strconv.Atoi(digits); err == nil && n >= firstMer {
			return Mer(n), nil
		}
	}
	return Free, fmt.Errorf("unknown aggregate class %q", s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

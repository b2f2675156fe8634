package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	ErrMalformedLine      = errors.New("malformed line")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrMissingFile        = errors.New("missing file")
	ErrArgument           = errors.New("invalid argument")
)

// AnalysisError provides structured error information for analysis operations.
type AnalysisError struct {
	Op      string // Operation that failed (e.g., "parse", "fold", "aggregate")
	Path    string // File involved, if any
	Run     int    // Run id, -1 when not applicable
	Line    int    // 1-based line (timestep + 1), 0 when not applicable
	Context string // Additional context
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Run >= 0 {
		fmt.Fprintf(&b, " run %d", e.Run)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, " (%s)", e.Context)
	}
	fmt.Fprintf(&b, ": %v", e.Cause)
	return b.String()
}

// Unwrap returns the underlying cause for error chain support.
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *AnalysisError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building AnalysisErrors.
type ErrorBuilder struct {
	err AnalysisError
}

// New creates a new error builder with the given operation.
func New(op string) *ErrorBuilder {
	return &ErrorBuilder{err: AnalysisError{Op: op, Run: -1}}
}

// Path sets the file path.
func (b *ErrorBuilder) Path(p string) *ErrorBuilder {
	b.err.Path = p
	return b
}

// Run sets the run id.
func (b *ErrorBuilder) Run(id int) *ErrorBuilder {
	b.err.Run = id
	return b
}

// Line sets the 1-based line number.
func (b *ErrorBuilder) Line(n int) *ErrorBuilder {
	b.err.Line = n
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(format string, args ...any) *ErrorBuilder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed AnalysisError.
func (b *ErrorBuilder) Build() *AnalysisError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// Invariant creates an invariant violation with a formatted reason.
func Invariant(op, format string, args ...any) error {
	return New(op).Cause(fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))).Err()
}

// Argument creates an argument error with a formatted reason.
func Argument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrArgument, fmt.Sprintf(format, args...))
}

// MissingFile creates a missing file error for path.
func MissingFile(op, path string, cause error) error {
	if cause == nil {
		cause = ErrMissingFile
	} else {
		cause = fmt.Errorf("%w: %v", ErrMissingFile, cause)
	}
	return New(op).Path(path).Cause(cause).Err()
}

// IsMalformed returns true if the error is a malformed line error.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedLine)
}

// IsInvariant returns true if the error is an invariant violation.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// IsArgument returns true if the error is an argument error.
func IsArgument(err error) bool {
	return errors.Is(err, ErrArgument)
}

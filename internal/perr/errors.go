// Package perr implements the core's error taxonomy. Every variant is a
// plain, non-panicking value carrying enough context to resume; only
// InternalError wraps github.com/samber/oops, reserved for invariant
// violations that should never happen in practice.
package perr

import (
	"fmt"

	"github.com/samber/oops"
)

// Code identifies an error variant for stable, language-agnostic
// reporting across the wire format.
type Code string

const (
	CodeMalformedSection    Code = "malformed_section"
	CodeAmbiguousNesting    Code = "ambiguous_nesting"
	CodeDanglingReference   Code = "dangling_reference"
	CodeTokenizationFailure Code = "tokenization_failure"
	CodeInternalError       Code = "internal_error"
)

// ProcessError is the core's single error type, tagged by Code with
// variant-specific fields. Only the fields relevant to Code are
// meaningful; this mirrors the teacher's tagged-union-by-string-
// discriminator convention (e.g. extract.ReferenceType) applied to errors.
type ProcessError struct {
	Code Code

	// MalformedSection
	Raw  string
	Line int

	// AmbiguousNesting
	Candidates []string

	// DanglingReference
	Reference string

	// TokenizationFailure
	Reason string

	// InternalError
	cause error
}

func (e *ProcessError) Error() string {
	switch e.Code {
	case CodeMalformedSection:
		return fmt.Sprintf("malformed section at line %d: %q", e.Line, e.Raw)
	case CodeAmbiguousNesting:
		return fmt.Sprintf("ambiguous nesting at line %d among %v", e.Line, e.Candidates)
	case CodeDanglingReference:
		return fmt.Sprintf("dangling reference %q at line %d", e.Reference, e.Line)
	case CodeTokenizationFailure:
		return fmt.Sprintf("tokenization failure at line %d: %s", e.Line, e.Reason)
	case CodeInternalError:
		if e.cause != nil {
			return fmt.Sprintf("internal error: %v", e.cause)
		}
		return "internal error"
	default:
		return "unknown process error"
	}
}

// Unwrap exposes the wrapped oops error, if any, for errors.Is/As.
func (e *ProcessError) Unwrap() error { return e.cause }

func MalformedSection(raw string, line int) *ProcessError {
	return &ProcessError{Code: CodeMalformedSection, Raw: raw, Line: line}
}

func AmbiguousNesting(line int, candidates []string) *ProcessError {
	return &ProcessError{Code: CodeAmbiguousNesting, Line: line, Candidates: candidates}
}

func DanglingReference(reference string, line int) *ProcessError {
	return &ProcessError{Code: CodeDanglingReference, Reference: reference, Line: line}
}

func TokenizationFailure(line int, reason string) *ProcessError {
	return &ProcessError{Code: CodeTokenizationFailure, Line: line, Reason: reason}
}

// Internal builds an InternalError wrapping an oops-annotated cause. Use
// this only for violations of this package's own invariants, never for
// expected, recoverable input conditions.
func Internal(op string, msg string, kv ...any) *ProcessError {
	err := oops.Code(string(CodeInternalError)).With(kv...).Errorf("%s: %s", op, msg)
	return &ProcessError{Code: CodeInternalError, cause: err}
}

// Result wraps a value with accumulated non-fatal errors and warnings, the
// shape every per-document and per-section processing stage returns.
type Result[T any] struct {
	Value    T
	Errors   []*ProcessError
	Warnings []string
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func (r *Result[T]) AddError(e *ProcessError) {
	r.Errors = append(r.Errors, e)
}

func (r *Result[T]) AddWarning(w string) {
	r.Warnings = append(r.Warnings, w)
}

// HasErrors reports whether any error was recorded.
func (r *Result[T]) HasErrors() bool { return len(r.Errors) > 0 }

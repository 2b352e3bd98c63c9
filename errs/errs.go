// Package errs defines the engine's error kinds: ParseError,
// TypeError, ArityError, IndexOutOfRangeError, SingleDisagreementError,
// ProviderError and LinkResolutionError. Each is a concrete Go type carrying
// structured fields describing exactly what went wrong, and wraps an
// underlying cause with github.com/pkg/errors when one exists.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError reports a syntax problem at a byte offset in the query text.
type ParseError struct {
	Offset  int
	Message string
	Query   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %s", e.Offset, e.Message)
}

// NewParseError builds a ParseError, capturing the offending query
// alongside the byte offset.
func NewParseError(query string, offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{Offset: offset, Message: fmt.Sprintf(format, args...), Query: query}
}

// TypeError reports that an operator received a context or argument of the
// wrong kind. TypeErrors always propagate immediately; they are never
// swallowed by AbsorbingNone.
type TypeError struct {
	Operator string
	Expected []string
	Got      string
	Pos      int
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: expected %v, got %s", e.Operator, e.Expected, e.Got)
}

// NewTypeError constructs a TypeError.
func NewTypeError(op string, pos int, got string, expected ...string) *TypeError {
	return &TypeError{Operator: op, Expected: expected, Got: got, Pos: pos}
}

// ArityError reports a fixed-arity operator invoked with the wrong argument
// count.
type ArityError struct {
	Operator string
	Want     int
	Got      int
	Pos      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: expected %d argument(s), got %d", e.Operator, e.Want, e.Got)
}

// IndexOutOfRangeError reports an out-of-bounds [n] index, including on an
// empty ObjectList: this is deterministic, not AbsorbingNone.
type IndexOutOfRangeError struct {
	Index int
	Len   int
	Pos   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for length %d", e.Index, e.Len)
}

// SingleDisagreementError reports that single() observed two incompatible
// values across an ObjectList.
type SingleDisagreementError struct {
	A, B string
	Pos  int
}

func (e *SingleDisagreementError) Error() string {
	return fmt.Sprintf("single(): disagreeing values %q and %q", e.A, e.B)
}

// ProviderError reports a fetch failure for a configured provider URL. The
// store is not affected by a ProviderError: the last good snapshot is kept.
type ProviderError struct {
	URL   string
	Cause error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.URL, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// NewProviderError wraps cause with stack context via pkg/errors.
func NewProviderError(url string, cause error) *ProviderError {
	return &ProviderError{URL: url, Cause: errors.Wrap(cause, url)}
}

// MalformedProviderError marks a ProviderError-wrapped cause as "malformed
// payload" rather than "transport failure".
// Poller.fetchOnce distinguishes the two branches with IsMalformed.
type MalformedProviderError struct {
	Cause error
}

func (e *MalformedProviderError) Error() string { return e.Cause.Error() }
func (e *MalformedProviderError) Unwrap() error { return e.Cause }

// Malformed wraps cause to mark it as a malformed-payload failure.
func Malformed(cause error) error {
	return &MalformedProviderError{Cause: cause}
}

// IsMalformed reports whether err (or anything it wraps) is a
// MalformedProviderError.
func IsMalformed(err error) bool {
	var m *MalformedProviderError
	return errors.As(err, &m)
}

// LinkResolutionError reports a link whose query target could not be
// resolved, including cycle detection failures.
type LinkResolutionError struct {
	Query string
	Cause error
}

func (e *LinkResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link resolution failed for %q: %v", e.Query, e.Cause)
	}
	return fmt.Sprintf("link resolution failed for %q", e.Query)
}

func (e *LinkResolutionError) Unwrap() error { return e.Cause }

// NewLinkResolutionError wraps cause, if any, with stack context.
func NewLinkResolutionError(query string, cause error) *LinkResolutionError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &LinkResolutionError{Query: query, Cause: cause}
}

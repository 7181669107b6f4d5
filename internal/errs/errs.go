// Package errs defines the error kinds shared by the sizing packages.
//
// Call sites wrap these with fmt.Errorf("...: %w", errs.ErrX) so callers can
// classify failures with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidInput reports empty series, non-positive sizes, empty box
	// lists, mismatched lengths and similar precondition failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrParse reports a malformed label string or data file row.
	ErrParse = errors.New("parse error")

	// ErrIndex reports an out-of-range index passed to a mutation.
	ErrIndex = errors.New("index out of range")
)

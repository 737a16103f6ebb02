// Package errs defines the error-kind taxonomy from spec.md §7 and maps it
// to CLI exit codes. Every fatal error that crosses a package boundary in
// this module should be wrapped with errs.New so the CLI layer can decide
// how to exit without re-deriving the kind from error text.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the error categories enumerated in spec.md §7.
type Kind string

const (
	KindUsage                     Kind = "usage_error"
	KindSvnUnavailable             Kind = "svn_unavailable"
	KindSvnCallFailed              Kind = "svn_call_failed"
	KindParse                      Kind = "parse_error"
	KindCacheIO                    Kind = "cache_io_error"
	KindDiffUnavailableForRevision Kind = "diff_unavailable_for_revision"
	KindCancelled                  Kind = "cancelled"
)

// ExitCode maps a Kind to the process exit code from spec.md §6.
// CacheIO maps to 5 (I/O failure). DiffUnavailableForRevision is never
// expected to reach the CLI as a terminal error; it and Cancelled map to 1.
func (k Kind) ExitCode() int {
	switch k {
	case KindUsage:
		return 2
	case KindSvnUnavailable, KindSvnCallFailed:
		return 3
	case KindParse:
		return 4
	case KindCacheIO:
		return 5
	default:
		return 1
	}
}

// Error wraps an underlying error with a Kind so callers can branch on it
// with errors.As without parsing messages.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an *Error. op is a short "package: function" style label
// matching the teacher's fmt.Errorf convention.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// As extracts the Kind of err, if it (or something it wraps) is an *Error.
// Returns ("", false) otherwise.
func As(err error) (Kind, bool) {
	var e *Error
	if ok := errors.As(err, &e); ok {
		return e.Kind, true
	}
	return "", false
}

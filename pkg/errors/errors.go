// Package errors defines the error taxonomy of the archive builder.
//
// Three kinds exist: configuration errors (fatal before any network call),
// upstream errors (fatal mid-run, no retry), and parsing errors (recovered
// locally by dropping or degrading the affected record).
package errors

import "fmt"

// Kind classifies an error
type Kind string

const (
	KindConfig   Kind = "config"
	KindUpstream Kind = "upstream"
	KindAuth     Kind = "auth"
	KindParsing  Kind = "parsing"
	KindUnknown  Kind = "unknown"
)

// Error represents a classified error with an optional HTTP status code
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// New creates a classified error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCode attaches an HTTP status code
func (e *Error) WithCode(code int) *Error {
	e.Code = code
	return e
}

// IsFatal reports whether an error kind aborts the whole run. Parsing errors
// never do: the affected record is dropped or degraded instead.
func IsFatal(kind Kind) bool {
	switch kind {
	case KindConfig, KindUpstream, KindAuth:
		return true
	case KindParsing:
		return false
	default:
		return true
	}
}

// KindOf extracts the kind of a classified error, KindUnknown otherwise
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

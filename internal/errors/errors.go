// Package errors defines typed errors with categories for the bridge layer.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so callers can tell a fatal configuration problem from a
// broken connection or a query that merely lost its projection optimization.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// and works with the standard errors.Is / errors.As helpers.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Configuration indicates a request that cannot be built, such as a missing
	// user identity or an unknown storage format. Nothing is sent to the remote side.
	Configuration Kind = "configuration"
	// Connectivity indicates the transport ended abnormally during a scan or insert.
	Connectivity Kind = "connectivity"
	// UnsupportedExpression indicates column references could not be fully
	// classified. Callers degrade by dropping the projection hint.
	UnsupportedExpression Kind = "unsupported_expression"
	// Protocol indicates the remote service answered with something the bridge
	// does not understand.
	Protocol Kind = "protocol"
)

// Sentinels for use with errors.Is; any *E of the same kind matches.
var (
	ErrConfiguration         = &E{Kind: Configuration}
	ErrConnectivity          = &E{Kind: Connectivity}
	ErrUnsupportedExpression = &E{Kind: UnsupportedExpression}
	ErrProtocol              = &E{Kind: Protocol}
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is matches any *E carrying the same kind.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	return ok && t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf is New with a format string.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *E in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Package errx classifies linkvault failures. Each error records the
// operation that failed (such as "library.Restore") and a Kind telling
// callers what went wrong: the link does not exist, the input was rejected,
// a protected folder was touched, or the storage slot could not be written.
// The CLI prints the message; the HTTP API turns the kind into a status.
package errx

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	// Unknown marks errors that carry no kind, including plain errors.
	Unknown Kind = iota
	// NotFound: no link or folder with the given id or name.
	NotFound
	// Invalid: rejected input, including import documents.
	Invalid
	// Forbidden: the action would break a protected folder.
	Forbidden
	// Unavailable: the storage slot could not be read or written.
	Unavailable
	// Internal: a bug or an encoding failure.
	Internal
)

// kindCodes are the machine-readable names of the kinds. The HTTP API
// sends them as the error code.
var kindCodes = [...]string{
	Unknown:     "unknown",
	NotFound:    "not_found",
	Invalid:     "invalid_input",
	Forbidden:   "forbidden",
	Unavailable: "unavailable",
	Internal:    "internal_error",
}

func (k Kind) String() string {
	if int(k) < len(kindCodes) {
		return kindCodes[k]
	}
	return fmt.Sprintf("kind_%d", k)
}

// Error is a failure of the operation Op.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E wraps err as a failure of op. A nil err stays nil so callers can wrap
// unconditionally.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Errorf builds an Error around a formatted message.
func Errorf(op string, kind Kind, format string, args ...any) error {
	return E(op, kind, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op
	case e.Op == "":
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the outermost Error in the chain.
func KindOf(err error) Kind {
	if e, ok := asError(err); ok {
		return e.Kind
	}
	return Unknown
}

// OpOf returns the operation of the outermost Error in the chain.
func OpOf(err error) string {
	if e, ok := asError(err); ok {
		return e.Op
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

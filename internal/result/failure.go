package result

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for reporting and retry decisions.
type ErrorKind int

const (
	// ErrConnection is a connection-level problem: host unreachable,
	// handshake failure. Retriable against another host.
	ErrConnection ErrorKind = iota

	// ErrIncompleteStatement is an unterminated statement at end of a batch
	// input. Fatal to that batch.
	ErrIncompleteStatement

	// ErrInvalidArgument is meta-command misuse, e.g. \format xml.
	ErrInvalidArgument

	// ErrNoKeyspaceSelected means a keyspace-scoped command ran with no
	// keyspace given and none active.
	ErrNoKeyspaceSelected

	// ErrStatement is a server-reported semantic or syntax problem. Never
	// retried.
	ErrStatement

	// ErrCancelled means the in-flight execution was interrupted. The
	// session stays usable.
	ErrCancelled
)

// String returns the kind's display name.
func (k ErrorKind) String() string {
	switch k {
	case ErrConnection:
		return "connection error"
	case ErrIncompleteStatement:
		return "incomplete statement"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrNoKeyspaceSelected:
		return "no keyspace selected"
	case ErrStatement:
		return "statement error"
	case ErrCancelled:
		return "cancelled"
	default:
		return "unknown error"
	}
}

// Failure is the typed error surfaced to the renderer for every recoverable
// problem. Kind drives classification; Retriable tells the cluster session
// whether failing over to another host could help.
type Failure struct {
	Kind      ErrorKind
	Message   string
	Retriable bool
	cause     error
}

// NewFailure builds a failure with a formatted message.
func NewFailure(kind ErrorKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...), Retriable: kind == ErrConnection}
}

// WrapFailure builds a failure that preserves the underlying error for
// errors.Is/As chains.
func WrapFailure(kind ErrorKind, err error) *Failure {
	return &Failure{Kind: kind, Message: err.Error(), Retriable: kind == ErrConnection, cause: err}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.cause }

// KindOf extracts the ErrorKind from an error chain. Errors that are not a
// *Failure classify as ErrStatement.
func KindOf(err error) ErrorKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ErrStatement
}

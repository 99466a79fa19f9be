// Package errors holds the error vocabulary shared by the client layers.
//
// Every failure a flow can observe is reported through a single channel: an
// error value, usually an *OperationError tagged with a Kind. Callers branch on
// the kind instead of on where the failure happened:
//
//	var opErr *errors.OperationError
//	if errors.As(err, &opErr) && opErr.Kind == errors.KindApplication { ... }
//
//	if errors.IsNotFound(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions so callers only import this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Kind classifies an operation failure.
type Kind int

const (
	// KindValidation is a client-side input constraint; no call was made.
	KindValidation Kind = iota
	// KindTransport covers network failures and non-2xx HTTP responses.
	KindTransport
	// KindApplication is a success:false envelope in an otherwise OK response.
	KindApplication
	// KindNotFound is an HTTP 404.
	KindNotFound
	// KindSigning means the request body could not be signed; no call was made.
	KindSigning
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindNotFound:
		return "not_found"
	case KindSigning:
		return "signing"
	default:
		return "unknown"
	}
}

// Sentinel errors
var (
	// ErrBusy is returned when the same control already has a call in flight.
	ErrBusy = New("operation already in progress")
	// ErrNoSession indicates that no session is stored.
	ErrNoSession = New("no active session")
	// ErrSessionMismatch indicates that the route user differs from the session user.
	ErrSessionMismatch = New("session does not match requested user")
	// ErrMissingUserID indicates a task route without a user id.
	ErrMissingUserID = New("user id not provided")
	// ErrViewClosed is returned when a result arrives after its view was torn down.
	ErrViewClosed = New("view has been closed")
	// ErrTaskNotFound indicates that a task id is not in the loaded list.
	ErrTaskNotFound = New("task not found in list")
)

// OperationError describes the outcome of a failed operation.
type OperationError struct {
	Op         string
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op string, kind Kind, message string, err error) *OperationError {
	return &OperationError{Op: op, Kind: kind, Message: message, Err: err}
}

// WithStatus records the HTTP status associated with the failure.
func (e *OperationError) WithStatus(code int) *OperationError {
	e.StatusCode = code
	return e
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is implemented by errors that carry an HTTP response status.
type HTTPStatusError interface {
	error
	HTTPStatus() int
	ServerMessage() string
}

// Classify turns an error returned by the transport layer into an
// *OperationError for op. Errors that already are operation errors are
// returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var opErr *OperationError
	if As(err, &opErr) {
		return err
	}

	var statusErr HTTPStatusError
	if As(err, &statusErr) {
		kind := KindTransport
		if statusErr.HTTPStatus() == http.StatusNotFound {
			kind = KindNotFound
		}
		return NewOperationError(op, kind, statusErr.ServerMessage(), err).WithStatus(statusErr.HTTPStatus())
	}

	return NewOperationError(op, KindTransport, "", err)
}

// Application builds the error for a success:false response.
func Application(op, message string, statusCode int) *OperationError {
	return NewOperationError(op, KindApplication, message, nil).WithStatus(statusCode)
}

// Validation builds a validation error.
func Validation(op, message string, err error) *OperationError {
	return NewOperationError(op, KindValidation, message, err)
}

// KindOf reports the kind of err, if it is an operation error.
func KindOf(err error) (Kind, bool) {
	var opErr *OperationError
	if As(err, &opErr) {
		return opErr.Kind, true
	}
	return 0, false
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNotFound
}

// IsKind reports whether err is an operation error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

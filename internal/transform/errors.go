package transform

import (
	"errors"
	"fmt"

	"github.com/fpang/backdrop-studio/internal/session"
)

// ErrorKind classifies a dispatch failure.
type ErrorKind string

const (
	// KindInvalidRequest means the request was rejected before any external
	// call was made. The session status is left untouched.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindTransport means the external call itself failed (network, auth,
	// quota, malformed request).
	KindTransport ErrorKind = "transport"
	// KindEmptyResult means the call completed but no response part carried
	// image data.
	KindEmptyResult ErrorKind = "empty_result"
)

// ErrNoImage is returned by Service implementations when a completed response
// contains no image payload. The dispatcher translates it into a
// KindEmptyResult failure rather than a transport one.
var ErrNoImage = errors.New("no image data in model response")

// Error is a classified dispatch failure. Callers branch on Kind with
// errors.As instead of string matching.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Descriptor converts the error into the session-level description rendered
// to the user.
func (e *Error) Descriptor() session.ErrorDescriptor {
	return session.ErrorDescriptor{Kind: string(e.Kind), Message: e.Message}
}

func invalidRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

func emptyResultError(err error) *Error {
	return &Error{Kind: KindEmptyResult, Message: "no image was generated; try again", Err: err}
}

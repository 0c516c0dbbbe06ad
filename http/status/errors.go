package status

import (
	"errors"
	"fmt"
)

// HTTPError is a terminal failure of the connection. The Code is what the host may answer
// with before closing the socket.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	// ErrIO covers every stream read/write failure, premature close included. There's nobody
	// left to answer to, so the code is never rendered.
	ErrIO = NewError(CloseConnection, "connection I/O failure")
	// ErrTimeout is returned when a per-read or per-request deadline expires.
	ErrTimeout                 = NewError(RequestTimeout, "request timeout")
	ErrEncoding                = NewError(BadRequest, "invalid UTF-8 sequence")
	ErrMalformedRequestLine    = NewError(BadRequest, "malformed request line")
	ErrUnknownMethod           = NewError(NotImplemented, "request method is not supported")
	ErrUnsupportedVersion      = NewError(HTTPVersionNotSupported, "HTTP version not supported")
	ErrMalformedHeader         = NewError(BadRequest, "malformed header")
	ErrMalformedQueryParameter = NewError(BadRequest, "malformed query parameter")
	ErrTooLongRequestLine      = NewError(RequestURITooLong, "request line is too long")
	ErrHeaderFieldsTooLarge    = NewError(RequestHeaderFieldsTooLarge, "header line is too long")
	ErrTooManyHeaders          = NewError(RequestHeaderFieldsTooLarge, "too many headers")
	ErrAlreadyResponded        = NewError(CloseConnection, "response was already written")
	// ErrInvalidResponse is returned when a response can't be rendered as is: the status code
	// is out of range or a header contains a line break.
	ErrInvalidResponse = NewError(CloseConnection, "invalid response")
)

// CloseConnection isn't a real status code. It marks errors after which the connection is
// closed without writing anything.
const CloseConnection Code = 1

// Wrap attaches the cause to the sentinel, keeping both of them reachable via errors.Is.
func Wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}

	return fmt.Errorf("%w: %w", sentinel, cause)
}

// CodeOf extracts the status code the error must be answered with. The second value is
// false if the error isn't an HTTPError or it mustn't be answered at all.
func CodeOf(err error) (Code, bool) {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) || !Valid(httpErr.Code) {
		return 0, false
	}

	return httpErr.Code, true
}

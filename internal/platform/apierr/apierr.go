package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds. Every *Error wraps one of these so callers can use errors.Is
// without caring about the concrete status code.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrProvider        = errors.New("provider error")
)

type Error struct {
	Status  int
	Code    string
	Message string
	Kind    error
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err, Kind: kindForStatus(status)}
}

func Unauthorized(code, msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: code, Message: msg, Kind: ErrUnauthorized}
}

func Forbidden(code, msg string) *Error {
	return &Error{Status: http.StatusForbidden, Code: code, Message: msg, Kind: ErrForbidden}
}

func NotFound(code, msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: code, Message: msg, Kind: ErrNotFound}
}

// Conflict is a duplicate or state clash. Status is usually 409 but the
// registration contract reports a taken email as 400.
func Conflict(status int, code, msg string) *Error {
	if status == 0 {
		status = http.StatusConflict
	}
	return &Error{Status: status, Code: code, Message: msg, Kind: ErrConflict}
}

func Invalid(code, msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Message: msg, Kind: ErrInvalidArgument}
}

// Provider wraps a failed call to an external AI or OAuth provider. The cause
// message is surfaced to the client.
func Provider(code string, cause error) *Error {
	msg := "provider error"
	if cause != nil {
		msg = "provider error: " + cause.Error()
	}
	return &Error{Status: http.StatusBadGateway, Code: code, Message: msg, Kind: ErrProvider, Err: cause}
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest:
		return ErrInvalidArgument
	case http.StatusBadGateway:
		return ErrProvider
	default:
		return nil
	}
}

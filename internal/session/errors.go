package session

import (
	"errors"
	"fmt"
)

const (
	CodeValidation     = "validation"
	CodeNotFound       = "not_found"
	CodeInvalidSession = "invalid_session"
	CodeUnavailable    = "unavailable"
	CodeInternal       = "internal"
)

type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func statusForCode(code string) int {
	switch code {
	case CodeValidation:
		return 400
	case CodeNotFound:
		return 404
	case CodeInvalidSession:
		return 409
	case CodeUnavailable:
		return 503
	default:
		return 500
	}
}

// NewInvalidSession flags a session that exists but cannot serve the
// requested operation yet, e.g. a report before any analysis ran.
func NewInvalidSession(message string) *Error {
	return newError(CodeInvalidSession, message)
}

func newError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  statusForCode(code),
	}
}

func notFound(id string) *Error {
	return newError(CodeNotFound, "session not found: "+id)
}

// IsNotFound reports whether err means the session does not exist (or has
// already expired, which callers cannot tell apart).
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeNotFound
}

func NewInternalError(message string) error {
	return newError(CodeInternal, message)
}

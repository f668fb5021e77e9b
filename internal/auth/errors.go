package auth

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated matches every token validation failure via errors.Is.
var ErrUnauthenticated = errors.New("unauthenticated")

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrEmptySubject       = errors.New("subject must not be empty")
)

// ErrorCode represents token validation failure categories.
type ErrorCode string

const (
	CodeInvalidToken   ErrorCode = "invalid_token"
	CodeExpired        ErrorCode = "token_expired"
	CodeMissingSubject ErrorCode = "missing_subject"
)

var errorMessages = map[ErrorCode]string{
	CodeInvalidToken:   "Invalid token",
	CodeExpired:        "Token expired",
	CodeMissingSubject: "Token has no subject",
}

// Error wraps validation failures with a stable code.
type Error struct {
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string {
	msg, ok := errorMessages[e.Code]
	if !ok {
		msg = string(e.Code)
	}
	if e.Err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthenticated
}

func newError(code ErrorCode, err error) error {
	return &Error{Code: code, Err: err}
}

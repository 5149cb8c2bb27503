package errors

import (
	"errors"
	"net/http"
)

// Authentication taxonomy. These carry no transport detail; the HTTP boundary maps them to status codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrStaleIdentity      = errors.New("identity no longer exists")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateUsername  = errors.New("existing username")
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func NotFound(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

func BadRequest(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest}
}

func IsNotFound(err error) bool {
	var e *ErrorWithStatusCode
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

// IsUnauthenticated reports whether err means the caller has to log in again.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrStaleIdentity) || errors.Is(err, ErrInvalidCredentials)
}

// ErrNotPending is returned when an activation or rejection targets an identity that is already active.
var ErrNotPending = &ErrorWithStatusCode{Message: "User is not pending", StatusCode: http.StatusBadRequest}

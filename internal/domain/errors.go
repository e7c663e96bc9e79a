package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the taxonomy every handler renders from. Repositories and
// services translate storage failures into one of these at the boundary
// so lib/pq error codes never leak past a repository.
type Error struct {
	Status  int
	Message string
	Errors  []string
}

func (e *Error) Error() string {
	return e.Message
}

func NewValidationError(errs ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Validation failed", Errors: errs}
}

func NewConflictError(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func NewUnauthorizedError(message string) *Error {
	if message == "" {
		message = "Unauthorized access"
	}
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *Error {
	if message == "" {
		message = "Access forbidden"
	}
	return &Error{Status: http.StatusForbidden, Message: message}
}

func NewNotFoundError(resource string) *Error {
	return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewInternalError(message string) *Error {
	if message == "" {
		message = "Internal Server Error"
	}
	return &Error{Status: http.StatusInternalServerError, Message: message}
}

// AsError unwraps err into a domain *Error, or wraps it as internal.
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("")
}

func IsStatus(err error, status int) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Status == status
}

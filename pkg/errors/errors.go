package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

// Clone returns a copy of e with the message overridden when non-empty.
func (e *Error) Clone(message string) *Error {
	clone := *e
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// ErrDuplicateEntry carries the exact message surfaced to marks entry
	// users; the text is part of the write contract.
	ErrDuplicateEntry = New("DUPLICATE_ENTRY", http.StatusBadRequest,
		"Marks for this pupil for the selected exam/term/year already exist. Use edit if you want to update.")

	// ErrScheduleInfeasible aborts a timetable regeneration leaving the
	// prior plan untouched.
	ErrScheduleInfeasible = New("SCHEDULE_INFEASIBLE", http.StatusConflict, "no available teacher for the requested slot")

	// ErrConsistencyDrift flags a derived projection that could not be
	// refreshed; the authoritative marks are already committed.
	ErrConsistencyDrift = New("CONSISTENCY_DRIFT", http.StatusInternalServerError, "derived report state could not be refreshed")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.Wrap(err)
}

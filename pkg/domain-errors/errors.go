// Package domainerrors defines the coded error type returned across rollbook's
// service boundary. Stores return sentinel errors for infrastructure facts;
// services translate those into coded errors here, and the HTTP layer maps
// codes onto status lines without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers and transport mapping.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal"

	// Business-rule rejections. These are permanent: the request is wrong,
	// not the moment, so nothing in rollbook retries them.

	// CodeInvalidCourseMapping: no enrollment rule admits the submitted
	// (school, grade, course) triple.
	CodeInvalidCourseMapping Code = "invalid_course_mapping"
	// CodeDuplicateRegistration: the user already registered for the campaign.
	CodeDuplicateRegistration Code = "duplicate_registration"
	// CodeNoRegistration: a survey was submitted without a prior registration.
	CodeNoRegistration Code = "no_registration"
	// CodeDuplicateSurvey: the registration already has a survey submission.
	CodeDuplicateSurvey Code = "duplicate_survey"
)

// Error carries a code plus a human-readable message and optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that never passed through this package.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code to the status the transport layer should write.
func HTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicateRegistration, CodeDuplicateSurvey:
		return http.StatusConflict
	case CodeInvalidCourseMapping:
		return http.StatusUnprocessableEntity
	case CodeNoRegistration:
		return http.StatusPreconditionFailed
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

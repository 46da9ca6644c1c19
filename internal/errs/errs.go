// Package errs defines the typed error taxonomy used at the dispatch
// boundary. Handlers map an error's Kind to an HTTP status instead of
// string-matching messages.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the API boundary.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindConflict      Kind = "conflict"
	KindQueue         Kind = "queue"
	KindWorkflow      Kind = "workflow"
)

// Error carries a kind alongside a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a malformed or incomplete request.
func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

// NotFound reports a missing resource or record.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// Authorization reports a resource the caller cannot see.
func Authorization(format string, args ...interface{}) *Error {
	return newError(KindAuthorization, format, args...)
}

// Conflict reports a state collision, e.g. enabling an already-enabled resource.
func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// Queue reports a failure to accept work for asynchronous execution.
func Queue(format string, args ...interface{}) *Error {
	return newError(KindQueue, format, args...)
}

// Workflow reports a failure inside an asynchronous workflow step.
func Workflow(format string, args ...interface{}) *Error {
	return newError(KindWorkflow, format, args...)
}

// KindOf extracts the Kind from err. Unclassified errors report KindWorkflow
// when they surface asynchronously and are treated as 500s at the boundary.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindQueue, KindWorkflow:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

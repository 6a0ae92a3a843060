// Package apperr carries the error kinds that the HTTP layer turns into status
// codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	ModelUnavailable
	UpstreamService
	ExtractionIncomplete
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case ModelUnavailable:
		return "model_unavailable"
	case UpstreamService:
		return "upstream_service"
	case ExtractionIncomplete:
		return "extraction_incomplete"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus maps the kind to the response code used at the endpoint boundary.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case ModelUnavailable:
		return http.StatusServiceUnavailable
	case UpstreamService:
		return http.StatusBadGateway
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Cause: err}
}

// Invalid reports a malformed or missing request field.
func Invalid(field, msg string) *Error {
	return &Error{Kind: Validation, Field: field, Message: msg}
}

func Upstream(service string, err error) *Error {
	return &Error{Kind: UpstreamService, Message: service + " call failed", Cause: err}
}

// KindOf returns the kind of the first *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable error code sent to clients.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAmbiguousReference Code = "AMBIGUOUS_REFERENCE"
	CodeConflict           Code = "CONFLICT"
	CodeStateConflict      Code = "STATE_CONFLICT"
	CodePartialWrite       Code = "PARTIAL_WRITE"
	CodeIdempotency        Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeDependency         Code = "DEPENDENCY_ERROR"
)

// Metadata controls how a code is rendered over HTTP. Codes without
// ExposeMessage answer with PublicMessage so internals never reach clients.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	ExposeMessage  bool
	DetailsAllowed bool
}

func clientFacing(status int, public string) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, ExposeMessage: true, DetailsAllowed: true}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:         clientFacing(http.StatusBadRequest, "validation failed"),
	CodeForbidden:          {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied", ExposeMessage: true},
	CodeNotFound:           clientFacing(http.StatusNotFound, "resource not found"),
	CodeAmbiguousReference: clientFacing(http.StatusConflict, "reference matches more than one record"),
	CodeConflict:           clientFacing(http.StatusConflict, "conflict detected"),
	CodeStateConflict:      clientFacing(http.StatusUnprocessableEntity, "state transition disallowed"),
	CodeIdempotency:        clientFacing(http.StatusConflict, "idempotency key reused"),
	// The order row exists; retrying would create a second one.
	CodePartialWrite: clientFacing(http.StatusInternalServerError, "order partially written"),
	CodeInternal:     {HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "internal server error"},
	CodeDependency:   {HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "dependency unavailable", DetailsAllowed: true},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a coded error. The message is client safe; the cause is only
// logged.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets details and returns e for chaining.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries a typed error with the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// DetailMap returns the details of a typed error when they are a string-keyed map.
func DetailMap(err error) map[string]any {
	typed := As(err)
	if typed == nil {
		return nil
	}
	m, _ := typed.details.(map[string]any)
	return m
}

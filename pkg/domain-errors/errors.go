// Package domainerrors provides coded errors for the registry's domain layer.
// Services return these so handlers can translate failures into transport
// responses without string matching. Stores return sentinel errors instead
// (pkg/platform/sentinel); services translate at the boundary.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of domain failure. Codes are part of the public API:
// they appear verbatim in HTTP error envelopes.
type Code string

const (
	CodeUnauthorized       Code = "unauthorized"
	CodeInvalidReaction    Code = "invalid_reaction"
	CodeInvalidAccount     Code = "invalid_account"
	CodeMetadataCidTooLong Code = "metadata_cid_too_long"
	CodeRecordDeleted      Code = "record_deleted"
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal"
)

// Error is a domain error with a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that preserves the underlying cause for
// errors.Is/errors.As chains.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Is reports whether err carries the given domain code.
func Is(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal for
// non-domain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HTTPStatus maps a domain code to its transport status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeInvalidReaction, CodeMetadataCidTooLong, CodeBadRequest:
		return http.StatusBadRequest
	case CodeInvalidAccount, CodeRecordDeleted, CodeConflict, CodeInvariantViolation:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

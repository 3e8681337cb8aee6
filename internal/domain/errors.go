package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so the HTTP layer can map them to a status code
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation_error"
	KindDuplicate          ErrorKind = "duplicate"
	KindUnauthenticated    ErrorKind = "unauthenticated"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindForbidden          ErrorKind = "forbidden"
	KindNotFound           ErrorKind = "not_found"
	KindInsufficientData   ErrorKind = "insufficient_data"
	KindIntegrity          ErrorKind = "integrity_error"
	KindInternal           ErrorKind = "internal_error"
)

// Error is a domain error with a stable kind and a message safe to show to clients
type Error struct {
	Kind    ErrorKind
	Message string
	// Fields holds per-field validation messages, keyed by JSON field name
	Fields map[string]string
	Err    error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindNotFound}) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewFieldValidationError creates a validation error carrying per-field messages
func NewFieldValidationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NewDuplicateError(message string) *Error {
	return &Error{Kind: KindDuplicate, Message: message}
}

func NewUnauthenticatedError(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func NewInvalidCredentialsError() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials"}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewInsufficientDataError(message string) *Error {
	return &Error{Kind: KindInsufficientData, Message: message}
}

func NewIntegrityError(message string, err error) *Error {
	return &Error{Kind: KindIntegrity, Message: message, Err: err}
}

func NewInternalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// ValidationMessages maps validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required":      "This field is required",
	"email":         "Please provide a valid email",
	"garment_email": "Please provide a valid email",
	"industry":      "Must be one of: apparel manufacturing, textile production, garment export, other",
	"max":           "Exceeds maximum length",
	"min":           "Below minimum length",
	"gte":           "Must be greater than or equal to minimum value",
	"lte":           "Must be less than or equal to maximum value",
	"oneof":         "Must be one of the allowed values",
	"uuid":          "Must be a valid UUID",
	"datetime":      "Must be a date in YYYY-MM-DD format",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

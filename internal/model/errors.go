package model

import (
	"errors"
	"fmt"

	"modelite/internal/validate"
)

// ErrorCode categorizes facade failures.
type ErrorCode string

const (
	// ErrCodeSchemaViolation indicates an operation the table's
	// configuration does not allow (unknown column, restore without
	// soft deletes).
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"

	// ErrCodeMissingIdentity indicates a row-addressing operation invoked
	// without an id.
	ErrCodeMissingIdentity ErrorCode = "MISSING_IDENTITY"

	// ErrCodeValidationFailed indicates the field map failed validation.
	// Fields carries every offending column.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// ErrCodeStorageFailed indicates the storage engine rejected a
	// statement. The engine's message is preserved verbatim via wrapping.
	ErrCodeStorageFailed ErrorCode = "STORAGE_FAILED"

	// ErrCodeNotFound indicates the addressed row does not exist (or is
	// soft-deleted and hidden) for an operation that requires it.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Error is the structured failure every facade operation returns.
//
// Code is stable and machine-matchable; Op/Table/ID/Column locate the
// failure; Fields is populated for validation failures; Err preserves the
// underlying cause for errors.Is/As chains.
type Error struct {
	Code    ErrorCode
	Op      string
	Table   string
	ID      string
	Column  string
	Message string
	Fields  []validate.FieldError
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s: %s", e.Code, e.Op, e.Table, e.Message)
	if e.ID != "" {
		msg += fmt.Sprintf(" (id=%s)", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NOT_FOUND facade error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsValidation reports whether err is a VALIDATION_FAILED facade error.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidationFailed)
}

// IsMissingIdentity reports whether err is a MISSING_IDENTITY facade error.
func IsMissingIdentity(err error) bool {
	return hasCode(err, ErrCodeMissingIdentity)
}

// IsSchemaViolation reports whether err is a SCHEMA_VIOLATION facade error.
func IsSchemaViolation(err error) bool {
	return hasCode(err, ErrCodeSchemaViolation)
}

func hasCode(err error, code ErrorCode) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}

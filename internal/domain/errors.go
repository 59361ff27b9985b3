package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorCode string

const (
	CodeValidation        ErrorCode = "VALIDATION_ERROR"
	CodeEntityNotFound    ErrorCode = "ENTITY_NOT_FOUND"
	CodeInvalidOrderState ErrorCode = "INVALID_ORDER_STATE"
	CodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"
	CodeDuplicateKey      ErrorCode = "DUPLICATE_KEY"
	CodeLockUnavailable   ErrorCode = "LOCK_UNAVAILABLE"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// Error is a coded domain error. The code is stable and safe to expose to
// callers; the wrapped cause is not.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewEntityNotFound(entity string, id any) *Error {
	return &Error{
		Code:    CodeEntityNotFound,
		Message: fmt.Sprintf("%s with id '%v' was not found", entity, id),
	}
}

func NewInvalidOrderState(message string) *Error {
	return &Error{Code: CodeInvalidOrderState, Message: message}
}

func NewDuplicateKey(message string) *Error {
	return &Error{Code: CodeDuplicateKey, Message: message}
}

var ErrLockUnavailable = &Error{
	Code:    CodeLockUnavailable,
	Message: "could not acquire lock for order creation, please retry",
}

// InsufficientStockError carries the requested and available quantities for
// diagnostics.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for '%s': requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// ValidationError enumerates per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)

	return "validation failed: " + strings.Join(parts, "; ")
}

// CodeOf maps any error onto the taxonomy, falling back to CodeInternal.
func CodeOf(err error) ErrorCode {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return CodeInsufficientStock
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return CodeValidation
	}

	return CodeInternal
}

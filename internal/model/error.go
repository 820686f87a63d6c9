package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ErrorKind classifies a domain error so callers can tell failures apart.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeNothingToUpdate      = "NOTHING_TO_UPDATE"
	ErrCodeTooManyTables        = "TOO_MANY_TABLES"
	ErrCodeImageRequired        = "IMAGE_REQUIRED"
	ErrCodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeMenuNotFound         = "MENU_NOT_FOUND"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeRestaurantNotFound   = "RESTAURANT_NOT_FOUND"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeForeignProducts      = "FOREIGN_PRODUCTS"
	ErrCodeLinePriceMismatch    = "LINE_PRICE_MISMATCH"
	ErrCodeTotalPriceMismatch   = "TOTAL_PRICE_MISMATCH"
	ErrCodePersistenceConflict  = "PERSISTENCE_CONFLICT"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// DomainError is the error type surfaced by services. Kind decides how the
// transport renders it; Code is stable across releases.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so errors built from the
// sentinels below (for example with a different message) still compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with a formatted message.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidationFailed, fmt.Sprintf(format, args...))
}

// NewConflictError wraps a persistence failure that happened after validation passed.
func NewConflictError(message string, err error) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    ErrCodePersistenceConflict,
		Message: message,
		Err:     err,
	}
}

// NewInternalError wraps an unexpected store or gateway failure.
func NewInternalError(message string, err error) *DomainError {
	return &DomainError{
		Kind:    KindInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first DomainError in err's chain.
// Errors that carry no DomainError are internal.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors
var (
	ErrNothingToUpdate      = NewDomainError(KindValidation, ErrCodeNothingToUpdate, "At least one field must be provided")
	ErrTooManyTables        = NewDomainError(KindValidation, ErrCodeTooManyTables, fmt.Sprintf("Table count must be between 0 and %d", MaxTablesPerMenu))
	ErrImageRequired        = NewDomainError(KindValidation, ErrCodeImageRequired, "Image file can not be empty")
	ErrUnsupportedMediaType = NewDomainError(KindValidation, ErrCodeUnsupportedMediaType, "Unsupported image media type")
	ErrInvalidQuantity      = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrMenuNotFound         = NewDomainError(KindNotFound, ErrCodeMenuNotFound, "Menu not found")
	ErrCategoryNotFound     = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrProductNotFound      = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound        = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrRestaurantNotFound   = NewDomainError(KindNotFound, ErrCodeRestaurantNotFound, "Restaurant not found")
	ErrUserNotFound         = NewDomainError(KindNotFound, ErrCodeUserNotFound, "User not found")
	ErrForbidden            = NewDomainError(KindForbidden, ErrCodeForbidden, "Resource belongs to another restaurant")
	ErrForeignProducts      = NewDomainError(KindConflict, ErrCodeForeignProducts, "Products are from different restaurants")
	ErrLinePriceMismatch    = NewDomainError(KindConflict, ErrCodeLinePriceMismatch, "Wrong ordered products price calculation")
	ErrTotalPriceMismatch   = NewDomainError(KindConflict, ErrCodeTotalPriceMismatch, "Wrong total price calculation")
)

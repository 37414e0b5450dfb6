// Package apperror defines the failure kinds returned by storefront operations.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	ValidationFailed
	NotFound
	Inactive
	InsufficientStock
	ProductMissing
	PriceChanged
	EmptyCart
	AlreadyProcessed
	AmountMismatch
	OrderCreationFailed
	SchemaMissing
)

const (
	ProductInactive = Inactive
	OutOfStock      = InsufficientStock
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "UNAUTHENTICATED"
	case ValidationFailed:
		return "VALIDATION_FAILED"
	case NotFound:
		return "NOT_FOUND"
	case Inactive:
		return "INACTIVE"
	case InsufficientStock:
		return "INSUFFICIENT_STOCK"
	case ProductMissing:
		return "PRODUCT_MISSING"
	case PriceChanged:
		return "PRICE_CHANGED"
	case EmptyCart:
		return "EMPTY_CART"
	case AlreadyProcessed:
		return "ALREADY_PROCESSED"
	case AmountMismatch:
		return "AMOUNT_MISMATCH"
	case OrderCreationFailed:
		return "ORDER_CREATION_FAILED"
	case SchemaMissing:
		return "SCHEMA_MISSING"
	default:
		return "INTERNAL"
	}
}

// Error is the typed failure of a storefront operation. Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	// Field is the json name of the offending input for ValidationFailed.
	Field string
	// Available is the current stock for InsufficientStock.
	Available int
	// Status is the current order status for AlreadyProcessed.
	Status string
	Err    error
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

// KindOf returns the kind of the first *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrMsgUnknown
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidation(field, message string) *Error {
	return &Error{Kind: ValidationFailed, Field: field, Message: message}
}

func NewInsufficientStock(message string, available int) *Error {
	return &Error{Kind: InsufficientStock, Message: message, Available: available}
}

func NewAlreadyProcessed(status string) *Error {
	return &Error{
		Kind:    AlreadyProcessed,
		Message: fmt.Sprintf(ErrMsgAlreadyProcessed, status),
		Status:  status,
	}
}

// RequireOwner fails with Unauthenticated when no owner identity was established.
func RequireOwner(ownerID string) error {
	if ownerID == "" {
		return New(Unauthenticated, ErrMsgUnauthenticated)
	}
	return nil
}

package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Category classifies a domain error for the transport layer.
type Category string

const (
	CategoryNotFound   Category = "NOT_FOUND"
	CategoryConflict   Category = "CONFLICT"
	CategoryValidation Category = "VALIDATION"
	CategoryForbidden  Category = "FORBIDDEN"
	CategoryInternal   Category = "INTERNAL"
)

// NotFoundError is returned when a referenced order does not exist.
type NotFoundError struct {
	OrderID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID)
}

func (e *NotFoundError) Category() Category { return CategoryNotFound }

// InvalidTransitionError is returned when the requested status is not
// reachable from the current one.
type InvalidTransitionError struct {
	OrderID   uuid.UUID
	Current   Status
	Attempted Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order %s from %q to %q", e.OrderID, e.Current, e.Attempted)
}

func (e *InvalidTransitionError) Category() Category { return CategoryForbidden }

// AlreadyCancelledError is returned for any transition attempted on a
// cancelled order. It takes precedence over InvalidTransitionError.
type AlreadyCancelledError struct {
	OrderID uuid.UUID
}

func (e *AlreadyCancelledError) Error() string {
	return fmt.Sprintf("order %s is already cancelled", e.OrderID)
}

func (e *AlreadyCancelledError) Category() Category { return CategoryForbidden }

// AlreadyDeliveredError is returned for any transition attempted on a
// delivered order. It takes precedence over InvalidTransitionError.
type AlreadyDeliveredError struct {
	OrderID uuid.UUID
}

func (e *AlreadyDeliveredError) Error() string {
	return fmt.Sprintf("order %s is already delivered", e.OrderID)
}

func (e *AlreadyDeliveredError) Category() Category { return CategoryForbidden }

// Categorized is implemented by every domain error.
type Categorized interface {
	error
	Category() Category
}

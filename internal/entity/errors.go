package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrPurchaseRequired rejects a review from a user with no recorded
	// purchase of the book.
	ErrPurchaseRequired = errors.New("purchase required before reviewing")

	// ErrEmailTaken rejects registration with an already used email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials rejects a login with a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InsufficientStockError rejects an order line whose quantity exceeds the
// on-hand quantity at commit time. Remaining lets the client react without
// re-fetching inventory.
type InsufficientStockError struct {
	BookName  string
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d remaining", e.BookName, e.Remaining)
}

// InvalidTransitionError rejects a status change out of a terminal state.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition %s -> %s", e.From, e.To)
}

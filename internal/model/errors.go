package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrMissingPaymentProof    = errors.New("payment proof is required for this payment method")
	ErrValidation             = errors.New("validation failed")
	ErrForbidden              = errors.New("forbidden")
)

// StateError describes a rejected lifecycle transition.
type StateError struct {
	Entity string
	From   string
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: cannot %s %s in state %s", ErrInvalidStateTransition, e.Action, e.Entity, e.From)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidStateTransition
}

// StockShortage names one product that cannot cover its requested delta.
type StockShortage struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Available int       `json:"available"`
	Requested int       `json:"requested"`
}

// InsufficientStockError lists every product of a batch that lacks stock.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("'%s' (available %d, requested %d)", s.Name, s.Available, s.Requested))
	}
	return fmt.Sprintf("%s: %s", ErrInsufficientStock, strings.Join(parts, ", "))
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NotFoundError wraps ErrNotFound with the entity kind and id.
func NotFoundError(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

// ValidationError wraps ErrValidation with a readable reason.
func ValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

package service

import (
	"errors"
	"fmt"

	"kitchenledger/internal/units"

	"github.com/google/uuid"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrIncompatibleUnits = units.ErrIncompatibleUnits
)

// Kinds reported by NotFoundError.
const (
	KindDish         = "dish"
	KindIngredient   = "ingredient"
	KindOrder        = "order"
	KindNotification = "notification"
)

// NotFoundError names the missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(kind string, id uuid.UUID) error { return &NotFoundError{Kind: kind, ID: id} }

// InsufficientStockError is a business-rule rejection, not a system fault.
// OnHand and Needed are expressed in Unit, the ingredient's stocking unit.
type InsufficientStockError struct {
	IngredientID uuid.UUID
	Ingredient   string
	Unit         units.Unit
	OnHand       float64
	Needed       float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %g %s on hand, %g %s needed",
		e.Ingredient, e.OnHand, e.Unit, e.Needed, e.Unit)
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

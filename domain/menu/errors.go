package menu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCategory indicates generation input with one or more
	// empty role lists.
	ErrMissingCategory = errors.New("missing category products")
	// ErrCombinationNotFound indicates an unknown combination id.
	ErrCombinationNotFound = errors.New("combination not found")
	// ErrScheduleIndex indicates a schedule position out of range.
	ErrScheduleIndex = errors.New("schedule index out of range")
	// ErrUserRequired indicates a favorites query without a user id.
	ErrUserRequired = errors.New("user id is required")
	// ErrInvalidSubTab indicates an unknown editor sub-tab value.
	ErrInvalidSubTab = errors.New("invalid sub-tab")
)

// MissingCategoryError reports which generation roles had no products.
type MissingCategoryError struct {
	Roles []CategoryRole
}

// NewMissingCategoryError builds a MissingCategoryError for the given roles.
func NewMissingCategoryError(roles []CategoryRole) *MissingCategoryError {
	return &MissingCategoryError{Roles: roles}
}

// Error returns the error message listing every empty role.
func (e *MissingCategoryError) Error() string {
	names := make([]string, len(e.Roles))
	for i, role := range e.Roles {
		names[i] = string(role)
	}
	return fmt.Sprintf("missing category products: %s", strings.Join(names, ", "))
}

// Unwrap makes the error match ErrMissingCategory via errors.Is.
func (e *MissingCategoryError) Unwrap() error {
	return ErrMissingCategory
}

package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound       = errors.New("client not found")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrDuplicateEmail = errors.New("email already belongs to another client")
	ErrReadOnly       = errors.New("repository is in read-only mode")
)

// NotFoundError reports an unknown client id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("client %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidAmountError reports a payment amount that cannot be recorded.
type InvalidAmountError struct {
	Amount float64
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %v: %s", e.Amount, e.Reason)
}

func (e *InvalidAmountError) Is(target error) bool { return target == ErrInvalidAmount }

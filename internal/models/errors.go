package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAccountNotFound     = errors.New("credit account not found")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrPersistenceFailed   = errors.New("persistence failed")
	ErrNotFound            = errors.New("not found")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPurchaseDisabled    = errors.New("purchases are disabled")

	// Reservation lifecycle
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationSettled  = errors.New("reservation already settled")
)

// InsufficientCreditsError reports how far short an account is.
type InsufficientCreditsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d more credits (required %d, available %d)",
		e.Shortfall(), e.Required, e.Available)
}

// Shortfall is the number of credits missing.
func (e *InsufficientCreditsError) Shortfall() int64 {
	if e.Available >= e.Required {
		return 0
	}
	return e.Required - e.Available
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

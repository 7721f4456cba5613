package domain

import "errors"

var (
	ErrServiceUnavailable   = errors.New("external service unavailable")
	ErrEmptyName            = errors.New("charity name is empty")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrMissingUser          = errors.New("user id is required")
	ErrConfirmationRequired = errors.New("charity is unverified; explicit confirmation required")
	ErrDuplicateCharity     = errors.New("charity already in interest list")
	ErrNoBalance            = errors.New("no donation balance for charity")
	ErrMissingDestination   = errors.New("no payout destination for charity")
	ErrBelowMinimum         = errors.New("balance below checkout minimum")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("concurrent update conflict")
)

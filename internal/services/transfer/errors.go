package transfer

import "errors"

// Service errors
var (
	// Caller errors, rejected before any storage access.
	ErrMissingField  = errors.New("sender and receiver account ids are required")
	ErrInvalidAmount = errors.New("transfer amount must be greater than zero")
	ErrSelfTransfer  = errors.New("sender and receiver cannot be the same")

	// Business and infrastructure errors.
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLockTimeout         = errors.New("transfer timed out waiting for account lock")
)

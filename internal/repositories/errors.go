package repositories

import "errors"

// Repository errors
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrLockTimeout         = errors.New("timed out waiting for account lock")
	ErrDuplicateKey        = errors.New("duplicate key")
)

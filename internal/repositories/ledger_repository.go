package repositories

import (
	"context"

	"payflow/internal/models"
)

// LedgerRepository is the storage contract consumed by the transfer service.
// Reads outside a unit-of-work take no locks; all writes happen inside
// ExecuteInTransaction and become visible only on commit.
type LedgerRepository interface {
	// GetAccount is a plain read with no lock.
	GetAccount(ctx context.Context, id uint) (*models.Account, error)

	// GetTransactionByIdempotencyKey returns the transaction previously
	// recorded for the key, or ErrTransactionNotFound.
	GetTransactionByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error)

	// GetTransaction returns a transaction by id.
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)

	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, account *models.Account) error

	// ExecuteInTransaction runs fn inside a unit-of-work. All writes made
	// through the LedgerTx commit together or not at all. Lock waits inside
	// the unit-of-work are bounded; on expiry fn's enclosing transaction is
	// aborted and ErrLockTimeout is returned.
	ExecuteInTransaction(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the view of the ledger inside an open unit-of-work.
type LedgerTx interface {
	// GetAccountForUpdate reads an account holding an exclusive row lock
	// until the unit-of-work ends.
	GetAccountForUpdate(ctx context.Context, id uint) (*models.Account, error)

	// SaveAccount writes the account's current state.
	SaveAccount(ctx context.Context, account *models.Account) error

	// CreateTransaction inserts the transaction record.
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
}

package transfer

import (
	"context"

	"payflow/internal/models"
)

// Service executes funds transfers.
type Service interface {
	Transfer(ctx context.Context, req Request) (*models.Transaction, error)
}

// Outbox receives completed transfers after commit. Implementations must
// isolate their own failures; a transfer is never reported failed because
// its notification was.
type Outbox interface {
	TransferCompleted(ctx context.Context, completed CompletedTransfer)
}

// CacheInvalidator drops cached account state after a balance mutation.
type CacheInvalidator interface {
	InvalidateAccount(ctx context.Context, id uint) error
}

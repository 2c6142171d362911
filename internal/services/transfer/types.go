package transfer

import (
	"payflow/internal/models"

	"github.com/shopspring/decimal"
)

// Request carries the parameters of one transfer.
type Request struct {
	SenderAccountID   uint            `json:"sender_account_id"`
	ReceiverAccountID uint            `json:"receiver_account_id"`
	Amount            decimal.Decimal `json:"amount"`

	// IdempotencyKey, when set, maps retries of the same logical transfer
	// onto a single transaction. Empty means every call creates a new one.
	IdempotencyKey string `json:"-"`
}

// CompletedTransfer describes a committed transfer for the outbox.
// Balances are the values observed under lock, before and after mutation.
type CompletedTransfer struct {
	Transaction        *models.Transaction
	ReceiverUserID     uint
	OldSenderBalance   decimal.Decimal
	NewSenderBalance   decimal.Decimal
	OldReceiverBalance decimal.Decimal
	NewReceiverBalance decimal.Decimal
	ConversionNote     string
}

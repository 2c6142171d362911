package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
)

// Transaction records a completed funds transfer between two accounts.
// Once COMPLETED the amount and account references never change.
type Transaction struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	Reference         string          `gorm:"uniqueIndex;not null" json:"reference"`
	SenderAccountID   uint            `gorm:"not null;index" json:"sender_account_id"`
	ReceiverAccountID uint            `gorm:"not null;index" json:"receiver_account_id"`
	Amount            decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Status            string          `gorm:"not null;default:'PENDING'" json:"status"`
	IdempotencyKey    *string         `gorm:"uniqueIndex" json:"idempotency_key,omitempty"`
	CreatedAt         time.Time       `gorm:"<-:create" json:"created_at"`
}

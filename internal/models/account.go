package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a ledger account. The balance is an exact decimal and is only
// mutated by the transfer service through the locked update path.
type Account struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance"`
	Currency  string          `gorm:"type:char(3);not null;default:'EUR'" json:"currency"`
	CreatedAt time.Time       `gorm:"<-:create" json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

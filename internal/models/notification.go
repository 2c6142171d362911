package models

import "time"

// TransactionNotification is the durable record of a transfer notification.
// Written once after the transfer commits, never mutated.
type TransactionNotification struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	TransactionID  uint      `gorm:"not null;index" json:"transaction_id"`
	RecipientEmail string    `gorm:"size:100;not null" json:"recipient_email"`
	Message        string    `gorm:"not null" json:"message"`
	SentAt         time.Time `gorm:"<-:create" json:"sent_at"`
}

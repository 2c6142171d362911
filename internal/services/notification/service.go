// Package notification is the outbox for completed transfers: it records a
// durable notification for the receiving user and publishes transfer events
// to the message bus. It runs strictly after the transfer's commit and its
// failures are logged, never propagated.
package notification

import (
	"context"
	"fmt"
	"log"

	"payflow/internal/messaging"
	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/transfer"
)

// Publisher sends a plain-text event with a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey, body string) error
}

// Service implements transfer.Outbox.
type Service struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	publisher     Publisher
}

// NewService creates the notification outbox. publisher may be nil, in
// which case only the durable record is written.
func NewService(notifications repositories.NotificationRepository, users repositories.UserRepository, publisher Publisher) *Service {
	if notifications == nil {
		panic("notification repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	return &Service{
		notifications: notifications,
		users:         users,
		publisher:     publisher,
	}
}

// TransferCompleted records and publishes the side effects of a committed
// transfer. Every failure is contained here; the transfer stays committed.
func (s *Service) TransferCompleted(ctx context.Context, completed transfer.CompletedTransfer) {
	txn := completed.Transaction

	if email, err := s.recipientEmail(ctx, completed.ReceiverUserID); err != nil {
		log.Printf("transfer %d: failed to resolve notification recipient: %v", txn.ID, err)
	} else {
		record := &models.TransactionNotification{
			TransactionID:  txn.ID,
			RecipientEmail: email,
			Message:        fmt.Sprintf("Transaction ID: %d has been completed", txn.ID),
		}
		if err := s.notifications.Create(ctx, record); err != nil {
			log.Printf("transfer %d: failed to record notification: %v", txn.ID, err)
		}
	}

	s.publish(ctx, messaging.TransactionCompletedKey,
		fmt.Sprintf("Transaction ID: %d, Amount: %s, Status: %s",
			txn.ID, txn.Amount.StringFixed(2), txn.Status))

	s.publish(ctx, messaging.BalanceChangedKey,
		fmt.Sprintf("Transaction ID: %d, Account ID: %d, Old balance: %s, New balance: %s",
			txn.ID, txn.SenderAccountID,
			completed.OldSenderBalance.StringFixed(2), completed.NewSenderBalance.StringFixed(2)))

	s.publish(ctx, messaging.BalanceChangedKey,
		fmt.Sprintf("Transaction ID: %d, Account ID: %d, Old balance: %s, New balance: %s",
			txn.ID, txn.ReceiverAccountID,
			completed.OldReceiverBalance.StringFixed(2), completed.NewReceiverBalance.StringFixed(2)))

	if completed.ConversionNote != "" {
		s.publish(ctx, messaging.CurrencyConvertedKey,
			fmt.Sprintf("%d: %s", txn.ID, completed.ConversionNote))
	}
}

func (s *Service) recipientEmail(ctx context.Context, userID uint) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

func (s *Service) publish(ctx context.Context, routingKey, body string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, body); err != nil {
		log.Printf("failed to publish %s event: %v", routingKey, err)
	}
}

package repositories

import (
	"context"
	"fmt"

	"payflow/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository stores transfer notification records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.TransactionNotification) error
	ListByTransaction(ctx context.Context, transactionID uint) ([]models.TransactionNotification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	if db == nil {
		panic("db is required")
	}
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.TransactionNotification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByTransaction(ctx context.Context, transactionID uint) ([]models.TransactionNotification, error) {
	var notifications []models.TransactionNotification
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("sent_at").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payflow/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres error codes surfaced as typed repository errors.
const (
	pgLockNotAvailable = "55P03"
	pgUniqueViolation  = "23505"
)

type ledgerRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewLedgerRepository creates a ledger repository. lockTimeout bounds the
// wait on GetAccountForUpdate; an expired wait aborts the unit-of-work.
func NewLedgerRepository(db *gorm.DB, lockTimeout time.Duration) LedgerRepository {
	if db == nil {
		panic("db is required")
	}
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &ledgerRepository{db: db, lockTimeout: lockTimeout}
}

func (r *ledgerRepository) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).First(&transaction, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

func (r *ledgerRepository) GetTransactionByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return &transaction, nil
}

func (r *ledgerRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ExecuteInTransaction(ctx context.Context, fn func(tx LedgerTx) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock_timeout is scoped to this transaction; an expired lock wait
		// aborts it so no partial write survives.
		timeoutMs := r.lockTimeout.Milliseconds()
		if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeoutMs)).Error; err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
		return fn(&ledgerTx{tx: tx})
	})
	return mapPgError(err)
}

// mapPgError converts driver-level Postgres errors into typed repository
// errors so callers never match on SQLSTATE strings.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable:
			return ErrLockTimeout
		case pgUniqueViolation:
			return ErrDuplicateKey
		}
	}
	return err
}

type ledgerTx struct {
	tx *gorm.DB
}

func (t *ledgerTx) GetAccountForUpdate(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}
	return &account, nil
}

func (t *ledgerTx) SaveAccount(ctx context.Context, account *models.Account) error {
	if err := t.tx.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("failed to save account %d: %w", account.ID, err)
	}
	return nil
}

func (t *ledgerTx) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	if err := t.tx.WithContext(ctx).Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction record: %w", err)
	}
	return nil
}

// Package account provides the thin read/create surface around ledger
// accounts. Balance mutation lives exclusively in the transfer service.
package account

import (
	"context"
	"errors"
	"log"

	"payflow/internal/models"
	"payflow/internal/repositories"

	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code")
	ErrNegativeBalance = errors.New("initial balance cannot be negative")
)

// Cache is the optional read cache for account lookups.
type Cache interface {
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
	SetAccount(ctx context.Context, account *models.Account) error
}

// Service reads and creates ledger accounts.
type Service struct {
	ledger repositories.LedgerRepository
	cache  Cache
}

// NewService creates an account service. cache may be nil.
func NewService(ledger repositories.LedgerRepository, cache Cache) *Service {
	if ledger == nil {
		panic("ledger repository is required")
	}
	return &Service{ledger: ledger, cache: cache}
}

// GetAccount returns an account by id, serving from cache when possible.
func (s *Service) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	if s.cache != nil {
		if account, err := s.cache.GetAccount(ctx, id); err == nil {
			return account, nil
		}
	}

	account, err := s.ledger.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetAccount(ctx, account); err != nil {
			log.Printf("failed to cache account %d: %v", id, err)
		}
	}
	return account, nil
}

// CreateAccount opens a new account with an initial balance.
func (s *Service) CreateAccount(ctx context.Context, userID uint, balance decimal.Decimal, currency string) (*models.Account, error) {
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	if balance.IsNegative() {
		return nil, ErrNegativeBalance
	}

	account := &models.Account{
		UserID:   userID,
		Balance:  balance,
		Currency: currency,
	}
	if err := s.ledger.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

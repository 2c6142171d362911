package transfer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"payflow/internal/models"
	"payflow/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	ledger     repositories.LedgerRepository
	reconciler *Reconciler
	outbox     Outbox
	cache      CacheInvalidator
}

// NewService creates the transfer service. outbox and cache are optional;
// pass nil to disable notifications or cache invalidation.
func NewService(ledger repositories.LedgerRepository, reconciler *Reconciler, outbox Outbox, cache CacheInvalidator) Service {
	if ledger == nil {
		panic("ledger repository is required")
	}
	if reconciler == nil {
		reconciler = NewReconciler(decimal.NewFromInt(1))
	}
	return &service{
		ledger:     ledger,
		reconciler: reconciler,
		outbox:     outbox,
		cache:      cache,
	}
}

// Transfer moves funds between two accounts as a single atomic operation.
//
// The balance check runs twice: once against a plain read to fail fast
// without taking locks, and again under lock because the balance may have
// changed in between. Locks are acquired in ascending account-id order
// regardless of which side sends, which rules out deadlock cycles between
// transfers over the same pair of accounts.
func (s *service) Transfer(ctx context.Context, req Request) (*models.Transaction, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	sender, err := s.ledger.GetAccount(ctx, req.SenderAccountID)
	if err != nil {
		return nil, accountFault("sender", err)
	}
	receiver, err := s.ledger.GetAccount(ctx, req.ReceiverAccountID)
	if err != nil {
		return nil, accountFault("receiver", err)
	}

	if sender.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientBalance
	}

	if req.IdempotencyKey != "" {
		prior, err := s.ledger.GetTransactionByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return prior, nil
		}
		if !errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, err
		}
	}

	var (
		transaction *models.Transaction
		completed   CompletedTransfer
	)

	err = s.ledger.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		sender, receiver, err = lockBothAccounts(ctx, tx, req.SenderAccountID, req.ReceiverAccountID)
		if err != nil {
			return err
		}

		// Authoritative check; the optimistic one above may be stale.
		if sender.Balance.LessThan(req.Amount) {
			return ErrInsufficientBalance
		}

		credit, note := s.reconciler.Reconcile(sender.Currency, receiver.Currency, req.Amount)

		oldSenderBalance := sender.Balance
		oldReceiverBalance := receiver.Balance
		sender.Balance = sender.Balance.Sub(req.Amount)
		receiver.Balance = receiver.Balance.Add(credit)

		if err := tx.SaveAccount(ctx, sender); err != nil {
			return err
		}
		if err := tx.SaveAccount(ctx, receiver); err != nil {
			return err
		}

		transaction = &models.Transaction{
			Reference:         uuid.NewString(),
			SenderAccountID:   sender.ID,
			ReceiverAccountID: receiver.ID,
			Amount:            req.Amount,
			Status:            models.TransactionStatusCompleted,
		}
		if req.IdempotencyKey != "" {
			key := req.IdempotencyKey
			transaction.IdempotencyKey = &key
		}
		if err := tx.CreateTransaction(ctx, transaction); err != nil {
			return err
		}

		completed = CompletedTransfer{
			Transaction:        transaction,
			ReceiverUserID:     receiver.UserID,
			OldSenderBalance:   oldSenderBalance,
			NewSenderBalance:   sender.Balance,
			OldReceiverBalance: oldReceiverBalance,
			NewReceiverBalance: receiver.Balance,
			ConversionNote:     note,
		}
		return nil
	})
	if err != nil {
		// A retry racing this call can insert the idempotency key first;
		// the unique index collapses both onto the earlier transaction.
		if req.IdempotencyKey != "" && errors.Is(err, repositories.ErrDuplicateKey) {
			return s.ledger.GetTransactionByIdempotencyKey(ctx, req.IdempotencyKey)
		}
		if errors.Is(err, repositories.ErrLockTimeout) {
			return nil, ErrLockTimeout
		}
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	s.invalidateAccounts(ctx, sender.ID, receiver.ID)

	// Side effects run strictly after commit and never affect the result.
	if s.outbox != nil {
		s.outbox.TransferCompleted(ctx, completed)
	}

	return transaction, nil
}

// lockBothAccounts acquires both row locks in ascending id order and
// returns the accounts in (sender, receiver) role order.
func lockBothAccounts(ctx context.Context, tx repositories.LedgerTx, senderID, receiverID uint) (*models.Account, *models.Account, error) {
	firstID, secondID := senderID, receiverID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := tx.GetAccountForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := tx.GetAccountForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}

	if first.ID == senderID {
		return first, second, nil
	}
	return second, first, nil
}

func (s *service) invalidateAccounts(ctx context.Context, ids ...uint) {
	if s.cache == nil {
		return
	}
	for _, id := range ids {
		if err := s.cache.InvalidateAccount(ctx, id); err != nil {
			log.Printf("failed to invalidate account %d cache: %v", id, err)
		}
	}
}

// accountFault tags a not-found error with the failing side; other errors
// pass through wrapped.
func accountFault(side string, err error) error {
	if errors.Is(err, repositories.ErrAccountNotFound) {
		return fmt.Errorf("%s: %w", side, ErrAccountNotFound)
	}
	return fmt.Errorf("%s account: %w", side, err)
}
